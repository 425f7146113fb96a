package layer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/metrics"
)

// ErrClosed is returned to readers waiting on a forwarder whose writer has
// finished and whose last frame they have already seen.
var ErrClosed = errors.New("frame stream closed")

// FrameForwarder takes care of synchronising frames between a single
// writer and multiple readers.
// It is suitable for streaming, not recording, because it is designed
// to drop unused source frames instead of queueing them, thus achieving
// minimal latency.
type FrameForwarder struct {
	encdec.FrameInfo

	Name      string
	Allocator encdec.FrameAllocator

	IsReady bool

	curReadingFrame *encdec.Frame

	bin []*encdec.Frame
	sync.Mutex

	// closed and replaced every time a frame is published
	fresh  chan struct{}
	closed bool

	LastFrameID uint64

	DroppedFramesIn  uint64
	DroppedFramesOut uint64

	metrics metrics.StreamMetrics
	logger  *slog.Logger
}

func (f *FrameForwarder) Init(name string, info *encdec.FrameInfo, alloc encdec.FrameAllocator) {
	f.Name = name
	f.Allocator = alloc
	f.FrameInfo = *info
	f.fresh = make(chan struct{})
	f.allocateFrames(info.NumAllocatedFrames)
	f.metrics = metrics.NewStreamMetrics(name)
	f.InitLogging()
}

func (f *FrameForwarder) InitLogging() {
	f.logger = slog.Default().With(slog.String("module", f.Name))
}

// GetFrameForReading gets the latest fully-written frame and blocks
// the writer from using it. Multiple readers can get the same frame
// concurrently, and the frame is released as available for writing
// into only after all readers have released it.
// Users must ensure that NumAllocatedFrames is big enough for cases
// when some readers are slower than others and hold older frames
// for reading for long enough that those frames are still unavailable
// during the next writing cycle.
// For each call of GetFrameForReading() or WaitFrameForReading() there
// should be a corresponding call of FinishedReading().
func (f *FrameForwarder) GetFrameForReading() *encdec.Frame {
	f.Lock()
	defer f.Unlock()

	frame := f.curReadingFrame
	if !f.IsReady || frame == nil {
		return nil
	}

	frame.NumReaders.Add(1)
	f.metrics.FramesRead.Inc()
	return frame
}

// WaitFrameForReading blocks until a frame newer than afterID has been
// published, the forwarder is closed or ctx is done.
func (f *FrameForwarder) WaitFrameForReading(ctx context.Context, afterID uint64) (*encdec.Frame, error) {
	for {
		f.Lock()
		frame := f.curReadingFrame
		if f.IsReady && frame != nil && frame.ID > afterID {
			frame.NumReaders.Add(1)
			f.metrics.FramesRead.Inc()
			f.Unlock()
			return frame, nil
		}
		if f.closed {
			f.Unlock()
			return nil, ErrClosed
		}
		fresh := f.fresh
		f.Unlock()

		select {
		case <-fresh:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (f *FrameForwarder) FinishedReading(frame *encdec.Frame) {
	f.Lock()
	defer f.Unlock()

	numReaders := frame.NumReaders.Add(-1)
	if numReaders < 0 {
		panic("FinishedReading called on frame with no readers")
	}
	if numReaders == 0 && frame.MarkedForRecycling {
		f.recycleFrame(frame)
	}
}

// GetFrameForWriting gets an unused frame for writing into.
// The writer may call GetFrameForWriting() multiple times to get multiple
// frames for writing, but they have to ensure that there are enough frames
// left in the pool for readers to hold.
// For each call of GetFrameForWriting() there should be exactly one corresponding
// call of either FinishedWriting() or FailedWriting() to put the frame back into
// the pool. When the pool is empty nil is returned and the frame counts as
// dropped.
func (f *FrameForwarder) GetFrameForWriting() *encdec.Frame {
	f.Lock()
	defer f.Unlock()

	if len(f.bin) == 0 {
		f.DroppedFramesOut += 1
		f.metrics.FramesDropped.Inc()
		return nil
	}

	frame := f.bin[len(f.bin)-1]
	f.bin = f.bin[:len(f.bin)-1]

	f.LastFrameID += 1
	frame.ID = f.LastFrameID

	frame.MarkedForRecycling = false
	return frame
}

// FinishedWriting sets the given frame as a "latest frame", so that
// new readers will use that frame. The previous "latest frame" is
// put back into the pool of frames that can be taken out with
// GetFrameForWriting()
func (f *FrameForwarder) FinishedWriting(frame *encdec.Frame) {
	f.Lock()
	defer f.Unlock()

	if f.curReadingFrame != nil {
		if f.curReadingFrame.NumReaders.Load() == 0 {
			f.recycleFrame(f.curReadingFrame)
		} else {
			f.curReadingFrame.MarkedForRecycling = true
		}
	}

	f.curReadingFrame = frame
	f.metrics.FramesWritten.Inc()
	f.metrics.FramesForwarded.Inc()

	f.IsReady = true
	close(f.fresh)
	f.fresh = make(chan struct{})
}

// FailedWriting puts a frame back into the pool without updating
// the latest frame pointer
func (f *FrameForwarder) FailedWriting(frame *encdec.Frame) {
	f.Lock()
	defer f.Unlock()

	f.DroppedFramesIn += 1
	f.metrics.FramesDropped.Inc()

	f.recycleFrame(frame)
}

// CancelWriting returns an untouched frame to the pool, for writers that
// ran out of input before they could fill it. It is not counted as a drop.
func (f *FrameForwarder) CancelWriting(frame *encdec.Frame) {
	f.Lock()
	defer f.Unlock()

	f.recycleFrame(frame)
}

// Close marks the end of the stream. Readers still get the latest frame
// if they have not seen it yet, after that they get ErrClosed.
func (f *FrameForwarder) Close() {
	f.Lock()
	defer f.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	close(f.fresh)
	f.fresh = make(chan struct{})
}

func (f *FrameForwarder) IsClosed() bool {
	f.Lock()
	defer f.Unlock()
	return f.closed
}

// Drops is the number of frames lost on either side of the forwarder.
func (f *FrameForwarder) Drops() uint64 {
	f.Lock()
	defer f.Unlock()
	return f.DroppedFramesIn + f.DroppedFramesOut
}

func (f *FrameForwarder) AvailableFramesForWriting() int {
	f.Lock()
	defer f.Unlock()
	return len(f.bin)
}

func (f *FrameForwarder) recycleFrame(frame *encdec.Frame) {
	if len(f.bin) >= cap(f.bin) || cap(f.bin) != f.FrameInfo.NumAllocatedFrames {
		panic("more frames returned than extracted??")
	}
	f.bin = append(f.bin, frame)
}

func (f *FrameForwarder) allocateFrames(num int) {
	if num < 1 {
		return
	}
	f.bin = make([]*encdec.Frame, num)
	for i := range num {
		f.bin[i] = f.Allocator.NewFrame(&f.FrameInfo)
	}
}

func (f *FrameForwarder) Log(msg string, args ...interface{}) {
	f.logger.Info(fmt.Sprintf(msg, args...))
}

func (f *FrameForwarder) Debug(msg string, args ...interface{}) {
	f.logger.Debug(fmt.Sprintf(msg, args...))
}

func (f *FrameForwarder) Error(msg string, args ...interface{}) {
	f.logger.Error(fmt.Sprintf(msg, args...))
}
