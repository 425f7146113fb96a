package nullsink

import (
	"context"

	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/layer"
)

// NullSink discards frames. The latest one stays readable on the forwarder,
// so snapshots keep working.
type NullSink struct {
	frames layer.FrameForwarder
	done   chan struct{}
}

func New(name string, cfg *config.NullSinkCfg, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *NullSink {
	f := &NullSink{done: make(chan struct{})}
	f.frames.Init(name, frameCfg.Info(), alloc)
	return f
}

func (f *NullSink) Start(ctx context.Context) bool {
	go func() {
		defer close(f.done)
		var lastID uint64
		for {
			frame, err := f.frames.WaitFrameForReading(ctx, lastID)
			if err != nil {
				return
			}
			lastID = frame.ID
			f.frames.FinishedReading(frame)
		}
	}()
	return true
}

func (f *NullSink) Done() <-chan struct{} {
	return f.done
}

func (f *NullSink) Err() error {
	<-f.done
	return nil
}

func (f *NullSink) Frames() *layer.FrameForwarder {
	return &f.frames
}
