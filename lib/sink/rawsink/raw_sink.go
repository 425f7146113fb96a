package rawsink

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/layer"
)

// RawSink writes every frame it sees as tightly packed raw video to stdout
// or a file.
type RawSink struct {
	open   func() (io.WriteCloser, error)
	frames layer.FrameForwarder

	done chan struct{}
	err  error
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func NewStdout(name string, cfg *config.StdoutSinkCfg, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *RawSink {
	return newSink(name, func() (io.WriteCloser, error) { return nopWriteCloser{os.Stdout}, nil }, frameCfg, alloc)
}

func NewFile(name string, cfg *config.FileSinkCfg, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *RawSink {
	if cfg.Path.IsStdio() {
		return NewStdout(name, &config.StdoutSinkCfg{}, frameCfg, alloc)
	}
	path := string(cfg.Path)
	return newSink(name, func() (io.WriteCloser, error) { return os.Create(path) }, frameCfg, alloc)
}

// NewWriter wraps an already open stream, mostly useful for tests.
func NewWriter(name string, w io.Writer, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *RawSink {
	return newSink(name, func() (io.WriteCloser, error) { return nopWriteCloser{w}, nil }, frameCfg, alloc)
}

func newSink(name string, open func() (io.WriteCloser, error), frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *RawSink {
	s := &RawSink{open: open, done: make(chan struct{})}
	s.frames.Init(name, frameCfg.Info(), alloc)
	return s
}

func (s *RawSink) Start(ctx context.Context) bool {
	w, err := s.open()
	if err != nil {
		s.frames.Error("could not open output: %s", err)
		return false
	}

	go func() {
		defer close(s.done)
		s.err = Drain(ctx, &s.frames, w)
		if cerr := w.Close(); s.err == nil && cerr != nil {
			s.err = fmt.Errorf("could not close output: %w", cerr)
		}
		if s.err != nil && ctx.Err() == nil {
			s.frames.Error("%s", s.err)
		}
	}()
	return true
}

func (s *RawSink) Done() <-chan struct{} {
	return s.done
}

func (s *RawSink) Err() error {
	<-s.done
	return s.err
}

func (s *RawSink) Frames() *layer.FrameForwarder {
	return &s.frames
}

// Drain writes each newly published frame of frames to w until the
// forwarder is closed and its last frame has been written.
func Drain(ctx context.Context, frames *layer.FrameForwarder, w io.Writer) error {
	bw := bufio.NewWriter(w)
	var lastID uint64
	for {
		frame, err := frames.WaitFrameForReading(ctx, lastID)
		if errors.Is(err, layer.ErrClosed) {
			return bw.Flush()
		}
		if err != nil {
			return err
		}
		lastID = frame.ID
		err = encdec.WriteFrame(bw, frame)
		frames.FinishedReading(frame)
		if err != nil {
			return err
		}
	}
}
