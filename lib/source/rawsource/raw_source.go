package rawsource

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/layer"
	"github.com/fosdem/lumafilter/lib/utils"
)

// RawSource reads tightly packed raw frames from stdin or a file.
type RawSource struct {
	open   func() (io.ReadCloser, error)
	first  io.ReadCloser
	loop   bool
	rate   int
	frames layer.FrameForwarder
}

func NewStdin(name string, cfg *config.StdinSourceCfg, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *RawSource {
	s := &RawSource{
		open: func() (io.ReadCloser, error) { return io.NopCloser(os.Stdin), nil },
		rate: cfg.Rate,
	}
	s.frames.Init(name, frameCfg.Info(), alloc)
	return s
}

func NewFile(name string, cfg *config.FileSourceCfg, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *RawSource {
	if cfg.Path.IsStdio() {
		return NewStdin(name, &config.StdinSourceCfg{Rate: cfg.Rate}, frameCfg, alloc)
	}
	path := string(cfg.Path)
	s := &RawSource{
		open: func() (io.ReadCloser, error) { return os.Open(path) },
		loop: cfg.Loop,
		rate: cfg.Rate,
	}
	s.frames.Init(name, frameCfg.Info(), alloc)
	return s
}

// NewReader wraps an already open stream, mostly useful for tests.
func NewReader(name string, r io.Reader, rate int, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *RawSource {
	s := &RawSource{
		open: func() (io.ReadCloser, error) { return io.NopCloser(r), nil },
		rate: rate,
	}
	s.frames.Init(name, frameCfg.Info(), alloc)
	return s
}

func (s *RawSource) Start(ctx context.Context) bool {
	r, err := s.open()
	if err != nil {
		s.frames.Error("could not open input: %s", err)
		return false
	}
	s.first = r
	go s.run(ctx)
	return true
}

func (s *RawSource) run(ctx context.Context) {
	defer s.frames.Close()

	r := s.first
	for {
		err := Pump(ctx, r, &s.frames, s.rate)
		r.Close()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.frames.Error("could not read frames: %s", err)
			return
		}
		if !s.loop {
			s.frames.Log("end of stream after %d frames", s.frames.LastFrameID)
			return
		}

		s.frames.Debug("rewinding")
		r, err = s.open()
		if err != nil {
			s.frames.Error("could not reopen input: %s", err)
			return
		}
	}
}

func (s *RawSource) Frames() *layer.FrameForwarder {
	return &s.frames
}

// Pump reads raw frames from r into frames until r is exhausted or ctx is
// done. With a non-zero rate the frames are paced at that many per second.
// When no frame is free for writing, the input is skipped by one frame so
// the stream stays aligned. A clean end of stream returns nil.
func Pump(ctx context.Context, r io.Reader, frames *layer.FrameForwarder, rate int) error {
	frameSize, err := encdec.PackedSize(frames.FrameType, frames.Width, frames.Height)
	if err != nil {
		return err
	}
	br := bufio.NewReaderSize(r, frameSize)

	var frameTime time.Duration
	if rate > 0 {
		frameTime = time.Second / time.Duration(rate)
	}
	var timer utils.DeltaTimer

	for {
		if err := timer.Pace(ctx, frameTime); err != nil {
			return err
		}

		frame := frames.GetFrameForWriting()
		if frame == nil {
			n, err := io.CopyN(io.Discard, br, int64(frameSize))
			if err != nil {
				if n == 0 && errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("could not skip frame: %w", io.ErrUnexpectedEOF)
			}
			continue
		}

		err := encdec.ReadFrame(br, frame)
		if err == io.EOF {
			frames.CancelWriting(frame)
			return nil
		}
		if err != nil {
			frames.FailedWriting(frame)
			return err
		}
		frames.FinishedWriting(frame)
	}
}
