// Package still publishes a single, occasionally replaced picture as a
// stream of frames at a fixed rate.
package still

import (
	"context"
	"sync"
	"time"

	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/layer"
)

type Still struct {
	Frames layer.FrameForwarder

	rate int

	mu     sync.Mutex
	master *encdec.Frame
}

func (s *Still) Init(name string, rate int, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) {
	s.rate = rate
	s.Frames.Init(name, frameCfg.Info(), alloc)
	s.master = (&encdec.DumbFrameAllocator{}).NewFrame(frameCfg.Info())
}

// Update lets fill modify the picture. fill gets the picture frame and the
// change is visible from the next published frame on. If fill fails the
// previous picture is kept.
func (s *Still) Update(fill func(*encdec.Frame) error) error {
	scratch := (&encdec.DumbFrameAllocator{}).NewFrame(&s.Frames.FrameInfo)
	if err := fill(scratch); err != nil {
		return err
	}

	s.mu.Lock()
	s.master = scratch
	s.mu.Unlock()
	return nil
}

// Picture returns a copy of the current picture.
func (s *Still) Picture() *encdec.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	dup := (&encdec.DumbFrameAllocator{}).NewFrame(&s.Frames.FrameInfo)
	_ = dup.CopyFrom(s.master)
	return dup
}

func (s *Still) publish() {
	frame := s.Frames.GetFrameForWriting()
	if frame == nil {
		return
	}

	s.mu.Lock()
	err := frame.CopyFrom(s.master)
	s.mu.Unlock()
	if err != nil {
		s.Frames.Error("could not copy picture: %s", err)
		s.Frames.FailedWriting(frame)
		return
	}
	s.Frames.FinishedWriting(frame)
}

// Run publishes the picture rate times per second until ctx is done.
func (s *Still) Run(ctx context.Context) {
	defer s.Frames.Close()

	s.publish()
	ticker := time.NewTicker(time.Second / time.Duration(s.rate))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publish()
		}
	}
}
