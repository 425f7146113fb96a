package still

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillWith(v byte) func(*encdec.Frame) error {
	return func(frame *encdec.Frame) error {
		for i := range frame.Data {
			frame.Data[i] = v
		}
		return nil
	}
}

func newStill(t *testing.T, rate int) *Still {
	t.Helper()
	s := &Still{}
	s.Init("test-still", rate, &encdec.FrameCfg{Width: 2, Height: 2, Format: encdec.RGBFrames, NumAllocatedFrames: 3}, &encdec.DumbFrameAllocator{})
	return s
}

func TestUpdateKeepsPictureOnError(t *testing.T) {
	s := newStill(t, 10)
	require.NoError(t, s.Update(fillWith(40)))

	broken := errors.New("decode failed")
	err := s.Update(func(frame *encdec.Frame) error {
		frame.Data[0] = 99
		return broken
	})
	assert.ErrorIs(t, err, broken)

	pic := s.Picture()
	assert.Equal(t, byte(40), pic.Data[0])
	assert.Equal(t, byte(40), pic.Data[len(pic.Data)-1])
}

func TestPictureIsACopy(t *testing.T) {
	s := newStill(t, 10)
	require.NoError(t, s.Update(fillWith(7)))
	pic := s.Picture()
	pic.Data[0] = 200
	assert.Equal(t, byte(7), s.Picture().Data[0])
}

func TestRunPublishesUpdates(t *testing.T) {
	s := newStill(t, 100)
	require.NoError(t, s.Update(fillWith(1)))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	frame, err := s.Frames.WaitFrameForReading(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(1), frame.Data[0])
	s.Frames.FinishedReading(frame)

	require.NoError(t, s.Update(fillWith(2)))
	lastID := frame.ID
	for {
		frame, err := s.Frames.WaitFrameForReading(ctx, lastID)
		require.NoError(t, err)
		lastID = frame.ID
		v := frame.Data[0]
		s.Frames.FinishedReading(frame)
		if v == 2 {
			break
		}
	}

	cancel()
	<-done
	assert.True(t, s.Frames.IsClosed())
}
