package nullsink

import (
	"context"
	"testing"
	"time"

	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepsLatestFrame(t *testing.T) {
	frameCfg := encdec.FrameCfg{Width: 2, Height: 2, Format: encdec.BGRFrames, NumAllocatedFrames: 3}
	s := New("test-null", &config.NullSinkCfg{}, &frameCfg, &encdec.DumbFrameAllocator{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.True(t, s.Start(ctx))

	for _, v := range []byte{5, 6} {
		frame := s.Frames().GetFrameForWriting()
		require.NotNil(t, frame)
		frame.Data[0] = v
		s.Frames().FinishedWriting(frame)
	}

	// the sink has released it, but it is still there for a snapshot
	assert.Eventually(t, func() bool {
		return s.Frames().AvailableFramesForWriting() == 2
	}, time.Second, 5*time.Millisecond)
	snap := s.Frames().GetFrameForReading()
	require.NotNil(t, snap)
	assert.Equal(t, byte(6), snap.Data[0])
	s.Frames().FinishedReading(snap)

	s.Frames().Close()
	select {
	case <-s.Done():
	case <-ctx.Done():
		t.Fatal("sink did not stop after close")
	}
	assert.NoError(t, s.Err())
}
