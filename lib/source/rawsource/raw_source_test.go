package rawsource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/layer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rgbCfg = encdec.FrameCfg{Width: 2, Height: 2, Format: encdec.RGBFrames, NumAllocatedFrames: 2}

func frames(fills ...byte) []byte {
	var buf bytes.Buffer
	for _, v := range fills {
		buf.Write(bytes.Repeat([]byte{v}, 12))
	}
	return buf.Bytes()
}

func TestPumpSkipsWhenPoolIsEmpty(t *testing.T) {
	var f layer.FrameForwarder
	cfg := rgbCfg
	f.Init("test-pump", cfg.Info(), &encdec.DumbFrameAllocator{})

	// hold both frames so the pump has nothing to write into
	a := f.GetFrameForWriting()
	b := f.GetFrameForWriting()
	require.NotNil(t, b)

	err := Pump(context.Background(), bytes.NewReader(frames(1, 2, 3)), &f, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), f.DroppedFramesOut)

	f.FinishedWriting(a)
	f.FinishedWriting(b)
	err = Pump(context.Background(), bytes.NewReader(frames(7, 8)), &f, 0)
	require.NoError(t, err)
	got := f.GetFrameForReading()
	require.NotNil(t, got)
	assert.Equal(t, byte(8), got.Data[0])
	f.FinishedReading(got)
}

func TestPumpTruncatedFrame(t *testing.T) {
	var f layer.FrameForwarder
	cfg := rgbCfg
	f.Init("test-truncated", cfg.Info(), &encdec.DumbFrameAllocator{})

	err := Pump(context.Background(), bytes.NewReader(frames(1)[:7]), &f, 0)
	assert.Error(t, err)
	assert.Nil(t, f.GetFrameForReading())
	assert.Equal(t, 2, f.AvailableFramesForWriting())
}

func TestRawSourceClosesAtEnd(t *testing.T) {
	cfg := rgbCfg
	s := NewReader("test-reader", bytes.NewReader(frames(5, 6, 7)), 0, &cfg, &encdec.DumbFrameAllocator{})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.True(t, s.Start(ctx))

	var last byte
	var lastID uint64
	for {
		frame, err := s.Frames().WaitFrameForReading(ctx, lastID)
		if err != nil {
			assert.ErrorIs(t, err, layer.ErrClosed)
			break
		}
		lastID = frame.ID
		last = frame.Data[0]
		s.Frames().FinishedReading(frame)
	}
	assert.Equal(t, byte(7), last)
}
