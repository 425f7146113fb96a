package utils

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColourParse(t *testing.T) {
	c, err := ColourParse("#ff8000c0")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xc0}, c)

	c, err = ColourParse("#0A0b0C0d")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x0a, G: 0x0b, B: 0x0c, A: 0x0d}, c)

	for _, bad := range []string{"#ff8000", "orange", "#ff8000c0ff", "x#ff8000c0", "#gg8000c0", ""} {
		_, err := ColourParse(bad)
		assert.Error(t, err, bad)
	}
}

func TestDeltaTimer(t *testing.T) {
	var d DeltaTimer
	assert.Zero(t, d.Next())
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, d.Next(), 5*time.Millisecond)
}

func TestPace(t *testing.T) {
	var d DeltaTimer
	ctx := context.Background()

	start := time.Now()
	for range 4 {
		require.NoError(t, d.Pace(ctx, 10*time.Millisecond))
	}
	// the first call does not wait
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, d.Pace(cancelled, time.Hour), context.Canceled)
	assert.ErrorIs(t, d.Pace(cancelled, 0), context.Canceled)
}
