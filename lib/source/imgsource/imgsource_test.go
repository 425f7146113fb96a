package imgsource

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

var rgbFrames = encdec.FrameCfg{Width: 4, Height: 2, Format: encdec.RGBFrames, NumAllocatedFrames: 3}

func TestLoadAndScale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 8, 4, red), 0o644))

	frameCfg := rgbFrames
	s := New("test-img", &config.ImgSourceCfg{Path: config.CfgPath(path), Rate: 10}, &frameCfg, &encdec.DumbFrameAllocator{})
	pic := s.Picture()
	assert.Equal(t, 4, pic.Width)
	assert.InDelta(t, 255, int(pic.Data[0]), 1)
	assert.InDelta(t, 0, int(pic.Data[1]), 1)

	require.Error(t, s.SetImageData([]byte("not an image")))
	assert.Equal(t, pic.Data, s.Picture().Data)
}

func TestMissingFileDoesNotStart(t *testing.T) {
	frameCfg := rgbFrames
	s := New("test-missing", &config.ImgSourceCfg{Path: config.CfgPath(filepath.Join(t.TempDir(), "nope.png")), Rate: 10}, &frameCfg, &encdec.DumbFrameAllocator{})
	assert.False(t, s.Start(context.Background()))
}

func TestReloadOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 4, 2, red), 0o644))

	frameCfg := rgbFrames
	s := New("test-reload", &config.ImgSourceCfg{Path: config.CfgPath(path), Inotify: true, Rate: 50}, &frameCfg, &encdec.DumbFrameAllocator{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.True(t, s.Start(ctx))

	frame, err := s.Frames().WaitFrameForReading(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 0, 0}, frame.Data[:3])
	lastID := frame.ID
	s.Frames().FinishedReading(frame)

	// rewrite until the watcher has picked it up, it may not be set up yet
	blueData := encodePNG(t, 4, 2, blue)
	assert.Eventually(t, func() bool {
		assert.NoError(t, os.WriteFile(path, blueData, 0o644))
		return s.Picture().Data[2] == 255
	}, 3*time.Second, 250*time.Millisecond)

	for {
		frame, err := s.Frames().WaitFrameForReading(ctx, lastID)
		require.NoError(t, err)
		lastID = frame.ID
		published := append([]byte(nil), frame.Data[:3]...)
		s.Frames().FinishedReading(frame)
		if published[2] == 255 {
			assert.Equal(t, []byte{0, 0, 255}, published)
			break
		}
	}
}
