package batch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fosdem/lumafilter/lib/brightness"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// i420Input is numFrames tightly packed 6x4 I420 frames, luma set to
// 100+frame and chroma to 50.
func i420Input(t *testing.T, numFrames int) []byte {
	t.Helper()
	var buf bytes.Buffer
	for i := range numFrames {
		buf.Write(bytes.Repeat([]byte{byte(100 + i)}, 6*4))
		buf.Write(bytes.Repeat([]byte{50}, 2*3*2))
	}
	return buf.Bytes()
}

func checkI420Output(t *testing.T, out []byte, numFrames, offset int) {
	t.Helper()
	require.Len(t, out, numFrames*36)
	for i := range numFrames {
		frame := out[i*36 : (i+1)*36]
		assert.Equal(t, bytes.Repeat([]byte{byte(100 + i + offset)}, 24), frame[:24], "luma of frame %d", i)
		assert.Equal(t, bytes.Repeat([]byte{50}, 12), frame[24:], "chroma of frame %d", i)
	}
}

func newJob(align, threads int) *Job {
	return &Job{
		Frames:     encdec.FrameCfg{Width: 6, Height: 4, Format: encdec.I420Frames, StrideAlign: align},
		Brightness: brightness.MustNew(0.1),
		Threads:    threads,
	}
}

func TestStreamKeepsOrder(t *testing.T) {
	for _, align := range []int{0, 16} {
		job := newJob(align, 3)
		progress := 0
		job.Progress = func() { progress++ }

		var out bytes.Buffer
		n, err := Stream(context.Background(), bytes.NewReader(i420Input(t, 7)), &out, job)
		require.NoError(t, err)
		assert.Equal(t, 7, n)
		assert.Equal(t, 7, progress)
		checkI420Output(t, out.Bytes(), 7, 26)
	}
}

func TestStreamRejectsTruncatedInput(t *testing.T) {
	in := i420Input(t, 2)
	var out bytes.Buffer
	_, err := Stream(context.Background(), bytes.NewReader(in[:len(in)-5]), &out, newJob(0, 2))
	assert.Error(t, err)
}

func TestStreamUnsupportedFormat(t *testing.T) {
	job := newJob(0, 2)
	job.Frames.Format = encdec.UYVYFrames
	var out bytes.Buffer
	_, err := Stream(context.Background(), bytes.NewReader(make([]byte, 6*4*2)), &out, job)
	assert.ErrorIs(t, err, brightness.ErrUnsupportedFormat)
	assert.Zero(t, out.Len())
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.yuv")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestInPlace(t *testing.T) {
	path := writeTemp(t, i420Input(t, 5))
	n, err := InPlace(context.Background(), path, newJob(0, 4))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	checkI420Output(t, out, 5, 26)
}

func TestInPlaceRefusals(t *testing.T) {
	in := i420Input(t, 2)

	path := writeTemp(t, in[:len(in)-1])
	_, err := InPlace(context.Background(), path, newJob(0, 2))
	assert.ErrorIs(t, err, ErrPartialFrame)

	path = writeTemp(t, in)
	_, err = InPlace(context.Background(), path, newJob(16, 2))
	assert.Error(t, err)

	job := newJob(0, 2)
	job.Frames.Format = encdec.YUY2Frames
	job.Frames.Height = 3
	path = writeTemp(t, in)
	_, err = InPlace(context.Background(), path, job)
	assert.ErrorIs(t, err, brightness.ErrUnsupportedFormat)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, in, got)

	n, err := InPlace(context.Background(), writeTemp(t, nil), newJob(0, 2))
	require.NoError(t, err)
	assert.Zero(t, n)
}
