package encdec

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameType(t *testing.T) {
	tests := map[string]FrameType{
		"I420":    I420Frames,
		"i420":    I420Frames,
		"yuv420p": I420Frames,
		"NV21":    NV21Frames,
		"rgba":    RGBAFrames,
		"bgr24":   BGRFrames,
		"Y42B":    YUV422pFrames,
		"yuyv422": YUY2Frames,
	}
	for in, expected := range tests {
		ft, err := ParseFrameType(in)
		require.NoError(t, err, in)
		assert.Equal(t, expected, ft, in)
	}

	_, err := ParseFrameType("p010le")
	assert.Error(t, err)
}

func TestFamilies(t *testing.T) {
	assert.Equal(t, FamilyPlanarYUV, NV12Frames.Family())
	assert.Equal(t, FamilyPackedRGB, BGRAFrames.Family())
	assert.Equal(t, FamilyUnsupported, YUY2Frames.Family())
	assert.Equal(t, FamilyUnsupported, UnknownFrames.Family())
	assert.True(t, RGBAFrames.HasAlpha())
	assert.False(t, RGBFrames.HasAlpha())
}

func TestPlaneLayout(t *testing.T) {
	layout, size, err := PlaneLayout(I420Frames, 33, 17, 16)
	require.NoError(t, err)
	require.Len(t, layout, 3)

	assert.Equal(t, PlaneGeometry{Offset: 0, Stride: 48, Width: 33, Height: 17, PixelStride: 1}, layout[0])
	assert.Equal(t, PlaneGeometry{Offset: 48 * 17, Stride: 32, Width: 17, Height: 9, PixelStride: 1}, layout[1])
	assert.Equal(t, PlaneGeometry{Offset: 48*17 + 32*9, Stride: 32, Width: 17, Height: 9, PixelStride: 1}, layout[2])
	assert.Equal(t, 48*17+2*32*9, size)

	layout, _, err = PlaneLayout(NV12Frames, 8, 4, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, layout[1].RowBytes())
	assert.Equal(t, 2, layout[1].Height)

	n, err := PackedSize(RGBAFrames, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 400, n)

	_, _, err = PlaneLayout(RGBFrames, 0, 10, 0)
	assert.Error(t, err)
	_, _, err = PlaneLayout(UnknownFrames, 10, 10, 0)
	assert.Error(t, err)
}

func alloc(t *testing.T, ft FrameType, w, h, align int) *Frame {
	t.Helper()
	a := &DumbFrameAllocator{}
	f := a.NewFrame(&FrameInfo{FrameCfg: FrameCfg{Width: w, Height: h, StrideAlign: align}, FrameType: ft})
	require.NoError(t, f.Validate())
	return f
}

func TestAllocatorAssignsSoulIDs(t *testing.T) {
	a := &DumbFrameAllocator{}
	info := &FrameInfo{FrameCfg: FrameCfg{Width: 4, Height: 4}, FrameType: RGBFrames}
	assert.Equal(t, uint32(0), a.NewFrame(info).SoulID)
	assert.Equal(t, uint32(1), a.NewFrame(info).SoulID)

	n := &NullFrameAllocator{}
	f := n.NewFrame(info)
	assert.Empty(t, f.Planes)
	assert.Error(t, f.Validate())

	bufs := [][]byte{make([]byte, 48), make([]byte, 48)}
	fixed := NewFixedFrameAllocator(func(id uint32) []byte { return bufs[id] })
	f = fixed.NewFrame(info)
	f.Planes[0].Data[0] = 7
	assert.Equal(t, byte(7), bufs[0][0])
}

func TestRawRoundTripSkipsPadding(t *testing.T) {
	packedSize, err := PackedSize(I420Frames, 6, 4)
	require.NoError(t, err)
	raw := make([]byte, packedSize)
	for i := range raw {
		raw[i] = byte(i)
	}

	f := alloc(t, I420Frames, 6, 4, 32)
	for i := range f.Data {
		f.Data[i] = 0xee
	}
	require.NoError(t, ReadFrame(bytes.NewReader(raw), f))

	assert.Equal(t, raw[0:6], f.Planes[0].Row(0))
	assert.Equal(t, raw[6:12], f.Planes[0].Row(1))
	assert.Equal(t, byte(0xee), f.Planes[0].Data[6], "padding must not be written")
	assert.Equal(t, raw[24:27], f.Planes[1].Row(0))

	var out bytes.Buffer
	require.NoError(t, WriteFrame(&out, f))
	assert.Equal(t, raw, out.Bytes())
}

func TestReadFrameEOF(t *testing.T) {
	f := alloc(t, RGBFrames, 2, 2, 0)
	assert.Equal(t, io.EOF, ReadFrame(bytes.NewReader(nil), f))

	err := ReadFrame(bytes.NewReader([]byte{1, 2, 3}), f)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestCopyFromDifferentStrides(t *testing.T) {
	src := alloc(t, NV12Frames, 10, 6, 0)
	for i := range src.Data {
		src.Data[i] = byte(i * 3)
	}
	dst := alloc(t, NV12Frames, 10, 6, 64)
	require.NoError(t, dst.CopyFrom(src))
	for p := range src.Planes {
		for y := range src.Planes[p].Height {
			assert.Equal(t, src.Planes[p].Row(y), dst.Planes[p].Row(y))
		}
	}

	other := alloc(t, NV21Frames, 10, 6, 0)
	assert.Error(t, other.CopyFrom(src))
}

func TestImageConversions(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	img.SetNRGBA(3, 1, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	bgra := alloc(t, BGRAFrames, 4, 2, 32)
	require.NoError(t, FrameFromImage(img, bgra))
	assert.Equal(t, []byte{30, 20, 10, 40}, bgra.Planes[0].Row(0)[0:4])

	back, err := ImageFromFrame(bgra)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, back.At(3, 1))

	i420 := alloc(t, I420Frames, 4, 2, 0)
	require.NoError(t, FrameFromImage(img, i420))
	y, cb, cr := color.RGBToYCbCr(10, 20, 30)
	assert.Equal(t, y, i420.Planes[0].Row(0)[0])
	assert.Equal(t, cb, i420.Planes[1].Row(0)[0])
	assert.Equal(t, cr, i420.Planes[2].Row(0)[0])

	nv21 := alloc(t, NV21Frames, 4, 2, 0)
	require.NoError(t, FrameFromImage(img, nv21))
	assert.Equal(t, []byte{cr, cb}, nv21.Planes[1].Row(0)[0:2])
	ycc, err := ImageFromFrame(nv21)
	require.NoError(t, err)
	assert.Equal(t, color.YCbCr{Y: y, Cb: cb, Cr: cr}, ycc.At(0, 0))

	small := alloc(t, RGBFrames, 2, 2, 0)
	assert.Error(t, FrameFromImage(img, small))
}
