package encdec

import "fmt"

// PlaneGeometry describes where a plane lives inside a contiguous frame
// buffer and how its rows are shaped.
type PlaneGeometry struct {
	Offset      int
	Stride      int
	Width       int
	Height      int
	PixelStride int
}

// RowBytes is the number of meaningful bytes in a row, excluding padding.
func (g PlaneGeometry) RowBytes() int {
	return g.Width * g.PixelStride
}

// Size is the number of bytes the plane occupies, including the padding of
// the last row.
func (g PlaneGeometry) Size() int {
	return g.Stride * g.Height
}

func alignUp(n, align int) int {
	if align <= 1 {
		return n
	}
	return (n + align - 1) / align * align
}

// PlaneLayout computes the plane geometry of a frame of type t, with every
// stride rounded up to a multiple of strideAlign. It returns the geometry of
// each plane and the total buffer size.
func PlaneLayout(t FrameType, width, height, strideAlign int) ([]PlaneGeometry, int, error) {
	if width < 1 || height < 1 {
		return nil, 0, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if strideAlign < 0 {
		return nil, 0, fmt.Errorf("stride alignment must be nonnegative")
	}

	sx, sy := t.chromaShift()
	cw := (width + (1 << sx) - 1) >> sx
	ch := (height + (1 << sy) - 1) >> sy

	var planes []PlaneGeometry
	switch t {
	case I420Frames, YV12Frames, YUV422pFrames, YUV444pFrames:
		planes = []PlaneGeometry{
			{Width: width, Height: height, PixelStride: 1},
			{Width: cw, Height: ch, PixelStride: 1},
			{Width: cw, Height: ch, PixelStride: 1},
		}
	case NV12Frames, NV21Frames:
		planes = []PlaneGeometry{
			{Width: width, Height: height, PixelStride: 1},
			{Width: cw, Height: ch, PixelStride: 2},
		}
	case YUY2Frames, UYVYFrames:
		// one macropixel carries two luma samples
		planes = []PlaneGeometry{
			{Width: cw, Height: height, PixelStride: 4},
		}
	case RGBFrames, BGRFrames, RGBAFrames, BGRAFrames:
		planes = []PlaneGeometry{
			{Width: width, Height: height, PixelStride: t.BytesPerPixel()},
		}
	default:
		return nil, 0, fmt.Errorf("no plane layout for frame type %s", t)
	}

	offset := 0
	for i := range planes {
		planes[i].Stride = alignUp(planes[i].RowBytes(), strideAlign)
		planes[i].Offset = offset
		offset += planes[i].Size()
	}
	return planes, offset, nil
}

// PackedSize is the size of a frame in tightly packed raw video form, as
// produced and consumed by ffmpeg's rawvideo muxer.
func PackedSize(t FrameType, width, height int) (int, error) {
	_, n, err := PlaneLayout(t, width, height, 1)
	return n, err
}
