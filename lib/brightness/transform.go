package brightness

import (
	"errors"
	"fmt"

	"github.com/fosdem/lumafilter/lib/encdec"
)

var ErrUnsupportedFormat = errors.New("unsupported format")

const (
	lumaMin = 16
	lumaMax = 235
)

// kernel adjusts one family of formats. in and out have been validated and
// have the same shape; out is nil for in-place operation.
type kernel interface {
	apply(in, out *encdec.Frame, lut *[256]byte)
	bounds() (lo, hi int)
}

type planarLuma struct{}

type packedRGB struct{}

func kernelFor(t encdec.FrameType) kernel {
	switch t.Family() {
	case encdec.FamilyPlanarYUV:
		return planarLuma{}
	case encdec.FamilyPackedRGB:
		return packedRGB{}
	default:
		return nil
	}
}

// Transform applies b to in. With a nil out (or out == in) the samples of in
// are modified in place; otherwise the result is written to out, which must
// have the same type and dimensions. All checks happen before anything is
// written, so a failing call leaves both frames untouched.
func Transform(in *encdec.Frame, b Brightness, out *encdec.Frame) error {
	if in == nil {
		return fmt.Errorf("%w: no input frame", ErrUnsupportedFormat)
	}
	if out == in {
		out = nil
	}

	k := kernelFor(in.Type)
	if k == nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, in.Type)
	}
	if err := in.Validate(); err != nil {
		return fmt.Errorf("%w: input: %w", ErrUnsupportedFormat, err)
	}
	if out != nil {
		if !out.SameShape(in) {
			return fmt.Errorf("%w: output %s %dx%d does not match input %s %dx%d", ErrUnsupportedFormat,
				out.Type, out.Width, out.Height, in.Type, in.Width, in.Height)
		}
		if err := out.Validate(); err != nil {
			return fmt.Errorf("%w: output: %w", ErrUnsupportedFormat, err)
		}
	}

	offset := b.Offset()
	if offset == 0 {
		if out != nil {
			for i := range in.Planes {
				encdec.CopyPlane(&out.Planes[i], &in.Planes[i])
			}
		}
		return nil
	}

	lo, hi := k.bounds()
	lut := offsetTable(offset, lo, hi)
	k.apply(in, out, &lut)
	return nil
}

func offsetTable(offset, lo, hi int) [256]byte {
	var lut [256]byte
	for i := range lut {
		lut[i] = byte(clamp(i+offset, lo, hi))
	}
	return lut
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (planarLuma) bounds() (int, int) { return lumaMin, lumaMax }

func (planarLuma) apply(in, out *encdec.Frame, lut *[256]byte) {
	src := &in.Planes[0]
	dst := src
	if out != nil {
		dst = &out.Planes[0]
	}
	for y := range src.Height {
		s, d := src.Row(y), dst.Row(y)
		for x, v := range s {
			d[x] = lut[v]
		}
	}

	if out == nil {
		return
	}
	for i := 1; i < len(in.Planes); i++ {
		encdec.CopyPlane(&out.Planes[i], &in.Planes[i])
	}
}

func (packedRGB) bounds() (int, int) { return 0, 255 }

func (packedRGB) apply(in, out *encdec.Frame, lut *[256]byte) {
	src := &in.Planes[0]
	dst := src
	if out != nil {
		dst = &out.Planes[0]
	}
	bpp := src.PixelStride
	alpha := in.Type.HasAlpha()
	for y := range src.Height {
		s, d := src.Row(y), dst.Row(y)
		for x := 0; x < len(s); x += bpp {
			d[x] = lut[s[x]]
			d[x+1] = lut[s[x+1]]
			d[x+2] = lut[s[x+2]]
			if alpha {
				d[x+3] = s[x+3]
			}
		}
	}
}
