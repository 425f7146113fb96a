// Package brightness implements the additive brightness adjustment applied
// to raw 8-bit video frames.
//
// The adjustment is a plain offset of round(factor*255) added to every
// affected sample and clamped afterwards; it is not a gain and it is not
// gamma aware. Which samples are affected, and the clamp range, depend on
// the format family of the frame:
//
//   - planar YUV: only the luma plane is shifted and clamped to the
//     broadcast range [16, 235]. Chroma planes are passed through.
//   - packed RGB, BGR, RGBA, BGRA: every colour channel is shifted and
//     clamped to [0, 255]. Alpha is passed through.
//
// Everything else is rejected with ErrUnsupportedFormat.
package brightness

import (
	"errors"
	"fmt"
	"math"
)

const (
	Min     = -1.0
	Max     = 1.0
	Default = 0.0
)

var ErrOutOfRange = errors.New("brightness out of range")

// Brightness is a validated brightness factor in [Min, Max]. The zero
// value is the neutral setting.
type Brightness struct {
	factor float64
}

func New(factor float64) (Brightness, error) {
	if math.IsNaN(factor) || factor < Min || factor > Max {
		return Brightness{}, fmt.Errorf("%w: %v is not within [%v, %v]", ErrOutOfRange, factor, Min, Max)
	}
	return Brightness{factor: factor}, nil
}

// MustNew is New for constants known to be in range.
func MustNew(factor float64) Brightness {
	b, err := New(factor)
	if err != nil {
		panic(err)
	}
	return b
}

func (b Brightness) Factor() float64 {
	return b.factor
}

// Offset is the sample offset the factor maps to, in [-255, 255].
func (b Brightness) Offset() int {
	return int(math.Round(b.factor * 255))
}

func (b Brightness) IsNeutral() bool {
	return b.Offset() == 0
}

func (b Brightness) String() string {
	return fmt.Sprintf("%+.3f", b.factor)
}
