package encdec

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrMapFailed is returned by sources and sinks when no frame memory
	// could be obtained for reading or writing.
	ErrMapFailed = errors.New("failed to map video frame")
	// ErrBadGeometry means a frame's planes do not match its frame type.
	ErrBadGeometry = errors.New("frame geometry does not match frame type")
)

// Plane is one channel group of a frame. Data is owned by whoever built the
// frame; Stride is the distance between row starts and may exceed the
// row payload of Width*PixelStride bytes.
type Plane struct {
	Data        []byte
	Stride      int
	Width       int
	Height      int
	PixelStride int
}

func (p *Plane) RowBytes() int {
	return p.Width * p.PixelStride
}

// Row returns the payload of row y without its padding.
func (p *Plane) Row(y int) []byte {
	start := y * p.Stride
	return p.Data[start : start+p.RowBytes()]
}

type Frame struct {
	Type   FrameType
	Width  int
	Height int
	Planes []Plane

	// Data is the contiguous buffer the planes were cut from, if any
	Data []byte

	ID                 uint64
	SoulID             uint32
	NumReaders         atomic.Int32
	MarkedForRecycling bool
}

// AttachBuffer points the frame's planes into buf according to layout.
func (f *Frame) AttachBuffer(buf []byte, layout []PlaneGeometry) error {
	need := 0
	for _, g := range layout {
		need = max(need, g.Offset+g.Size())
	}
	if len(buf) < need {
		return fmt.Errorf("buffer of %d bytes is too small for frame of %d bytes", len(buf), need)
	}

	f.Data = buf
	f.Planes = f.Planes[:0]
	for _, g := range layout {
		f.Planes = append(f.Planes, Plane{
			Data:        buf[g.Offset : g.Offset+g.Size()],
			Stride:      g.Stride,
			Width:       g.Width,
			Height:      g.Height,
			PixelStride: g.PixelStride,
		})
	}
	return nil
}

// Validate checks that the planes are what the frame type implies and that
// every plane's buffer is large enough for its stride and height.
func (f *Frame) Validate() error {
	expected, _, err := PlaneLayout(f.Type, f.Width, f.Height, 1)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBadGeometry, err)
	}
	if len(f.Planes) != len(expected) {
		return fmt.Errorf("%w: %s needs %d planes, got %d", ErrBadGeometry, f.Type, len(expected), len(f.Planes))
	}
	for i := range f.Planes {
		p := &f.Planes[i]
		g := expected[i]
		if p.Width != g.Width || p.Height != g.Height || p.PixelStride != g.PixelStride {
			return fmt.Errorf("%w: plane %d is %dx%d*%d, expected %dx%d*%d", ErrBadGeometry,
				i, p.Width, p.Height, p.PixelStride, g.Width, g.Height, g.PixelStride)
		}
		if p.Stride < p.RowBytes() {
			return fmt.Errorf("%w: plane %d stride %d is smaller than its row of %d bytes", ErrBadGeometry,
				i, p.Stride, p.RowBytes())
		}
		if need := (p.Height-1)*p.Stride + p.RowBytes(); len(p.Data) < need {
			return fmt.Errorf("%w: plane %d has %d bytes, needs %d", ErrBadGeometry, i, len(p.Data), need)
		}
	}
	return nil
}

func (f *Frame) SameShape(o *Frame) bool {
	return f.Type == o.Type && f.Width == o.Width && f.Height == o.Height
}

// CopyFrom copies the sample rows of src into f. Strides may differ; the
// padding of f is left alone.
func (f *Frame) CopyFrom(src *Frame) error {
	if !f.SameShape(src) {
		return fmt.Errorf("cannot copy %s %dx%d frame into %s %dx%d frame",
			src.Type, src.Width, src.Height, f.Type, f.Width, f.Height)
	}
	if err := src.Validate(); err != nil {
		return err
	}
	if err := f.Validate(); err != nil {
		return err
	}
	for i := range f.Planes {
		CopyPlane(&f.Planes[i], &src.Planes[i])
	}
	return nil
}

// CopyPlane copies the row payloads of src into dst, one row at a time.
// Both planes must have been validated against the same geometry.
func CopyPlane(dst, src *Plane) {
	for y := range src.Height {
		copy(dst.Row(y), src.Row(y))
	}
}
