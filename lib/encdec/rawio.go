package encdec

import (
	"fmt"
	"io"
)

// ReadFrame fills the planes of into from tightly packed raw video read from
// r. Row padding in the frame is skipped. io.EOF is returned untouched when
// the reader is exhausted exactly at a frame boundary.
func ReadFrame(r io.Reader, into *Frame) error {
	if err := into.Validate(); err != nil {
		return err
	}
	for i := range into.Planes {
		p := &into.Planes[i]
		if p.Stride == p.RowBytes() {
			n := p.Stride * p.Height
			if _, err := io.ReadFull(r, p.Data[:n]); err != nil {
				return readErr(err, i, 0)
			}
			continue
		}
		for y := range p.Height {
			if _, err := io.ReadFull(r, p.Row(y)); err != nil {
				return readErr(err, i, y)
			}
		}
	}
	return nil
}

func readErr(err error, plane, row int) error {
	if err == io.EOF && plane == 0 && row == 0 {
		return io.EOF
	}
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("could not read plane %d row %d: %w", plane, row, err)
}

// WriteFrame writes the planes of f to w as tightly packed raw video.
func WriteFrame(w io.Writer, f *Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	for i := range f.Planes {
		p := &f.Planes[i]
		if p.Stride == p.RowBytes() {
			if _, err := w.Write(p.Data[:p.Stride*p.Height]); err != nil {
				return fmt.Errorf("could not write plane %d: %w", i, err)
			}
			continue
		}
		for y := range p.Height {
			if _, err := w.Write(p.Row(y)); err != nil {
				return fmt.Errorf("could not write plane %d row %d: %w", i, y, err)
			}
		}
	}
	return nil
}
