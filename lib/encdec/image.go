package encdec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// channel order of the packed rgb family, alpha index is 3 when present
var rgbOrder = map[FrameType][3]int{
	RGBFrames:  {0, 1, 2},
	RGBAFrames: {0, 1, 2},
	BGRFrames:  {2, 1, 0},
	BGRAFrames: {2, 1, 0},
}

func DecodeImage(buf []byte, into *Frame) error {
	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return err
	}

	return FrameFromImage(img, into)
}

// FrameFromImage converts img into the frame's own type. Planar YUV
// chroma is point-sampled at the top left of each subsampling block.
func FrameFromImage(img image.Image, into *Frame) error {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	if w != into.Width || h != into.Height {
		return fmt.Errorf("expected image of size %dx%d but got %dx%d", into.Width, into.Height, w, h)
	}
	if err := into.Validate(); err != nil {
		return err
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, img.Bounds().Min, draw.Src)
	}

	if into.Type.Family() == FamilyPackedRGB {
		order := rgbOrder[into.Type]
		bpp := into.Type.BytesPerPixel()
		p := &into.Planes[0]
		for y := range h {
			src := nrgba.Pix[y*nrgba.Stride:]
			dst := p.Row(y)
			for x := range w {
				s := src[x*4 : x*4+4]
				d := dst[x*bpp : x*bpp+bpp]
				d[order[0]], d[order[1]], d[order[2]] = s[0], s[1], s[2]
				if bpp == 4 {
					d[3] = s[3]
				}
			}
		}
		return nil
	}

	sx, sy := into.Type.chromaShift()
	for y := range h {
		src := nrgba.Pix[y*nrgba.Stride:]
		for x := range w {
			s := src[x*4 : x*4+4]
			yy, cb, cr := color.RGBToYCbCr(s[0], s[1], s[2])
			cx, cy := x>>sx, y>>sy
			chroma := x&(1<<sx-1) == 0 && y&(1<<sy-1) == 0
			switch into.Type {
			case I420Frames, YUV422pFrames, YUV444pFrames:
				into.Planes[0].Row(y)[x] = yy
				if chroma {
					into.Planes[1].Row(cy)[cx] = cb
					into.Planes[2].Row(cy)[cx] = cr
				}
			case YV12Frames:
				into.Planes[0].Row(y)[x] = yy
				if chroma {
					into.Planes[1].Row(cy)[cx] = cr
					into.Planes[2].Row(cy)[cx] = cb
				}
			case NV12Frames, NV21Frames:
				into.Planes[0].Row(y)[x] = yy
				if chroma {
					uv := into.Planes[1].Row(cy)[cx*2 : cx*2+2]
					if into.Type == NV12Frames {
						uv[0], uv[1] = cb, cr
					} else {
						uv[0], uv[1] = cr, cb
					}
				}
			case YUY2Frames, UYVYFrames:
				mp := into.Planes[0].Row(y)[cx*4 : cx*4+4]
				yi := 0
				if into.Type == UYVYFrames {
					yi = 1
				}
				mp[yi+(x&1)*2] = yy
				if chroma {
					if into.Type == YUY2Frames {
						mp[1], mp[3] = cb, cr
					} else {
						mp[0], mp[2] = cb, cr
					}
				}
			default:
				return fmt.Errorf("cannot convert image into %s frame", into.Type)
			}
		}
	}
	return nil
}

// ImageFromFrame builds an image.Image holding a copy of the frame's
// samples, for encoding snapshots.
func ImageFromFrame(f *Frame) (image.Image, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	bounds := image.Rect(0, 0, f.Width, f.Height)

	switch f.Type {
	case RGBFrames, BGRFrames, RGBAFrames, BGRAFrames:
		img := image.NewNRGBA(bounds)
		order := rgbOrder[f.Type]
		bpp := f.Type.BytesPerPixel()
		for y := range f.Height {
			src := f.Planes[0].Row(y)
			dst := img.Pix[y*img.Stride:]
			for x := range f.Width {
				s := src[x*bpp : x*bpp+bpp]
				d := dst[x*4 : x*4+4]
				d[0], d[1], d[2], d[3] = s[order[0]], s[order[1]], s[order[2]], 255
				if bpp == 4 {
					d[3] = s[3]
				}
			}
		}
		return img, nil
	case I420Frames, YV12Frames, YUV422pFrames, YUV444pFrames:
		ratio := image.YCbCrSubsampleRatio420
		if f.Type == YUV422pFrames {
			ratio = image.YCbCrSubsampleRatio422
		} else if f.Type == YUV444pFrames {
			ratio = image.YCbCrSubsampleRatio444
		}
		img := image.NewYCbCr(bounds, ratio)
		cb, cr := &f.Planes[1], &f.Planes[2]
		if f.Type == YV12Frames {
			cb, cr = cr, cb
		}
		copyRows(img.Y, img.YStride, &f.Planes[0])
		copyRows(img.Cb, img.CStride, cb)
		copyRows(img.Cr, img.CStride, cr)
		return img, nil
	case NV12Frames, NV21Frames:
		img := image.NewYCbCr(bounds, image.YCbCrSubsampleRatio420)
		copyRows(img.Y, img.YStride, &f.Planes[0])
		uv := &f.Planes[1]
		ci, ri := 0, 1
		if f.Type == NV21Frames {
			ci, ri = 1, 0
		}
		for y := range uv.Height {
			row := uv.Row(y)
			for x := range uv.Width {
				img.Cb[y*img.CStride+x] = row[x*2+ci]
				img.Cr[y*img.CStride+x] = row[x*2+ri]
			}
		}
		return img, nil
	case YUY2Frames, UYVYFrames:
		img := image.NewYCbCr(bounds, image.YCbCrSubsampleRatio422)
		p := &f.Planes[0]
		// byte positions of Y0, U, Y1, V inside a macropixel
		pos := [4]int{0, 1, 2, 3}
		if f.Type == UYVYFrames {
			pos = [4]int{1, 0, 3, 2}
		}
		for y := range p.Height {
			row := p.Row(y)
			for x := range p.Width {
				mp := row[x*4 : x*4+4]
				img.Y[y*img.YStride+x*2] = mp[pos[0]]
				if x*2+1 < f.Width {
					img.Y[y*img.YStride+x*2+1] = mp[pos[2]]
				}
				img.Cb[y*img.CStride+x] = mp[pos[1]]
				img.Cr[y*img.CStride+x] = mp[pos[3]]
			}
		}
		return img, nil
	default:
		return nil, fmt.Errorf("cannot convert %s frame into an image", f.Type)
	}
}

func copyRows(dst []byte, dstStride int, p *Plane) {
	for y := range p.Height {
		copy(dst[y*dstStride:], p.Row(y))
	}
}
