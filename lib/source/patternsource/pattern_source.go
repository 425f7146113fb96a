package patternsource

import (
	"context"
	"image"
	"image/color"

	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/layer"
	"github.com/fosdem/lumafilter/lib/source/still"
	"github.com/fosdem/lumafilter/lib/utils"
)

// PatternSource generates a test picture: either a horizontal grey ramp
// from black to white, or a solid fill colour.
type PatternSource struct {
	still  still.Still
	loaded bool
}

func New(name string, cfg *config.PatternSourceCfg, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *PatternSource {
	s := &PatternSource{}
	s.still.Init(name, cfg.Rate, frameCfg, alloc)

	var img image.Image
	switch cfg.Pattern {
	case "solid":
		c, err := utils.ColourParse(cfg.Fill)
		if err != nil {
			s.Frames().Error("could not render pattern: %s", err)
			return s
		}
		solid := image.NewNRGBA(image.Rect(0, 0, frameCfg.Width, frameCfg.Height))
		fill(solid, c)
		img = solid
	default:
		img = Ramp(frameCfg.Width, frameCfg.Height)
	}

	err := s.still.Update(func(frame *encdec.Frame) error {
		return encdec.FrameFromImage(img, frame)
	})
	if err != nil {
		s.Frames().Error("could not render pattern: %s", err)
		return s
	}
	s.loaded = true
	return s
}

// Ramp is an opaque grey ramp running from 0 at the left edge to 255 at the
// right edge.
func Ramp(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		v := uint8(0)
		if width > 1 {
			v = uint8(x * 255 / (width - 1))
		}
		c := color.NRGBA{R: v, G: v, B: v, A: 255}
		for y := range height {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func fill(img *image.NRGBA, c color.RGBA) {
	n := color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetNRGBA(x, y, n)
		}
	}
}

func (s *PatternSource) Start(ctx context.Context) bool {
	if !s.loaded {
		return false
	}
	go s.still.Run(ctx)
	return true
}

func (s *PatternSource) Picture() *encdec.Frame {
	return s.still.Picture()
}

func (s *PatternSource) Frames() *layer.FrameForwarder {
	return &s.still.Frames
}
