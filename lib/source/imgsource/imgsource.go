package imgsource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/layer"
	"github.com/fosdem/lumafilter/lib/source/still"
	"github.com/jhenstridge/go-inotify"
	"golang.org/x/image/draw"
)

// ImgSource turns a still image into a stream of frames of the configured
// type. Images of a different size are scaled to fit.
type ImgSource struct {
	path    string
	inotify bool
	loaded  bool

	still still.Still
}

func New(name string, cfg *config.ImgSourceCfg, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *ImgSource {
	s := &ImgSource{
		path:    string(cfg.Path),
		inotify: cfg.Inotify,
	}
	s.still.Init(name, cfg.Rate, frameCfg, alloc)

	err := s.LoadImage(s.path)
	if err != nil {
		s.Frames().Error("Error loading image: %s", err)
		return s
	}
	s.loaded = true
	return s
}

func (s *ImgSource) Start(ctx context.Context) bool {
	if !s.loaded {
		return false
	}

	if s.inotify {
		go s.watch(ctx)
	}
	go s.still.Run(ctx)
	return true
}

func (s *ImgSource) watch(ctx context.Context) {
	watcher, err := inotify.NewWatcher()
	if err != nil {
		s.Frames().Error("Could not create inotify watcher: %s", err)
		return
	}
	defer func(watcher *inotify.Watcher) {
		err := watcher.Close()
		if err != nil {
			s.Frames().Error("Could not close inotify watcher: %s", err)
		}
	}(watcher)

	_, err = watcher.Watch(s.path)
	if err != nil {
		s.Frames().Error("Could not start inotify watcher: %s", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Event:
			if !ok {
				return
			}
			if ev.Mask&inotify.IN_CLOSE_WRITE == 0 {
				continue
			}
			s.Frames().Debug("Reloading image due to inotify event")
			time.Sleep(100 * time.Millisecond)

			err := s.LoadImage(s.path)
			if err != nil {
				s.Frames().Error("Error loading image: %s", err)
			}
		}
	}
}

func (s *ImgSource) LoadImage(path string) error {
	s.Frames().Log("Loading %s", path)
	buf, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.SetImageData(buf)
}

// SetImageData replaces the picture with an encoded png, jpeg or bmp image.
func (s *ImgSource) SetImageData(buf []byte) error {
	img, _, err := image.Decode(bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("could not decode image: %w", err)
	}
	return s.SetImage(img)
}

func (s *ImgSource) SetImage(img image.Image) error {
	w, h := s.Frames().Width, s.Frames().Height
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		s.Frames().Debug("Scaling %dx%d image to %dx%d", img.Bounds().Dx(), img.Bounds().Dy(), w, h)
		scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = scaled
	}
	return s.still.Update(func(frame *encdec.Frame) error {
		return encdec.FrameFromImage(img, frame)
	})
}

func (s *ImgSource) Picture() *encdec.Frame {
	return s.still.Picture()
}

func (s *ImgSource) Frames() *layer.FrameForwarder {
	return &s.still.Frames
}
