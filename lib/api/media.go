package api

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/layer"
	"github.com/fosdem/lumafilter/lib/source/imgsource"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

type FrameForwarderObject interface {
	Frames() *layer.FrameForwarder
}

type MediaResponseType string

const (
	JPEG MediaResponseType = "jpeg"
	PNG  MediaResponseType = "png"
	BMP  MediaResponseType = "bmp"
)

// upper bound for PUT bodies
const maxImageSize = 64 << 20

// @Summary	fetch the latest frame before or after the filter as an image
// @Router		/api/media/{end} [get]
// @Router		/api/media/{end}/{format} [get]
// @Tags		media
// @Param		end		path	string				true	"source or sink"
// @Param		format	path	MediaResponseType	false	"The image type to return"
// @Param		width	query	int					false	"Scale the image down to this width"
// @Success	200
// @Failure	400	{string}	string	"The requested image format is not supported"
// @Failure	404	{string}	string	"Only source and sink exist"
// @Failure	424	{string}	string	"No frame has been published yet"
// @Failure	500	{string}	string	"The API does not know how to convert this frame to an image"
// @Produce	jpeg
// @Produce	png
// @Produce	bmp
func (a *Api) getMedia(w http.ResponseWriter, req *http.Request) {
	var obj FrameForwarderObject
	switch req.PathValue("end") {
	case "source":
		obj = a.pipeline.Source
	case "sink":
		obj = a.pipeline.Sink
	default:
		http.Error(w, "Only source and sink exist", http.StatusNotFound)
		return
	}

	format := MediaResponseType(req.PathValue("format"))
	if format == "" {
		format = JPEG
	}
	if format != JPEG && format != PNG && format != BMP {
		http.Error(w, "Unsupported format", http.StatusBadRequest)
		return
	}

	width := 0
	if ws := req.URL.Query().Get("width"); ws != "" {
		var err error
		width, err = strconv.Atoi(ws)
		if err != nil || width < 1 {
			http.Error(w, "width must be a positive number", http.StatusBadRequest)
			return
		}
	}

	frames := obj.Frames()
	frame := frames.GetFrameForReading()
	if frame == nil {
		http.Error(w, "No frame returned", http.StatusFailedDependency)
		return
	}
	img, err := encdec.ImageFromFrame(frame)
	frames.FinishedReading(frame)
	if err != nil {
		http.Error(w, fmt.Sprintf("Unhandled frame: %s", err), http.StatusInternalServerError)
		return
	}

	if width > 0 && width < img.Bounds().Dx() {
		img = scaleToWidth(img, width)
	}

	switch format {
	case JPEG:
		w.Header().Set("Content-Type", "image/jpeg")
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 80})
	case PNG:
		w.Header().Set("Content-Type", "image/png")
		err = png.Encode(w, img)
	case BMP:
		w.Header().Set("Content-Type", "image/bmp")
		err = bmp.Encode(w, img)
	}
	if err != nil {
		a.logger.Error("could not encode frame", slog.String("format", string(format)), slog.String("error", err.Error()))
	}
}

func scaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// @Summary	replace the picture of an image source
// @Router		/api/media/source [put]
// @Tags		media
// @Accept		png
// @Accept		jpeg
// @Accept		bmp
// @Success	200
// @Failure	400	{string}	string	"The source is not an image source"
// @Failure	400	{string}	string	"The body is not a valid image"
func (a *Api) putMediaSource(w http.ResponseWriter, req *http.Request) {
	imgSource, ok := a.pipeline.Source.(*imgsource.ImgSource)
	if !ok {
		http.Error(w, "not a valid image source", http.StatusBadRequest)
		return
	}

	buf, err := io.ReadAll(io.LimitReader(req.Body, maxImageSize))
	if err != nil {
		http.Error(w, fmt.Sprintf("could not read image: %s", err), http.StatusBadRequest)
		return
	}
	err = imgSource.SetImageData(buf)
	if err != nil {
		http.Error(w, fmt.Sprintf("could not update image: %s", err), http.StatusBadRequest)
		return
	}
	a.logger.Info("image source was updated", slog.Int("bytes", len(buf)))
	a.writeJSON(w, "ok")
}
