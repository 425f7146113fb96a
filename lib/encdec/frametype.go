package encdec

import (
	"fmt"
	"strings"
)

type FrameType int

const (
	UnknownFrames FrameType = iota
	I420Frames
	YV12Frames
	NV12Frames
	NV21Frames
	YUV422pFrames
	YUV444pFrames
	YUY2Frames
	UYVYFrames
	RGBFrames
	BGRFrames
	RGBAFrames
	BGRAFrames
)

// FormatFamily groups frame types by how their samples are laid out in
// memory, which is all the brightness filter needs to know about them.
type FormatFamily int

const (
	FamilyUnsupported FormatFamily = iota
	FamilyPlanarYUV
	FamilyPackedRGB
)

var frameTypeNames = map[FrameType]string{
	I420Frames:    "I420",
	YV12Frames:    "YV12",
	NV12Frames:    "NV12",
	NV21Frames:    "NV21",
	YUV422pFrames: "Y42B",
	YUV444pFrames: "Y444",
	YUY2Frames:    "YUY2",
	UYVYFrames:    "UYVY",
	RGBFrames:     "RGB",
	BGRFrames:     "BGR",
	RGBAFrames:    "RGBA",
	BGRAFrames:    "BGRA",
}

// aliases accepted by ParseFrameType, mostly ffmpeg pix_fmt names
var frameTypeAliases = map[string]FrameType{
	"yuv420p": I420Frames,
	"yuv422p": YUV422pFrames,
	"yuv444p": YUV444pFrames,
	"yuyv422": YUY2Frames,
	"uyvy422": UYVYFrames,
	"rgb24":   RGBFrames,
	"bgr24":   BGRFrames,
}

func (f FrameType) String() string {
	if name, ok := frameTypeNames[f]; ok {
		return name
	}
	return fmt.Sprintf("FrameType(%d)", int(f))
}

func ParseFrameType(s string) (FrameType, error) {
	for t, name := range frameTypeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	if t, ok := frameTypeAliases[strings.ToLower(s)]; ok {
		return t, nil
	}
	return UnknownFrames, fmt.Errorf("unknown frame type: %s", s)
}

func (f *FrameType) UnmarshalText(b []byte) error {
	t, err := ParseFrameType(string(b))
	if err != nil {
		return err
	}
	*f = t
	return nil
}

func (f FrameType) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f FrameType) Family() FormatFamily {
	switch f {
	case I420Frames, YV12Frames, NV12Frames, NV21Frames, YUV422pFrames, YUV444pFrames:
		return FamilyPlanarYUV
	case RGBFrames, BGRFrames, RGBAFrames, BGRAFrames:
		return FamilyPackedRGB
	default:
		return FamilyUnsupported
	}
}

func (f FrameType) NumPlanes() int {
	switch f {
	case I420Frames, YV12Frames, YUV422pFrames, YUV444pFrames:
		return 3
	case NV12Frames, NV21Frames:
		return 2
	case YUY2Frames, UYVYFrames, RGBFrames, BGRFrames, RGBAFrames, BGRAFrames:
		return 1
	default:
		return 0
	}
}

// BytesPerPixel is the size of one pixel in the first plane.
func (f FrameType) BytesPerPixel() int {
	switch f {
	case RGBFrames, BGRFrames:
		return 3
	case RGBAFrames, BGRAFrames:
		return 4
	case YUY2Frames, UYVYFrames:
		return 2
	case UnknownFrames:
		return 0
	default:
		return 1
	}
}

func (f FrameType) HasAlpha() bool {
	return f == RGBAFrames || f == BGRAFrames
}

// chromaShift returns log2 of the horizontal and vertical chroma
// subsampling factors.
func (f FrameType) chromaShift() (int, int) {
	switch f {
	case I420Frames, YV12Frames, NV12Frames, NV21Frames:
		return 1, 1
	case YUV422pFrames, YUY2Frames, UYVYFrames:
		return 1, 0
	default:
		return 0, 0
	}
}
