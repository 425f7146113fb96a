package encdec

import (
	"fmt"
)

type FrameCfg struct {
	Width              int
	Height             int
	Format             FrameType
	StrideAlign        int `yaml:"stride_align"`
	NumAllocatedFrames int `yaml:"num_allocated_frames"`
}

type FrameInfo struct {
	FrameCfg
	FrameType FrameType
}

type FrameAllocator interface {
	NewFrame(info *FrameInfo) *Frame
}

type DumbFrameAllocator struct {
	LastID uint32
}

func (d *DumbFrameAllocator) NewFrame(info *FrameInfo) *Frame {
	layout, n := calcFrameSize(info)

	f := newFrame(info, d.LastID)
	if err := f.AttachBuffer(make([]byte, n), layout); err != nil {
		panic(err)
	}
	d.LastID += 1

	return f
}

type FixedFrameAllocator struct {
	LastID uint32
	getBuf func(uint32) []byte
}

func NewFixedFrameAllocator(getBuf func(uint32) []byte) *FixedFrameAllocator {
	return &FixedFrameAllocator{getBuf: getBuf}
}

func (d *FixedFrameAllocator) NewFrame(info *FrameInfo) *Frame {
	layout, _ := calcFrameSize(info)

	f := newFrame(info, d.LastID)
	if err := f.AttachBuffer(d.getBuf(d.LastID), layout); err != nil {
		panic(err)
	}
	d.LastID += 1

	return f
}

// NullFrameAllocator allocates frames without any data buffer,
// such that the writer is supposed to take care of providing the buffer memory
type NullFrameAllocator struct {
	LastID uint32
}

func (n *NullFrameAllocator) NewFrame(info *FrameInfo) *Frame {
	f := newFrame(info, n.LastID)
	n.LastID += 1

	return f
}

func newFrame(info *FrameInfo, soulID uint32) *Frame {
	return &Frame{
		Type:   info.FrameType,
		Width:  info.Width,
		Height: info.Height,
		ID:     0,
		SoulID: soulID,
	}
}

func (f *FrameCfg) Validate() error {
	if f.NumAllocatedFrames < 1 {
		return fmt.Errorf("number of allocated frames must be at least 1")
	}
	if f.Width < 1 {
		return fmt.Errorf("width must be at least 1")
	}
	if f.Height < 1 {
		return fmt.Errorf("height must be at least 1")
	}
	if f.Format == UnknownFrames {
		return fmt.Errorf("format must be specified")
	}
	if f.StrideAlign < 0 || f.StrideAlign > 4096 {
		return fmt.Errorf("stride_align must be between 0 and 4096")
	}
	return nil
}

// Info turns a frame config into the frame info of its configured format.
func (f *FrameCfg) Info() *FrameInfo {
	return &FrameInfo{FrameCfg: *f, FrameType: f.Format}
}

func calcFrameSize(info *FrameInfo) ([]PlaneGeometry, int) {
	layout, n, err := PlaneLayout(info.FrameType, info.Width, info.Height, info.StrideAlign)
	if err != nil {
		panic(fmt.Sprintf("unknown frame layout: %s", err))
	}
	return layout, n
}
