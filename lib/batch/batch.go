// Package batch applies a fixed brightness to whole raw video files, frame
// by frame, using several workers.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fosdem/lumafilter/lib/brightness"
	"github.com/fosdem/lumafilter/lib/encdec"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

var ErrPartialFrame = errors.New("input is not a whole number of frames")

type Job struct {
	Frames     encdec.FrameCfg
	Brightness brightness.Brightness
	Threads    int

	// Progress is called once per finished frame, possibly concurrently.
	Progress func()
}

func (j *Job) threads() int {
	return max(1, j.Threads)
}

func (j *Job) progress() {
	if j.Progress != nil {
		j.Progress()
	}
}

// FrameSize is the size of one tightly packed frame of the job.
func (j *Job) FrameSize() (int, error) {
	return encdec.PackedSize(j.Frames.Format, j.Frames.Width, j.Frames.Height)
}

// Stream reads raw frames from r and writes the adjusted frames to w in the
// same order. Up to Threads frames are in flight at once. It returns the
// number of frames written.
func Stream(ctx context.Context, r io.Reader, w io.Writer, job *Job) (int, error) {
	n := job.threads()
	info := job.Frames.Info()
	alloc := &encdec.DumbFrameAllocator{}
	ins := make([]*encdec.Frame, n)
	outs := make([]*encdec.Frame, n)
	for i := range n {
		ins[i] = alloc.NewFrame(info)
		outs[i] = alloc.NewFrame(info)
	}

	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		count := 0
		eof := false
		for count < n {
			err := encdec.ReadFrame(br, ins[count])
			if err == io.EOF {
				eof = true
				break
			}
			if err != nil {
				return total, fmt.Errorf("frame %d: %w", total+count, err)
			}
			count++
		}

		g, _ := errgroup.WithContext(ctx)
		for i := range count {
			g.Go(func() error {
				if err := brightness.Transform(ins[i], job.Brightness, outs[i]); err != nil {
					return fmt.Errorf("frame %d: %w", total+i, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return total, err
		}

		for i := range count {
			if err := encdec.WriteFrame(bw, outs[i]); err != nil {
				return total, fmt.Errorf("frame %d: %w", total, err)
			}
			total++
			job.progress()
		}

		if eof {
			return total, bw.Flush()
		}
	}
}

// InPlace maps the raw video file at path and adjusts every frame inside
// the mapping. The file must hold tightly packed frames, so a stride
// alignment cannot be used. It returns the number of frames adjusted.
func InPlace(ctx context.Context, path string, job *Job) (int, error) {
	if job.Frames.StrideAlign > 1 {
		return 0, fmt.Errorf("stride alignment of %d cannot be applied to a file in place", job.Frames.StrideAlign)
	}
	frameSize, err := job.FrameSize()
	if err != nil {
		return 0, err
	}
	layout, _, err := encdec.PlaneLayout(job.Frames.Format, job.Frames.Width, job.Frames.Height, 0)
	if err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	size := st.Size()
	if size%int64(frameSize) != 0 {
		return 0, fmt.Errorf("%w: %d bytes with frames of %d bytes", ErrPartialFrame, size, frameSize)
	}
	numFrames := int(size / int64(frameSize))
	if numFrames == 0 {
		return 0, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", encdec.ErrMapFailed, path, err)
	}
	defer unix.Munmap(data)

	// every frame has the same type, so checking the first one up front
	// keeps an unsupported file untouched
	first := &encdec.Frame{Type: job.Frames.Format, Width: job.Frames.Width, Height: job.Frames.Height}
	if err := first.AttachBuffer(data[:frameSize], layout); err != nil {
		return 0, err
	}
	if err := brightness.Transform(first, brightness.Brightness{}, first); err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(job.threads())
	for i := range numFrames {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			frame := &encdec.Frame{Type: job.Frames.Format, Width: job.Frames.Width, Height: job.Frames.Height}
			if err := frame.AttachBuffer(data[i*frameSize:(i+1)*frameSize], layout); err != nil {
				return err
			}
			if err := brightness.Transform(frame, job.Brightness, nil); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			job.progress()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := unix.Msync(data, unix.MS_SYNC); err != nil {
		return numFrames, fmt.Errorf("could not sync %s: %w", path, err)
	}
	return numFrames, nil
}
