package ffmpegsink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/layer"
	"github.com/fosdem/lumafilter/lib/sink/rawsink"
)

// FFmpegSink feeds raw frames into the stdin of a shell command, usually
// ffmpeg encoding or streaming them.
type FFmpegSink struct {
	shellCmd string
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	frames   layer.FrameForwarder

	done chan struct{}
	err  error
}

func New(name string, cfg *config.FFmpegSinkCfg, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *FFmpegSink {
	f := &FFmpegSink{shellCmd: cfg.Cmd, done: make(chan struct{})}
	f.frames.Init(name, frameCfg.Info(), alloc)
	return f
}

func (f *FFmpegSink) Start(ctx context.Context) bool {
	stdout, stderr, err := f.setupCmd(ctx)
	if err != nil {
		f.frames.Error("could not setup ffmpeg command: %s", err)
		return false
	}
	if err := f.cmd.Start(); err != nil {
		f.frames.Error("could not start ffmpeg: %s", err)
		return false
	}

	go f.processOutput(stdout)
	go f.processOutput(stderr)
	go f.processStdin(ctx)

	return true
}

func (f *FFmpegSink) setupCmd(ctx context.Context) (io.ReadCloser, io.ReadCloser, error) {
	f.cmd = exec.CommandContext(ctx, "bash", "-c", f.shellCmd)
	f.cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}
	var err error
	f.stdin, err = f.cmd.StdinPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("could not get ffmpeg stdin: %w", err)
	}
	stdout, err := f.cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("could not get ffmpeg stdout: %w", err)
	}
	stderr, err := f.cmd.StderrPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("could not get ffmpeg stderr: %w", err)
	}
	return stdout, stderr, nil
}

func (f *FFmpegSink) processOutput(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		f.frames.Debug("[ffmpeg] %s", scanner.Text())
	}
}

func (f *FFmpegSink) processStdin(ctx context.Context) {
	defer close(f.done)

	err := rawsink.Drain(ctx, &f.frames, f.stdin)
	f.stdin.Close()
	waitErr := f.cmd.Wait()
	switch {
	case err != nil:
		f.err = fmt.Errorf("could not write to ffmpeg stdin: %w", err)
	case waitErr != nil:
		f.err = fmt.Errorf("ffmpeg error: %w", waitErr)
	}
	if f.err != nil && ctx.Err() == nil {
		f.frames.Error("%s", f.err)
	}
}

func (f *FFmpegSink) Done() <-chan struct{} {
	return f.done
}

func (f *FFmpegSink) Err() error {
	<-f.done
	return f.err
}

func (f *FFmpegSink) Frames() *layer.FrameForwarder {
	return &f.frames
}
