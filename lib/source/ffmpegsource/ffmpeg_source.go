package ffmpegsource

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"

	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/layer"
	"github.com/fosdem/lumafilter/lib/source/rawsource"
)

// FFmpegSource reads raw frames from the stdout of a shell command, which is
// expected to be ffmpeg producing the configured format. The command is
// restarted whenever it exits.
type FFmpegSource struct {
	shellCmd string
	frames   layer.FrameForwarder
}

func New(name string, cfg *config.FFmpegSourceCfg, frameCfg *encdec.FrameCfg, alloc encdec.FrameAllocator) *FFmpegSource {
	f := &FFmpegSource{shellCmd: cfg.Cmd}
	f.frames.Init(name, frameCfg.Info(), alloc)
	return f
}

func (f *FFmpegSource) Start(ctx context.Context) bool {
	if _, err := exec.LookPath("bash"); err != nil {
		f.frames.Error("could not setup ffmpeg command: %s", err)
		return false
	}
	go f.runFFmpeg(ctx)
	return true
}

func (f *FFmpegSource) setupCmd(ctx context.Context) (*exec.Cmd, io.ReadCloser, io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", f.shellCmd)
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGTERM}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not get ffmpeg stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not get ffmpeg stderr: %w", err)
	}
	return cmd, stdout, stderr, nil
}

func (f *FFmpegSource) runFFmpeg(ctx context.Context) {
	defer f.frames.Close()

	for ctx.Err() == nil {
		f.frames.Debug("starting ffmpeg")
		err := f.runOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			f.frames.Error("ffmpeg error: %s", err)
		}
		f.frames.Error("ffmpeg died")

		select {
		case <-ctx.Done():
		case <-time.After(1 * time.Second):
		}
	}
}

func (f *FFmpegSource) runOnce(ctx context.Context) error {
	cmd, stdout, stderr, err := f.setupCmd(ctx)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go f.processStderr(stderr)

	pumpErr := rawsource.Pump(ctx, stdout, &f.frames, 0)
	if pumpErr != nil {
		_ = cmd.Process.Kill()
	}
	waitErr := cmd.Wait()
	if pumpErr != nil {
		return pumpErr
	}
	return waitErr
}

func (f *FFmpegSource) processStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		f.frames.Debug("[ffmpeg] %s", scanner.Text())
	}
}

func (f *FFmpegSource) Frames() *layer.FrameForwarder {
	return &f.frames
}
