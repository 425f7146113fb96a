package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fosdem/lumafilter/lib/batch"
	"github.com/fosdem/lumafilter/lib/log"
	"github.com/schollz/progressbar/v3"
)

func main() {
	frames, b := parseFlags()
	if err := log.Setup(settings.logLevel); err != nil {
		fail("%s", err)
	}
	logger := log.Module("brighten")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	job := &batch.Job{
		Frames:     frames,
		Brightness: b,
		Threads:    settings.threads,
	}
	frameSize, err := job.FrameSize()
	if err != nil {
		logger.Error("unsupported frame layout", slog.String("error", err.Error()))
		os.Exit(1)
	}

	total := int64(-1)
	if settings.input != "-" {
		if st, err := os.Stat(settings.input); err == nil {
			total = st.Size() / int64(frameSize)
		}
	}
	if !settings.quiet {
		bar := progressbar.NewOptions64(
			total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Adjusting brightness"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("frames"),
		)
		defer bar.Finish()
		job.Progress = func() {
			_ = bar.Add(1)
		}
	}

	var n int
	if settings.inPlace {
		n, err = batch.InPlace(ctx, settings.input, job)
	} else {
		n, err = stream(ctx, job)
	}
	if err != nil {
		logger.Error("could not adjust brightness", slog.String("error", err.Error()), slog.Int("frames", n))
		os.Exit(1)
	}
	logger.Info("done", slog.Int("frames", n), slog.String("brightness", b.String()), slog.Int("offset", b.Offset()))
}

func stream(ctx context.Context, job *batch.Job) (int, error) {
	var in io.Reader = os.Stdin
	if settings.input != "-" {
		f, err := os.Open(settings.input)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		in = f
	}

	var out io.Writer = os.Stdout
	if settings.output != "-" {
		f, err := os.Create(settings.output)
		if err != nil {
			return 0, err
		}
		defer f.Close()
		out = f
	}

	return batch.Stream(ctx, in, out, job)
}
