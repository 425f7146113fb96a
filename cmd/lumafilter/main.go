//go:generate go tool swag init -d ../../ -g cmd/lumafilter/main.go -o ../../lib/api/docs --outputTypes go

// @title			lumafilter API
// @version		1.0
// @description	Control and inspect a running lumafilter brightness filter
// @BasePath		/
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fosdem/lumafilter/lib/api"
	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/log"
	"github.com/fosdem/lumafilter/lib/pipeline"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <config file>\n", os.Args[0])
		os.Exit(2)
	}
	if err := log.Setup("info"); err != nil {
		panic(err)
	}
	logger := log.Module("main")

	cfg, err := config.Parse(os.Args[1])
	if err != nil {
		logger.Error("could not load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := log.Setup(cfg.LogLevel); err != nil {
		logger.Error("could not set up logging", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger = log.Module("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(cfg, &encdec.DumbFrameAllocator{})
	if err != nil {
		logger.Error("could not build pipeline", slog.String("error", err.Error()))
		os.Exit(1)
	}

	api.ServeInBackground(ctx, cfg, p, stop)

	logger.Info("filtering",
		slog.String("format", cfg.Frames.Format.String()),
		slog.Int("width", cfg.Frames.Width),
		slog.Int("height", cfg.Frames.Height),
		slog.String("brightness", cfg.Filter.Brightness().String()),
	)
	if err := p.Run(ctx); err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
