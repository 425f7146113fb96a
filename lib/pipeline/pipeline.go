// Package pipeline wires a source, the brightness filter and a sink
// together and moves frames between them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fosdem/lumafilter/lib/config"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/filter"
	"github.com/fosdem/lumafilter/lib/layer"
	"github.com/fosdem/lumafilter/lib/sink/ffmpegsink"
	"github.com/fosdem/lumafilter/lib/sink/nullsink"
	"github.com/fosdem/lumafilter/lib/sink/rawsink"
	"github.com/fosdem/lumafilter/lib/source/ffmpegsource"
	"github.com/fosdem/lumafilter/lib/source/imgsource"
	"github.com/fosdem/lumafilter/lib/source/patternsource"
	"github.com/fosdem/lumafilter/lib/source/rawsource"
	"github.com/fosdem/lumafilter/lib/stats"
	"golang.org/x/sync/errgroup"
)

const (
	SourceName = "source"
	SinkName   = "sink"
)

type Pipeline struct {
	Source layer.Source
	Sink   layer.Sink
	Filter *filter.Filter
	Stats  *stats.Stats

	inPlace bool
	logger  *slog.Logger
}

func New(cfg *config.Config, alloc encdec.FrameAllocator) (*Pipeline, error) {
	src, err := buildSource(cfg, alloc)
	if err != nil {
		return nil, err
	}
	sink, err := buildSink(cfg, alloc)
	if err != nil {
		return nil, err
	}
	return NewFromParts(src, sink, filter.New(cfg.Filter.Brightness()), cfg.Filter.InPlace), nil
}

func NewFromParts(src layer.Source, sink layer.Sink, f *filter.Filter, inPlace bool) *Pipeline {
	return &Pipeline{
		Source:  src,
		Sink:    sink,
		Filter:  f,
		Stats:   stats.New(),
		inPlace: inPlace,
		logger:  slog.Default().With(slog.String("module", "pipeline")),
	}
}

func buildSource(cfg *config.Config, alloc encdec.FrameAllocator) (layer.Source, error) {
	switch sc := cfg.Source.Cfg.(type) {
	case *config.FFmpegSourceCfg:
		return ffmpegsource.New(SourceName, sc, &cfg.Frames, alloc), nil
	case *config.StdinSourceCfg:
		return rawsource.NewStdin(SourceName, sc, &cfg.Frames, alloc), nil
	case *config.FileSourceCfg:
		return rawsource.NewFile(SourceName, sc, &cfg.Frames, alloc), nil
	case *config.ImgSourceCfg:
		return imgsource.New(SourceName, sc, &cfg.Frames, alloc), nil
	case *config.PatternSourceCfg:
		return patternsource.New(SourceName, sc, &cfg.Frames, alloc), nil
	default:
		return nil, fmt.Errorf("unhandled source type: %+v", cfg.Source.Cfg)
	}
}

func buildSink(cfg *config.Config, alloc encdec.FrameAllocator) (layer.Sink, error) {
	switch sc := cfg.Sink.Cfg.(type) {
	case *config.FFmpegSinkCfg:
		return ffmpegsink.New(SinkName, sc, &cfg.Frames, alloc), nil
	case *config.StdoutSinkCfg:
		return rawsink.NewStdout(SinkName, sc, &cfg.Frames, alloc), nil
	case *config.FileSinkCfg:
		return rawsink.NewFile(SinkName, sc, &cfg.Frames, alloc), nil
	case *config.NullSinkCfg:
		return nullsink.New(SinkName, sc, &cfg.Frames, alloc), nil
	default:
		return nil, fmt.Errorf("unhandled sink type: %+v", cfg.Sink.Cfg)
	}
}

// Run starts both ends and filters frames until the source runs dry and the
// sink has written everything, a frame cannot be processed at all, or ctx
// is cancelled. Cancellation is a clean shutdown and returns nil.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.Sink.Start(ctx) {
		return fmt.Errorf("could not start %s", p.Sink.Frames().Name)
	}

	srcCtx, cancelSrc := context.WithCancel(ctx)
	defer cancelSrc()
	if !p.Source.Start(srcCtx) {
		p.Sink.Frames().Close()
		return fmt.Errorf("could not start %s", p.Source.Frames().Name)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer p.Sink.Frames().Close()
		defer cancelSrc()
		return p.work(gctx)
	})
	g.Go(func() error {
		select {
		case <-p.Sink.Done():
			return p.Sink.Err()
		case <-gctx.Done():
			return nil
		}
	})

	err := g.Wait()
	if ctx.Err() == nil {
		<-p.Sink.Done()
	}
	if ctx.Err() != nil {
		p.logger.Info("stopped")
		return nil
	}
	if err != nil {
		return err
	}
	p.logger.Info("finished", slog.Uint64("frames", p.Stats.Report().FramesProcessed))
	return nil
}

func (p *Pipeline) work(ctx context.Context) error {
	src := p.Source.Frames()
	dst := p.Sink.Frames()

	var lastID uint64
	for {
		in, err := src.WaitFrameForReading(ctx, lastID)
		if errors.Is(err, layer.ErrClosed) {
			p.logger.Debug("source closed")
			return nil
		}
		if err != nil {
			return err
		}
		lastID = in.ID

		out := dst.GetFrameForWriting()
		if out == nil {
			p.logger.Debug("skipping frame", slog.Uint64("id", in.ID), slog.String("error", encdec.ErrMapFailed.Error()))
			src.FinishedReading(in)
			continue
		}

		ret := p.process(in, out)
		src.FinishedReading(in)
		if ret != filter.FlowOK {
			dst.FailedWriting(out)
			p.Stats.Failed()
			if err := p.Filter.Err(); err != nil {
				return err
			}
			continue
		}
		dst.FinishedWriting(out)
		p.Stats.Update()
	}
}

func (p *Pipeline) process(in, out *encdec.Frame) filter.FlowReturn {
	if !p.inPlace {
		return p.Filter.Process(in, out)
	}
	if err := out.CopyFrom(in); err != nil {
		// source and sink frames keep their shape for the whole stream
		p.Filter.Fail(fmt.Errorf("could not copy frame into sink: %w", err))
		return filter.FlowError
	}
	return p.Filter.Process(out, nil)
}

// Report is the current stats including drops on both ends.
func (p *Pipeline) Report() stats.Report {
	r := p.Stats.Report()
	r.SourceDropped = p.Source.Frames().Drops()
	r.SinkDropped = p.Sink.Frames().Drops()
	r.Brightness = p.Filter.Brightness().Factor()
	return r
}
