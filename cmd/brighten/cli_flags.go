package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/fosdem/lumafilter/lib/brightness"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/spf13/pflag"
)

type cliSettings struct {
	input       string
	output      string
	format      string
	width       int
	height      int
	brightness  float64
	strideAlign int
	threads     int
	inPlace     bool
	quiet       bool
	logLevel    string
}

var settings cliSettings

func parseFlags() (encdec.FrameCfg, brightness.Brightness) {
	pflag.CommandLine.SortFlags = false

	pflag.StringVarP(&settings.input, "input", "i", "-", "Raw video to read, - for stdin")
	pflag.StringVarP(&settings.output, "output", "o", "-", "Where to write the adjusted video, - for stdout")
	pflag.StringVarP(&settings.format, "format", "f", "I420", "Pixel format of the raw video, e.g. I420, NV12, RGBA")
	pflag.IntVar(&settings.width, "width", 0, "Frame width in pixels")
	pflag.IntVar(&settings.height, "height", 0, "Frame height in pixels")
	pflag.Float64VarP(&settings.brightness, "brightness", "b", brightness.Default, "Brightness between -1 and 1")
	pflag.IntVar(&settings.strideAlign, "stride-align", 0, "Align plane rows to this many bytes while processing")
	pflag.IntVarP(&settings.threads, "threads", "j", runtime.NumCPU(), "Number of frames to process in parallel")
	pflag.BoolVar(&settings.inPlace, "in-place", false, "Modify the input file instead of writing an output")
	pflag.BoolVarP(&settings.quiet, "quiet", "q", false, "Do not show a progress bar")
	pflag.StringVar(&settings.logLevel, "log-level", "info", "Log level")
	printHelp := pflag.BoolP("help", "h", false, "Show this help message")

	pflag.Parse()

	if *printHelp {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(0)
	}

	format, err := encdec.ParseFrameType(settings.format)
	if err != nil {
		fail("%s", err)
	}
	frames := encdec.FrameCfg{
		Width:              settings.width,
		Height:             settings.height,
		Format:             format,
		StrideAlign:        settings.strideAlign,
		NumAllocatedFrames: 1,
	}
	if err := frames.Validate(); err != nil {
		fail("%s", err)
	}
	b, err := brightness.New(settings.brightness)
	if err != nil {
		fail("%s", err)
	}
	if settings.threads < 1 {
		fail("--threads must be at least 1")
	}
	if settings.inPlace {
		if settings.input == "-" {
			fail("--in-place needs an --input file")
		}
		if pflag.CommandLine.Changed("output") {
			fail("--in-place and --output cannot be combined")
		}
	}
	return frames, b
}

func fail(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	pflag.Usage()
	os.Exit(2)
}
