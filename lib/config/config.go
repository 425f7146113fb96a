package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fosdem/lumafilter/lib/brightness"
	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/fosdem/lumafilter/lib/utils"
	yaml "github.com/goccy/go-yaml"
)

type Config struct {
	Source   *SourceCfg
	Sink     *SinkCfg
	Frames   encdec.FrameCfg
	Filter   FilterCfg
	Api      *ApiCfg
	LogLevel string `yaml:"log_level"`
}

func Parse(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %s", filename, err)
	}
	defer f.Close()

	absFilename, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("somehow, %s is malformed: %w", filename, err)
	}
	UnmarshalBase = filepath.Dir(absFilename)

	m := yaml.NewDecoder(f)
	cfg := &Config{}
	err = m.Decode(cfg)
	if err != nil {
		return nil, err
	}
	err = cfg.Validate()
	if err != nil {
		return nil, err
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if c.Source == nil {
		return fmt.Errorf("a source must be defined")
	}
	if c.Sink == nil {
		return fmt.Errorf("a sink must be defined")
	}
	if err := c.Frames.Validate(); err != nil {
		return fmt.Errorf("invalid frame config: %w", err)
	}
	if c.Frames.NumAllocatedFrames < 2 {
		return fmt.Errorf("num_allocated_frames must be at least 2, one to publish and one to write into")
	}
	if err := c.Source.Validate(); err != nil {
		return fmt.Errorf("source is invalid: %w", err)
	}
	if err := c.Sink.Validate(); err != nil {
		return fmt.Errorf("sink is invalid: %w", err)
	}
	if err := c.Filter.Validate(); err != nil {
		return fmt.Errorf("filter is invalid: %w", err)
	}
	if c.Api != nil {
		if err := c.Api.Validate(); err != nil {
			return fmt.Errorf("api is invalid: %w", err)
		}
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Source: %s\n", c.Source.Type))
	b.WriteString(fmt.Sprintf("Sink: %s\n", c.Sink.Type))
	b.WriteString(fmt.Sprintf("Frames: %s %dx%d (stride alignment %d, %d allocated)\n",
		c.Frames.Format, c.Frames.Width, c.Frames.Height, c.Frames.StrideAlign, c.Frames.NumAllocatedFrames))
	b.WriteString(fmt.Sprintf("Brightness: %s (in place: %t)\n", c.Filter.Brightness(), c.Filter.InPlace))
	if c.Api != nil {
		b.WriteString(fmt.Sprintf("API: %s\n", c.Api.Bind))
	}
	return b.String()
}

type FilterCfg struct {
	Factor  float64 `yaml:"brightness"`
	InPlace bool    `yaml:"in_place"`
}

func (f *FilterCfg) Validate() error {
	_, err := brightness.New(f.Factor)
	return err
}

// Brightness is the validated factor; only call it on a validated config.
func (f *FilterCfg) Brightness() brightness.Brightness {
	return brightness.MustNew(f.Factor)
}

type Valid interface {
	Validate() error
}

type SourceCfgStub struct {
	Type string
}

type SourceCfg struct {
	SourceCfgStub
	Cfg Valid
}

type SinkCfgStub struct {
	Type string
}

type SinkCfg struct {
	SinkCfgStub
	Cfg Valid
}

type FFmpegSourceCfg struct {
	Cmd string
}

type StdinSourceCfg struct {
	Rate int
}

type FileSourceCfg struct {
	Path CfgPath
	Loop bool
	Rate int
}

type ImgSourceCfg struct {
	Path    CfgPath
	Inotify bool
	Rate    int
}

type PatternSourceCfg struct {
	Pattern string
	Fill    string
	Rate    int
}

type FFmpegSinkCfg struct {
	Cmd string
}

type StdoutSinkCfg struct {
}

type FileSinkCfg struct {
	Path CfgPath
}

type NullSinkCfg struct {
}

func (s *SourceCfg) UnmarshalYAML(b []byte) error {
	err := yaml.Unmarshal(b, &s.SourceCfgStub)
	if err != nil {
		return err
	}

	switch s.Type {
	case "ffmpeg_stdout":
		cfg := FFmpegSourceCfg{}
		s.Cfg = &cfg
		return yaml.Unmarshal(b, &cfg)
	case "stdin":
		cfg := StdinSourceCfg{}
		s.Cfg = &cfg
		return yaml.Unmarshal(b, &cfg)
	case "file":
		cfg := FileSourceCfg{}
		s.Cfg = &cfg
		return yaml.Unmarshal(b, &cfg)
	case "image":
		cfg := ImgSourceCfg{}
		s.Cfg = &cfg
		return yaml.Unmarshal(b, &cfg)
	case "pattern":
		cfg := PatternSourceCfg{}
		s.Cfg = &cfg
		return yaml.Unmarshal(b, &cfg)
	default:
		return fmt.Errorf("unknown source type: %s", s.Type)
	}
}

func (s *SinkCfg) UnmarshalYAML(b []byte) error {
	err := yaml.Unmarshal(b, &s.SinkCfgStub)
	if err != nil {
		return err
	}

	switch s.Type {
	case "ffmpeg_stdin":
		cfg := FFmpegSinkCfg{}
		s.Cfg = &cfg
		return yaml.Unmarshal(b, &cfg)
	case "stdout":
		cfg := StdoutSinkCfg{}
		s.Cfg = &cfg
		return yaml.Unmarshal(b, &cfg)
	case "file":
		cfg := FileSinkCfg{}
		s.Cfg = &cfg
		return yaml.Unmarshal(b, &cfg)
	case "discard":
		cfg := NullSinkCfg{}
		s.Cfg = &cfg
		return yaml.Unmarshal(b, &cfg)
	default:
		return fmt.Errorf("unknown sink type: %s", s.Type)
	}
}

type ApiCfg struct {
	Bind           string
	EnableProfiler bool `yaml:"enable_profiler"`
	EnableSwagger  bool `yaml:"enable_swagger"`
}

func (a *ApiCfg) Validate() error {
	if a.Bind == "" {
		return fmt.Errorf("bind address must be specified")
	}
	return nil
}

func (s *SourceCfg) Validate() error {
	if s.Cfg == nil {
		return fmt.Errorf("source type must be specified")
	}
	return s.Cfg.Validate()
}

func (s *SinkCfg) Validate() error {
	if s.Cfg == nil {
		return fmt.Errorf("sink type must be specified")
	}
	return s.Cfg.Validate()
}

func validateRate(rate int) error {
	if rate < 0 || rate > 1000 {
		return fmt.Errorf("rate must be between 0 and 1000 frames per second")
	}
	return nil
}

func (s *FFmpegSourceCfg) Validate() error {
	if s.Cmd == "" {
		return fmt.Errorf("ffmpeg cmd must be specified")
	}
	return nil
}

func (s *StdinSourceCfg) Validate() error {
	return validateRate(s.Rate)
}

func (s *FileSourceCfg) Validate() error {
	if s.Path == "" {
		return fmt.Errorf("file path must be specified")
	}
	if s.Loop && s.Rate == 0 {
		return fmt.Errorf("a looping file source needs a rate")
	}
	return validateRate(s.Rate)
}

func (s *ImgSourceCfg) Validate() error {
	if s.Path == "" {
		return fmt.Errorf("image path must be specified")
	}
	if s.Rate < 1 {
		return fmt.Errorf("an image source needs a rate of at least 1")
	}
	return validateRate(s.Rate)
}

func (s *PatternSourceCfg) Validate() error {
	switch s.Pattern {
	case "ramp":
		if s.Fill != "" {
			return fmt.Errorf("fill can only be set for the solid pattern")
		}
	case "solid":
		if _, err := utils.ColourParse(s.Fill); err != nil {
			return fmt.Errorf("invalid fill: %w", err)
		}
	default:
		return fmt.Errorf("unknown pattern %q, use ramp or solid", s.Pattern)
	}
	if s.Rate < 1 {
		return fmt.Errorf("a pattern source needs a rate of at least 1")
	}
	return validateRate(s.Rate)
}

func (s *FFmpegSinkCfg) Validate() error {
	if s.Cmd == "" {
		return fmt.Errorf("ffmpeg cmd must be specified")
	}
	return nil
}

func (s *StdoutSinkCfg) Validate() error {
	return nil
}

func (s *FileSinkCfg) Validate() error {
	if s.Path == "" {
		return fmt.Errorf("file path must be specified")
	}
	return nil
}

func (s *NullSinkCfg) Validate() error {
	return nil
}
