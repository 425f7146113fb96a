package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fosdem/lumafilter/lib/encdec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lumafilter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const fullConfig = `
source:
  type: file
  path: input.yuv
  loop: true
  rate: 25
sink:
  type: ffmpeg_stdin
  cmd: ffmpeg -f rawvideo -pix_fmt yuv420p -s 1280x720 -i - -f null -
frames:
  width: 1280
  height: 720
  format: yuv420p
  stride_align: 64
  num_allocated_frames: 4
filter:
  brightness: -0.25
  in_place: true
api:
  bind: ":8000"
  enable_swagger: true
log_level: debug
`

func TestParseFullConfig(t *testing.T) {
	path := writeConfig(t, fullConfig)
	cfg, err := Parse(path)
	require.NoError(t, err)

	src, ok := cfg.Source.Cfg.(*FileSourceCfg)
	require.True(t, ok)
	assert.Equal(t, CfgPath(filepath.Join(filepath.Dir(path), "input.yuv")), src.Path)
	assert.True(t, src.Loop)
	assert.Equal(t, 25, src.Rate)

	sink, ok := cfg.Sink.Cfg.(*FFmpegSinkCfg)
	require.True(t, ok)
	assert.Contains(t, sink.Cmd, "rawvideo")

	assert.Equal(t, encdec.FrameCfg{
		Width:              1280,
		Height:             720,
		Format:             encdec.I420Frames,
		StrideAlign:        64,
		NumAllocatedFrames: 4,
	}, cfg.Frames)
	assert.Equal(t, -0.25, cfg.Filter.Brightness().Factor())
	assert.True(t, cfg.Filter.InPlace)
	require.NotNil(t, cfg.Api)
	assert.Equal(t, ":8000", cfg.Api.Bind)
	assert.True(t, cfg.Api.EnableSwagger)
	assert.False(t, cfg.Api.EnableProfiler)
	assert.Equal(t, "debug", cfg.LogLevel)

	assert.Contains(t, cfg.String(), "Brightness: -0.250")
}

func TestParseMinimalConfig(t *testing.T) {
	cfg, err := Parse(writeConfig(t, `
source:
  type: pattern
  pattern: solid
  fill: "#10203040"
  rate: 5
sink:
  type: discard
frames:
  width: 8
  height: 8
  format: RGBA
  num_allocated_frames: 2
`))
	require.NoError(t, err)
	assert.Nil(t, cfg.Api)
	assert.True(t, cfg.Filter.Brightness().IsNeutral())
	assert.IsType(t, &NullSinkCfg{}, cfg.Sink.Cfg)
}

func TestParseRejects(t *testing.T) {
	base := `
sink:
  type: stdout
frames:
  width: 8
  height: 8
  format: I420
  num_allocated_frames: 2
`
	tests := map[string]string{
		"out of range brightness": base + "source:\n  type: stdin\nfilter:\n  brightness: 1.5\n",
		"unknown source type":     base + "source:\n  type: v4l2\n",
		"missing source":          base,
		"pattern without rate":    base + "source:\n  type: pattern\n  pattern: ramp\n",
		"bad fill":                base + "source:\n  type: pattern\n  pattern: solid\n  fill: red\n  rate: 5\n",
		"ffmpeg without cmd":      base + "source:\n  type: ffmpeg_stdout\n",
		"loop without rate":       base + "source:\n  type: file\n  path: x.yuv\n  loop: true\n",
		"api without bind":        base + "source:\n  type: stdin\napi:\n  enable_profiler: true\n",
		"unknown format": `
source:
  type: stdin
sink:
  type: stdout
frames:
  width: 8
  height: 8
  format: p010le
  num_allocated_frames: 2
`,
		"single frame": `
source:
  type: stdin
sink:
  type: stdout
frames:
  width: 8
  height: 8
  format: I420
  num_allocated_frames: 1
`,
	}
	for name, body := range tests {
		_, err := Parse(writeConfig(t, body))
		assert.Error(t, err, name)
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cases := map[string]string{
		"-":              "-",
		"/srv/in.yuv":    "/srv/in.yuv",
		"in.yuv":         "/etc/lumafilter/in.yuv",
		"../clips/a.rgb": "/etc/clips/a.rgb",
		"~/a.rgb":        filepath.Join(home, "a.rgb"),
	}
	for in, want := range cases {
		got, err := resolvePath("/etc/lumafilter", in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	assert.True(t, CfgPath("-").IsStdio())
	assert.False(t, CfgPath("/dev/stdin").IsStdio())
}
