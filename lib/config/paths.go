package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	yaml "github.com/goccy/go-yaml"
)

// CfgPath is a file path from the config. "-" stands for stdin or stdout
// and is kept as is; "~/" is expanded to the home directory; other relative
// paths are taken relative to the config file.
type CfgPath string

// UnmarshalBase is the directory relative paths are resolved against. Parse
// sets it to the directory of the config file being decoded.
var UnmarshalBase string

func (c *CfgPath) UnmarshalYAML(b []byte) error {
	var raw string
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return err
	}
	path, err := resolvePath(UnmarshalBase, raw)
	if err != nil {
		return err
	}
	*c = CfgPath(path)
	return nil
}

func (c CfgPath) IsStdio() bool {
	return c == "-"
}

func resolvePath(base, path string) (string, error) {
	switch {
	case path == "" || path == "-" || filepath.IsAbs(path):
		return path, nil
	case path == "~" || strings.HasPrefix(path, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot expand %s: %w", path, err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	default:
		return filepath.Join(base, path), nil
	}
}
