package utils

import (
	"fmt"
	"image/color"
	"regexp"
)

var colourPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{8}$`)

// ColourParse reads a "#rrggbbaa" hex colour.
func ColourParse(s string) (color.RGBA, error) {
	var c color.RGBA
	if !colourPattern.MatchString(s) {
		return c, fmt.Errorf("%q is not a #rrggbbaa colour", s)
	}
	if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
		return c, fmt.Errorf("could not parse colour %q: %w", s, err)
	}
	return c, nil
}
