// Package aspect maps video aspect ratios to target pixel resolutions and
// decides whether an encoded rendition is close enough to a target.
package aspect

import (
	"fmt"
	"strings"
)

// Aspect is the requested output aspect ratio.
type Aspect string

const (
	Portrait  Aspect = "9:16"
	Landscape Aspect = "16:9"
	Square    Aspect = "1:1"
)

// DefaultTolerance is the per-dimension slack (pixels) accepted by Matches.
// Providers encode to fixed ladders that rarely hit the exact target.
const DefaultTolerance = 10

// Target is a width x height in pixels.
type Target struct {
	Width  int
	Height int
}

func (t Target) String() string { return fmt.Sprintf("%dx%d", t.Width, t.Height) }

// Parse accepts "portrait", "landscape", "square" or the ratio forms "9:16", "16:9", "1:1".
func Parse(s string) (Aspect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "portrait", "9:16":
		return Portrait, nil
	case "landscape", "16:9":
		return Landscape, nil
	case "square", "1:1":
		return Square, nil
	}
	return "", fmt.Errorf("aspect: unknown value %q", s)
}

// Resolution returns the target resolution for a. Unknown values map to portrait.
func Resolution(a Aspect) Target {
	switch a {
	case Landscape:
		return Target{Width: 1920, Height: 1080}
	case Square:
		return Target{Width: 1080, Height: 1080}
	default:
		return Target{Width: 1080, Height: 1920}
	}
}

// Orientation is the label search providers understand.
func Orientation(a Aspect) string {
	switch a {
	case Landscape:
		return "landscape"
	case Square:
		return "square"
	default:
		return "portrait"
	}
}

// Matches reports whether w x h is within tolerance pixels of target on both axes (inclusive).
func Matches(w, h int, target Target, tolerance int) bool {
	return within(w, target.Width, tolerance) && within(h, target.Height, tolerance)
}

func within(v, want, tolerance int) bool {
	d := v - want
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}
