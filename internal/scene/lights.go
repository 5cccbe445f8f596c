package scene

import (
	"fmt"
	"strings"
)

// Shape selects the parabola a light string hangs on.
type Shape string

const (
	// ShapeSag hangs lowest at the center: f(t) = 4*depth*t*(1-t).
	ShapeSag Shape = "sag"
	// ShapeDip is lowest at both ends: f(t) = (2t-1)^2*depth.
	ShapeDip Shape = "dip"
)

// ParseShape maps a config value to a Shape.
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case ShapeSag, "":
		return ShapeSag, nil
	case ShapeDip:
		return ShapeDip, nil
	}
	return "", fmt.Errorf("unknown curve shape %q", s)
}

// Curve is a parabolic arc of the given depth, evaluated over t in [0, 1].
type Curve struct {
	Shape Shape
	Depth float64
}

// At returns the vertical offset at t.
func (c Curve) At(t float64) float64 {
	switch c.Shape {
	case ShapeDip:
		u := 2*t - 1
		return u * u * c.Depth
	default:
		return 4 * c.Depth * t * (1 - t)
	}
}

// DefaultPalette is the bulb color cycle.
var DefaultPalette = []string{"#ff4d4d", "#ffd24d", "#4dff88", "#4db8ff"}

// Light is one bulb on the string.
type Light struct {
	ID     int
	X      float64
	Offset float64
	Color  string
	Delay  float64
}

// GenerateLights lays count bulbs along curve, evenly spaced from X=0 to X=100.
// A single bulb sits at t=0.
func GenerateLights(count int, curve Curve, palette []string, delay Range, src Source) []Light {
	if count <= 0 {
		return []Light{}
	}
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if src == nil {
		src = DefaultSource
	}
	out := make([]Light, count)
	for i := range out {
		t := 0.0
		if count > 1 {
			t = float64(i) / float64(count-1)
		}
		out[i] = Light{
			ID:     i,
			X:      t * 100,
			Offset: curve.At(t),
			Color:  palette[i%len(palette)],
			Delay:  delay.Sample(src),
		}
	}
	return out
}

// Tiers picks a bulb count from viewport width: Narrow below Breakpoint,
// Wide at or above it.
type Tiers struct {
	Breakpoint int `yaml:"breakpoint"`
	Narrow     int `yaml:"narrow"`
	Wide       int `yaml:"wide"`
}

// DefaultTiers matches a tablet-width breakpoint.
func DefaultTiers() Tiers {
	return Tiers{Breakpoint: 768, Narrow: 16, Wide: 28}
}

// Count returns the bulb count for width.
func (t Tiers) Count(width int) int {
	if width < t.Breakpoint {
		return t.Narrow
	}
	return t.Wide
}

// Validate requires positive counts.
func (t Tiers) Validate() error {
	if t.Narrow < 1 || t.Wide < 1 {
		return fmt.Errorf("light counts must be positive, got narrow=%d wide=%d", t.Narrow, t.Wide)
	}
	if t.Breakpoint < 0 {
		return fmt.Errorf("breakpoint %d is negative", t.Breakpoint)
	}
	return nil
}
