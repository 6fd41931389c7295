// Package palette holds the RGB color type passed between pipeline stages.
package palette

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit-per-channel RGB value.
type Color struct {
	R, G, B uint8
}

// Fallback is used whenever a mood cannot be mapped onto a color.
var Fallback = Color{R: 0x80, G: 0x80, B: 0x80}

// ParseHex accepts "#rrggbb" in either case, surrounding whitespace ignored.
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if len(s) != 7 || s[0] != '#' || !isHexDigits(s[1:]) {
		return Color{}, fmt.Errorf("invalid hex color %q: want #rrggbb", s)
	}

	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}

	r, g, b := c.RGB255()
	return Color{R: r, G: g, B: b}, nil
}

// colorful.Hex scans with Sscanf, which tolerates stray characters.
func isHexDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// MustParseHex panics on malformed input; meant for constants and tests.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseHexOrFallback returns Fallback for anything ParseHex rejects.
func ParseHexOrFallback(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		return Fallback
	}
	return c
}

// FromChannels clamps each channel into 0..255.
func FromChannels(r, g, b int) Color {
	return Color{R: clamp(r), G: clamp(g), B: clamp(b)}
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	return c.Hex()
}

// Unit returns each channel scaled into [0, 1].
func (c Color) Unit() (r, g, b float64) {
	return float64(c.R) / 255.0, float64(c.G) / 255.0, float64(c.B) / 255.0
}

// NRGBA converts to an opaque image/color value for rendering.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Distance is the CIE Lab distance between two colors.
func (c Color) Distance(other Color) float64 {
	return c.colorful().DistanceLab(other.colorful())
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255.0, G: float64(c.G) / 255.0, B: float64(c.B) / 255.0}
}

func clamp(v int) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}
