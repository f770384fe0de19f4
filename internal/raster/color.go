package raster

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidColor is returned when a hex color string cannot be parsed.
var ErrInvalidColor = errors.New("invalid hex color")

// Color is an RGB triple. Pixels written from a Color are always opaque.
type Color struct {
	R, G, B uint8
}

// Common colors.
var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
)

// ParseHex parses "#RRGGBB", "RRGGBB", "#RGB" or "RGB".
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustParseHex is ParseHex for compile-time constants; it panics on bad input.
func MustParseHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the color as "#RRGGBB".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// NRGBA returns the color with the given alpha.
func (c Color) NRGBA(a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

// Palette is the default coloring palette.
var Palette = []string{
	"#FFCD00", "#FF8C00", "#E63E62", "#9ACD32", "#00BFFF", "#FFFFFF",
	"#8B4513", "#000000", "#9370DB", "#20B2AA", "#FF69B4", "#CD853F",
	"#FF0000", "#00FF00", "#0000FF", "#FFFF00", "#00FFFF", "#FF00FF",
	"#C0C0C0", "#808080", "#800000", "#808000", "#008000", "#800080",
	"#008080", "#000080", "#FA8072", "#F0E68C", "#E6E6FA", "#DDA0DD",
	"#B0E0E6", "#FFDAB9", "#F5DEB3", "#D2691E", "#A0522D", "#4682B4",
	"#5F9EA0", "#7B68EE", "#6A5ACD", "#483D8B", "#2F4F4F", "#BC8F8F",
	"#F4A460", "#DAA520", "#B8860B", "#32CD32", "#228B22", "#006400",
	"#66CDAA", "#00CED1", "#1E90FF", "#4169E1", "#0000CD", "#191970",
	"#8A2BE2", "#9400D3", "#9932CC", "#8B008B", "#C71585", "#DB7093",
}

// DoodlePalette is the smaller set offered in blank canvas mode.
var DoodlePalette = []string{
	"#000000", "#dc2626", "#1e293b", "#ea580c", "#ca8a04",
	"#16a34a", "#2563eb", "#9333ea", "#db2777",
}
