package terrain

import (
	"fmt"
	"strconv"
	"strings"
)

// Fixed display colors, one 6-digit RGB hex string per terrain type.
const (
	ColorWater    = "#0000FF"
	ColorBeach    = "#FFFF00"
	ColorGrass    = "#00AA00"
	ColorMountain = "#808080"
)

// RGB is a parsed 24-bit color.
type RGB struct {
	R, G, B uint8
}

// Color returns the hex color for a terrain type.
// Panics on an unknown type: callers only ever hold values from All().
func Color(t Type) string {
	switch t {
	case Water:
		return ColorWater
	case Beach:
		return ColorBeach
	case Grass:
		return ColorGrass
	case Mountain:
		return ColorMountain
	}
	panic(fmt.Sprintf("terrain: no color for type %d", int(t)))
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB".
func ParseHexColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q must have 6 hex digits", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// ColorRGB returns the parsed color of a terrain type.
func ColorRGB(t Type) RGB {
	c, err := ParseHexColor(Color(t))
	if err != nil {
		// The table above is fixed; a parse failure is a programming error.
		panic(err)
	}
	return c
}
