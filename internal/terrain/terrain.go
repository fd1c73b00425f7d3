// Package terrain defines the closed set of terrain types shared by the
// generators and the renderer.
package terrain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownType  = errors.New("terrain: unknown terrain type")
	ErrInvalidColor = errors.New("terrain: invalid color")
)

// Type is a terrain type. The declaration order is the canonical iteration
// order used for domain walks and cumulative weight sampling.
type Type int

const (
	Water Type = iota
	Beach
	Grass
	Mountain
)

// Count is the number of terrain types.
const Count = 4

// All returns every terrain type in canonical order.
func All() []Type {
	return []Type{Water, Beach, Grass, Mountain}
}

// Valid reports whether t is one of the four terrain types.
func (t Type) Valid() bool {
	return t >= Water && t <= Mountain
}

// String returns the lowercase name of the terrain type
func (t Type) String() string {
	switch t {
	case Water:
		return "water"
	case Beach:
		return "beach"
	case Grass:
		return "grass"
	case Mountain:
		return "mountain"
	default:
		return "unknown"
	}
}

// Parse converts a terrain name (case-insensitive) to a Type.
func Parse(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "water":
		return Water, nil
	case "beach":
		return Beach, nil
	case "grass":
		return Grass, nil
	case "mountain":
		return Mountain, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
}
