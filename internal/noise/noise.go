// Package noise builds terrain maps from coherent noise instead of
// constraint solving. The field is sampled per cell and cut into bands.
package noise

import (
	"errors"
	"fmt"
	"math"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
)

var (
	ErrValueOutOfRange   = errors.New("noise: value must be between 0.0 and 1.0")
	ErrInvalidDimensions = errors.New("noise: width and height must be positive")
	ErrUnknownGenerator  = errors.New("noise: unknown generator")
)

// Generator produces a height field indexed [y][x] with values in [0,1].
type Generator interface {
	Generate(width, height int, seed int64) ([][]float64, error)
}

// ByName returns a generator with default parameters.
func ByName(name string) (Generator, error) {
	switch name {
	case "perlin":
		return NewPerlin(), nil
	case "simplex":
		return NewSimplex(), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownGenerator, name)
}

// Band upper bounds. The last band includes 1.0.
const (
	waterLevel = 0.25
	beachLevel = 0.50
	grassLevel = 0.75
)

// MapValue converts a noise sample to a terrain type:
// [0,.25) water, [.25,.5) beach, [.5,.75) grass, [.75,1] mountain.
func MapValue(v float64) (terrain.Type, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return 0, fmt.Errorf("%w, got %v", ErrValueOutOfRange, v)
	}
	switch {
	case v < waterLevel:
		return terrain.Water, nil
	case v < beachLevel:
		return terrain.Beach, nil
	case v < grassLevel:
		return terrain.Grass, nil
	default:
		return terrain.Mountain, nil
	}
}

// GenerateMap samples gen and maps every cell. Rows are indexed [y][x].
func GenerateMap(gen Generator, width, height int, seed int64) ([][]terrain.Type, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w, got %dx%d", ErrInvalidDimensions, width, height)
	}

	field, err := gen.Generate(width, height, seed)
	if err != nil {
		return nil, err
	}
	if len(field) != height {
		return nil, fmt.Errorf("noise: generator returned %d rows, want %d", len(field), height)
	}

	rows := make([][]terrain.Type, height)
	for y := range field {
		if len(field[y]) != width {
			return nil, fmt.Errorf("noise: generator returned %d columns in row %d, want %d", len(field[y]), y, width)
		}
		rows[y] = make([]terrain.Type, width)
		for x, v := range field[y] {
			t, err := MapValue(v)
			if err != nil {
				return nil, fmt.Errorf("cell (%d, %d): %w", x, y, err)
			}
			rows[y][x] = t
		}
	}
	return rows, nil
}

func newField(width, height int) ([][]float64, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w, got %dx%d", ErrInvalidDimensions, width, height)
	}
	field := make([][]float64, height)
	for y := range field {
		field[y] = make([]float64, width)
	}
	return field, nil
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
