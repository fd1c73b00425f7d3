package noise

import (
	"github.com/aquilax/go-perlin"
)

// Perlin samples gradient noise on a lattice scaled by Scale.
type Perlin struct {
	Scale   float64 // Lattice units per cell
	Octaves int32
	Alpha   float64 // Amplitude divisor per octave
	Beta    float64 // Frequency multiplier per octave
}

// NewPerlin returns a single-octave generator at scale 0.1.
func NewPerlin() *Perlin {
	return &Perlin{
		Scale:   0.1,
		Octaves: 1,
		Alpha:   2,
		Beta:    2,
	}
}

// Generate fills a height x width field. The raw [-1,1] sample is shifted to
// [0,1] and clamped.
func (p *Perlin) Generate(width, height int, seed int64) ([][]float64, error) {
	field, err := newField(width, height)
	if err != nil {
		return nil, err
	}

	gen := perlin.NewPerlin(p.Alpha, p.Beta, p.Octaves, seed)
	for y := range field {
		for x := range field[y] {
			v := gen.Noise2D(float64(x)*p.Scale, float64(y)*p.Scale)
			field[y][x] = clamp01((v + 1) / 2)
		}
	}
	return field, nil
}
