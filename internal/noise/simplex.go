package noise

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Simplex sums octaves of OpenSimplex noise (fractional Brownian motion).
type Simplex struct {
	Scale       float64
	Octaves     int
	Persistence float64 // Amplitude multiplier per octave
}

// NewSimplex returns 4 octaves at scale 0.05 with persistence 0.5.
func NewSimplex() *Simplex {
	return &Simplex{
		Scale:       0.05,
		Octaves:     4,
		Persistence: 0.5,
	}
}

func (s *Simplex) Generate(width, height int, seed int64) ([][]float64, error) {
	field, err := newField(width, height)
	if err != nil {
		return nil, err
	}

	n := opensimplex.NewNormalized(seed)
	for y := range field {
		for x := range field[y] {
			field[y][x] = clamp01(s.sample(n, float64(x), float64(y)))
		}
	}
	return field, nil
}

// sample returns the amplitude-weighted mean of the octaves, so the result
// keeps the [0,1) range of the normalized source.
func (s *Simplex) sample(n opensimplex.Noise, x, y float64) float64 {
	total := 0.0
	amplitude := 1.0
	frequency := s.Scale
	maxVal := 0.0

	for i := 0; i < s.Octaves; i++ {
		total += n.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= s.Persistence
		frequency *= 2
	}

	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}
