package wfc

import (
	"fmt"
	"math"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
)

// distributionTolerance is how far the probabilities may stray from 1.0.
const distributionTolerance = 1e-4

// Distribution maps each terrain type to its baseline probability weight.
// It is immutable once constructed.
type Distribution struct {
	probabilities map[terrain.Type]float64
}

// NewDistribution validates and copies the given probabilities. It requires
// exactly one entry per terrain type, each in [0,1], summing to 1.0.
func NewDistribution(probabilities map[terrain.Type]float64) (*Distribution, error) {
	if len(probabilities) != terrain.Count {
		return nil, fmt.Errorf("%w: distribution must contain exactly %d terrain types, got %d",
			ErrInvalidArgument, terrain.Count, len(probabilities))
	}

	sum := 0.0
	for _, t := range terrain.All() {
		p, ok := probabilities[t]
		if !ok {
			return nil, fmt.Errorf("%w: distribution is missing %s", ErrInvalidArgument, t)
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, fmt.Errorf("%w: probability for %s must be between 0 and 1, got %v",
				ErrInvalidArgument, t, p)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > distributionTolerance {
		return nil, fmt.Errorf("%w: probabilities must sum to 1.0, but sum to %v", ErrInvalidArgument, sum)
	}

	copied := make(map[terrain.Type]float64, len(probabilities))
	for t, p := range probabilities {
		copied[t] = p
	}
	return &Distribution{probabilities: copied}, nil
}

// DistributionFromNames builds a distribution keyed by terrain names, as
// found in config files.
func DistributionFromNames(weights map[string]float64) (*Distribution, error) {
	probabilities := make(map[terrain.Type]float64, len(weights))
	for name, p := range weights {
		t, err := terrain.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		if _, dup := probabilities[t]; dup {
			return nil, fmt.Errorf("%w: duplicate entry for %s", ErrInvalidArgument, t)
		}
		probabilities[t] = p
	}
	return NewDistribution(probabilities)
}

// DefaultDistribution favors grass: Grass 50%, Water 25%, Mountain 15%, Beach 10%.
func DefaultDistribution() *Distribution {
	return mustDistribution(map[terrain.Type]float64{
		terrain.Grass:    0.50,
		terrain.Water:    0.25,
		terrain.Mountain: 0.15,
		terrain.Beach:    0.10,
	})
}

// UniformDistribution gives every terrain type the same weight.
func UniformDistribution() *Distribution {
	return mustDistribution(map[terrain.Type]float64{
		terrain.Grass:    0.25,
		terrain.Water:    0.25,
		terrain.Mountain: 0.25,
		terrain.Beach:    0.25,
	})
}

// DistributionByName returns one of the canonical distributions.
func DistributionByName(name string) (*Distribution, error) {
	switch name {
	case "", "default":
		return DefaultDistribution(), nil
	case "uniform":
		return UniformDistribution(), nil
	}
	return nil, fmt.Errorf("%w: unknown distribution %q", ErrInvalidArgument, name)
}

func mustDistribution(p map[terrain.Type]float64) *Distribution {
	d, err := NewDistribution(p)
	if err != nil {
		panic(err)
	}
	return d
}

// Probability returns the weight for t, or 0.0 if t has no entry.
func (d *Distribution) Probability(t terrain.Type) float64 {
	if p, ok := d.probabilities[t]; ok {
		return p
	}
	return 0.0
}

// Probabilities returns a copy of the underlying table.
func (d *Distribution) Probabilities() map[terrain.Type]float64 {
	out := make(map[terrain.Type]float64, len(d.probabilities))
	for t, p := range d.probabilities {
		out[t] = p
	}
	return out
}

// weights builds a fresh per-tile weight table.
func (d *Distribution) weights() map[terrain.Type]float64 {
	w := make(map[terrain.Type]float64, terrain.Count)
	for _, t := range terrain.All() {
		w[t] = d.Probability(t)
	}
	return w
}
