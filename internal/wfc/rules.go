package wfc

import (
	"fmt"
	"slices"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
)

// RuleProvider decides which terrain types may sit next to each other and
// how strongly a type prefers a given neighbor.
type RuleProvider interface {
	// CanBeAdjacent returns true if t2 may neighbor t1
	CanBeAdjacent(t1, t2 terrain.Type) bool
	// ValidNeighbors returns every type that may neighbor t
	ValidNeighbors(t terrain.Type) []terrain.Type
	// AdjacencyWeight is the preference multiplier for t next to neighbor.
	// 1.0 is neutral.
	AdjacencyWeight(t, neighbor terrain.Type) float64
	// CanBeAdjacentWithContext is CanBeAdjacent with knowledge of the
	// types already adjacent to t2.
	CanBeAdjacentWithContext(t1, t2 terrain.Type, adjacentToT2 []terrain.Type) bool
}

type typePair struct {
	t, neighbor terrain.Type
}

// HardcodedRules is the realistic terrain rule set:
//
//	grass    -> grass, beach, mountain
//	mountain -> grass, mountain
//	beach    -> beach, grass, water
//	water    -> water, beach
//
// Same-type neighbors are strongly preferred so terrain clusters.
type HardcodedRules struct {
	adjacency map[terrain.Type]Domain
	weights   map[typePair]float64
}

// NewHardcodedRules builds the adjacency and weight tables.
func NewHardcodedRules() *HardcodedRules {
	r := &HardcodedRules{
		adjacency: map[terrain.Type]Domain{
			terrain.Grass:    DomainOf(terrain.Grass, terrain.Beach, terrain.Mountain),
			terrain.Mountain: DomainOf(terrain.Grass, terrain.Mountain),
			terrain.Beach:    DomainOf(terrain.Beach, terrain.Grass, terrain.Water),
			terrain.Water:    DomainOf(terrain.Water, terrain.Beach),
		},
		weights: make(map[typePair]float64),
	}

	// Same-type clustering
	r.weights[typePair{terrain.Grass, terrain.Grass}] = 3.0
	r.weights[typePair{terrain.Water, terrain.Water}] = 3.0
	r.weights[typePair{terrain.Mountain, terrain.Mountain}] = 3.0
	r.weights[typePair{terrain.Beach, terrain.Beach}] = 2.0

	// Foothills and shorelines
	r.weights[typePair{terrain.Grass, terrain.Mountain}] = 1.3
	r.weights[typePair{terrain.Grass, terrain.Beach}] = 1.2
	r.weights[typePair{terrain.Mountain, terrain.Grass}] = 1.2
	r.weights[typePair{terrain.Beach, terrain.Water}] = 1.5
	r.weights[typePair{terrain.Beach, terrain.Grass}] = 1.3
	r.weights[typePair{terrain.Water, terrain.Beach}] = 1.5

	return r
}

func (r *HardcodedRules) lookup(t terrain.Type) Domain {
	d, ok := r.adjacency[t]
	if !ok {
		panic(fmt.Sprintf("wfc: no adjacency rule for terrain type %d", int(t)))
	}
	return d
}

// CanBeAdjacent returns true if t2 may neighbor t1
func (r *HardcodedRules) CanBeAdjacent(t1, t2 terrain.Type) bool {
	return r.lookup(t1).Has(t2)
}

// ValidNeighbors returns every type that may neighbor t
func (r *HardcodedRules) ValidNeighbors(t terrain.Type) []terrain.Type {
	return r.lookup(t).Types()
}

// AdjacencyWeight returns the multiplier for t next to neighbor, 1.0 when unset
func (r *HardcodedRules) AdjacencyWeight(t, neighbor terrain.Type) float64 {
	if w, ok := r.weights[typePair{t, neighbor}]; ok {
		return w
	}
	return 1.0
}

// CanBeAdjacentWithContext additionally lets beach border water only when
// that water already borders grass, so beaches don't float in open water.
func (r *HardcodedRules) CanBeAdjacentWithContext(t1, t2 terrain.Type, adjacentToT2 []terrain.Type) bool {
	if !r.CanBeAdjacent(t1, t2) {
		return false
	}
	if t1 == terrain.Beach && t2 == terrain.Water {
		return slices.Contains(adjacentToT2, terrain.Grass)
	}
	return true
}

// PermissiveRules allows everything next to everything with no preferences.
// Useful as a clustering-free baseline.
type PermissiveRules struct{}

// NewPermissiveRules returns the accept-all rule set.
func NewPermissiveRules() *PermissiveRules {
	return &PermissiveRules{}
}

func (PermissiveRules) CanBeAdjacent(t1, t2 terrain.Type) bool { return true }

func (PermissiveRules) ValidNeighbors(t terrain.Type) []terrain.Type { return terrain.All() }

func (PermissiveRules) AdjacencyWeight(t, neighbor terrain.Type) float64 { return 1.0 }

func (PermissiveRules) CanBeAdjacentWithContext(t1, t2 terrain.Type, adjacentToT2 []terrain.Type) bool {
	return true
}

// RulesByName returns a built-in rule set ("hardcoded" or "permissive").
func RulesByName(name string) (RuleProvider, error) {
	switch name {
	case "", "hardcoded":
		return NewHardcodedRules(), nil
	case "permissive":
		return NewPermissiveRules(), nil
	}
	return nil, fmt.Errorf("%w: unknown rule set %q", ErrInvalidArgument, name)
}

// neighborFilter returns the domain of types permitted next to t.
func neighborFilter(rules RuleProvider, t terrain.Type) Domain {
	var d Domain
	for _, c := range terrain.All() {
		if rules.CanBeAdjacent(t, c) {
			d = d.Add(c)
		}
	}
	return d
}
