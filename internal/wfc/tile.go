package wfc

import (
	"maps"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
)

// Direction represents a cardinal direction in the grid
type Direction int

const (
	West Direction = iota
	East
	North
	South
)

// String returns the string representation of a Direction
func (d Direction) String() string {
	switch d {
	case West:
		return "west"
	case East:
		return "east"
	case North:
		return "north"
	case South:
		return "south"
	default:
		return "unknown"
	}
}

// Opposite returns the opposite direction
func (d Direction) Opposite() Direction {
	switch d {
	case West:
		return East
	case East:
		return West
	case North:
		return South
	case South:
		return North
	default:
		return d
	}
}

// Offset returns the coordinate delta for one step in direction d.
func (d Direction) Offset() (dx, dy int) {
	switch d {
	case West:
		return -1, 0
	case East:
		return 1, 0
	case North:
		return 0, -1
	case South:
		return 0, 1
	}
	return 0, 0
}

// AllDirections returns the four cardinal directions in neighbor scan order
func AllDirections() []Direction {
	return []Direction{West, East, North, South}
}

// Tile is the per-cell state of a generation attempt.
type Tile struct {
	X, Y int

	typ       terrain.Type
	collapsed bool
	domain    Domain
	weights   map[terrain.Type]float64
}

// NewTile creates an unresolved tile whose weights come from d
// (the default distribution when d is nil).
func NewTile(x, y int, d *Distribution) *Tile {
	t := &Tile{X: x, Y: y}
	t.Reset(d)
	return t
}

// IsCollapsed reports whether the tile has a resolved type.
func (t *Tile) IsCollapsed() bool { return t.collapsed }

// Type returns the resolved type and whether there is one.
func (t *Tile) Type() (terrain.Type, bool) { return t.typ, t.collapsed }

// Domain returns the candidate types.
func (t *Tile) Domain() Domain { return t.domain }

// Entropy is the number of candidate types. Weights are not folded in.
func (t *Tile) Entropy() int { return t.domain.Len() }

// Weight returns the frequency weight of a type on this tile.
func (t *Tile) Weight(tt terrain.Type) float64 { return t.weights[tt] }

// Weights returns a copy of the tile's weight table.
func (t *Tile) Weights() map[terrain.Type]float64 { return maps.Clone(t.weights) }

// Collapse resolves the tile to tt. Calling it again overwrites the
// previous resolution.
func (t *Tile) Collapse(tt terrain.Type) {
	t.typ = tt
	t.collapsed = true
	t.domain = DomainOf(tt)
}

// RemovePossibleType drops tt from the domain; absent types are ignored.
func (t *Tile) RemovePossibleType(tt terrain.Type) {
	t.domain = t.domain.Remove(tt)
}

// Reset clears the resolution and restores the full domain and weights.
func (t *Tile) Reset(d *Distribution) {
	if d == nil {
		d = DefaultDistribution()
	}
	t.typ = 0
	t.collapsed = false
	t.domain = FullDomain
	t.weights = d.weights()
}

// NeighborAffinityWeight averages rules.AdjacencyWeight(candidate, n) over
// the resolved neighbors. With no neighbors the weight is neutral (1.0).
func (t *Tile) NeighborAffinityWeight(candidate terrain.Type, collapsedNeighbors []*Tile, rules RuleProvider) float64 {
	if len(collapsedNeighbors) == 0 {
		return 1.0
	}

	total := 0.0
	for _, n := range collapsedNeighbors {
		if nt, ok := n.Type(); ok {
			total += rules.AdjacencyWeight(candidate, nt)
		}
	}
	return total / float64(len(collapsedNeighbors))
}

// Clone returns a deep copy of the tile.
func (t *Tile) Clone() *Tile {
	c := *t
	c.weights = maps.Clone(t.weights)
	return &c
}

// cellState is the part of a tile that generation mutates.
type cellState struct {
	typ       uint8
	collapsed bool
	domain    Domain
}

func (t *Tile) state() cellState {
	return cellState{typ: uint8(t.typ), collapsed: t.collapsed, domain: t.domain}
}

func (t *Tile) setState(s cellState) {
	t.typ = terrain.Type(s.typ)
	t.collapsed = s.collapsed
	t.domain = s.domain
}
