package wfc

import (
	"fmt"
	"iter"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
)

// Grid is a fixed-size arena of tiles addressed by (x, y).
type Grid struct {
	Width, Height int

	distribution *Distribution
	tiles        []*Tile
}

// NewGrid allocates a width x height grid of unresolved tiles. A nil
// distribution means DefaultDistribution.
func NewGrid(width, height int, d *Distribution) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: grid size must be positive, got %dx%d", ErrInvalidArgument, width, height)
	}
	if d == nil {
		d = DefaultDistribution()
	}

	g := &Grid{
		Width:        width,
		Height:       height,
		distribution: d,
		tiles:        make([]*Tile, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.tiles[g.index(x, y)] = NewTile(x, y, d)
		}
	}
	return g, nil
}

// Distribution returns the distribution the grid initializes tiles with.
func (g *Grid) Distribution() *Distribution {
	return g.distribution
}

func (g *Grid) index(x, y int) int {
	return y*g.Width + x
}

// InBounds reports whether (x, y) addresses a cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Tile returns the tile at (x, y).
func (g *Grid) Tile(x, y int) (*Tile, error) {
	if !g.InBounds(x, y) {
		return nil, fmt.Errorf("%w: coordinates (%d, %d) outside %dx%d grid", ErrOutOfRange, x, y, g.Width, g.Height)
	}
	return g.tiles[g.index(x, y)], nil
}

// SetTile replaces the tile at (x, y).
func (g *Grid) SetTile(x, y int, t *Tile) error {
	if !g.InBounds(x, y) {
		return fmt.Errorf("%w: coordinates (%d, %d) outside %dx%d grid", ErrOutOfRange, x, y, g.Width, g.Height)
	}
	if t == nil {
		return fmt.Errorf("%w: nil tile at (%d, %d)", ErrInvalidArgument, x, y)
	}
	g.tiles[g.index(x, y)] = t
	return nil
}

// AllTiles yields every tile in row-major order.
func (g *Grid) AllTiles() iter.Seq[*Tile] {
	return func(yield func(*Tile) bool) {
		for _, t := range g.tiles {
			if !yield(t) {
				return
			}
		}
	}
}

// UncollapsedTiles yields the tiles without a resolved type, row-major.
func (g *Grid) UncollapsedTiles() iter.Seq[*Tile] {
	return func(yield func(*Tile) bool) {
		for t := range g.AllTiles() {
			if t.IsCollapsed() {
				continue
			}
			if !yield(t) {
				return
			}
		}
	}
}

// IsFullyCollapsed scans the whole grid for an unresolved tile.
func (g *Grid) IsFullyCollapsed() bool {
	for range g.UncollapsedTiles() {
		return false
	}
	return true
}

// Reset reinitializes every tile from the grid's distribution.
func (g *Grid) Reset() {
	for t := range g.AllTiles() {
		t.Reset(g.distribution)
	}
}

// Neighbors returns the in-bounds orthogonal neighbors of t, in
// AllDirections order.
func (g *Grid) Neighbors(t *Tile) []*Tile {
	neighbors := make([]*Tile, 0, 4)
	for _, dir := range AllDirections() {
		dx, dy := dir.Offset()
		nx, ny := t.X+dx, t.Y+dy
		if g.InBounds(nx, ny) {
			neighbors = append(neighbors, g.tiles[g.index(nx, ny)])
		}
	}
	return neighbors
}

// CollapsedNeighbors returns the resolved orthogonal neighbors of t.
func (g *Grid) CollapsedNeighbors(t *Tile) []*Tile {
	var out []*Tile
	for _, n := range g.Neighbors(t) {
		if n.IsCollapsed() {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy of the grid. The distribution is shared since
// it is immutable.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		Width:        g.Width,
		Height:       g.Height,
		distribution: g.distribution,
		tiles:        make([]*Tile, len(g.tiles)),
	}
	for i, t := range g.tiles {
		c.tiles[i] = t.Clone()
	}
	return c
}

// snapshot records the resolution and domain of every tile. Weights are
// left out: generation never changes them.
func (g *Grid) snapshot() []cellState {
	s := make([]cellState, len(g.tiles))
	for i, t := range g.tiles {
		s[i] = t.state()
	}
	return s
}

// restore overwrites the resolution and domain of every tile from s.
func (g *Grid) restore(s []cellState) {
	for i, t := range g.tiles {
		t.setState(s[i])
	}
}

// Types returns the resolved types as rows. The second result is false if
// any tile is unresolved; those cells hold Water.
func (g *Grid) Types() ([][]terrain.Type, bool) {
	complete := true
	rows := make([][]terrain.Type, g.Height)
	for y := 0; y < g.Height; y++ {
		rows[y] = make([]terrain.Type, g.Width)
		for x := 0; x < g.Width; x++ {
			tt, ok := g.tiles[g.index(x, y)].Type()
			if !ok {
				complete = false
			}
			rows[y][x] = tt
		}
	}
	return rows, complete
}

// Counts returns how many resolved tiles hold each type.
func (g *Grid) Counts() map[terrain.Type]int {
	counts := make(map[terrain.Type]int, terrain.Count)
	for t := range g.AllTiles() {
		if tt, ok := t.Type(); ok {
			counts[tt]++
		}
	}
	return counts
}
