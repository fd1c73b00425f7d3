package wfc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
)

var (
	ErrInvalidArgument = errors.New("wfc: invalid argument")
	ErrOutOfRange      = errors.New("wfc: coordinates out of range")
	ErrExhausted       = errors.New("wfc: contradiction with no state left to backtrack to")
	ErrMaxIterations   = errors.New("wfc: exceeded maximum iterations")
	ErrNoSolution      = errors.New("wfc: failed to find valid solution")

	// errContradiction never leaves the package; Wave resolves it by
	// backtracking or reports ErrExhausted.
	errContradiction = errors.New("wfc: contradiction - no valid types for tile")
)

// Stats describes the work done by one Generate call.
type Stats struct {
	Iterations int // select/propagate rounds
	Collapses  int // tiles resolved, including ones later undone
	Backtracks int // snapshots popped after a contradiction
	MaxDepth   int // deepest backtrack stack seen
}

// frame is one collapse decision: the grid as it was before the decision,
// the tile that was resolved and the type it got.
type frame struct {
	state  []cellState
	x, y   int
	chosen terrain.Type
}

// Wave runs Wave Function Collapse over a grid.
//
// Every collapse pushes an O(cells) snapshot, so the backtrack stack costs
// O(cells^2) memory in the worst case. The stack is not bounded.
type Wave struct {
	// MaxIterations stops GenerateContext with ErrMaxIterations after that
	// many rounds. Zero means no limit.
	MaxIterations int

	grid    *Grid
	rules   RuleProvider
	seed    int64
	rng     *rand.Rand
	filters [terrain.Count]Domain
	stack   []frame
	stats   Stats
}

// NewWave binds a grid, a rule set and a seed. A nil rule set means
// HardcodedRules.
func NewWave(grid *Grid, rules RuleProvider, seed int64) *Wave {
	if rules == nil {
		rules = NewHardcodedRules()
	}
	w := &Wave{
		grid:  grid,
		rules: rules,
		seed:  seed,
		rng:   rand.New(rand.NewSource(seed)),
	}
	for _, t := range terrain.All() {
		w.filters[t] = neighborFilter(rules, t)
	}
	return w
}

// Grid returns the grid the wave mutates.
func (w *Wave) Grid() *Grid { return w.grid }

// Seed returns the seed the wave was built with.
func (w *Wave) Seed() int64 { return w.seed }

// Stats returns counters from the last Generate call.
func (w *Wave) Stats() Stats { return w.stats }

// Generate collapses the whole grid. It returns false only when a
// contradiction remains after every earlier decision has been undone.
func (w *Wave) Generate() bool {
	return w.GenerateContext(context.Background()) == nil
}

// GenerateContext is Generate with a cancellation check before every round.
// It returns nil on success, ErrExhausted when backtracking runs out,
// ErrMaxIterations, or the context's error.
func (w *Wave) GenerateContext(ctx context.Context) error {
	w.stack = w.stack[:0]
	w.stats = Stats{}

	for !w.grid.IsFullyCollapsed() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if w.MaxIterations > 0 && w.stats.Iterations >= w.MaxIterations {
			return fmt.Errorf("%w: %d", ErrMaxIterations, w.MaxIterations)
		}
		w.stats.Iterations++

		err := w.observeAndCollapse()
		if err == nil {
			err = w.propagate()
		}
		if err != nil && !w.backtrack() {
			return ErrExhausted
		}
	}
	return nil
}

// observeAndCollapse picks the lowest-entropy tile, saves the grid and
// resolves the tile to a weighted random type.
func (w *Wave) observeAndCollapse() error {
	tile, err := w.selectTile()
	if err != nil {
		return err
	}

	w.stack = append(w.stack, frame{state: w.grid.snapshot(), x: tile.X, y: tile.Y})
	if len(w.stack) > w.stats.MaxDepth {
		w.stats.MaxDepth = len(w.stack)
	}

	chosen := w.selectType(tile)
	w.stack[len(w.stack)-1].chosen = chosen
	tile.Collapse(chosen)
	w.stats.Collapses++
	return nil
}

// selectTile returns one of the unresolved tiles with the fewest candidates,
// breaking ties with the wave's RNG.
func (w *Wave) selectTile() (*Tile, error) {
	minEntropy := -1
	var candidates []*Tile
	for t := range w.grid.UncollapsedTiles() {
		e := t.Entropy()
		switch {
		case minEntropy < 0 || e < minEntropy:
			minEntropy = e
			candidates = append(candidates[:0], t)
		case e == minEntropy:
			candidates = append(candidates, t)
		}
	}

	if len(candidates) == 0 || minEntropy == 0 {
		return nil, errContradiction
	}
	return candidates[w.rng.Intn(len(candidates))], nil
}

// selectType draws a type from the tile's domain, weighting each candidate by
// its frequency weight times its affinity to the resolved neighbors.
func (w *Wave) selectType(tile *Tile) terrain.Type {
	neighbors := w.grid.CollapsedNeighbors(tile)
	types := tile.Domain().Types()

	weights := make([]float64, len(types))
	total := 0.0
	for i, t := range types {
		wt := tile.Weight(t) * tile.NeighborAffinityWeight(t, neighbors, w.rules)
		if wt < 0 {
			wt = 0
		}
		weights[i] = wt
		total += wt
	}

	r := w.rng.Float64()
	if total <= 0 {
		// Nothing carries weight; fall back to a uniform pick.
		return types[int(r*float64(len(types)))]
	}

	r *= total
	cumulative := 0.0
	last := types[0]
	for i, t := range types {
		if weights[i] == 0 {
			continue
		}
		cumulative += weights[i]
		last = t
		if r < cumulative {
			return t
		}
	}
	return last
}

// propagate removes, from every unresolved neighbor of a resolved tile, the
// types the resolved tile does not permit next to it.
func (w *Wave) propagate() error {
	queue := make([]*Tile, 0, len(w.grid.tiles))
	for t := range w.grid.AllTiles() {
		if t.IsCollapsed() {
			queue = append(queue, t)
		}
	}

	for len(queue) > 0 {
		tile := queue[0]
		queue = queue[1:]

		tt, ok := tile.Type()
		if !ok {
			continue
		}
		allowed := w.filters[tt]

		for _, n := range w.grid.Neighbors(tile) {
			if n.IsCollapsed() {
				continue
			}
			before := n.Domain()
			after := before.Intersect(allowed)
			if after.Empty() {
				return errContradiction
			}
			if after != before {
				n.domain = after
				queue = append(queue, n)
			}
		}
	}
	return nil
}

// backtrack restores the grid to the state before the most recent decision
// and rules out the type that decision picked. It returns false when there
// is no decision left to undo.
func (w *Wave) backtrack() bool {
	if len(w.stack) == 0 {
		return false
	}

	f := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.grid.restore(f.state)
	w.grid.tiles[w.grid.index(f.x, f.y)].RemovePossibleType(f.chosen)
	w.stats.Backtracks++
	return true
}
