package wfc

import (
	"context"
	"errors"
	"testing"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
)

// forbidAllRules permits nothing next to anything.
type forbidAllRules struct{}

func (forbidAllRules) CanBeAdjacent(t1, t2 terrain.Type) bool { return false }
func (forbidAllRules) ValidNeighbors(t terrain.Type) []terrain.Type { return nil }
func (forbidAllRules) AdjacencyWeight(t, neighbor terrain.Type) float64 { return 1.0 }
func (forbidAllRules) CanBeAdjacentWithContext(t1, t2 terrain.Type, _ []terrain.Type) bool {
	return false
}

// assertRulesHold fails t if any pair of orthogonal neighbors breaks rules.
func assertRulesHold(t *testing.T, grid *Grid, rules RuleProvider) {
	t.Helper()
	for tile := range grid.AllTiles() {
		tt, ok := tile.Type()
		if !ok {
			t.Errorf("tile (%d,%d) unresolved", tile.X, tile.Y)
			continue
		}
		for _, n := range grid.Neighbors(tile) {
			nt, _ := n.Type()
			if !rules.CanBeAdjacent(tt, nt) {
				t.Errorf("%v at (%d,%d) next to %v at (%d,%d)", tt, tile.X, tile.Y, nt, n.X, n.Y)
			}
		}
	}
}

func generateTypes(t *testing.T, width, height int, seed int64) [][]terrain.Type {
	t.Helper()
	grid, err := NewGrid(width, height, nil)
	if err != nil {
		t.Fatalf("NewGrid failed: %v", err)
	}
	if !NewWave(grid, nil, seed).Generate() {
		t.Fatalf("Generate(seed=%d) returned false", seed)
	}
	types, _ := grid.Types()
	return types
}

func equalTypes(a, b [][]terrain.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for y := range a {
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				return false
			}
		}
	}
	return true
}

func TestWaveGenerateDefault(t *testing.T) {
	grid, _ := NewGrid(8, 8, nil)
	wave := NewWave(grid, nil, 12345)

	if !wave.Generate() {
		t.Fatal("Generate returned false for 8x8 default map")
	}
	if !grid.IsFullyCollapsed() {
		t.Error("grid not fully collapsed after successful Generate")
	}
	assertRulesHold(t, grid, NewHardcodedRules())

	stats := wave.Stats()
	if stats.Collapses < 64 {
		t.Errorf("Stats.Collapses = %d, want >= 64", stats.Collapses)
	}
	if stats.Iterations < 1 || stats.MaxDepth < 1 {
		t.Errorf("Stats = %+v, want non-zero iterations and depth", stats)
	}
	if wave.Seed() != 12345 || wave.Grid() != grid {
		t.Error("Wave accessors do not return construction values")
	}
}

func TestWaveTerrainConstraints(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		types := generateTypes(t, 16, 12, seed)
		for y := range types {
			for x, tt := range types[y] {
				for _, dir := range AllDirections() {
					dx, dy := dir.Offset()
					nx, ny := x+dx, y+dy
					if ny < 0 || ny >= len(types) || nx < 0 || nx >= len(types[y]) {
						continue
					}
					nt := types[ny][nx]
					if tt == terrain.Mountain && (nt == terrain.Water || nt == terrain.Beach) {
						t.Errorf("seed %d: mountain at (%d,%d) next to %v", seed, x, y, nt)
					}
					if tt == terrain.Water && (nt == terrain.Grass || nt == terrain.Mountain) {
						t.Errorf("seed %d: water at (%d,%d) next to %v", seed, x, y, nt)
					}
				}
			}
		}
	}
}

func TestWaveDeterministic(t *testing.T) {
	first := generateTypes(t, 12, 12, 99)
	second := generateTypes(t, 12, 12, 99)

	if !equalTypes(first, second) {
		t.Error("same seed produced different maps")
	}
}

func TestWaveDifferentSeeds(t *testing.T) {
	base := generateTypes(t, 8, 8, 1)
	for seed := int64(2); seed <= 6; seed++ {
		if !equalTypes(base, generateTypes(t, 8, 8, seed)) {
			return
		}
	}
	t.Error("seeds 1 through 6 all produced the same map")
}

func TestWaveSingleTile(t *testing.T) {
	grid, _ := NewGrid(1, 1, nil)
	if !NewWave(grid, nil, 5).Generate() {
		t.Fatal("Generate returned false for 1x1 grid")
	}
	if !grid.IsFullyCollapsed() {
		t.Error("1x1 grid not collapsed")
	}

	// No neighbors means no constraint to violate
	grid, _ = NewGrid(1, 1, nil)
	if !NewWave(grid, forbidAllRules{}, 5).Generate() {
		t.Error("Generate returned false for 1x1 grid under forbid-all rules")
	}
}

func TestWaveUnsatisfiable(t *testing.T) {
	grid, _ := NewGrid(2, 2, nil)
	wave := NewWave(grid, forbidAllRules{}, 42)

	if wave.Generate() {
		t.Fatal("Generate returned true under forbid-all rules")
	}
	if err := NewWave(grid, forbidAllRules{}, 42).GenerateContext(context.Background()); !errors.Is(err, ErrExhausted) {
		t.Errorf("GenerateContext error = %v, want ErrExhausted", err)
	}
	if wave.Stats().Backtracks == 0 {
		t.Error("Stats.Backtracks = 0 after exhausting the search")
	}

	for tile := range grid.AllTiles() {
		tt, ok := tile.Type()
		if ok && tile.Domain() != DomainOf(tt) {
			t.Errorf("tile (%d,%d) collapsed to %v with domain %v", tile.X, tile.Y, tt, tile.Domain())
		}
	}
}

func TestWaveMaxIterations(t *testing.T) {
	grid, _ := NewGrid(8, 8, nil)
	wave := NewWave(grid, nil, 1)
	wave.MaxIterations = 3

	err := wave.GenerateContext(context.Background())
	if !errors.Is(err, ErrMaxIterations) {
		t.Errorf("GenerateContext error = %v, want ErrMaxIterations", err)
	}
	if wave.Stats().Iterations != 3 {
		t.Errorf("Stats.Iterations = %d, want 3", wave.Stats().Iterations)
	}
}

func TestWaveContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	grid, _ := NewGrid(8, 8, nil)
	err := NewWave(grid, nil, 1).GenerateContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("GenerateContext error = %v, want context.Canceled", err)
	}
}

func TestWavePropagationPrunesNeighbors(t *testing.T) {
	grid, _ := NewGrid(3, 1, nil)
	wave := NewWave(grid, nil, 1)

	middle, _ := grid.Tile(1, 0)
	middle.Collapse(terrain.Water)
	if err := wave.propagate(); err != nil {
		t.Fatalf("propagate failed: %v", err)
	}

	for _, x := range []int{0, 2} {
		tile, _ := grid.Tile(x, 0)
		if tile.Domain() != DomainOf(terrain.Water, terrain.Beach) {
			t.Errorf("tile (%d,0) domain = %v, want {water,beach}", x, tile.Domain())
		}
	}
}

func TestWavePropagationContradiction(t *testing.T) {
	grid, _ := NewGrid(2, 1, nil)
	wave := NewWave(grid, nil, 1)

	left, _ := grid.Tile(0, 0)
	left.Collapse(terrain.Water)
	right, _ := grid.Tile(1, 0)
	right.RemovePossibleType(terrain.Water)
	right.RemovePossibleType(terrain.Beach)

	if err := wave.propagate(); !errors.Is(err, errContradiction) {
		t.Errorf("propagate error = %v, want contradiction", err)
	}
	if right.Domain() != DomainOf(terrain.Grass, terrain.Mountain) {
		t.Errorf("contradiction mutated the neighbor domain: %v", right.Domain())
	}
}

func TestWaveBacktrackBansChoice(t *testing.T) {
	grid, _ := NewGrid(2, 2, nil)
	wave := NewWave(grid, nil, 3)

	if err := wave.observeAndCollapse(); err != nil {
		t.Fatalf("observeAndCollapse failed: %v", err)
	}
	f := wave.stack[len(wave.stack)-1]

	if !wave.backtrack() {
		t.Fatal("backtrack returned false with a frame on the stack")
	}
	tile, _ := grid.Tile(f.x, f.y)
	if tile.IsCollapsed() {
		t.Error("tile still collapsed after backtrack")
	}
	if tile.Domain().Has(f.chosen) {
		t.Errorf("domain %v still allows the undone choice %v", tile.Domain(), f.chosen)
	}
	if wave.backtrack() {
		t.Error("backtrack returned true on an empty stack")
	}
}

func TestSelectTypeZeroWeights(t *testing.T) {
	d, err := NewDistribution(map[terrain.Type]float64{
		terrain.Water: 1.0, terrain.Beach: 0, terrain.Grass: 0, terrain.Mountain: 0,
	})
	if err != nil {
		t.Fatalf("NewDistribution failed: %v", err)
	}
	grid, _ := NewGrid(1, 1, d)
	wave := NewWave(grid, nil, 8)

	tile, _ := grid.Tile(0, 0)
	for i := 0; i < 20; i++ {
		if got := wave.selectType(tile); got != terrain.Water {
			t.Fatalf("selectType = %v, want water as the only weighted type", got)
		}
	}

	tile.RemovePossibleType(terrain.Water)
	got := wave.selectType(tile)
	if got == terrain.Water || !tile.Domain().Has(got) {
		t.Errorf("selectType with all-zero weights = %v, want a member of %v", got, tile.Domain())
	}
}
