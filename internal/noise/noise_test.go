package noise

import (
	"errors"
	"math"
	"testing"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
)

func TestMapValue(t *testing.T) {
	tests := []struct {
		value    float64
		expected terrain.Type
	}{
		{0.0, terrain.Water},
		{0.1, terrain.Water},
		{0.2499, terrain.Water},
		{0.25, terrain.Beach},
		{0.4999, terrain.Beach},
		{0.5, terrain.Grass},
		{0.7499, terrain.Grass},
		{0.75, terrain.Mountain},
		{1.0, terrain.Mountain},
	}

	for _, tt := range tests {
		got, err := MapValue(tt.value)
		if err != nil {
			t.Errorf("MapValue(%v) returned error: %v", tt.value, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("MapValue(%v) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

func TestMapValueOutOfRange(t *testing.T) {
	for _, v := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		if _, err := MapValue(v); !errors.Is(err, ErrValueOutOfRange) {
			t.Errorf("MapValue(%v) error = %v, want ErrValueOutOfRange", v, err)
		}
	}
}

func TestGeneratorsRangeAndShape(t *testing.T) {
	gens := map[string]Generator{
		"perlin":  NewPerlin(),
		"simplex": NewSimplex(),
	}

	for name, gen := range gens {
		t.Run(name, func(t *testing.T) {
			field, err := gen.Generate(30, 20, 42)
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if len(field) != 20 {
				t.Fatalf("field has %d rows, want 20", len(field))
			}
			for y, row := range field {
				if len(row) != 30 {
					t.Fatalf("row %d has %d columns, want 30", y, len(row))
				}
				for x, v := range row {
					if v < 0 || v > 1 {
						t.Errorf("field[%d][%d] = %v, outside [0,1]", y, x, v)
					}
				}
			}
		})
	}
}

func TestGeneratorsDeterministic(t *testing.T) {
	for _, name := range []string{"perlin", "simplex"} {
		gen, err := ByName(name)
		if err != nil {
			t.Fatalf("ByName(%q) failed: %v", name, err)
		}

		a, _ := gen.Generate(16, 16, 7)
		b, _ := gen.Generate(16, 16, 7)
		for y := range a {
			for x := range a[y] {
				if a[y][x] != b[y][x] {
					t.Fatalf("%s: field[%d][%d] differs between runs: %v vs %v", name, y, x, a[y][x], b[y][x])
				}
			}
		}
	}
}

func TestSimplexSeedsDiffer(t *testing.T) {
	gen := NewSimplex()
	a, _ := gen.Generate(16, 16, 1)
	b, _ := gen.Generate(16, 16, 2)

	for y := range a {
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				return
			}
		}
	}
	t.Error("seeds 1 and 2 produced identical fields")
}

func TestGenerateInvalidDimensions(t *testing.T) {
	tests := []struct{ w, h int }{{0, 10}, {10, 0}, {-3, 5}}

	for _, tt := range tests {
		if _, err := GenerateMap(NewPerlin(), tt.w, tt.h, 1); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("GenerateMap(%d, %d) error = %v, want ErrInvalidDimensions", tt.w, tt.h, err)
		}
		if _, err := NewSimplex().Generate(tt.w, tt.h, 1); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("Simplex.Generate(%d, %d) error = %v, want ErrInvalidDimensions", tt.w, tt.h, err)
		}
	}
}

// constantGenerator fills every cell with the same value.
type constantGenerator float64

func (c constantGenerator) Generate(width, height int, seed int64) ([][]float64, error) {
	field, err := newField(width, height)
	if err != nil {
		return nil, err
	}
	for y := range field {
		for x := range field[y] {
			field[y][x] = float64(c)
		}
	}
	return field, nil
}

func TestGenerateMap(t *testing.T) {
	rows, err := GenerateMap(constantGenerator(0.6), 5, 3, 0)
	if err != nil {
		t.Fatalf("GenerateMap failed: %v", err)
	}
	if len(rows) != 3 || len(rows[0]) != 5 {
		t.Fatalf("map size = %dx%d, want 5x3", len(rows[0]), len(rows))
	}
	for y := range rows {
		for x := range rows[y] {
			if rows[y][x] != terrain.Grass {
				t.Errorf("rows[%d][%d] = %v, want grass", y, x, rows[y][x])
			}
		}
	}

	if _, err := GenerateMap(constantGenerator(1.5), 2, 2, 0); !errors.Is(err, ErrValueOutOfRange) {
		t.Errorf("GenerateMap with out-of-range field error = %v, want ErrValueOutOfRange", err)
	}
}

func TestGenerateMapFromNoise(t *testing.T) {
	rows, err := GenerateMap(NewSimplex(), 40, 40, 12345)
	if err != nil {
		t.Fatalf("GenerateMap failed: %v", err)
	}
	for y := range rows {
		for x := range rows[y] {
			if !rows[y][x].Valid() {
				t.Errorf("rows[%d][%d] = %d, not a terrain type", y, x, rows[y][x])
			}
		}
	}
}

func TestByNameUnknown(t *testing.T) {
	if _, err := ByName("worley"); !errors.Is(err, ErrUnknownGenerator) {
		t.Errorf("ByName(worley) error = %v, want ErrUnknownGenerator", err)
	}
}
