package wfc

import (
	"context"
	"errors"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions(32, 16, 7)

	if opts.Width != 32 || opts.Height != 16 {
		t.Errorf("size = %dx%d, want 32x16", opts.Width, opts.Height)
	}
	if opts.Seed != 7 {
		t.Errorf("Seed = %d, want 7", opts.Seed)
	}
	if opts.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d, want 5", opts.MaxRetries)
	}
}

func TestNewGeneratorInvalidSize(t *testing.T) {
	if _, err := NewGenerator(DefaultOptions(0, 10, 1)); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NewGenerator(0x10) error = %v, want ErrInvalidArgument", err)
	}
}

func TestGeneratorGenerate(t *testing.T) {
	gen, err := NewGenerator(DefaultOptions(20, 15, 12345))
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	result, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if result.Grid.Width != 20 || result.Grid.Height != 15 {
		t.Errorf("grid size = %dx%d, want 20x15", result.Grid.Width, result.Grid.Height)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if result.Seed != 12345 {
		t.Errorf("Seed = %d, want 12345", result.Seed)
	}
	if result.Fingerprint != Fingerprint(result.Grid) {
		t.Error("Fingerprint does not match the returned grid")
	}
	assertRulesHold(t, result.Grid, NewHardcodedRules())
}

func TestGeneratorDeterministic(t *testing.T) {
	opts := DefaultOptions(16, 16, 42)

	gen1, _ := NewGenerator(opts)
	r1, err := gen1.Generate(context.Background())
	if err != nil {
		t.Fatalf("first Generate failed: %v", err)
	}
	gen2, _ := NewGenerator(opts)
	r2, err := gen2.Generate(context.Background())
	if err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	if r1.Fingerprint != r2.Fingerprint {
		t.Errorf("same seed produced fingerprints %s and %s", r1.Fingerprint, r2.Fingerprint)
	}
}

func TestGeneratorRetriesWithDerivedSeeds(t *testing.T) {
	opts := DefaultOptions(6, 6, 100)
	opts.MaxRetries = 3
	opts.MaxIterations = 2

	gen, _ := NewGenerator(opts)
	_, err := gen.Generate(context.Background())

	if !errors.Is(err, ErrNoSolution) {
		t.Errorf("Generate error = %v, want ErrNoSolution", err)
	}
	if !errors.Is(err, ErrMaxIterations) {
		t.Errorf("Generate error = %v, want it to wrap ErrMaxIterations", err)
	}
}

func TestGeneratorUnsatisfiableRules(t *testing.T) {
	opts := DefaultOptions(2, 2, 1)
	opts.Rules = forbidAllRules{}
	opts.MaxRetries = 2

	gen, _ := NewGenerator(opts)
	_, err := gen.Generate(context.Background())
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("Generate error = %v, want it to wrap ErrExhausted", err)
	}
}

func TestGeneratorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen, _ := NewGenerator(DefaultOptions(10, 10, 1))
	if _, err := gen.Generate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Generate error = %v, want context.Canceled", err)
	}
}

func TestGeneratorCustomDistribution(t *testing.T) {
	opts := DefaultOptions(12, 12, 9)
	opts.Distribution = UniformDistribution()
	opts.Rules = NewPermissiveRules()

	gen, _ := NewGenerator(opts)
	result, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if result.Stats.Backtracks != 0 {
		t.Errorf("permissive rules backtracked %d times, want 0", result.Stats.Backtracks)
	}
}
