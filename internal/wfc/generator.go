package wfc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/terraingen/internal/logger"
)

// Options contains parameters for map generation
type Options struct {
	Width, Height int
	Seed          int64         // Base seed; attempt k uses Seed + k*1000
	Distribution  *Distribution // nil = DefaultDistribution
	Rules         RuleProvider  // nil = HardcodedRules
	MaxRetries    int           // Fresh grids to try before giving up
	MaxIterations int           // Per-attempt round limit, 0 = unbounded
}

// DefaultOptions returns reasonable defaults for a map
func DefaultOptions(width, height int, seed int64) Options {
	return Options{
		Width:      width,
		Height:     height,
		Seed:       seed,
		MaxRetries: 5,
	}
}

// Result represents the output of a successful generation
type Result struct {
	Grid        *Grid
	Seed        int64 // Seed of the attempt that succeeded
	Attempts    int
	Stats       Stats
	Elapsed     time.Duration
	Fingerprint string
}

// Generator retries Wave attempts with derived seeds until one succeeds
type Generator struct {
	opts Options
}

// NewGenerator validates the options and fills in defaults
func NewGenerator(opts Options) (*Generator, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: map size must be positive, got %dx%d", ErrInvalidArgument, opts.Width, opts.Height)
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 1
	}
	if opts.Distribution == nil {
		opts.Distribution = DefaultDistribution()
	}
	if opts.Rules == nil {
		opts.Rules = NewHardcodedRules()
	}
	return &Generator{opts: opts}, nil
}

// Generate creates a map
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	start := time.Now()
	var lastErr error

	for attempt := 0; attempt < g.opts.MaxRetries; attempt++ {
		seed := g.opts.Seed + int64(attempt*1000)

		grid, err := NewGrid(g.opts.Width, g.opts.Height, g.opts.Distribution)
		if err != nil {
			return nil, err
		}

		wave := NewWave(grid, g.opts.Rules, seed)
		wave.MaxIterations = g.opts.MaxIterations

		err = wave.GenerateContext(ctx)
		stats := wave.Stats()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			logger.Warning("Generation attempt failed",
				"attempt", attempt+1, "seed", seed, "error", err,
				"collapses", stats.Collapses, "backtracks", stats.Backtracks)
			lastErr = err
			continue
		}

		result := &Result{
			Grid:        grid,
			Seed:        seed,
			Attempts:    attempt + 1,
			Stats:       stats,
			Elapsed:     time.Since(start),
			Fingerprint: Fingerprint(grid),
		}
		logger.Info("Map generated",
			"width", grid.Width, "height", grid.Height, "seed", seed,
			"attempts", result.Attempts, "collapses", stats.Collapses,
			"backtracks", stats.Backtracks, "max_depth", stats.MaxDepth,
			"elapsed", result.Elapsed)
		return result, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrNoSolution, g.opts.MaxRetries, lastErr)
	}
	return nil, ErrNoSolution
}
