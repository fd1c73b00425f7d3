// terraingen generates 2D terrain maps with Wave Function Collapse or
// coherent noise and prints them to the terminal.
//
// Usage:
//
//	terraingen -width 64 -height 32 -seed 12345
//	terraingen -strategy simplex -mode ascii -output map.txt
//	terraingen -history -list-runs
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/lawnchairsociety/terraingen/internal/config"
	"github.com/lawnchairsociety/terraingen/internal/database"
	"github.com/lawnchairsociety/terraingen/internal/logger"
	"github.com/lawnchairsociety/terraingen/internal/noise"
	"github.com/lawnchairsociety/terraingen/internal/render"
	"github.com/lawnchairsociety/terraingen/internal/terrain"
	"github.com/lawnchairsociety/terraingen/internal/wfc"
	"github.com/mattn/go-isatty"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the command-line flags. Zero values mean "use the config".
type options struct {
	configPath   string
	width        int
	height       int
	seed         int64
	phrase       string
	strategy     string
	rules        string
	distribution string
	mode         string
	legend       bool
	history      bool
	dbPath       string
	listRuns     int
	outputFile   string
	set          map[string]bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("terraingen", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "terraingen.yaml", "Path to config file")
	fs.IntVar(&opts.width, "width", 0, "Map width in cells")
	fs.IntVar(&opts.height, "height", 0, "Map height in cells")
	fs.Int64Var(&opts.seed, "seed", 0, "Random seed (0 for time-based)")
	fs.StringVar(&opts.phrase, "phrase", "", "Derive the seed from a phrase")
	fs.StringVar(&opts.strategy, "strategy", "", "Generation strategy: wfc, perlin or simplex")
	fs.StringVar(&opts.rules, "rules", "", "Adjacency rules: hardcoded, permissive or a YAML file")
	fs.StringVar(&opts.distribution, "distribution", "", "Terrain distribution preset: default or uniform")
	fs.StringVar(&opts.mode, "mode", "", "Output mode: auto, color or ascii")
	fs.BoolVar(&opts.legend, "legend", true, "Show legend")
	fs.BoolVar(&opts.history, "history", false, "Record the run in the history database")
	fs.StringVar(&opts.dbPath, "db", "", "SQLite history database path")
	fs.IntVar(&opts.listRuns, "list-runs", 0, "List the N most recent runs and exit")
	fs.StringVar(&opts.outputFile, "output", "", "Output file (empty for stdout)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply copies explicitly set flags over the loaded config.
func (o *options) apply(cfg *config.Config) {
	g := &cfg.Generation
	if o.set["width"] {
		g.Width = o.width
	}
	if o.set["height"] {
		g.Height = o.height
	}
	if o.set["seed"] {
		g.Seed = o.seed
		g.SeedPhrase = ""
	}
	if o.set["phrase"] {
		g.SeedPhrase = o.phrase
	}
	if o.set["strategy"] {
		g.Strategy = strings.ToLower(o.strategy)
	}
	if o.set["rules"] {
		g.Rules = o.rules
	}
	if o.set["distribution"] {
		g.Distribution = o.distribution
		g.Weights = nil
	}
	if o.set["mode"] {
		cfg.Output.Mode = strings.ToLower(o.mode)
	}
	if o.set["legend"] {
		cfg.Output.Legend = o.legend
	}
	if o.set["history"] || o.set["list-runs"] {
		cfg.History.Enabled = o.history || o.listRuns > 0
	}
	if o.set["db"] {
		cfg.History.Database.Driver = string(database.DialectSQLite)
		cfg.History.Database.SQLitePath = o.dbPath
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Initialize(cfg.Logging)

	var db *database.Database
	if cfg.History.Enabled {
		db, err = database.Open(cfg.History.Database)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer db.Close()
	}

	if opts.listRuns > 0 {
		if db == nil {
			return fmt.Errorf("-list-runs requires history")
		}
		return listRuns(stdout, db, opts.listRuns)
	}

	out := stdout
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	renderer := &render.Renderer{
		Out:    out,
		Mode:   resolveMode(cfg.Output.Mode, out),
		Legend: cfg.Output.Legend,
	}

	if cfg.Generation.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Generation.Timeout)
		defer cancel()
	}

	seed := cfg.Generation.ResolveSeed(time.Now)
	if cfg.Generation.Seed == 0 && cfg.Generation.SeedPhrase == "" {
		logger.Info("Using time-based seed", "seed", seed)
	}

	record := &database.Run{
		Strategy:     cfg.Generation.Strategy,
		Distribution: distributionLabel(cfg.Generation),
		Width:        cfg.Generation.Width,
		Height:       cfg.Generation.Height,
		Seed:         seed,
	}

	start := time.Now()
	genErr := generate(ctx, cfg, seed, renderer, record)
	record.Duration = time.Since(start)
	record.Success = genErr == nil
	if genErr != nil {
		record.Error = genErr.Error()
	}

	if db != nil {
		if _, err := db.RecordRun(record); err != nil {
			logger.Warning("Failed to record run", "error", err)
		}
	}

	if genErr != nil {
		return genErr
	}
	if opts.outputFile != "" {
		fmt.Fprintf(stdout, "Map written to %s\n", opts.outputFile)
	}
	return nil
}

// generate produces and renders one map, filling in the run record.
func generate(ctx context.Context, cfg *config.Config, seed int64, r *render.Renderer, record *database.Run) error {
	g := cfg.Generation

	if g.Strategy != config.StrategyWFC {
		gen, err := noise.ByName(g.Strategy)
		if err != nil {
			return err
		}
		types, err := noise.GenerateMap(gen, g.Width, g.Height, seed)
		if err != nil {
			return fmt.Errorf("noise generation failed: %w", err)
		}
		record.Attempts = 1
		record.Fingerprint = wfc.FingerprintTypes(types)
		logger.Info("Map generated", "strategy", g.Strategy, "width", g.Width, "height", g.Height, "seed", seed)

		if cfg.Output.Stats {
			if err := r.RenderHeader(render.Header{Strategy: g.Strategy, Seed: seed, Fingerprint: record.Fingerprint}); err != nil {
				return err
			}
		}
		return r.RenderTypes(types)
	}

	dist, err := g.DistributionValue()
	if err != nil {
		return err
	}
	rules, err := g.RuleProvider()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	record.Rules = g.Rules

	opts := wfc.DefaultOptions(g.Width, g.Height, seed)
	opts.Distribution = dist
	opts.Rules = rules
	opts.MaxIterations = g.MaxIterations
	if g.MaxRetries > 0 {
		opts.MaxRetries = g.MaxRetries
	}

	gen, err := wfc.NewGenerator(opts)
	if err != nil {
		return err
	}
	result, err := gen.Generate(ctx)
	if err != nil {
		record.Attempts = opts.MaxRetries
		return err
	}

	record.Attempts = result.Attempts
	record.Iterations = result.Stats.Iterations
	record.Collapses = result.Stats.Collapses
	record.Backtracks = result.Stats.Backtracks
	record.MaxDepth = result.Stats.MaxDepth
	record.Fingerprint = result.Fingerprint

	if cfg.Output.Stats {
		err := r.RenderHeader(render.Header{
			Strategy:    g.Strategy,
			Seed:        result.Seed,
			Attempts:    result.Attempts,
			Backtracks:  result.Stats.Backtracks,
			Elapsed:     result.Elapsed,
			Fingerprint: result.Fingerprint,
		})
		if err != nil {
			return err
		}
	}
	return r.RenderGrid(result.Grid)
}

// resolveMode turns "auto" into color for terminals and ascii otherwise.
func resolveMode(mode string, out io.Writer) render.Mode {
	if m, err := render.ParseMode(mode); err == nil {
		return m
	}
	if f, ok := out.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return render.ModeColor
	}
	return render.ModeASCII
}

func distributionLabel(g config.GenerationConfig) string {
	if len(g.Weights) == 0 {
		return g.Distribution
	}
	var parts []string
	for _, t := range terrain.All() {
		if w, ok := g.Weights[t.String()]; ok {
			parts = append(parts, fmt.Sprintf("%s=%g", t, w))
		}
	}
	return strings.Join(parts, ",")
}

func listRuns(out io.Writer, db *database.Database, limit int) error {
	runs, err := db.RecentRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tWHEN\tSTRATEGY\tSIZE\tSEED\tOK\tATTEMPTS\tBACKTRACKS\tTIME\tFINGERPRINT")
	for _, r := range runs {
		fp := r.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%dx%d\t%d\t%t\t%d\t%d\t%s\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Strategy, r.Width, r.Height,
			r.Seed, r.Success, r.Attempts, r.Backtracks, r.Duration, fp)
	}
	return w.Flush()
}
