// Package config loads terraingen settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lawnchairsociety/terraingen/internal/database"
	"github.com/lawnchairsociety/terraingen/internal/logger"
	"github.com/lawnchairsociety/terraingen/internal/wfc"
	"gopkg.in/yaml.v3"
)

// Strategies understood by the generator.
const (
	StrategyWFC     = "wfc"
	StrategyPerlin  = "perlin"
	StrategySimplex = "simplex"
)

// Config is the top-level configuration file.
type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Output     OutputConfig     `yaml:"output"`
	History    HistoryConfig    `yaml:"history"`
	Logging    logger.Config    `yaml:"logging"`
}

// GenerationConfig controls what map is produced.
type GenerationConfig struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"` // 0 means time-based

	// SeedPhrase, when set, replaces Seed with a hash of the phrase.
	SeedPhrase string `yaml:"seed_phrase"`

	// Strategy is wfc, perlin or simplex.
	Strategy string `yaml:"strategy"`

	// Rules is "hardcoded", "permissive" or a path to a YAML rules file.
	Rules string `yaml:"rules"`

	// Distribution names a preset (default, uniform). Weights, when present,
	// replace the preset and must cover every terrain type.
	Distribution string             `yaml:"distribution"`
	Weights      map[string]float64 `yaml:"weights"`

	MaxRetries    int           `yaml:"max_retries"`
	MaxIterations int           `yaml:"max_iterations"` // 0 = unbounded
	Timeout       time.Duration `yaml:"timeout"`        // 0 = none
}

// OutputConfig controls rendering.
type OutputConfig struct {
	// Mode is auto, color or ascii. Auto picks color on a terminal.
	Mode   string `yaml:"mode"`
	Legend bool   `yaml:"legend"`
	Stats  bool   `yaml:"stats"`
}

// HistoryConfig controls the run ledger.
type HistoryConfig struct {
	Enabled  bool            `yaml:"enabled"`
	Database database.Config `yaml:",inline"`
}

// DefaultConfig returns a Config for a 64x32 WFC map with stock rules.
func DefaultConfig() *Config {
	return &Config{
		Generation: GenerationConfig{
			Width:        64,
			Height:       32,
			Strategy:     StrategyWFC,
			Rules:        "hardcoded",
			Distribution: "default",
			MaxRetries:   5,
			Timeout:      30 * time.Second,
		},
		Output: OutputConfig{
			Mode:   "auto",
			Legend: true,
			Stats:  true,
		},
		History: HistoryConfig{
			Enabled:  false,
			Database: database.DefaultConfig("data/terraingen.db"),
		},
		Logging: logger.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file and applies environment
// overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return config, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return config, err
	}
	return config, nil
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("TERRAINGEN_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TERRAINGEN_SEED %q: %w", v, err)
		}
		c.Generation.Seed = seed
	}
	if v := os.Getenv("TERRAINGEN_WIDTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TERRAINGEN_WIDTH %q: %w", v, err)
		}
		c.Generation.Width = n
	}
	if v := os.Getenv("TERRAINGEN_HEIGHT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TERRAINGEN_HEIGHT %q: %w", v, err)
		}
		c.Generation.Height = n
	}
	if v := os.Getenv("TERRAINGEN_RULES"); v != "" {
		c.Generation.Rules = v
	}
	if v := os.Getenv("TERRAINGEN_STRATEGY"); v != "" {
		c.Generation.Strategy = strings.ToLower(v)
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_CONSOLE_FORMAT"); v != "" {
		c.Logging.ConsoleFormat = v
	}
	if v := os.Getenv("LOG_FILE_ENABLED"); v != "" {
		c.Logging.FileEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("LOG_FILE_PATH"); v != "" {
		c.Logging.FilePath = v
	}
	return nil
}

// Validate checks ranges and names. It does not open rules files.
func (c *Config) Validate() error {
	g := c.Generation
	if g.Width <= 0 || g.Height <= 0 {
		return fmt.Errorf("map size must be positive, got %dx%d", g.Width, g.Height)
	}
	switch g.Strategy {
	case StrategyWFC, StrategyPerlin, StrategySimplex:
	default:
		return fmt.Errorf("unknown strategy %q (want wfc, perlin or simplex)", g.Strategy)
	}
	if g.MaxRetries < 0 || g.MaxIterations < 0 || g.Timeout < 0 {
		return fmt.Errorf("max_retries, max_iterations and timeout must not be negative")
	}
	if _, err := g.DistributionValue(); err != nil {
		return err
	}

	switch c.Output.Mode {
	case "auto", "color", "ascii":
	default:
		return fmt.Errorf("unknown output mode %q (want auto, color or ascii)", c.Output.Mode)
	}

	if c.History.Enabled {
		if err := c.History.Database.Validate(); err != nil {
			return fmt.Errorf("history: %w", err)
		}
	}
	return nil
}

// ResolveSeed returns the seed to generate with. A phrase wins over a
// numeric seed; zero means "pick one from the clock".
func (g GenerationConfig) ResolveSeed(now func() time.Time) int64 {
	if g.SeedPhrase != "" {
		return wfc.SeedFromPhrase(g.SeedPhrase)
	}
	if g.Seed != 0 {
		return g.Seed
	}
	return now().UnixNano()
}

// DistributionValue builds the configured distribution.
func (g GenerationConfig) DistributionValue() (*wfc.Distribution, error) {
	if len(g.Weights) > 0 {
		return wfc.DistributionFromNames(g.Weights)
	}
	return wfc.DistributionByName(g.Distribution)
}

// RuleProvider returns a built-in rule set or loads a rules file.
func (g GenerationConfig) RuleProvider() (wfc.RuleProvider, error) {
	switch g.Rules {
	case "", "hardcoded", "permissive":
		return wfc.RulesByName(g.Rules)
	}
	return wfc.LoadTableRules(g.Rules)
}
