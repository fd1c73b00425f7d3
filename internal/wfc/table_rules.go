package wfc

import (
	"fmt"
	"os"
	"slices"

	"github.com/lawnchairsociety/terraingen/internal/terrain"
	"gopkg.in/yaml.v3"
)

// TableRulesFile is the YAML layout of a rules file.
//
//	adjacency:
//	  grass: [grass, beach]
//	  beach: [beach, grass]
//	  ...
//	weights:
//	  - {from: grass, to: grass, weight: 3.0}
//	context:
//	  - {from: beach, to: water, requires: grass}
type TableRulesFile struct {
	Adjacency map[string][]string `yaml:"adjacency"`
	Weights   []WeightRule        `yaml:"weights"`
	Context   []ContextRule       `yaml:"context"`
}

// WeightRule sets the preference multiplier for From next to To.
type WeightRule struct {
	From   string  `yaml:"from"`
	To     string  `yaml:"to"`
	Weight float64 `yaml:"weight"`
}

// ContextRule allows From next to To only when To already borders Requires.
type ContextRule struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Requires string `yaml:"requires"`
}

// TableRules is a rule provider read from configuration. Adjacency is taken
// as written; it is not made symmetric.
type TableRules struct {
	adjacency map[terrain.Type]Domain
	weights   map[typePair]float64
	context   map[typePair]terrain.Type
}

// LoadTableRules reads a YAML rules file.
func LoadTableRules(path string) (*TableRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseTableRules(data)
}

// ParseTableRules builds a TableRules from YAML.
func ParseTableRules(data []byte) (*TableRules, error) {
	var file TableRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: failed to parse rules: %v", ErrInvalidArgument, err)
	}
	return NewTableRules(file)
}

// NewTableRules validates the file contents. Every terrain type must have an
// adjacency entry and weights must be positive.
func NewTableRules(file TableRulesFile) (*TableRules, error) {
	r := &TableRules{
		adjacency: make(map[terrain.Type]Domain, terrain.Count),
		weights:   make(map[typePair]float64),
		context:   make(map[typePair]terrain.Type),
	}

	for name, neighbors := range file.Adjacency {
		t, err := parseRuleType(name)
		if err != nil {
			return nil, err
		}
		var d Domain
		for _, n := range neighbors {
			nt, err := parseRuleType(n)
			if err != nil {
				return nil, err
			}
			d = d.Add(nt)
		}
		r.adjacency[t] = d
	}
	for _, t := range terrain.All() {
		if _, ok := r.adjacency[t]; !ok {
			return nil, fmt.Errorf("%w: rules have no adjacency entry for %s", ErrInvalidArgument, t)
		}
	}

	for _, w := range file.Weights {
		from, err := parseRuleType(w.From)
		if err != nil {
			return nil, err
		}
		to, err := parseRuleType(w.To)
		if err != nil {
			return nil, err
		}
		if w.Weight <= 0 {
			return nil, fmt.Errorf("%w: weight for %s next to %s must be positive, got %v",
				ErrInvalidArgument, from, to, w.Weight)
		}
		r.weights[typePair{from, to}] = w.Weight
	}

	for _, c := range file.Context {
		from, err := parseRuleType(c.From)
		if err != nil {
			return nil, err
		}
		to, err := parseRuleType(c.To)
		if err != nil {
			return nil, err
		}
		req, err := parseRuleType(c.Requires)
		if err != nil {
			return nil, err
		}
		r.context[typePair{from, to}] = req
	}

	return r, nil
}

func parseRuleType(name string) (terrain.Type, error) {
	t, err := terrain.Parse(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return t, nil
}

func (r *TableRules) lookup(t terrain.Type) Domain {
	d, ok := r.adjacency[t]
	if !ok {
		panic(fmt.Sprintf("wfc: no adjacency rule for terrain type %d", int(t)))
	}
	return d
}

func (r *TableRules) CanBeAdjacent(t1, t2 terrain.Type) bool {
	return r.lookup(t1).Has(t2)
}

func (r *TableRules) ValidNeighbors(t terrain.Type) []terrain.Type {
	return r.lookup(t).Types()
}

func (r *TableRules) AdjacencyWeight(t, neighbor terrain.Type) float64 {
	if w, ok := r.weights[typePair{t, neighbor}]; ok {
		return w
	}
	return 1.0
}

func (r *TableRules) CanBeAdjacentWithContext(t1, t2 terrain.Type, adjacentToT2 []terrain.Type) bool {
	if !r.CanBeAdjacent(t1, t2) {
		return false
	}
	if req, ok := r.context[typePair{t1, t2}]; ok {
		return slices.Contains(adjacentToT2, req)
	}
	return true
}
