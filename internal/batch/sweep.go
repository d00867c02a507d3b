// Package batch provides parameter sweeps: the cross-product of a parameter
// grid, run as fully independent model instances, with every collected row
// tagged by (configuration, iteration, step).
// See design doc Section 5 (batch.Sweep, batch.Runner).
package batch

import (
	"fmt"
	"os"
	"sort"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/talgya/swarmlab/internal/engine"
	"github.com/talgya/swarmlab/internal/space"
)

// Values is one parameter's sweep range: a fixed value or a list of values.
// Scalars in YAML read as a one-element range.
type Values []any

// UnmarshalYAML accepts either a scalar or a sequence.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var list []any
		if err := node.Decode(&list); err != nil {
			return err
		}
		*v = list
		return nil
	}
	var single any
	if err := node.Decode(&single); err != nil {
		return err
	}
	*v = Values{single}
	return nil
}

// Sweep describes one experiment: a model, a parameter grid, and run bounds.
type Sweep struct {
	Model      string            `yaml:"model"`
	Iterations int               `yaml:"iterations"`
	MaxSteps   int               `yaml:"max_steps"`
	Seed       uint64            `yaml:"seed"` // base seed, 0 = fresh per sweep
	Parameters map[string]Values `yaml:"parameters"`
}

// LoadSweep reads a sweep description from a YAML file.
func LoadSweep(path string) (*Sweep, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read sweep: %w", err)
	}
	var s Sweep
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("batch: parse sweep: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks run bounds and parameter names.
func (s *Sweep) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("batch: sweep has no model")
	}
	if s.Iterations < 1 {
		return fmt.Errorf("batch: iterations must be >= 1")
	}
	if s.MaxSteps < 1 {
		return fmt.Errorf("batch: max_steps must be >= 1")
	}
	for name, vals := range s.Parameters {
		if len(vals) == 0 {
			return fmt.Errorf("batch: parameter %q has no values", name)
		}
		if !knownParam(name) {
			return fmt.Errorf("batch: unknown parameter %q", name)
		}
	}
	return nil
}

func knownParam(name string) bool {
	switch name {
	case "population", "width", "height", "topology", "wrap", "capacity":
		return true
	}
	return false
}

// Point is one configuration from the cross-product.
type Point struct {
	Index  int
	Params map[string]any
	Config engine.Config
}

// Points expands the parameter grid into its cross-product, in a stable
// order: parameter names sorted, rightmost parameter varying fastest.
func (s *Sweep) Points() ([]Point, error) {
	names := lo.Keys(s.Parameters)
	sort.Strings(names)

	total := 1
	for _, name := range names {
		total *= len(s.Parameters[name])
	}

	points := make([]Point, 0, total)
	odometer := make([]int, len(names))
	for i := 0; i < total; i++ {
		params := make(map[string]any, len(names))
		for j, name := range names {
			params[name] = s.Parameters[name][odometer[j]]
		}
		cfg, err := configFrom(params)
		if err != nil {
			return nil, err
		}
		points = append(points, Point{Index: i, Params: params, Config: cfg})

		for j := len(names) - 1; j >= 0; j-- {
			odometer[j]++
			if odometer[j] < len(s.Parameters[names[j]]) {
				break
			}
			odometer[j] = 0
		}
	}
	return points, nil
}

// configFrom maps sweep parameters onto a model configuration.
func configFrom(params map[string]any) (engine.Config, error) {
	var cfg engine.Config
	for name, v := range params {
		switch name {
		case "population":
			n, err := asInt(name, v)
			if err != nil {
				return cfg, err
			}
			cfg.Population = n
		case "width":
			n, err := asInt(name, v)
			if err != nil {
				return cfg, err
			}
			cfg.Width = n
		case "height":
			n, err := asInt(name, v)
			if err != nil {
				return cfg, err
			}
			cfg.Height = n
		case "capacity":
			n, err := asInt(name, v)
			if err != nil {
				return cfg, err
			}
			cfg.Capacity = n
		case "wrap":
			b, ok := v.(bool)
			if !ok {
				return cfg, fmt.Errorf("batch: parameter wrap: want bool, got %T", v)
			}
			cfg.Wrap = b
		case "topology":
			str, ok := v.(string)
			if !ok {
				return cfg, fmt.Errorf("batch: parameter topology: want string, got %T", v)
			}
			t, ok := space.ParseTopology(str)
			if !ok {
				return cfg, fmt.Errorf("batch: unknown topology %q", str)
			}
			cfg.Topology = t
		}
	}
	return cfg, nil
}

func asInt(name string, v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("batch: parameter %s: want int, got %T", name, v)
	}
}
