package models

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/talgya/swarmlab/internal/agents"
	"github.com/talgya/swarmlab/internal/engine"
	"github.com/talgya/swarmlab/internal/metrics"
)

// Instance bundles a ready-to-step model with its attached collector.
type Instance struct {
	Name      string
	Model     *engine.Model
	Collector *metrics.Collector
}

// Names lists the buildable model names.
func Names() []string {
	return []string{"wealth", "segregation", "landscape"}
}

// Build constructs a named model with its default reporters attached. This is
// the single entry point the CLI and the batch runner share.
func Build(name string, cfg engine.Config) (*Instance, error) {
	c := metrics.NewCollector()

	var m *engine.Model
	switch name {
	case "wealth":
		w, err := NewWealth(cfg)
		if err != nil {
			return nil, err
		}
		m = w.Model
		c.ReportModel("gini", metrics.WealthGini)
		c.ReportModel("total_wealth", metrics.TotalWealth)
		if err := c.ReportAgents("wealth"); err != nil {
			return nil, err
		}

	case "segregation":
		s, err := NewSegregation(cfg, 0.5)
		if err != nil {
			return nil, err
		}
		m = s.Model
		c.ReportModel("fraction_happy", metrics.FractionHappy)
		if err := c.ReportAgents("happy", "x", "y"); err != nil {
			return nil, err
		}

	case "landscape":
		l, err := NewLandscape(cfg)
		if err != nil {
			return nil, err
		}
		m = l.Model
		c.ReportModel("mean_store", meanStore)
		if err := c.ReportAgents("store"); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("models: unknown model %q (have %v)", name, Names())
	}

	c.Attach(m)
	return &Instance{Name: name, Model: m, Collector: c}, nil
}

func meanStore(m *engine.Model) float64 {
	members := m.Agents().Members()
	if len(members) == 0 {
		return 0
	}
	total := lo.SumBy(members, func(a *agents.Agent) float64 { return a.Store })
	return total / float64(len(members))
}
