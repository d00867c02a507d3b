// Package metrics provides the step-boundary metric collector: string-named
// reporters resolved to typed accessors up front, producing one model row per
// step and one agent row per (step, agent).
// See design doc Section 5 (metrics.Collector).
package metrics

import (
	"fmt"

	"github.com/talgya/swarmlab/internal/agents"
	"github.com/talgya/swarmlab/internal/engine"
)

// UnknownAttributeError reports a reporter name with no registered accessor.
// Raised at collector construction, never silently coerced to a default.
type UnknownAttributeError struct {
	Name string
}

func (e *UnknownAttributeError) Error() string {
	return fmt.Sprintf("metrics: unknown attribute %q", e.Name)
}

// ModelReporter samples one model-level scalar.
type ModelReporter func(*engine.Model) float64

// AgentReporter samples one agent-level scalar.
type AgentReporter func(*agents.Agent) float64

// ModelRow is one model-level sample, keyed by step number.
type ModelRow struct {
	Step   int                `json:"step"`
	Values map[string]float64 `json:"values"`
}

// AgentRow is one agent-level sample, keyed by (step, agent).
type AgentRow struct {
	Step    int                `json:"step"`
	AgentID uint64             `json:"agent_id"`
	Values  map[string]float64 `json:"values"`
}

// Collector samples registered reporters at each step boundary. It is invoked
// by the model's step hook, at the start of a step, before behaviors mutate
// state for that step. Iteration order is stable: reporters in registration
// order, agents in insertion order.
type Collector struct {
	modelNames     []string
	modelReporters map[string]ModelReporter

	agentNames     []string
	agentReporters map[string]AgentReporter

	modelRows []ModelRow
	agentRows []AgentRow
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		modelReporters: make(map[string]ModelReporter),
		agentReporters: make(map[string]AgentReporter),
	}
}

// ReportModel registers a model-level reporter under a name.
func (c *Collector) ReportModel(name string, r ModelReporter) {
	if _, ok := c.modelReporters[name]; !ok {
		c.modelNames = append(c.modelNames, name)
	}
	c.modelReporters[name] = r
}

// ReportAgents registers agent-level reporters by attribute name, resolving
// each against the built-in attribute table. Unknown names fail here, at
// construction time, not at collection time.
func (c *Collector) ReportAgents(names ...string) error {
	for _, name := range names {
		r, err := AgentAttribute(name)
		if err != nil {
			return err
		}
		c.reportAgentFn(name, r)
	}
	return nil
}

// ReportAgentFn registers an agent-level reporter with an explicit accessor,
// for attributes outside the built-in table.
func (c *Collector) ReportAgentFn(name string, r AgentReporter) {
	c.reportAgentFn(name, r)
}

func (c *Collector) reportAgentFn(name string, r AgentReporter) {
	if _, ok := c.agentReporters[name]; !ok {
		c.agentNames = append(c.agentNames, name)
	}
	c.agentReporters[name] = r
}

// Attach hooks the collector into the model's step loop.
func (c *Collector) Attach(m *engine.Model) {
	m.OnStep(c.Collect)
}

// Collect samples every registered reporter against the model's current
// state. Called once per step by the attached hook; safe to call directly for
// a final post-run sample.
func (c *Collector) Collect(m *engine.Model) {
	step := m.StepCount()

	if len(c.modelNames) > 0 {
		row := ModelRow{Step: step, Values: make(map[string]float64, len(c.modelNames))}
		for _, name := range c.modelNames {
			row.Values[name] = c.modelReporters[name](m)
		}
		c.modelRows = append(c.modelRows, row)
	}

	if len(c.agentNames) > 0 {
		for _, a := range m.Agents().Members() {
			row := AgentRow{Step: step, AgentID: uint64(a.ID), Values: make(map[string]float64, len(c.agentNames))}
			for _, name := range c.agentNames {
				row.Values[name] = c.agentReporters[name](a)
			}
			c.agentRows = append(c.agentRows, row)
		}
	}
}

// ModelRows returns all collected model-level rows in step order.
func (c *Collector) ModelRows() []ModelRow { return c.modelRows }

// AgentRows returns all collected agent-level rows in (step, agent) order.
func (c *Collector) AgentRows() []AgentRow { return c.agentRows }

// ModelSeries returns the per-step series of one model reporter.
func (c *Collector) ModelSeries(name string) []float64 {
	out := make([]float64, 0, len(c.modelRows))
	for _, row := range c.modelRows {
		out = append(out, row.Values[name])
	}
	return out
}

// ModelNames returns the registered model reporter names in order.
func (c *Collector) ModelNames() []string {
	return append([]string(nil), c.modelNames...)
}

// AgentNames returns the registered agent reporter names in order.
func (c *Collector) AgentNames() []string {
	return append([]string(nil), c.agentNames...)
}
