package metrics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/talgya/swarmlab/internal/agents"
	"github.com/talgya/swarmlab/internal/engine"
)

// agentAttributes is the built-in table of agent attribute accessors.
// Reporter names resolve here once, at collector construction.
var agentAttributes = map[string]AgentReporter{
	"wealth": func(a *agents.Agent) float64 { return float64(a.Wealth) },
	"store":  func(a *agents.Agent) float64 { return a.Store },
	"happy": func(a *agents.Agent) float64 {
		if a.Happy {
			return 1
		}
		return 0
	},
	"x": func(a *agents.Agent) float64 {
		if c, ok := a.Coord(); ok {
			return float64(c.X)
		}
		return -1
	},
	"y": func(a *agents.Agent) float64 {
		if c, ok := a.Coord(); ok {
			return float64(c.Y)
		}
		return -1
	},
}

// AgentAttribute resolves an attribute name to its accessor, failing with
// UnknownAttributeError for unregistered names.
func AgentAttribute(name string) (AgentReporter, error) {
	r, ok := agentAttributes[name]
	if !ok {
		return nil, &UnknownAttributeError{Name: name}
	}
	return r, nil
}

// TotalWealth sums wealth across the population. Unit-transfer models keep
// this invariant across steps.
func TotalWealth(m *engine.Model) float64 {
	total := 0
	for _, a := range m.Agents().Members() {
		total += a.Wealth
	}
	return float64(total)
}

// WealthGini reports the Gini coefficient of the population's wealth.
func WealthGini(m *engine.Model) float64 {
	wealth := lo.Map(m.Agents().Members(), func(a *agents.Agent, _ int) float64 {
		return float64(a.Wealth)
	})
	return Gini(wealth)
}

// FractionHappy reports the share of agents whose last contentment
// evaluation was positive.
func FractionHappy(m *engine.Model) float64 {
	members := m.Agents().Members()
	if len(members) == 0 {
		return 0
	}
	happy := lo.CountBy(members, func(a *agents.Agent) bool { return a.Happy })
	return float64(happy) / float64(len(members))
}

// Gini computes the Gini coefficient of a distribution using the sorted-value
// formula G = (2·Σ i·xᵢ)/(n·Σ xᵢ) − (n+1)/n with 1-based ranks over ascending
// values. All-equal distributions give 0; a distribution where one member
// holds everything gives (n−1)/n. An all-zero or empty distribution reads
// as 0.
func Gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum, weighted float64
	for i, v := range sorted {
		sum += v
		weighted += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}
	return 2*weighted/(float64(n)*sum) - float64(n+1)/float64(n)
}
