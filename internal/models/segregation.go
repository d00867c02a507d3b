package models

import (
	"github.com/talgya/swarmlab/internal/agents"
	"github.com/talgya/swarmlab/internal/engine"
	"github.com/talgya/swarmlab/internal/entropy"
)

// Segregation is a Schelling-style relocation model: two groups share a
// capacity-1 grid, each agent wants at least Threshold of its occupied
// neighbor cells to hold its own group, and unhappy agents jump to random
// empty cells.
type Segregation struct {
	*engine.Model

	// Threshold is the minimum like-group neighbor fraction for contentment.
	Threshold float64
}

// NewSegregation builds the segregation model. Capacity is forced to 1 and
// the population must leave empty cells to move into.
func NewSegregation(cfg engine.Config, threshold float64) (*Segregation, error) {
	cfg.Capacity = 1
	if cfg.Width == 0 && cfg.Height == 0 {
		return nil, &engine.InvalidParameterError{Param: "grid", Reason: "segregation needs a grid"}
	}
	if cfg.Population >= cfg.Width*cfg.Height {
		return nil, &engine.InvalidParameterError{Param: "population", Reason: "must leave empty cells on a capacity-1 grid"}
	}
	if threshold < 0 || threshold > 1 {
		return nil, &engine.InvalidParameterError{Param: "threshold", Reason: "must be in [0, 1]"}
	}

	m, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	s := &Segregation{Model: m, Threshold: threshold}

	// Even split into two groups, assigned before placement so the group mix
	// is independent of geometry.
	for i, a := range m.Agents().Members() {
		if i%2 == 0 {
			a.Group = "red"
		} else {
			a.Group = "blue"
		}
	}

	if err := m.Scatter(); err != nil {
		return nil, err
	}

	m.RegisterBehavior("relocate", s.relocate)
	m.SetSchedule(engine.Pass{Behavior: "relocate", Shuffled: true})

	return s, nil
}

// likeFraction returns the share of the agent's occupied neighbor cells that
// hold a same-group agent, and whether any neighbor cell is occupied at all.
func (s *Segregation) likeFraction(a *agents.Agent) (float64, bool) {
	occupied, like := 0, 0
	for _, nc := range a.Cell.Neighbors() {
		for _, id := range nc.Occupants() {
			occupied++
			if s.Agent(agents.ID(id)).Group == a.Group {
				like++
			}
		}
	}
	if occupied == 0 {
		return 0, false
	}
	return float64(like) / float64(occupied), true
}

// relocate evaluates contentment and, when unhappy, moves the agent to a
// uniformly chosen empty cell. Agents with no occupied neighbors count as
// happy.
func (s *Segregation) relocate(a *agents.Agent, _ ...any) error {
	frac, occupied := s.likeFraction(a)
	a.Happy = !occupied || frac >= s.Threshold
	if a.Happy {
		return nil
	}

	empty := s.Grid().EmptyCells()
	if len(empty) == 0 {
		return nil // nowhere to go: stay unhappy in place
	}
	dst, err := entropy.Choice(s.Stream(), empty)
	if err != nil {
		return err
	}
	return s.MoveTo(a, dst)
}

// Segregated reports whether every agent was happy at its last evaluation.
func (s *Segregation) Segregated() bool {
	for _, a := range s.Agents().Members() {
		if !a.Happy {
			return false
		}
	}
	return true
}
