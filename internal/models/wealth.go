// Package models provides the runnable demonstration models: wealth exchange,
// segregation, and the foraging landscape. Each wires behaviors, schedule,
// and default reporters onto a fresh engine.Model.
// See design doc Section 6.
package models

import (
	"errors"

	"github.com/talgya/swarmlab/internal/agents"
	"github.com/talgya/swarmlab/internal/engine"
	"github.com/talgya/swarmlab/internal/entropy"
	"github.com/talgya/swarmlab/internal/space"
)

// TransferPair records one unit transfer for trace-level inspection.
type TransferPair struct {
	Giver    uint64
	Receiver uint64
}

// Wealth is the Boltzmann money model: every agent starts with one unit, and
// each step every agent with wealth hands one unit to a randomly chosen
// peer. On a grid, agents first move to a random neighbor cell and give only
// to cellmates; gridless, any other agent can receive.
type Wealth struct {
	*engine.Model

	// TracePairs records every (giver, receiver) transfer when set before
	// stepping.
	TracePairs bool
	Pairs      []TransferPair
}

// NewWealth builds the wealth model on the given configuration.
func NewWealth(cfg engine.Config) (*Wealth, error) {
	m, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	w := &Wealth{Model: m}

	for _, a := range m.Agents().Members() {
		a.Wealth = 1
	}

	if m.Grid() != nil {
		if err := m.Scatter(); err != nil {
			return nil, err
		}
		m.RegisterBehavior("move", w.move)
	}
	m.RegisterBehavior("give_money", w.giveMoney)

	if m.Grid() != nil {
		m.SetSchedule(
			engine.Pass{Behavior: "move", Shuffled: true},
			engine.Pass{Behavior: "give_money", Shuffled: true},
		)
	} else {
		m.SetSchedule(engine.Pass{Behavior: "give_money", Shuffled: true})
	}

	return w, nil
}

// move relocates the agent to a uniformly chosen neighbor cell. A full
// destination means the agent skips its turn; the engine never retries
// silently, the policy here chooses to stay put.
func (w *Wealth) move(a *agents.Agent, _ ...any) error {
	if a.Cell == nil {
		return nil
	}
	dst, err := entropy.Choice(w.Stream(), a.Cell.Neighbors())
	if err != nil {
		return err
	}
	if err := w.MoveTo(a, dst); err != nil {
		var full *space.CapacityError
		if errors.As(err, &full) {
			return nil // destination full: skip the turn
		}
		return err
	}
	return nil
}

// giveMoney transfers one unit to a random peer. Later agents in the same
// pass see the transfer immediately, since activation is live rather than
// snapshotted.
func (w *Wealth) giveMoney(a *agents.Agent, _ ...any) error {
	if a.Wealth <= 0 {
		return nil
	}

	var peer *agents.Agent
	if a.Cell != nil {
		mates := a.Cell.Occupants()
		candidates := make([]uint64, 0, len(mates))
		for _, id := range mates {
			if id != uint64(a.ID) {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) == 0 {
			return nil // alone in the cell: skip the turn
		}
		id, err := entropy.Choice(w.Stream(), candidates)
		if err != nil {
			return err
		}
		peer = w.Agent(agents.ID(id))
	} else {
		members := w.Agents().Members()
		if len(members) < 2 {
			return nil
		}
		for {
			candidate, err := entropy.Choice(w.Stream(), members)
			if err != nil {
				return err
			}
			if candidate.ID != a.ID {
				peer = candidate
				break
			}
		}
	}

	a.Wealth--
	peer.Wealth++
	if w.TracePairs {
		w.Pairs = append(w.Pairs, TransferPair{Giver: uint64(a.ID), Receiver: uint64(peer.ID)})
	}
	return nil
}
