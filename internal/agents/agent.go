// Package agents provides the agent data model, the behavior registry, and
// ordered/shuffled activation over agent sets.
// See design doc Section 5 (agents.Agent, agents.Set).
package agents

import (
	"github.com/talgya/swarmlab/internal/space"
)

// ID is a unique identifier for an agent within one model.
type ID uint64

// Capability flags what an agent can do. One Agent type with a flag set
// replaces a subclass hierarchy of fixed/moving/grid-bound agent variants.
type Capability uint8

const (
	Movable   Capability = 1 << iota // may relocate between cells
	Fixed                            // pinned to its starting cell
	GridBound                        // participates in grid occupancy at all
)

// Has reports whether all the given flags are set.
func (c Capability) Has(flags Capability) bool {
	return c&flags == flags
}

// Agent is the core entity of a simulation: an identity plus mutable owned
// state. Agents are created in bulk at model construction and never destroyed
// during a run.
type Agent struct {
	ID ID `json:"id"`

	// Wealth in whole units. Transfers must never drive it negative.
	Wealth int `json:"wealth"`

	// Group is an optional categorical tag ("" = untagged). Segregation-style
	// models partition on it.
	Group string `json:"group,omitempty"`

	// Store holds harvested resource for landscape-style models.
	Store float64 `json:"store"`

	// Happy is the agent's last contentment evaluation, where a model defines
	// one.
	Happy bool `json:"happy"`

	// Cell is a convenience back-reference; the grid owns occupancy.
	Cell *space.Cell `json:"-"`

	Caps Capability `json:"-"`
}

// Coord returns the agent's current coordinate, or false if off-grid.
func (a *Agent) Coord() (space.Coord, bool) {
	if a.Cell == nil {
		return space.Coord{}, false
	}
	return a.Cell.Coord, true
}
