package models

import (
	"errors"

	"github.com/talgya/swarmlab/internal/agents"
	"github.com/talgya/swarmlab/internal/engine"
	"github.com/talgya/swarmlab/internal/entropy"
	"github.com/talgya/swarmlab/internal/space"
)

// ResourceLayer is the name of the landscape's property layer.
const ResourceLayer = "resource"

// Landscape is a foraging model over a noise-seeded resource field: agents
// climb toward the richest neighboring cell, harvest what they stand on, and
// the field regrows a little after every step.
type Landscape struct {
	*engine.Model

	// GrowthRate is the per-step resource regrowth, capped at MaxResource.
	GrowthRate float64
	// MaxResource caps each cell's resource value.
	MaxResource float64
}

// NewLandscape builds the foraging model. The resource field is generated
// from the model seed, so the whole run replays from one number.
func NewLandscape(cfg engine.Config) (*Landscape, error) {
	if cfg.Width == 0 && cfg.Height == 0 {
		return nil, &engine.InvalidParameterError{Param: "grid", Reason: "landscape needs a grid"}
	}

	m, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	l := &Landscape{Model: m, GrowthRate: 0.1, MaxResource: 1.0}

	layer := space.NewLayer(ResourceLayer, cfg.Width, cfg.Height, 0)
	// Multi-octave noise: smooth patches of plenty
	// and scarcity rather than white noise.
	layer.FillNoise(int64(m.Seed()), 4, 0.08, 0.5, l.MaxResource)
	if err := m.Grid().AddLayer(layer); err != nil {
		return nil, err
	}

	if err := m.Scatter(); err != nil {
		return nil, err
	}

	m.RegisterBehavior("move", l.move)
	m.RegisterBehavior("harvest", l.harvest)
	m.SetSchedule(
		engine.Pass{Behavior: "move", Shuffled: true},
		engine.Pass{Behavior: "harvest", Shuffled: true},
	)
	m.AfterStep(l.regrow)

	return l, nil
}

// move climbs toward the richest neighbor cell with room, ties broken by the
// stream. Staying put is fine when the current cell beats every neighbor or
// the better cells are full.
func (l *Landscape) move(a *agents.Agent, _ ...any) error {
	if a.Cell == nil {
		return nil
	}
	layer, _ := l.Grid().Layer(ResourceLayer)
	here := layer.At(a.Cell.Coord.X, a.Cell.Coord.Y)

	best := here
	var candidates []*space.Cell
	for _, nc := range a.Cell.Neighbors() {
		v := layer.At(nc.Coord.X, nc.Coord.Y)
		if v > best {
			best = v
			candidates = candidates[:0]
			candidates = append(candidates, nc)
		} else if v == best && v > here {
			candidates = append(candidates, nc)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	dst, err := entropy.Choice(l.Stream(), candidates)
	if err != nil {
		return err
	}
	if err := l.MoveTo(a, dst); err != nil {
		var full *space.CapacityError
		if errors.As(err, &full) {
			return nil // richer cell is full: forage where we stand
		}
		return err
	}
	return nil
}

// harvest takes everything on the agent's cell into its store.
func (l *Landscape) harvest(a *agents.Agent, _ ...any) error {
	if a.Cell == nil {
		return nil
	}
	layer, _ := l.Grid().Layer(ResourceLayer)
	x, y := a.Cell.Coord.X, a.Cell.Coord.Y
	a.Store += layer.At(x, y)
	layer.Set(x, y, 0)
	return nil
}

// regrow adds GrowthRate to every cell, capped at MaxResource.
func (l *Landscape) regrow(m *engine.Model) {
	layer, _ := m.Grid().Layer(ResourceLayer)
	for _, c := range m.Grid().Cells() {
		v := layer.At(c.Coord.X, c.Coord.Y) + l.GrowthRate
		if v > l.MaxResource {
			v = l.MaxResource
		}
		layer.Set(c.Coord.X, c.Coord.Y, v)
	}
}
