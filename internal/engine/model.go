// Package engine provides the Model: the single-threaded driver that owns the
// random stream, the grid, and the agent population, and advances them in
// discrete steps.
// See design doc Section 5 (engine.Model).
package engine

import (
	"errors"
	"fmt"

	"github.com/talgya/swarmlab/internal/agents"
	"github.com/talgya/swarmlab/internal/entropy"
	"github.com/talgya/swarmlab/internal/space"
)

// Phase is the model lifecycle state.
type Phase uint8

const (
	Constructed Phase = iota // built, no step taken yet
	Stepping                 // at least one step taken
	Finished                 // terminal; further steps are an error
)

// String returns the printable phase name.
func (p Phase) String() string {
	switch p {
	case Constructed:
		return "constructed"
	case Stepping:
		return "stepping"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// ErrFinished is returned by Step on a finished model.
var ErrFinished = errors.New("engine: model is finished")

// ErrAgentFixed is returned when a move targets a fixed agent.
var ErrAgentFixed = errors.New("engine: agent is fixed in place")

// InvalidParameterError reports a bad model construction argument.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("engine: invalid parameter %s: %s", e.Param, e.Reason)
}

// Pass is one full-population activation within a step: a behavior name plus
// whether the pass activates in shuffled order.
type Pass struct {
	Behavior string
	Shuffled bool
}

// Config holds model construction parameters.
type Config struct {
	Population int

	// Grid parameters. Width and Height both zero means no grid.
	Width    int
	Height   int
	Topology space.Topology
	Wrap     bool
	Capacity int // per-cell occupant limit, 0 = unbounded

	// Seed for the random stream. 0 draws a fresh seed; the drawn value is
	// recorded on the model for replay.
	Seed uint64

	// Caps applied to every agent. Zero value defaults to Movable (plus
	// GridBound when a grid is configured).
	Caps agents.Capability
}

// Model owns one simulation instance: the stream, the optional grid, the full
// population, the behavior schedule, and the step counter. All execution is
// strictly sequential; a Model must not be shared across goroutines.
type Model struct {
	cfg    Config
	seed   uint64
	stream *entropy.Stream
	grid   *space.Grid

	registry   *agents.Registry
	population *agents.Set
	index      map[agents.ID]*agents.Agent

	schedule   []Pass
	collectors []func(*Model)
	afterStep  []func(*Model)

	step    int
	phase   Phase
	running bool
}

// New constructs a model: stream seeded, agents created in bulk with IDs
// 1..population, grid built when dimensions are given. Agents start off-grid;
// model setup decides placement (see Scatter).
func New(cfg Config) (*Model, error) {
	if cfg.Population < 0 {
		return nil, &InvalidParameterError{Param: "population", Reason: "must be >= 0"}
	}
	if cfg.Capacity < 0 {
		return nil, &InvalidParameterError{Param: "capacity", Reason: "must be >= 1 when set"}
	}
	hasGrid := cfg.Width != 0 || cfg.Height != 0
	if hasGrid && (cfg.Width <= 0 || cfg.Height <= 0) {
		return nil, &InvalidParameterError{Param: "grid", Reason: "width and height must both be positive"}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.AutoSeed()
	}

	m := &Model{
		cfg:      cfg,
		seed:     seed,
		stream:   entropy.New(seed),
		registry: agents.NewRegistry(),
		index:    make(map[agents.ID]*agents.Agent, cfg.Population),
		phase:    Constructed,
		running:  true,
	}

	if hasGrid {
		grid, err := space.NewGrid(cfg.Width, cfg.Height, cfg.Topology, cfg.Wrap, cfg.Capacity)
		if err != nil {
			return nil, fmt.Errorf("engine: build grid: %w", err)
		}
		m.grid = grid
	}

	caps := cfg.Caps
	if caps == 0 {
		caps = agents.Movable
		if hasGrid {
			caps |= agents.GridBound
		}
	}

	m.population = agents.NewSet(m.registry, m.stream)
	for i := 0; i < cfg.Population; i++ {
		a := &agents.Agent{ID: agents.ID(i + 1), Caps: caps}
		m.index[a.ID] = a
		m.population.Add(a)
	}

	return m, nil
}

// Seed returns the seed the stream was created with.
func (m *Model) Seed() uint64 { return m.seed }

// Stream returns the model's random stream.
func (m *Model) Stream() *entropy.Stream { return m.stream }

// Grid returns the spatial grid, or nil for gridless models.
func (m *Model) Grid() *space.Grid { return m.grid }

// Agents returns the full population set.
func (m *Model) Agents() *agents.Set { return m.population }

// Agent returns the agent with the given ID, or nil.
func (m *Model) Agent(id agents.ID) *agents.Agent { return m.index[id] }

// StepCount returns the number of completed steps.
func (m *Model) StepCount() int { return m.step }

// Phase returns the lifecycle state.
func (m *Model) Phase() Phase { return m.phase }

// Running reports whether a stop condition has fired. The model never stops
// itself; callers check this between steps.
func (m *Model) Running() bool { return m.running }

// Stop flags the model as no longer running. Stepping remains legal until
// Finish is called.
func (m *Model) Stop() { m.running = false }

// Finish moves the model to its terminal state.
func (m *Model) Finish() {
	m.phase = Finished
	m.running = false
}

// RegisterBehavior binds a behavior name for activation passes.
func (m *Model) RegisterBehavior(name string, b agents.Behavior) {
	m.registry.Register(name, b)
}

// SetSchedule defines the ordered full-population passes each step runs.
// Passes are never interleaved per-agent: each pass completes over the whole
// population before the next begins.
func (m *Model) SetSchedule(passes ...Pass) {
	m.schedule = append([]Pass(nil), passes...)
}

// OnStep registers a hook invoked at the start of every step, before any
// behavior mutates state for that step. Hooks get read access to the model;
// the metric collector attaches here.
func (m *Model) OnStep(hook func(*Model)) {
	m.collectors = append(m.collectors, hook)
}

// AfterStep registers a hook invoked after all behavior passes of a step,
// before the counter increments. Environment updates (resource regrowth,
// decay) live here; agent behaviors never do.
func (m *Model) AfterStep(hook func(*Model)) {
	m.afterStep = append(m.afterStep, hook)
}

// Step advances exactly one discrete time unit: hooks fire against the
// current state, then each scheduled pass activates the full population, then
// the step counter increments.
func (m *Model) Step() error {
	if m.phase == Finished {
		return ErrFinished
	}
	m.phase = Stepping

	for _, hook := range m.collectors {
		hook(m)
	}

	for _, p := range m.schedule {
		var err error
		if p.Shuffled {
			err = m.population.ShuffleDo(p.Behavior)
		} else {
			err = m.population.Do(p.Behavior)
		}
		if err != nil {
			return fmt.Errorf("engine: step %d pass %q: %w", m.step, p.Behavior, err)
		}
	}

	for _, hook := range m.afterStep {
		hook(m)
	}

	m.step++
	return nil
}

// StepN runs up to n steps, honoring the running flag between steps.
func (m *Model) StepN(n int) error {
	for i := 0; i < n && m.running; i++ {
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// MoveTo relocates an agent, keeping the one-cell occupancy invariant atomic.
// Fails with space.CapacityError when the destination is full, leaving all
// occupancy unchanged.
func (m *Model) MoveTo(a *agents.Agent, dst *space.Cell) error {
	if m.grid == nil {
		return &InvalidParameterError{Param: "grid", Reason: "model has no grid"}
	}
	if a.Caps.Has(agents.Fixed) {
		return ErrAgentFixed
	}
	if err := m.grid.Place(uint64(a.ID), dst); err != nil {
		return err
	}
	a.Cell = dst
	return nil
}

// Scatter places every grid-bound agent on a uniformly chosen cell with room.
// Fails when the grid cannot hold the population.
func (m *Model) Scatter() error {
	if m.grid == nil {
		return &InvalidParameterError{Param: "grid", Reason: "model has no grid"}
	}
	if m.cfg.Capacity > 0 {
		if max := m.cfg.Capacity * m.grid.Width() * m.grid.Height(); m.population.Len() > max {
			return &InvalidParameterError{Param: "population", Reason: "exceeds total grid capacity"}
		}
	}
	for _, a := range m.population.Members() {
		if !a.Caps.Has(agents.GridBound) {
			continue
		}
		for {
			c := m.grid.RandomCell(m.stream)
			if !c.HasRoom() {
				continue
			}
			if err := m.grid.Place(uint64(a.ID), c); err != nil {
				continue
			}
			a.Cell = c
			break
		}
	}
	return nil
}
