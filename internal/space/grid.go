package space

import (
	"fmt"

	"github.com/talgya/swarmlab/internal/entropy"
)

// InvalidParameterError reports a bad grid construction argument.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("space: invalid parameter %s: %s", e.Param, e.Reason)
}

// CapacityError reports a placement into a full cell. The failed placement
// leaves all occupancy unchanged; the caller's policy decides whether to
// retry elsewhere or skip the turn.
type CapacityError struct {
	Coord    Coord
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("space: cell (%d,%d) at capacity %d", e.Coord.X, e.Coord.Y, e.Capacity)
}

// Cell is a single location on the lattice with bounded occupancy and fixed
// neighbor links computed at grid construction.
type Cell struct {
	Coord Coord

	capacity  int // 0 = unbounded
	occupants []uint64
	neighbors []*Cell
}

// Capacity returns the occupant limit, 0 meaning unbounded.
func (c *Cell) Capacity() int { return c.capacity }

// Occupants returns the agent IDs currently in the cell, in arrival order.
// The returned slice is a copy.
func (c *Cell) Occupants() []uint64 {
	out := make([]uint64, len(c.occupants))
	copy(out, c.occupants)
	return out
}

// Count returns the current number of occupants.
func (c *Cell) Count() int { return len(c.occupants) }

// HasRoom reports whether one more occupant fits.
func (c *Cell) HasRoom() bool {
	return c.capacity == 0 || len(c.occupants) < c.capacity
}

// Neighbors returns the fixed neighbor set. The slice is shared; callers
// must not modify it.
func (c *Cell) Neighbors() []*Cell { return c.neighbors }

func (c *Cell) remove(id uint64) {
	for i, o := range c.occupants {
		if o == id {
			c.occupants = append(c.occupants[:i], c.occupants[i+1:]...)
			return
		}
	}
}

// Grid owns all cells of a rectangular lattice and tracks which cell each
// agent occupies. Neighbor links are precomputed and symmetric.
type Grid struct {
	width    int
	height   int
	topology Topology
	wrap     bool
	capacity int

	cells []*Cell          // row-major
	index map[uint64]*Cell // agent ID → current cell

	layers map[string]*Layer
}

// NewGrid builds a width×height lattice. capacity bounds each cell's
// occupancy (0 = unbounded). With wrap, coordinate arithmetic is modular;
// without, perimeter cells simply have fewer neighbors.
func NewGrid(width, height int, topology Topology, wrap bool, capacity int) (*Grid, error) {
	if width <= 0 {
		return nil, &InvalidParameterError{Param: "width", Reason: "must be positive"}
	}
	if height <= 0 {
		return nil, &InvalidParameterError{Param: "height", Reason: "must be positive"}
	}
	if capacity < 0 {
		return nil, &InvalidParameterError{Param: "capacity", Reason: "must be >= 0"}
	}
	if topology == Hex && wrap && height%2 != 0 {
		// Odd-r row parity cannot wrap over an odd number of rows without
		// breaking neighbor symmetry.
		return nil, &InvalidParameterError{Param: "height", Reason: "toroidal hex grids need an even height"}
	}

	g := &Grid{
		width:    width,
		height:   height,
		topology: topology,
		wrap:     wrap,
		capacity: capacity,
		cells:    make([]*Cell, width*height),
		index:    make(map[uint64]*Cell),
		layers:   make(map[string]*Layer),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.cells[y*width+x] = &Cell{
				Coord:    Coord{X: x, Y: y},
				capacity: capacity,
			}
		}
	}
	g.linkNeighbors()
	return g, nil
}

// linkNeighbors computes every cell's fixed neighbor set once.
func (g *Grid) linkNeighbors() {
	for _, c := range g.cells {
		offsets := offsetsFor(g.topology, c.Coord.Y)
		seen := make(map[Coord]bool, len(offsets))
		for _, d := range offsets {
			x := c.Coord.X + d.X
			y := c.Coord.Y + d.Y
			if g.wrap {
				x = mod(x, g.width)
				y = mod(y, g.height)
			} else if x < 0 || x >= g.width || y < 0 || y >= g.height {
				continue
			}
			nc := Coord{X: x, Y: y}
			// Tiny wrapped grids can fold two offsets onto the same cell;
			// neighbor sets never contain duplicates or the cell itself.
			if nc == c.Coord || seen[nc] {
				continue
			}
			seen[nc] = true
			c.neighbors = append(c.neighbors, g.cells[y*g.width+x])
		}
	}
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Width returns the lattice width.
func (g *Grid) Width() int { return g.width }

// Height returns the lattice height.
func (g *Grid) Height() int { return g.height }

// Topology returns the neighbor topology.
func (g *Grid) Topology() Topology { return g.topology }

// Wrap reports whether the grid is toroidal.
func (g *Grid) Wrap() bool { return g.wrap }

// At returns the cell at (x, y), or nil if out of range.
func (g *Grid) At(x, y int) *Cell {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return nil
	}
	return g.cells[y*g.width+x]
}

// Cells returns all cells in row-major order. The slice is shared; callers
// must not modify it.
func (g *Grid) Cells() []*Cell { return g.cells }

// EmptyCells returns the cells with no occupants, in row-major order.
func (g *Grid) EmptyCells() []*Cell {
	var out []*Cell
	for _, c := range g.cells {
		if len(c.occupants) == 0 {
			out = append(out, c)
		}
	}
	return out
}

// RandomCell returns a uniformly chosen cell.
func (g *Grid) RandomCell(s *entropy.Stream) *Cell {
	return g.cells[s.Intn(len(g.cells))]
}

// CellOf returns the cell the agent currently occupies, or nil.
func (g *Grid) CellOf(id uint64) *Cell { return g.index[id] }

// Place moves an agent into dst, removing it from its prior cell if any.
// The move is atomic: on CapacityError no occupancy changes anywhere.
func (g *Grid) Place(id uint64, dst *Cell) error {
	if !dst.HasRoom() {
		// An agent already in dst "fits" trivially.
		if g.index[id] != dst {
			return &CapacityError{Coord: dst.Coord, Capacity: dst.capacity}
		}
	}
	if prev := g.index[id]; prev != nil {
		if prev == dst {
			return nil
		}
		prev.remove(id)
	}
	dst.occupants = append(dst.occupants, id)
	g.index[id] = dst
	return nil
}

// Remove takes an agent off the grid entirely.
func (g *Grid) Remove(id uint64) {
	if c := g.index[id]; c != nil {
		c.remove(id)
		delete(g.index, id)
	}
}

// AddLayer attaches a named property layer. Layer dimensions must match the
// grid.
func (g *Grid) AddLayer(l *Layer) error {
	if l.width != g.width || l.height != g.height {
		return &InvalidParameterError{Param: "layer", Reason: "dimensions do not match grid"}
	}
	g.layers[l.name] = l
	return nil
}

// Layer returns the named property layer.
func (g *Grid) Layer(name string) (*Layer, bool) {
	l, ok := g.layers[name]
	return l, ok
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, %s, wrap=%v, capacity=%d)",
		g.width, g.height, TopologyName(g.topology), g.wrap, g.capacity)
}
