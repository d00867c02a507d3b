// Package space provides the cell lattice, neighbor topologies, and bounded
// occupancy for grid-based models.
// See design doc Section 5 (space.Grid, space.Cell).
package space

// Coord is a position on the lattice.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Topology selects the neighbor structure of the lattice.
type Topology uint8

const (
	Moore      Topology = iota // 8 neighbors: orthogonal + diagonal
	VonNeumann                 // 4 neighbors: orthogonal only
	Hex                        // 6 neighbors: odd-r offset hex rows
)

// TopologyName returns the printable name of a topology.
func TopologyName(t Topology) string {
	switch t {
	case Moore:
		return "moore"
	case VonNeumann:
		return "vonneumann"
	case Hex:
		return "hex"
	default:
		return "unknown"
	}
}

// ParseTopology maps a name back to a Topology. Used by CLI flags and sweep
// configuration files.
func ParseTopology(name string) (Topology, bool) {
	switch name {
	case "moore":
		return Moore, true
	case "vonneumann":
		return VonNeumann, true
	case "hex":
		return Hex, true
	default:
		return 0, false
	}
}

var mooreOffsets = [8]Coord{
	{X: -1, Y: -1}, {X: 0, Y: -1}, {X: 1, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: -1, Y: 1}, {X: 0, Y: 1}, {X: 1, Y: 1},
}

var vonNeumannOffsets = [4]Coord{
	{X: 0, Y: -1},
	{X: -1, Y: 0}, {X: 1, Y: 0},
	{X: 0, Y: 1},
}

// Odd-r offset layout: odd rows are shifted half a cell to the right, so the
// diagonal offsets depend on row parity.
var hexEvenRowOffsets = [6]Coord{
	{X: 1, Y: 0}, {X: -1, Y: 0},
	{X: 0, Y: -1}, {X: -1, Y: -1},
	{X: 0, Y: 1}, {X: -1, Y: 1},
}

var hexOddRowOffsets = [6]Coord{
	{X: 1, Y: 0}, {X: -1, Y: 0},
	{X: 1, Y: -1}, {X: 0, Y: -1},
	{X: 1, Y: 1}, {X: 0, Y: 1},
}

// offsetsFor returns the neighbor offsets for one cell under the topology.
func offsetsFor(t Topology, row int) []Coord {
	switch t {
	case VonNeumann:
		return vonNeumannOffsets[:]
	case Hex:
		if row%2 == 0 {
			return hexEvenRowOffsets[:]
		}
		return hexOddRowOffsets[:]
	default:
		return mooreOffsets[:]
	}
}
