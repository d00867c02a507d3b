package space_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/swarmlab/internal/entropy"
	"github.com/talgya/swarmlab/internal/space"
)

func mustGrid(t *testing.T, w, h int, topo space.Topology, wrap bool, capacity int) *space.Grid {
	t.Helper()
	g, err := space.NewGrid(w, h, topo, wrap, capacity)
	require.NoError(t, err)
	return g
}

func TestNewGridValidation(t *testing.T) {
	var bad *space.InvalidParameterError

	_, err := space.NewGrid(0, 5, space.Moore, true, 0)
	assert.ErrorAs(t, err, &bad)

	_, err = space.NewGrid(5, -1, space.Moore, true, 0)
	assert.ErrorAs(t, err, &bad)

	_, err = space.NewGrid(5, 5, space.Moore, true, -2)
	assert.ErrorAs(t, err, &bad)

	// Toroidal hex needs an even row count.
	_, err = space.NewGrid(6, 5, space.Hex, true, 0)
	assert.ErrorAs(t, err, &bad)

	_, err = space.NewGrid(6, 6, space.Hex, true, 0)
	assert.NoError(t, err)
}

func TestWrappedNeighborCounts(t *testing.T) {
	cases := []struct {
		topo space.Topology
		want int
	}{
		{space.Moore, 8},
		{space.VonNeumann, 4},
		{space.Hex, 6},
	}
	for _, tc := range cases {
		g := mustGrid(t, 10, 10, tc.topo, true, 0)
		for _, c := range g.Cells() {
			assert.Len(t, c.Neighbors(), tc.want,
				"topology %s cell %v", space.TopologyName(tc.topo), c.Coord)
		}
	}
}

func TestBoundedEdgeNeighborCounts(t *testing.T) {
	g := mustGrid(t, 5, 5, space.Moore, false, 0)

	corner := g.At(0, 0)
	assert.Len(t, corner.Neighbors(), 3)

	edge := g.At(2, 0)
	assert.Len(t, edge.Neighbors(), 5)

	center := g.At(2, 2)
	assert.Len(t, center.Neighbors(), 8)

	g = mustGrid(t, 5, 5, space.VonNeumann, false, 0)
	assert.Len(t, g.At(0, 0).Neighbors(), 2)
	assert.Len(t, g.At(2, 2).Neighbors(), 4)
}

func TestNeighborSymmetry(t *testing.T) {
	for _, topo := range []space.Topology{space.Moore, space.VonNeumann, space.Hex} {
		for _, wrap := range []bool{true, false} {
			g := mustGrid(t, 8, 6, topo, wrap, 0)
			for _, c := range g.Cells() {
				for _, n := range c.Neighbors() {
					assert.Contains(t, n.Neighbors(), c,
						"topology %s wrap %v: %v -> %v not symmetric",
						space.TopologyName(topo), wrap, c.Coord, n.Coord)
				}
			}
		}
	}
}

func TestNeighborsNeverOutOfRange(t *testing.T) {
	g := mustGrid(t, 4, 4, space.Hex, false, 0)
	for _, c := range g.Cells() {
		for _, n := range c.Neighbors() {
			assert.GreaterOrEqual(t, n.Coord.X, 0)
			assert.Less(t, n.Coord.X, 4)
			assert.GreaterOrEqual(t, n.Coord.Y, 0)
			assert.Less(t, n.Coord.Y, 4)
		}
	}
}

func TestPlaceAndMove(t *testing.T) {
	g := mustGrid(t, 3, 3, space.Moore, true, 0)
	a := g.At(0, 0)
	b := g.At(1, 1)

	require.NoError(t, g.Place(1, a))
	assert.Equal(t, []uint64{1}, a.Occupants())
	assert.Equal(t, a, g.CellOf(1))

	// Move removes from the old cell atomically.
	require.NoError(t, g.Place(1, b))
	assert.Empty(t, a.Occupants())
	assert.Equal(t, []uint64{1}, b.Occupants())
	assert.Equal(t, b, g.CellOf(1))

	// Moving into the current cell is a no-op.
	require.NoError(t, g.Place(1, b))
	assert.Equal(t, []uint64{1}, b.Occupants())
}

func TestCapacityEnforced(t *testing.T) {
	g := mustGrid(t, 3, 3, space.Moore, true, 2)
	dst := g.At(0, 0)
	src := g.At(2, 2)

	require.NoError(t, g.Place(1, dst))
	require.NoError(t, g.Place(2, dst))
	require.NoError(t, g.Place(3, src))

	err := g.Place(3, dst)
	var full *space.CapacityError
	require.ErrorAs(t, err, &full)
	assert.Equal(t, space.Coord{X: 0, Y: 0}, full.Coord)

	// Failed placement leaves every cell unchanged.
	assert.Equal(t, []uint64{1, 2}, dst.Occupants())
	assert.Equal(t, []uint64{3}, src.Occupants())
	assert.Equal(t, src, g.CellOf(3))
}

func TestRemove(t *testing.T) {
	g := mustGrid(t, 3, 3, space.Moore, true, 0)
	c := g.At(1, 2)
	require.NoError(t, g.Place(7, c))

	g.Remove(7)
	assert.Empty(t, c.Occupants())
	assert.Nil(t, g.CellOf(7))

	// Removing an absent agent is harmless.
	g.Remove(7)
}

func TestOccupantsAreACopy(t *testing.T) {
	g := mustGrid(t, 2, 2, space.Moore, true, 0)
	c := g.At(0, 0)
	require.NoError(t, g.Place(1, c))

	occ := c.Occupants()
	occ[0] = 99
	assert.Equal(t, []uint64{1}, c.Occupants())
}

func TestEmptyCells(t *testing.T) {
	g := mustGrid(t, 2, 2, space.Moore, true, 0)
	require.NoError(t, g.Place(1, g.At(0, 0)))

	empty := g.EmptyCells()
	assert.Len(t, empty, 3)
	for _, c := range empty {
		assert.NotEqual(t, space.Coord{X: 0, Y: 0}, c.Coord)
	}
}

func TestRandomCellDeterministic(t *testing.T) {
	g := mustGrid(t, 10, 10, space.Moore, true, 0)
	a := entropy.New(11)
	b := entropy.New(11)
	for i := 0; i < 50; i++ {
		assert.Equal(t, g.RandomCell(a).Coord, g.RandomCell(b).Coord)
	}
}

func TestLayerDimensionsChecked(t *testing.T) {
	g := mustGrid(t, 4, 4, space.Moore, true, 0)

	var bad *space.InvalidParameterError
	err := g.AddLayer(space.NewLayer("r", 3, 4, 0))
	assert.ErrorAs(t, err, &bad)

	require.NoError(t, g.AddLayer(space.NewLayer("r", 4, 4, 0.5)))
	l, ok := g.Layer("r")
	require.True(t, ok)
	assert.Equal(t, 0.5, l.At(2, 3))
}

func TestLayerNoiseDeterministic(t *testing.T) {
	a := space.NewLayer("n", 8, 8, 0)
	b := space.NewLayer("n", 8, 8, 0)
	a.FillNoise(1234, 4, 0.08, 0.5, 1.0)
	b.FillNoise(1234, 4, 0.08, 0.5, 1.0)

	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			v := a.At(x, y)
			assert.Equal(t, v, b.At(x, y))
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestLayerAddAndBounds(t *testing.T) {
	l := space.NewLayer("r", 2, 2, 0)
	assert.Equal(t, 0.25, l.Add(1, 1, 0.25))
	assert.Equal(t, 0.25, l.At(1, 1))

	// Out-of-range reads and writes are inert.
	assert.Equal(t, 0.0, l.At(5, 5))
	l.Set(5, 5, 1)
	assert.Equal(t, 0.0, l.Add(-1, 0, 1))
}
