package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/swarmlab/internal/agents"
	"github.com/talgya/swarmlab/internal/engine"
	"github.com/talgya/swarmlab/internal/models"
)

func TestSegregationNeedsRoom(t *testing.T) {
	var bad *engine.InvalidParameterError

	_, err := models.NewSegregation(engine.Config{Population: 100, Width: 10, Height: 10, Seed: 1}, 0.5)
	assert.ErrorAs(t, err, &bad)

	_, err = models.NewSegregation(engine.Config{Population: 10, Seed: 1}, 0.5)
	assert.ErrorAs(t, err, &bad)

	_, err = models.NewSegregation(engine.Config{Population: 10, Width: 10, Height: 10, Seed: 1}, 1.5)
	assert.ErrorAs(t, err, &bad)
}

func TestSegregationCapacityOneHolds(t *testing.T) {
	s, err := models.NewSegregation(engine.Config{
		Population: 60, Width: 10, Height: 10, Wrap: true, Seed: 42,
	}, 0.5)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Step())
		for _, c := range s.Grid().Cells() {
			assert.LessOrEqual(t, c.Count(), 1)
		}
	}
}

func TestSegregationGroupsPartitionPopulation(t *testing.T) {
	s, err := models.NewSegregation(engine.Config{
		Population: 40, Width: 8, Height: 8, Wrap: true, Seed: 3,
	}, 0.5)
	require.NoError(t, err)

	groups := s.Agents().GroupBy(func(a *agents.Agent) string { return a.Group })
	require.Len(t, groups, 2)
	assert.Equal(t, 20, groups["red"].Len())
	assert.Equal(t, 20, groups["blue"].Len())

	// Select over each group predicate recovers the same partition.
	reds := s.Agents().Select(func(a *agents.Agent) bool { return a.Group == "red" })
	assert.Equal(t, groups["red"].Members(), reds.Members())
}

func TestSegregationZeroThresholdConverges(t *testing.T) {
	// Threshold 0 means everyone is content wherever they stand.
	s, err := models.NewSegregation(engine.Config{
		Population: 30, Width: 8, Height: 8, Wrap: true, Seed: 11,
	}, 0.0)
	require.NoError(t, err)

	require.NoError(t, s.Step())
	assert.True(t, s.Segregated())
}

func TestSegregationDeterministic(t *testing.T) {
	run := func() []uint64 {
		s, err := models.NewSegregation(engine.Config{
			Population: 30, Width: 8, Height: 8, Wrap: true, Seed: 77,
		}, 0.6)
		require.NoError(t, err)
		require.NoError(t, s.StepN(10))

		var occ []uint64
		for _, c := range s.Grid().Cells() {
			occ = append(occ, c.Occupants()...)
		}
		return occ
	}

	assert.Equal(t, run(), run())
}
