package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/swarmlab/internal/engine"
	"github.com/talgya/swarmlab/internal/metrics"
	"github.com/talgya/swarmlab/internal/models"
)

func TestWealthConservation(t *testing.T) {
	w, err := models.NewWealth(engine.Config{
		Population: 50, Width: 10, Height: 10, Wrap: true, Seed: 42,
	})
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		require.NoError(t, w.Step())
		assert.Equal(t, 50.0, metrics.TotalWealth(w.Model), "step %d", i)
		for _, a := range w.Agents().Members() {
			assert.GreaterOrEqual(t, a.Wealth, 0)
		}
	}
}

func TestWealthGridlessConservation(t *testing.T) {
	w, err := models.NewWealth(engine.Config{Population: 10, Seed: 1234})
	require.NoError(t, err)
	require.Nil(t, w.Grid())

	require.NoError(t, w.StepN(50))
	assert.Equal(t, 10.0, metrics.TotalWealth(w.Model))
}

// Unit transfers happen between exactly two distinct agents.
func TestWealthTransferPairs(t *testing.T) {
	w, err := models.NewWealth(engine.Config{Population: 10, Seed: 1234})
	require.NoError(t, err)
	w.TracePairs = true

	require.NoError(t, w.Step())
	require.NotEmpty(t, w.Pairs)
	for _, p := range w.Pairs {
		assert.NotEqual(t, p.Giver, p.Receiver)
	}
}

// The exact transfer sequence replays from the seed alone.
func TestWealthDeterministicPairSequence(t *testing.T) {
	run := func() []models.TransferPair {
		w, err := models.NewWealth(engine.Config{Population: 10, Seed: 1234})
		require.NoError(t, err)
		w.TracePairs = true
		require.NoError(t, w.StepN(5))
		return w.Pairs
	}

	assert.Equal(t, run(), run())
}

func TestWealthDeterministicTrajectories(t *testing.T) {
	run := func() []metrics.ModelRow {
		inst, err := models.Build("wealth", engine.Config{
			Population: 30, Width: 8, Height: 8, Wrap: true, Seed: 99,
		})
		require.NoError(t, err)
		require.NoError(t, inst.Model.StepN(10))
		inst.Collector.Collect(inst.Model)
		return inst.Collector.ModelRows()
	}

	assert.Equal(t, run(), run())
}

func TestWealthCapacityNeverExceeded(t *testing.T) {
	w, err := models.NewWealth(engine.Config{
		Population: 100, Width: 10, Height: 10, Wrap: true, Capacity: 3, Seed: 7,
	})
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		require.NoError(t, w.Step())
		for _, c := range w.Grid().Cells() {
			assert.LessOrEqual(t, c.Count(), 3)
		}
	}
}

func TestWealthGiniRises(t *testing.T) {
	w, err := models.NewWealth(engine.Config{Population: 200, Seed: 5})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, metrics.WealthGini(w.Model), 1e-12)
	require.NoError(t, w.StepN(100))
	// Exchange concentrates wealth; with 200 agents and 100 steps the Gini
	// moving off zero is overwhelmingly robust to the seed.
	assert.Greater(t, metrics.WealthGini(w.Model), 0.1)
}

func TestBuildUnknownModel(t *testing.T) {
	_, err := models.Build("nope", engine.Config{Population: 1})
	assert.Error(t, err)
}
