package batch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/swarmlab/internal/batch"
)

func wealthSweep(seed uint64) *batch.Sweep {
	return &batch.Sweep{
		Model:      "wealth",
		Iterations: 2,
		MaxSteps:   5,
		Seed:       seed,
		Parameters: map[string]batch.Values{
			"population": {10, 20},
		},
	}
}

func TestRunnerProducesOneResultPerRun(t *testing.T) {
	r := &batch.Runner{Workers: 2}
	results, err := r.Run(wealthSweep(42))
	require.NoError(t, err)
	require.Len(t, results, 4) // 2 configurations × 2 iterations

	// Deterministic (configuration, iteration) order regardless of workers.
	assert.Equal(t, 0, results[0].ConfigIndex)
	assert.Equal(t, 0, results[0].Iteration)
	assert.Equal(t, 0, results[1].ConfigIndex)
	assert.Equal(t, 1, results[1].Iteration)
	assert.Equal(t, 1, results[2].ConfigIndex)
	assert.Equal(t, 0, results[2].Iteration)

	ids := make(map[string]bool)
	for _, res := range results {
		ids[res.RunID] = true
		// max_steps activations plus the final sample.
		assert.Len(t, res.ModelRows, 6)
		assert.NotZero(t, res.Seed)
	}
	assert.Len(t, ids, 4, "run IDs must be unique")
}

func TestRunnerSeedsAreDecorrelatedButReproducible(t *testing.T) {
	r := &batch.Runner{Workers: 4}

	first, err := r.Run(wealthSweep(42))
	require.NoError(t, err)
	second, err := r.Run(wealthSweep(42))
	require.NoError(t, err)

	seeds := make(map[uint64]bool)
	for i := range first {
		assert.Equal(t, first[i].Seed, second[i].Seed)
		assert.Equal(t, first[i].ModelRows, second[i].ModelRows)
		assert.Equal(t, first[i].AgentRows, second[i].AgentRows)
		seeds[first[i].Seed] = true
	}
	assert.Len(t, seeds, len(first), "each run draws a distinct seed")
}

func TestRunnerSurfacesBuildErrors(t *testing.T) {
	r := &batch.Runner{}
	s := wealthSweep(1)
	s.Model = "no_such_model"

	_, err := r.Run(s)
	assert.Error(t, err)
}
