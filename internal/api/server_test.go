package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/swarmlab/internal/api"
	"github.com/talgya/swarmlab/internal/engine"
	"github.com/talgya/swarmlab/internal/metrics"
	"github.com/talgya/swarmlab/internal/models"
)

func newTestServer(t *testing.T) (*api.Server, *httptest.Server) {
	t.Helper()
	inst, err := models.Build("wealth", engine.Config{
		Population: 10, Width: 5, Height: 5, Wrap: true, Seed: 42,
	})
	require.NoError(t, err)
	require.NoError(t, inst.Model.StepN(3))

	s := &api.Server{Model: inst.Model, Collector: inst.Collector}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestStatusEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	var status struct {
		Step       int    `json:"step"`
		Phase      string `json:"phase"`
		Running    bool   `json:"running"`
		Population int    `json:"population"`
		Grid       string `json:"grid"`
	}
	resp := getJSON(t, ts.URL+"/api/v1/status", &status)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, status.Step)
	assert.Equal(t, "stepping", status.Phase)
	assert.True(t, status.Running)
	assert.Equal(t, 10, status.Population)
	assert.NotEmpty(t, status.Grid)
}

func TestAgentsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	var agents []struct {
		ID     uint64 `json:"id"`
		Wealth int    `json:"wealth"`
		OnGrid bool   `json:"on_grid"`
	}
	getJSON(t, ts.URL+"/api/v1/agents", &agents)

	require.Len(t, agents, 10)
	total := 0
	for _, a := range agents {
		total += a.Wealth
		assert.True(t, a.OnGrid)
	}
	assert.Equal(t, 10, total)
}

func TestCellsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	var cells []struct {
		X     int `json:"x"`
		Y     int `json:"y"`
		Count int `json:"count"`
	}
	getJSON(t, ts.URL+"/api/v1/cells", &cells)

	require.Len(t, cells, 25)
	occupants := 0
	for _, c := range cells {
		occupants += c.Count
	}
	assert.Equal(t, 10, occupants)
}

func TestCellsEndpointWithoutGrid(t *testing.T) {
	m, err := engine.New(engine.Config{Population: 2, Seed: 1})
	require.NoError(t, err)
	ts := httptest.NewServer((&api.Server{Model: m}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/cells")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t)

	var out struct {
		ModelNames []string           `json:"model_reporters"`
		ModelRows  []metrics.ModelRow `json:"model_rows"`
	}
	getJSON(t, ts.URL+"/api/v1/metrics", &out)

	assert.Equal(t, []string{"gini", "total_wealth"}, out.ModelNames)
	require.Len(t, out.ModelRows, 3)
	assert.Equal(t, 10.0, out.ModelRows[0].Values["total_wealth"])
}
