// Package api provides the read-only HTTP surface for observing a live run:
// step counter, agent attributes, cell occupancy, and collected metrics.
// Strictly GET; the simulation is never mutated over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/talgya/swarmlab/internal/engine"
	"github.com/talgya/swarmlab/internal/metrics"
)

// Server serves one model's state over HTTP. Reads during a live run are
// best-effort snapshots between steps.
type Server struct {
	Model     *engine.Model
	Runner    *engine.Runner
	Collector *metrics.Collector
	Port      int
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("observation API starting", "addr", addr)

	handler := s.Handler()
	go func() {
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Handler returns the route table, for tests and embedding.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/agents", s.handleAgents)
	mux.HandleFunc("/api/v1/cells", s.handleCells)
	mux.HandleFunc("/api/v1/metrics", s.handleMetrics)
	return mux
}

type statusResponse struct {
	Step       int    `json:"step"`
	Phase      string `json:"phase"`
	Running    bool   `json:"running"`
	Population int    `json:"population"`
	Seed       string `json:"seed"`
	Grid       string `json:"grid,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Step:       s.Model.StepCount(),
		Phase:      s.Model.Phase().String(),
		Running:    s.Model.Running(),
		Population: s.Model.Agents().Len(),
		Seed:       fmt.Sprintf("%d", s.Model.Seed()),
	}
	if g := s.Model.Grid(); g != nil {
		resp.Grid = g.String()
	}
	writeJSON(w, resp)
}

type agentResponse struct {
	ID     uint64  `json:"id"`
	Wealth int     `json:"wealth"`
	Group  string  `json:"group,omitempty"`
	Store  float64 `json:"store"`
	Happy  bool    `json:"happy"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	OnGrid bool    `json:"on_grid"`
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	members := s.Model.Agents().Members()
	out := make([]agentResponse, 0, len(members))
	for _, a := range members {
		resp := agentResponse{
			ID:     uint64(a.ID),
			Wealth: a.Wealth,
			Group:  a.Group,
			Store:  a.Store,
			Happy:  a.Happy,
		}
		if c, ok := a.Coord(); ok {
			resp.X, resp.Y = c.X, c.Y
			resp.OnGrid = true
		}
		out = append(out, resp)
	}
	writeJSON(w, out)
}

type cellResponse struct {
	X         int      `json:"x"`
	Y         int      `json:"y"`
	Count     int      `json:"count"`
	Capacity  int      `json:"capacity"`
	Occupants []uint64 `json:"occupants,omitempty"`
}

// handleCells feeds occupancy heatmaps: one entry per cell, row-major.
func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	g := s.Model.Grid()
	if g == nil {
		http.Error(w, "model has no grid", http.StatusNotFound)
		return
	}
	cells := g.Cells()
	out := make([]cellResponse, 0, len(cells))
	for _, c := range cells {
		out = append(out, cellResponse{
			X:         c.Coord.X,
			Y:         c.Coord.Y,
			Count:     c.Count(),
			Capacity:  c.Capacity(),
			Occupants: c.Occupants(),
		})
	}
	writeJSON(w, out)
}

type metricsResponse struct {
	ModelNames []string           `json:"model_reporters"`
	ModelRows  []metrics.ModelRow `json:"model_rows"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.Collector == nil {
		http.Error(w, "no collector attached", http.StatusNotFound)
		return
	}
	writeJSON(w, metricsResponse{
		ModelNames: s.Collector.ModelNames(),
		ModelRows:  s.Collector.ModelRows(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
