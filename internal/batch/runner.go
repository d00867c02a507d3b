package batch

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/swarmlab/internal/entropy"
	"github.com/talgya/swarmlab/internal/metrics"
	"github.com/talgya/swarmlab/internal/models"
	"github.com/talgya/swarmlab/internal/persistence"
)

// Result holds everything one run produced.
type Result struct {
	RunID       string
	ConfigIndex int
	Iteration   int
	Seed        uint64
	Params      map[string]any
	ModelRows   []metrics.ModelRow
	AgentRows   []metrics.AgentRow
}

// Runner executes a sweep's runs on a worker pool. Every run owns its model,
// stream, and grid outright. No state crosses run boundaries, so the only
// shared write is each worker filling its own result slot.
type Runner struct {
	Workers int             // 0 = GOMAXPROCS
	DB      *persistence.DB // optional sink; nil keeps results in memory only
}

// Run expands the sweep and executes every (configuration, iteration) pair.
// Results come back in deterministic (configuration, iteration) order
// regardless of worker scheduling.
func (r *Runner) Run(s *Sweep) ([]Result, error) {
	points, err := s.Points()
	if err != nil {
		return nil, err
	}

	baseSeed := s.Seed
	if baseSeed == 0 {
		baseSeed = entropy.AutoSeed()
		slog.Info("sweep seed drawn", "seed", baseSeed)
	}

	type job struct {
		slot  int
		point Point
		iter  int
	}

	jobs := make([]job, 0, len(points)*s.Iterations)
	for _, p := range points {
		for iter := 0; iter < s.Iterations; iter++ {
			jobs = append(jobs, job{slot: len(jobs), point: p, iter: iter})
		}
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	slog.Info("sweep starting",
		"model", s.Model,
		"configurations", len(points),
		"iterations", s.Iterations,
		"runs", len(jobs),
		"workers", workers,
	)
	started := time.Now()

	results := make([]Result, len(jobs))
	jobCh := make(chan job)

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	setErr := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				res, err := r.runOne(s, baseSeed, j.point, j.iter)
				if err != nil {
					setErr(err)
					continue
				}
				results[j.slot] = res
			}
		}()
	}

	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	slog.Info("sweep finished", "runs", len(jobs), "elapsed", time.Since(started))
	return results, nil
}

// runOne executes a single independent run.
func (r *Runner) runOne(s *Sweep, baseSeed uint64, p Point, iter int) (Result, error) {
	cfg := p.Config
	cfg.Seed = deriveSeed(baseSeed, p.Index, iter)

	inst, err := models.Build(s.Model, cfg)
	if err != nil {
		return Result{}, fmt.Errorf("batch: build config %d iter %d: %w", p.Index, iter, err)
	}

	if err := inst.Model.StepN(s.MaxSteps); err != nil {
		return Result{}, fmt.Errorf("batch: run config %d iter %d: %w", p.Index, iter, err)
	}
	// Final sample so the trajectory includes the end state.
	inst.Collector.Collect(inst.Model)

	res := Result{
		RunID:       uuid.NewString(),
		ConfigIndex: p.Index,
		Iteration:   iter,
		Seed:        cfg.Seed,
		Params:      p.Params,
		ModelRows:   inst.Collector.ModelRows(),
		AgentRows:   inst.Collector.AgentRows(),
	}

	if r.DB != nil {
		run := persistence.Run{
			ID:        res.RunID,
			Model:     s.Model,
			Seed:      fmt.Sprintf("%d", cfg.Seed),
			Params:    p.Params,
			CreatedAt: time.Now().UTC(),
		}
		if err := r.DB.SaveRun(run); err != nil {
			return Result{}, err
		}
		if err := r.DB.SaveCollected(res.RunID, inst.Collector); err != nil {
			return Result{}, err
		}
	}

	return res, nil
}

// deriveSeed mixes the base seed with the configuration index and iteration
// (splitmix64 finalizer) so runs are decorrelated but fully reproducible.
func deriveSeed(base uint64, config, iter int) uint64 {
	z := base + uint64(config)*0x9E3779B97F4A7C15 + uint64(iter)*0xBF58476D1CE4E5B9
	z ^= z >> 30
	z *= 0xBF58476D1CE4E5B9
	z ^= z >> 27
	z *= 0x94D049BB133111EB
	z ^= z >> 31
	if z == 0 {
		z = 1 // 0 means "draw a fresh seed" to the engine
	}
	return z
}
