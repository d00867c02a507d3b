// Real-time pacing loop for interactive runs. Batch sweeps bypass this and
// call Model.StepN directly.
package engine

import (
	"log/slog"
	"time"
)

// Runner drives a Model forward on a wall-clock interval. Useful when an
// observation API is watching a live run; it keeps steps strictly sequential
// while pacing them for human consumption.
type Runner struct {
	Model    *Model
	Interval time.Duration // base step interval (default 100ms)
	Speed    float64       // multiplier: 1.0 = real-time, 0 = paused
	MaxSteps int           // 0 = unbounded

	running bool
}

// NewRunner creates a runner with default pacing.
func NewRunner(m *Model) *Runner {
	return &Runner{
		Model:    m,
		Interval: 100 * time.Millisecond,
		Speed:    1.0,
	}
}

// Run steps the model until Stop is called, the model's running flag clears,
// or MaxSteps is reached. Blocks the calling goroutine.
func (r *Runner) Run() error {
	r.running = true
	slog.Info("runner started", "step", r.Model.StepCount(), "speed", r.Speed)

	for r.running && r.Model.Running() {
		if r.MaxSteps > 0 && r.Model.StepCount() >= r.MaxSteps {
			break
		}
		if r.Speed <= 0 {
			// Paused. Sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		if err := r.Model.Step(); err != nil {
			slog.Error("step failed", "step", r.Model.StepCount(), "error", err)
			r.running = false
			return err
		}

		// Sleep for the remainder of the interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(r.Interval) / r.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("runner stopped", "step", r.Model.StepCount())
	return nil
}

// Stop halts the loop after the current step completes.
func (r *Runner) Stop() {
	r.running = false
}
