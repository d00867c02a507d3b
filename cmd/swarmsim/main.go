// Command swarmsim runs one demonstration model, collects its metrics, and
// optionally persists them and serves the observation API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/swarmlab/internal/api"
	"github.com/talgya/swarmlab/internal/engine"
	"github.com/talgya/swarmlab/internal/models"
	"github.com/talgya/swarmlab/internal/persistence"
	"github.com/talgya/swarmlab/internal/space"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	var (
		modelName = flag.String("model", "wealth", "model to run: "+strings.Join(models.Names(), ", "))
		steps     = flag.Int("steps", 100, "number of steps to run")
		pop       = flag.Int("pop", 100, "population size")
		width     = flag.Int("width", 10, "grid width (0 with height 0 = no grid)")
		height    = flag.Int("height", 10, "grid height")
		topology  = flag.String("topology", "moore", "grid topology: moore, vonneumann, hex")
		wrap      = flag.Bool("wrap", true, "toroidal grid edges")
		capacity  = flag.Int("capacity", 0, "per-cell occupant limit (0 = unbounded)")
		seed      = flag.Uint64("seed", 0, "random seed (0 = draw one)")
		dbPath    = flag.String("db", "", "SQLite path for collected metrics (empty = no persistence)")
		apiPort   = flag.Int("listen", 0, "observation API port (0 = disabled, implies paced run)")
		logLevel  = flag.String("log.level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	level, ok := logLevels[*logLevel]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log level %q\n", *logLevel)
		os.Exit(2)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	topo, ok := space.ParseTopology(*topology)
	if !ok {
		slog.Error("unknown topology", "topology", *topology)
		os.Exit(2)
	}

	cfg := engine.Config{
		Population: *pop,
		Width:      *width,
		Height:     *height,
		Topology:   topo,
		Wrap:       *wrap,
		Capacity:   *capacity,
		Seed:       *seed,
	}

	inst, err := models.Build(*modelName, cfg)
	if err != nil {
		slog.Error("build model failed", "model", *modelName, "error", err)
		os.Exit(1)
	}
	slog.Info("model ready",
		"model", inst.Name,
		"population", inst.Model.Agents().Len(),
		"seed", inst.Model.Seed(),
	)
	if g := inst.Model.Grid(); g != nil {
		slog.Info("grid ready", "grid", g.String())
	}

	started := time.Now()

	if *apiPort > 0 {
		runner := engine.NewRunner(inst.Model)
		runner.MaxSteps = *steps

		server := &api.Server{
			Model:     inst.Model,
			Runner:    runner,
			Collector: inst.Collector,
			Port:      *apiPort,
		}
		server.Start()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			slog.Info("received signal, stopping", "signal", sig)
			runner.Stop()
		}()

		if err := runner.Run(); err != nil {
			os.Exit(1)
		}
	} else {
		if err := inst.Model.StepN(*steps); err != nil {
			slog.Error("run failed", "step", inst.Model.StepCount(), "error", err)
			os.Exit(1)
		}
	}

	// Final sample so the trajectory includes the end state.
	inst.Collector.Collect(inst.Model)
	inst.Model.Finish()
	elapsed := time.Since(started)

	if *dbPath != "" {
		db, err := persistence.Open(*dbPath)
		if err != nil {
			slog.Error("open database failed", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		runID := fmt.Sprintf("%s-%d", inst.Name, inst.Model.Seed())
		run := persistence.Run{
			ID:        runID,
			Model:     inst.Name,
			Seed:      fmt.Sprintf("%d", inst.Model.Seed()),
			Params:    map[string]any{"population": *pop, "width": *width, "height": *height, "steps": *steps},
			CreatedAt: time.Now().UTC(),
		}
		if err := db.SaveRun(run); err != nil {
			slog.Error("save run failed", "error", err)
			os.Exit(1)
		}
		if err := db.SaveCollected(runID, inst.Collector); err != nil {
			slog.Error("save metrics failed", "error", err)
			os.Exit(1)
		}
		slog.Info("metrics saved", "path", *dbPath, "run", runID)
	}

	fmt.Printf("\n%s: %s steps, %s model rows, %s agent rows in %s\n",
		inst.Name,
		humanize.Comma(int64(inst.Model.StepCount())),
		humanize.Comma(int64(len(inst.Collector.ModelRows()))),
		humanize.Comma(int64(len(inst.Collector.AgentRows()))),
		elapsed.Round(time.Millisecond),
	)
	for _, name := range inst.Collector.ModelNames() {
		series := inst.Collector.ModelSeries(name)
		if len(series) > 0 {
			fmt.Printf("  %s: %.4f → %.4f\n", name, series[0], series[len(series)-1])
		}
	}
}
