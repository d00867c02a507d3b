// Command sweep runs the cross-product of a YAML-described parameter grid
// and stores every collected row per (configuration, iteration, step).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/swarmlab/internal/batch"
	"github.com/talgya/swarmlab/internal/persistence"
)

func main() {
	var (
		configPath = flag.String("config", "", "sweep YAML file (required)")
		dbPath     = flag.String("db", "", "SQLite path for collected metrics (empty = summary only)")
		workers    = flag.Int("workers", 0, "parallel runs (0 = GOMAXPROCS)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "usage: sweep -config experiment.yaml [-db metrics.db] [-workers N]")
		os.Exit(2)
	}

	sweep, err := batch.LoadSweep(*configPath)
	if err != nil {
		slog.Error("load sweep failed", "path", *configPath, "error", err)
		os.Exit(1)
	}

	runner := &batch.Runner{Workers: *workers}
	if *dbPath != "" {
		db, err := persistence.Open(*dbPath)
		if err != nil {
			slog.Error("open database failed", "path", *dbPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		runner.DB = db
	}

	started := time.Now()
	results, err := runner.Run(sweep)
	if err != nil {
		slog.Error("sweep failed", "error", err)
		os.Exit(1)
	}

	modelRows, agentRows := 0, 0
	for _, res := range results {
		modelRows += len(res.ModelRows)
		agentRows += len(res.AgentRows)
	}

	fmt.Printf("\n%s: %s runs, %s model rows, %s agent rows in %s\n",
		sweep.Model,
		humanize.Comma(int64(len(results))),
		humanize.Comma(int64(modelRows)),
		humanize.Comma(int64(agentRows)),
		time.Since(started).Round(time.Millisecond),
	)
}
