package main

import (
	"context"
	"os"
	"time"

	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"santral/internal/bench"
	"santral/internal/config"
	"santral/internal/perf"
)

func main() {
	seed := cli.Int64P("seed", "s", time.Now().UnixNano(), "Scenario shuffle seed")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	levels := map[string]log.Level{
		"debug": log.LevelDebug,
		"info":  log.LevelInfo,
		"warn":  log.LevelWarn,
		"error": log.LevelError,
	}
	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: levels[*logLevel],
	})))

	cfg := config.Load()

	r := &bench.Runner{
		Tracker:     perf.NewTracker(),
		HistoryPath: cfg.Paths.BenchGecmis,
		ReportPath:  cfg.Paths.Benchmark,
		Seed:        *seed,
	}

	report, err := r.Run(context.Background())
	if err != nil {
		log.Error("Benchmark failed", "err", err)
		os.Exit(1)
	}

	log.Info("Benchmark finished",
		"calls", report.TestSummary.TotalTestCalls,
		"requirement_met", report.TestSummary.RequirementMet,
		"success_rate", report.KPI.SuccessRate,
		"avg_satisfaction", report.KPI.CustomerSatisfaction,
	)
}
