// Command bladealloc solves a blade placement scenario and prints the
// per-blade task report.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/placekit/bladealloc/internal/config"
	"github.com/placekit/bladealloc/internal/logging"
	"github.com/placekit/bladealloc/internal/metrics"
	"github.com/placekit/bladealloc/internal/planner"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "bladealloc: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("bladealloc", pflag.ContinueOnError)
	flags.String("scenario", "", "path to a YAML scenario file (empty runs the built-in demo)")
	flags.Duration("solve-timeout", 30*time.Second, "search budget for the solver")
	flags.Int("verbosity", 0, "log verbosity (0=info, 1=debug, 2=trace)")
	flags.String("metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")
	flags.String("strategy", config.StrategyExact, "search strategy: exact or greedy")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	log := logging.Setup(cfg.Verbosity)

	metrics.Register(prometheus.DefaultRegisterer)
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error(err, "metrics server stopped")
			}
		}()
	}

	scenario, err := cfg.LoadScenario()
	if err != nil {
		return err
	}
	prob, err := planner.FromScenario(scenario)
	if err != nil {
		return err
	}
	strategy, err := cfg.SolverStrategy()
	if err != nil {
		return err
	}

	log.Info("solving scenario",
		"blades", len(prob.Blades),
		"tasks", len(prob.Tasks),
		"strategy", cfg.Strategy,
		"timeout", cfg.SolveTimeout)

	pl := planner.New(
		planner.WithLogger(log),
		planner.WithTimeout(cfg.SolveTimeout),
		planner.WithStrategy(strategy),
	)
	placement, err := pl.Plan(context.Background(), prob)
	if err != nil {
		return err
	}

	fmt.Printf("Tasks worked: %d\n", placement.Worked)
	for i, ids := range placement.Blades {
		fmt.Printf("Blade %s worked: %v\n", prob.Blades[i].Name(), ids)
	}
	return nil
}
