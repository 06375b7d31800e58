// Package config loads runtime configuration for the bladealloc harness
// from flags, environment variables, and scenario files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/placekit/bladealloc/api/v1alpha1"
	"github.com/placekit/bladealloc/pkg/solver"
)

// Strategy names accepted in configuration.
const (
	StrategyExact  = "exact"
	StrategyGreedy = "greedy"
)

// Config holds the harness settings.
type Config struct {
	// ScenarioPath is the YAML scenario file to solve. Empty selects the
	// built-in demonstration scenario.
	ScenarioPath string

	// SolveTimeout bounds the solver's search.
	SolveTimeout time.Duration

	// Verbosity is the log verbosity (0=info, 1=debug, 2=trace).
	Verbosity int

	// MetricsAddr is the address to serve Prometheus metrics on. Empty
	// disables the endpoint.
	MetricsAddr string

	// Strategy selects the search strategy ("exact" or "greedy").
	Strategy string
}

// Load reads configuration with flag > environment > default precedence.
// The flag set may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("scenario", "")
	v.SetDefault("solve-timeout", 30*time.Second)
	v.SetDefault("verbosity", 0)
	v.SetDefault("metrics-addr", "")
	v.SetDefault("strategy", StrategyExact)

	v.SetEnvPrefix("BLADEALLOC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	cfg := &Config{
		ScenarioPath: v.GetString("scenario"),
		SolveTimeout: v.GetDuration("solve-timeout"),
		Verbosity:    v.GetInt("verbosity"),
		MetricsAddr:  v.GetString("metrics-addr"),
		Strategy:     v.GetString("strategy"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks for invalid configuration values.
func (c *Config) Validate() error {
	if c.SolveTimeout <= 0 {
		return fmt.Errorf("solve-timeout must be positive, got %s", c.SolveTimeout)
	}
	if c.Verbosity < 0 {
		return fmt.Errorf("verbosity must be non-negative, got %d", c.Verbosity)
	}
	if _, err := c.SolverStrategy(); err != nil {
		return err
	}
	return nil
}

// SolverStrategy maps the configured strategy name to the solver's type.
func (c *Config) SolverStrategy() (solver.Strategy, error) {
	switch c.Strategy {
	case StrategyExact:
		return solver.StrategyBranchAndBound, nil
	case StrategyGreedy:
		return solver.StrategyGreedy, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q (want %q or %q)", c.Strategy, StrategyExact, StrategyGreedy)
	}
}

// LoadScenario reads and validates the scenario to solve. An empty path
// selects the built-in demonstration scenario.
func (c *Config) LoadScenario() (v1alpha1.Scenario, error) {
	if c.ScenarioPath == "" {
		return v1alpha1.DefaultScenario(), nil
	}

	raw, err := os.ReadFile(c.ScenarioPath)
	if err != nil {
		return v1alpha1.Scenario{}, fmt.Errorf("reading scenario %s: %w", c.ScenarioPath, err)
	}
	var s v1alpha1.Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return v1alpha1.Scenario{}, fmt.Errorf("parsing scenario %s: %w", c.ScenarioPath, err)
	}
	s.Normalize()
	if err := s.Validate(); err != nil {
		return v1alpha1.Scenario{}, fmt.Errorf("invalid scenario %s: %w", c.ScenarioPath, err)
	}
	return s, nil
}
