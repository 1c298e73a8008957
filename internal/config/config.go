// Package config loads and validates the gcbench run configuration.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pauselab/gcbench/internal/notify"
	"github.com/pauselab/gcbench/internal/stats"
)

// LogSource points a collector at its GC log file within a scenario.
type LogSource struct {
	Collector string `yaml:"collector"`
	Path      string `yaml:"path"`
}

// Scenario is one memory-pressure test condition and the collector logs
// recorded under it. Scenarios and logs are ordered lists, not maps: the
// order collectors appear in is their registration order, which breaks
// score ties deterministically.
type Scenario struct {
	Name string      `yaml:"name"`
	Logs []LogSource `yaml:"logs"`
}

// Config is the full gcbench run configuration.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `yaml:"log_format"`

	// Workers bounds parallel log parsing.
	Workers int `yaml:"workers"`

	// ReportsDir receives the CSV and text reports.
	ReportsDir string `yaml:"reports_dir"`

	// HistoryDB is the SQLite run-history path. Empty disables history.
	HistoryDB string `yaml:"history_db"`

	// Weights are the composite score coefficients.
	Weights stats.Weights `yaml:"weights"`

	// Notify configures the Slack webhook notification.
	Notify notify.SlackConfig `yaml:"notify"`

	// Scenarios are the (scenario, collector, log path) triples to analyze.
	Scenarios []Scenario `yaml:"scenarios"`
}

// Default returns a configuration with all defaults applied and no
// scenarios.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		Workers:    4,
		ReportsDir: "reports",
		HistoryDB:  "gcbench.db",
		Weights:    stats.DefaultWeights(),
		Notify:     notify.SlackConfig{Username: "gcbench"},
	}
}

// Load reads a YAML configuration file, applies defaults for omitted
// fields, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// FilterScenarios restricts the configuration to the named scenarios,
// preserving order. An empty list keeps everything; unknown names are an
// error.
func (c *Config) FilterScenarios(names []string) error {
	if len(names) == 0 {
		return nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var kept []Scenario
	for _, sc := range c.Scenarios {
		if want[sc.Name] {
			kept = append(kept, sc)
			delete(want, sc.Name)
		}
	}
	if len(want) > 0 {
		unknown := make([]string, 0, len(want))
		for n := range want {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return fmt.Errorf("unknown scenarios: %s", strings.Join(unknown, ", "))
	}
	c.Scenarios = kept
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if !c.Weights.Valid() {
		return fmt.Errorf("weights must be non-negative with total_divisor > 0")
	}
	if len(c.Scenarios) == 0 {
		return fmt.Errorf("at least one scenario is required")
	}

	seenScenario := make(map[string]bool)
	for i, sc := range c.Scenarios {
		if sc.Name == "" {
			return fmt.Errorf("scenario %d has no name", i)
		}
		if seenScenario[sc.Name] {
			return fmt.Errorf("duplicate scenario %q", sc.Name)
		}
		seenScenario[sc.Name] = true

		if len(sc.Logs) == 0 {
			return fmt.Errorf("scenario %q has no logs", sc.Name)
		}
		seenCollector := make(map[string]bool)
		for _, log := range sc.Logs {
			if log.Collector == "" {
				return fmt.Errorf("scenario %q has a log entry without a collector", sc.Name)
			}
			if log.Path == "" {
				return fmt.Errorf("scenario %q collector %q has no log path", sc.Name, log.Collector)
			}
			if seenCollector[log.Collector] {
				return fmt.Errorf("scenario %q registers collector %q twice", sc.Name, log.Collector)
			}
			seenCollector[log.Collector] = true
		}
	}
	return nil
}
