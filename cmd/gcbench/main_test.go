package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/pauselab/gcbench/internal/logging"
)

func newTestContext(t *testing.T, flags map[string]string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	set.String("config", "", "")
	set.String("log-level", "", "")
	set.String("log-format", "", "")
	for name, value := range flags {
		if err := set.Set(name, value); err != nil {
			t.Fatalf("setting flag %s: %v", name, err)
		}
	}
	return cli.NewContext(nil, set, nil)
}

func writeTestConfig(t *testing.T) string {
	t.Helper()
	content := `
scenarios:
  - name: baseline
    logs:
      - collector: zgc
        path: logs/gc-zgc.log
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	defer logging.SetLevel(logging.LevelInfo)
	defer logging.SetFormat("text")

	c := newTestContext(t, map[string]string{
		"config":    writeTestConfig(t),
		"log-level": "debug",
	})

	cfg, err := loadConfig(c)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if logging.GetLevel() != logging.LevelDebug {
		t.Errorf("logging level = %v, want debug", logging.GetLevel())
	}
}

func TestLoadConfigRejectsBadLevel(t *testing.T) {
	c := newTestContext(t, map[string]string{
		"config":    writeTestConfig(t),
		"log-level": "loud",
	})
	if _, err := loadConfig(c); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestFormatOpt(t *testing.T) {
	if got := formatOpt(nil); got != "-" {
		t.Errorf("formatOpt(nil) = %q, want -", got)
	}
	v := 12.345
	if got := formatOpt(&v); got != "12.35" {
		t.Errorf("formatOpt(12.345) = %q, want 12.35", got)
	}
}
