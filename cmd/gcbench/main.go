package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pauselab/gcbench/internal/analysis"
	"github.com/pauselab/gcbench/internal/config"
	"github.com/pauselab/gcbench/internal/history"
	"github.com/pauselab/gcbench/internal/ingest"
	"github.com/pauselab/gcbench/internal/logging"
	"github.com/pauselab/gcbench/internal/notify"
	"github.com/pauselab/gcbench/internal/progress"
	"github.com/pauselab/gcbench/internal/report"
	"github.com/pauselab/gcbench/internal/stats"
	"github.com/pauselab/gcbench/internal/util"
	"github.com/pauselab/gcbench/internal/version"
)

func main() {
	app := &cli.App{
		Name:    version.Name,
		Usage:   version.Description,
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Override log format (text, json)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Parse the configured GC logs and rank collectors",
				Action: runAnalyze,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "scenarios",
						Usage: "Comma-separated subset of scenarios to analyze",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of parallel log parsers",
					},
					&cli.StringFlag{
						Name:  "reports",
						Usage: "Reports output directory",
					},
					&cli.BoolFlag{
						Name:  "no-history",
						Usage: "Skip recording this run in the history database",
					},
					&cli.BoolFlag{
						Name:  "no-progress",
						Usage: "Suppress the progress bar",
					},
				},
			},
			{
				Name:      "parse",
				Usage:     "Parse a single GC log and print its summary",
				ArgsUsage: "<logfile>",
				Action:    runParse,
			},
			{
				Name:   "history",
				Usage:  "List recorded analysis runs, or view one run's details",
				Action: showHistory,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "run",
						Usage: "Show details for a specific run ID",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig reads the config file and applies global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(level)
	logging.SetFormat(cfg.LogFormat)
	return cfg, nil
}

func runAnalyze(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	// Override from flags
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("reports") {
		cfg.ReportsDir = c.String("reports")
	}
	if err := cfg.FilterScenarios(util.SplitCSV(c.String("scenarios"))); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nInterrupted.")
		cancel()
	}()

	var store *history.Store
	var runID string
	if cfg.HistoryDB != "" && !c.Bool("no-history") {
		store, err = history.Open(cfg.HistoryDB)
		if err != nil {
			return err
		}
		defer store.Close()

		runID = history.NewRunID()
		if err := store.CreateRun(runID, c.String("config"), len(cfg.Scenarios), time.Now()); err != nil {
			return err
		}
	}

	tracker := progress.New(c.Bool("no-progress"))
	result, runErr := analysis.NewRunner(cfg, tracker).Run(ctx)
	if runErr != nil && !errors.Is(runErr, analysis.ErrInsufficientData) {
		recordFailure(store, runID)
		return runErr
	}

	report.PrintSummaries(os.Stdout, result)
	if err := report.WriteVerdict(os.Stdout, result); err != nil {
		return err
	}

	writer := report.NewWriter(cfg.ReportsDir)
	if err := writer.WriteAll(result); err != nil {
		recordFailure(store, runID)
		return err
	}
	logging.Info("reports written to %s", cfg.ReportsDir)

	if store != nil {
		if err := store.SaveResult(runID, result); err != nil {
			return err
		}
		status, winner := history.StatusCompleted, ""
		if result.Winners != nil {
			winner = result.Winners.Overall.Winner
		} else {
			status = history.StatusInsufficientData
		}
		if err := store.CompleteRun(runID, status, winner, time.Now()); err != nil {
			return err
		}
	}

	if runErr != nil {
		// Insufficient data: reports and history carry the outcome, but
		// the run still fails so scripts notice.
		return runErr
	}

	notifyWinner(&cfg.Notify, result)
	return nil
}

// recordFailure best-effort marks an aborted run in the history store.
func recordFailure(store *history.Store, runID string) {
	if store == nil {
		return
	}
	if err := store.CompleteRun(runID, history.StatusFailed, "", time.Now()); err != nil {
		logging.Warn("failed to record run failure: %v", err)
	}
}

// notifyWinner posts the verdict to Slack when configured. Never fatal.
func notifyWinner(cfg *notify.SlackConfig, result *analysis.Result) {
	n := notify.New(cfg)
	if !n.IsEnabled() {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteVerdict(&buf, result); err != nil {
		logging.Warn("failed to render notification: %v", err)
		return
	}
	if err := n.Send(buf.String()); err != nil {
		logging.Warn("failed to send notification: %v", err)
		return
	}
	logging.Info("winner notification sent")
}

func runParse(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: %s parse <logfile>", version.Name)
	}
	path := c.Args().First()

	collector := filepath.Base(path)
	events, err := ingest.ReadFile(path, collector, "adhoc")
	if err != nil {
		return err
	}

	summary := stats.Summarize(events)
	weights := stats.DefaultWeights()
	fmt.Printf("%s: %s\n", path, summary)
	if summary.HasData() {
		fmt.Printf("score (default weights): %.1f\n", weights.Score(summary))
	}
	return nil
}

func showHistory(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.HistoryDB == "" {
		return fmt.Errorf("history is disabled (history_db is empty)")
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	if runID := c.String("run"); runID != "" {
		return showRunDetails(store, runID)
	}

	runs, err := store.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-10s  %-19s  %s\n", "RUN ID", "STARTED", "SCENARIOS", "STATUS", "WINNER")
	for _, run := range runs {
		fmt.Printf("%-36s  %-20s  %-10d  %-19s  %s\n",
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.ScenarioCount,
			run.Status,
			run.OverallWinner,
		)
	}
	return nil
}

func showRunDetails(store *history.Store, runID string) error {
	run, pairs, err := store.GetRun(runID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  started:   %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if run.FinishedAt != nil {
		fmt.Printf("  finished:  %s\n", run.FinishedAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("  config:    %s\n", run.ConfigPath)
	fmt.Printf("  status:    %s\n", run.Status)
	if run.OverallWinner != "" {
		fmt.Printf("  winner:    %s\n", run.OverallWinner)
	}
	fmt.Println()

	fmt.Printf("%-12s  %-12s  %-16s  %8s  %10s  %10s\n", "SCENARIO", "COLLECTOR", "STATUS", "EVENTS", "MEAN_MS", "SCORE")
	for _, p := range pairs {
		fmt.Printf("%-12s  %-12s  %-16s  %8d  %10s  %10s\n",
			p.Scenario, p.Collector, p.Status, p.Events,
			formatOpt(p.MeanMs), formatOpt(p.Score))
	}
	return nil
}

// formatOpt renders a nullable stored metric.
func formatOpt(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
