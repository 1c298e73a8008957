// Package report writes the CSV and text outputs of an analysis run.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pauselab/gcbench/internal/analysis"
)

// Report file names, fixed for compatibility with downstream tooling.
const (
	EventsFile  = "gc-events.csv"
	SummaryFile = "gc-summary.csv"
	WinnersFile = "winner-analysis.txt"
)

// Writer writes the report set into a directory, creating it if needed.
type Writer struct {
	dir string
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteAll writes the event CSV, the summary CSV and the winner analysis
// text file. A run without data still produces all three; the verdict file
// then records the insufficient-data outcome.
func (w *Writer) WriteAll(result *analysis.Result) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("creating reports dir %s: %w", w.dir, err)
	}
	if err := w.writeEvents(result); err != nil {
		return err
	}
	if err := w.writeSummary(result); err != nil {
		return err
	}
	return w.writeWinners(result)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// writeEvents writes one row per pause event, in file line order.
func (w *Writer) writeEvents(result *analysis.Result) error {
	header := []string{"scenario", "collector", "timestamp", "uptime_sec", "pause_ms"}
	var rows [][]string
	for _, pair := range result.Pairs {
		for _, ev := range pair.Events {
			uptime := ""
			if ev.UptimeSec != nil {
				uptime = formatFloat(*ev.UptimeSec)
			}
			rows = append(rows, []string{
				pair.Scenario, pair.Collector, ev.Timestamp, uptime, formatFloat(ev.PauseMs),
			})
		}
	}
	return w.writeCSV(EventsFile, header, rows)
}

// writeSummary writes one row per (scenario, collector) pair.
func (w *Writer) writeSummary(result *analysis.Result) error {
	header := []string{
		"scenario", "collector", "status", "events",
		"total_pause_ms", "max_pause_ms", "p95_ms", "p99_ms", "mean_ms", "score",
	}
	var rows [][]string
	for _, pair := range result.Pairs {
		s := pair.Summary
		rows = append(rows, []string{
			pair.Scenario, pair.Collector, pair.Status.String(),
			strconv.Itoa(s.Count),
			formatFloat(s.Total), formatFloat(s.Max),
			formatFloat(s.P95), formatFloat(s.P99), formatFloat(s.Mean),
			formatScore(pair.Score),
		})
	}
	return w.writeCSV(SummaryFile, header, rows)
}

// writeWinners writes the human-readable verdict file.
func (w *Writer) writeWinners(result *analysis.Result) error {
	path := filepath.Join(w.dir, WinnersFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteVerdict(f, result); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// WriteVerdict renders the winner analysis as text. The same rendering
// serves the report file and the console summary.
func WriteVerdict(out io.Writer, result *analysis.Result) error {
	wa := result.Winners
	if wa == nil {
		_, err := fmt.Fprintln(out, "INSUFFICIENT DATA: no scenario produced pause events")
		return err
	}

	fmt.Fprintln(out, "GC BENCHMARK WINNER ANALYSIS")
	fmt.Fprintln(out, "============================")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Per-scenario winners:")
	for _, v := range wa.Scenarios {
		fmt.Fprintf(out, "  %-12s %s (score: %.1f)\n", v.Scenario+":", v.Winner, v.WinnerScore)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Average scores across scenarios with data:")
	for _, m := range wa.Overall.MeanScores {
		fmt.Fprintf(out, "  %-12s %8s (won %d/%d scenarios)\n",
			m.Collector+":", formatScore(m.Score), wa.Overall.Wins[m.Collector], len(wa.Scenarios))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Reliability (pairs with data / pairs attempted):")
	for _, r := range result.Reliability {
		fmt.Fprintf(out, "  %-12s %d/%d\n", r.Collector+":", r.Succeeded, r.Attempted)
	}
	fmt.Fprintln(out)

	_, err := fmt.Fprintf(out, "OVERALL WINNER: %s\n", wa.Overall.Winner)
	return err
}

// PrintSummaries writes the per-pair statistics block shown after a run.
func PrintSummaries(out io.Writer, result *analysis.Result) {
	current := ""
	for _, pair := range result.Pairs {
		if pair.Scenario != current {
			if current != "" {
				fmt.Fprintln(out)
			}
			current = pair.Scenario
			fmt.Fprintf(out, "=== SCENARIO: %s ===\n", current)
		}
		if pair.Status == analysis.SourceOK {
			fmt.Fprintf(out, "%-12s %s, score=%.1f\n", pair.Collector+":", pair.Summary, pair.Score)
		} else {
			fmt.Fprintf(out, "%-12s failed (%s)\n", pair.Collector+":", pair.Status)
		}
	}
	fmt.Fprintln(out)
}

// formatFloat renders a value for CSV, leaving NaN cells empty.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatScore renders a score, spelling out the failure sentinel.
func formatScore(v float64) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
