package report

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pauselab/gcbench/internal/analysis"
	"github.com/pauselab/gcbench/internal/parser"
	"github.com/pauselab/gcbench/internal/stats"
)

func sampleResult() *analysis.Result {
	uptime := 0.5
	zgcEvents := []parser.PauseEvent{
		{PauseMs: 1.5, UptimeSec: &uptime, Collector: "zgc", Scenario: "baseline"},
		{PauseMs: 2.5, Timestamp: "2024-03-01T10:15:30.123+0000", Collector: "zgc", Scenario: "baseline"},
	}
	zgcSummary := stats.Summarize(zgcEvents)
	weights := stats.DefaultWeights()

	pairs := []analysis.PairResult{
		{
			Scenario: "baseline", Collector: "zgc", Status: analysis.SourceOK,
			Events: zgcEvents, Summary: zgcSummary, Score: weights.Score(zgcSummary),
		},
		{
			Scenario: "baseline", Collector: "shenandoah", Status: analysis.SourceMissing,
			Summary: stats.Summarize(nil), Score: math.Inf(1),
		},
	}

	board := analysis.NewScoreBoard()
	for _, p := range pairs {
		board.Add(p.Scenario, p.Collector, p.Score)
	}
	winners, _ := analysis.SelectWinners(board)

	return &analysis.Result{
		Pairs:   pairs,
		Winners: winners,
		Reliability: []analysis.Reliability{
			{Collector: "zgc", Succeeded: 1, Attempted: 1},
			{Collector: "shenandoah", Succeeded: 0, Attempted: 1},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	if err := NewWriter(dir).WriteAll(sampleResult()); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}

	t.Run("events csv", func(t *testing.T) {
		rows := readCSV(t, filepath.Join(dir, EventsFile))
		if len(rows) != 3 {
			t.Fatalf("rows = %d, want header + 2 events", len(rows))
		}
		if rows[0][0] != "scenario" || rows[0][4] != "pause_ms" {
			t.Errorf("header = %v", rows[0])
		}
		if rows[1][3] != "0.5" || rows[1][4] != "1.5" {
			t.Errorf("event row = %v", rows[1])
		}
		if rows[2][2] != "2024-03-01T10:15:30.123+0000" || rows[2][3] != "" {
			t.Errorf("event row = %v", rows[2])
		}
	})

	t.Run("summary csv", func(t *testing.T) {
		rows := readCSV(t, filepath.Join(dir, SummaryFile))
		if len(rows) != 3 {
			t.Fatalf("rows = %d, want header + 2 pairs", len(rows))
		}
		zgc, shen := rows[1], rows[2]
		if zgc[1] != "zgc" || zgc[2] != "ok" || zgc[3] != "2" {
			t.Errorf("zgc row = %v", zgc)
		}
		if shen[2] != "log missing" || shen[3] != "0" {
			t.Errorf("shenandoah row = %v", shen)
		}
		if shen[4] != "" {
			t.Errorf("empty summary total = %q, want empty cell", shen[4])
		}
		if shen[9] != "inf" {
			t.Errorf("missing log score = %q, want inf", shen[9])
		}
	})

	t.Run("winner analysis", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(dir, WinnersFile))
		if err != nil {
			t.Fatal(err)
		}
		text := string(data)
		for _, want := range []string{
			"OVERALL WINNER: zgc",
			"baseline:",
			"shenandoah:  0/1",
			"zgc:         1/1",
		} {
			if !strings.Contains(text, want) {
				t.Errorf("winner analysis missing %q:\n%s", want, text)
			}
		}
	})
}

func TestWriteVerdictInsufficientData(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVerdict(&buf, &analysis.Result{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "INSUFFICIENT DATA") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintSummaries(t *testing.T) {
	var buf bytes.Buffer
	PrintSummaries(&buf, sampleResult())
	out := buf.String()
	if !strings.Contains(out, "=== SCENARIO: baseline ===") {
		t.Errorf("missing scenario header:\n%s", out)
	}
	if !strings.Contains(out, "failed (log missing)") {
		t.Errorf("missing failure line:\n%s", out)
	}
	if !strings.Contains(out, "events=2") {
		t.Errorf("missing summary line:\n%s", out)
	}
}
