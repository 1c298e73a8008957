package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pauselab/gcbench/internal/config"
	"github.com/pauselab/gcbench/internal/ingest"
	"github.com/pauselab/gcbench/internal/logging"
	"github.com/pauselab/gcbench/internal/parser"
	"github.com/pauselab/gcbench/internal/progress"
	"github.com/pauselab/gcbench/internal/stats"
)

// SourceStatus records what the ingest boundary found for a pair. Missing
// and empty sources score identically (+Inf); the distinction only feeds
// reporting.
type SourceStatus int

const (
	// SourceOK means the log existed and yielded pause events.
	SourceOK SourceStatus = iota
	// SourceEmpty means the log existed but held no pause events.
	SourceEmpty
	// SourceMissing means the log file did not exist.
	SourceMissing
)

// String returns a short human-readable status label.
func (s SourceStatus) String() string {
	switch s {
	case SourceOK:
		return "ok"
	case SourceEmpty:
		return "no pause events"
	case SourceMissing:
		return "log missing"
	default:
		return "unknown"
	}
}

// PairResult is the outcome for one (scenario, collector) pair.
type PairResult struct {
	Scenario  string
	Collector string
	Path      string
	Status    SourceStatus
	Events    []parser.PauseEvent
	Summary   stats.Summary
	Score     float64
}

// Reliability tallies how many of a collector's registered pairs produced
// data.
type Reliability struct {
	Collector string
	Succeeded int
	Attempted int
}

// Result is the full output of an analysis run.
type Result struct {
	// Pairs holds one result per configured (scenario, collector) pair,
	// in configuration order.
	Pairs []PairResult

	// Winners is nil when the run had no data at all.
	Winners *WinnerAnalysis

	// Reliability is ordered by first collector registration.
	Reliability []Reliability
}

// Runner executes a full analysis over the configured scenarios.
type Runner struct {
	cfg     *config.Config
	tracker *progress.Tracker
}

// NewRunner creates a Runner. The tracker may be nil.
func NewRunner(cfg *config.Config, tracker *progress.Tracker) *Runner {
	return &Runner{cfg: cfg, tracker: tracker}
}

type job struct {
	idx       int
	scenario  string
	collector string
	path      string
}

// Run parses every configured log with a bounded worker pool, scores each
// pair, and selects winners. Each pair aggregates its own events before any
// cross-pair comparison, so parallelism does not affect the outcome.
// Returns ErrInsufficientData (with pair results still populated) when no
// pair produced events.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	var jobs []job
	for _, sc := range r.cfg.Scenarios {
		for _, l := range sc.Logs {
			jobs = append(jobs, job{idx: len(jobs), scenario: sc.Name, collector: l.Collector, path: l.Path})
		}
	}

	if r.tracker != nil {
		r.tracker.SetTotal(int64(len(jobs)))
	}

	pairs := make([]PairResult, len(jobs))
	workers := r.cfg.Workers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan job)
	errCh := make(chan error, len(jobs))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				pairs[j.idx] = r.analyzePair(j, errCh)
			}
		}()
	}

feed:
	for _, j := range jobs {
		select {
		case jobCh <- j:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := <-errCh; err != nil {
		return nil, err
	}

	if r.tracker != nil {
		r.tracker.Finish()
	}

	result := &Result{
		Pairs:       pairs,
		Reliability: tallyReliability(pairs),
	}

	board := NewScoreBoard()
	for _, p := range pairs {
		board.Add(p.Scenario, p.Collector, p.Score)
	}

	winners, err := SelectWinners(board)
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			return result, err
		}
		return nil, err
	}
	result.Winners = winners
	return result, nil
}

// analyzePair ingests one log and scores it. A missing file collapses to an
// empty event sequence; any other read failure goes to errCh.
func (r *Runner) analyzePair(j job, errCh chan<- error) PairResult {
	pair := PairResult{
		Scenario:  j.scenario,
		Collector: j.collector,
		Path:      j.path,
	}

	events, err := ingest.ReadFile(j.path, j.collector, j.scenario)
	switch {
	case errors.Is(err, ingest.ErrNotFound):
		logging.Warn("missing log for %s/%s: %s", j.scenario, j.collector, j.path)
		pair.Status = SourceMissing
	case err != nil:
		errCh <- fmt.Errorf("analyzing %s/%s: %w", j.scenario, j.collector, err)
		pair.Status = SourceMissing
	case len(events) == 0:
		logging.Debug("log %s has no pause events", j.path)
		pair.Status = SourceEmpty
	default:
		pair.Status = SourceOK
		pair.Events = events
	}

	pair.Summary = stats.Summarize(pair.Events)
	pair.Score = r.cfg.Weights.Score(pair.Summary)
	logging.Debug("%s/%s: %s, score=%.1f", j.scenario, j.collector, pair.Summary, pair.Score)

	if r.tracker != nil {
		r.tracker.FileDone(len(pair.Events))
	}
	return pair
}

// tallyReliability counts pairs with data per collector, mirroring the
// "successful runs: X/N" line of the reports.
func tallyReliability(pairs []PairResult) []Reliability {
	index := make(map[string]int)
	var tally []Reliability
	for _, p := range pairs {
		i, ok := index[p.Collector]
		if !ok {
			i = len(tally)
			index[p.Collector] = i
			tally = append(tally, Reliability{Collector: p.Collector})
		}
		tally[i].Attempted++
		if p.Status == SourceOK {
			tally[i].Succeeded++
		}
	}
	return tally
}
