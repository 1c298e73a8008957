// Package analysis orchestrates log ingestion, scoring and winner
// selection across scenarios and collectors.
package analysis

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when no scenario produced any pause
// events, so no winner can be nominated.
var ErrInsufficientData = errors.New("insufficient data: no scenario produced pause events")

// CollectorScore pairs a collector with its score; lower is better.
type CollectorScore struct {
	Collector string
	Score     float64
}

// ScoreBoard registers (scenario, collector) scores and preserves
// registration order, which decides ties during winner selection.
type ScoreBoard struct {
	scenarios []string
	order     map[string][]string
	scores    map[string]map[string]float64
}

// NewScoreBoard returns an empty score board.
func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{
		order:  make(map[string][]string),
		scores: make(map[string]map[string]float64),
	}
}

// Add registers a score. Re-registering a (scenario, collector) pair
// overwrites the score but keeps the original position.
func (b *ScoreBoard) Add(scenario, collector string, score float64) {
	byCollector, ok := b.scores[scenario]
	if !ok {
		b.scenarios = append(b.scenarios, scenario)
		byCollector = make(map[string]float64)
		b.scores[scenario] = byCollector
	}
	if _, seen := byCollector[collector]; !seen {
		b.order[scenario] = append(b.order[scenario], collector)
	}
	byCollector[collector] = score
}

// Scenarios returns scenario names in registration order.
func (b *ScoreBoard) Scenarios() []string {
	return b.scenarios
}

// Entries returns the collector scores of a scenario in registration order.
func (b *ScoreBoard) Entries(scenario string) []CollectorScore {
	collectors := b.order[scenario]
	entries := make([]CollectorScore, 0, len(collectors))
	for _, c := range collectors {
		entries = append(entries, CollectorScore{Collector: c, Score: b.scores[scenario][c]})
	}
	return entries
}

// ScenarioVerdict is the outcome of one scenario's comparison.
type ScenarioVerdict struct {
	Scenario    string
	Winner      string
	WinnerScore float64

	// Scores holds every registered collector's score for the scenario,
	// in registration order.
	Scores []CollectorScore
}

// OverallVerdict ranks collectors across all scenarios that had data.
type OverallVerdict struct {
	Winner string

	// MeanScores holds each collector's arithmetic mean score across the
	// scenarios it was registered in, in first-registration order.
	MeanScores []CollectorScore

	// Wins counts how many scenarios each collector won.
	Wins map[string]int
}

// WinnerAnalysis is the full verdict of one analysis run.
type WinnerAnalysis struct {
	// Scenarios holds one verdict per scenario with data, in
	// registration order. Scenarios where no collector produced events
	// are excluded entirely.
	Scenarios []ScenarioVerdict

	Overall OverallVerdict
}

// SelectWinners compares scores within each scenario and across scenarios.
// A scenario counts only if at least one collector scored finite; if none
// did anywhere, ErrInsufficientData is returned.
func SelectWinners(board *ScoreBoard) (*WinnerAnalysis, error) {
	wa := &WinnerAnalysis{
		Overall: OverallVerdict{Wins: make(map[string]int)},
	}

	var collectorOrder []string
	totals := make(map[string]float64)
	counts := make(map[string]int)

	for _, scenario := range board.Scenarios() {
		entries := board.Entries(scenario)
		if !hasData(entries) {
			continue
		}

		winner, winnerScore := firstMinimum(entries)
		wa.Scenarios = append(wa.Scenarios, ScenarioVerdict{
			Scenario:    scenario,
			Winner:      winner,
			WinnerScore: winnerScore,
			Scores:      entries,
		})
		wa.Overall.Wins[winner]++

		for _, e := range entries {
			if counts[e.Collector] == 0 {
				collectorOrder = append(collectorOrder, e.Collector)
			}
			totals[e.Collector] += e.Score
			counts[e.Collector]++
		}
	}

	if len(wa.Scenarios) == 0 {
		return nil, ErrInsufficientData
	}

	means := make([]CollectorScore, 0, len(collectorOrder))
	for _, c := range collectorOrder {
		means = append(means, CollectorScore{Collector: c, Score: totals[c] / float64(counts[c])})
	}
	wa.Overall.MeanScores = means
	wa.Overall.Winner = overallWinner(means, wa.Overall.Wins)

	return wa, nil
}

// hasData reports whether any entry carries a finite score.
func hasData(entries []CollectorScore) bool {
	for _, e := range entries {
		if !math.IsInf(e.Score, 1) {
			return true
		}
	}
	return false
}

// firstMinimum scans for the lowest score, keeping the earliest entry on
// ties.
func firstMinimum(entries []CollectorScore) (string, float64) {
	winner := ""
	best := math.Inf(1)
	for _, e := range entries {
		if e.Score < best {
			winner = e.Collector
			best = e.Score
		}
	}
	return winner, best
}

// overallWinner picks the collector with the lowest mean score. When every
// mean is +Inf (each collector failed somewhere), the most scenario wins
// decide, earliest registration breaking ties.
func overallWinner(means []CollectorScore, wins map[string]int) string {
	winner, _ := firstMinimum(means)
	if winner != "" {
		return winner
	}

	bestWins := -1
	for _, m := range means {
		if wins[m.Collector] > bestWins {
			winner = m.Collector
			bestWins = wins[m.Collector]
		}
	}
	return winner
}
