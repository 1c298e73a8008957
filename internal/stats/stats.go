// Package stats reduces pause event streams into summaries and composite
// scores used for ranking collectors.
package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/pauselab/gcbench/internal/parser"
)

// Summary aggregates the pause durations of one (scenario, collector) pair.
// When Count is zero the numeric fields carry NaN; callers must check
// HasData before interpreting them.
type Summary struct {
	Count int
	Total float64
	Mean  float64
	Max   float64
	P95   float64
	P99   float64
}

// HasData reports whether the summary covers at least one pause event.
func (s Summary) HasData() bool { return s.Count > 0 }

// String returns a formatted single-line summary.
func (s Summary) String() string {
	if !s.HasData() {
		return "no pause events"
	}
	return fmt.Sprintf("events=%d, total=%.1fms, max=%.2fms, p95=%.2fms, p99=%.2fms, mean=%.2fms",
		s.Count, s.Total, s.Max, s.P95, s.P99, s.Mean)
}

// Percentile fallback thresholds: below these sample sizes a nearest-rank
// estimate is meaningless, so the sample maximum is reported instead.
const (
	minSamplesP95 = 20
	minSamplesP99 = 100
)

// Summarize reduces events to a Summary using nearest-rank percentiles with
// a small-sample fallback to the maximum. This is the single percentile
// policy of the program.
func Summarize(events []parser.PauseEvent) Summary {
	n := len(events)
	if n == 0 {
		nan := math.NaN()
		return Summary{Count: 0, Total: nan, Mean: nan, Max: nan, P95: nan, P99: nan}
	}

	pauses := make([]float64, n)
	var total float64
	max := events[0].PauseMs
	for i, ev := range events {
		pauses[i] = ev.PauseMs
		total += ev.PauseMs
		if ev.PauseMs > max {
			max = ev.PauseMs
		}
	}
	sort.Float64s(pauses)

	return Summary{
		Count: n,
		Total: total,
		Mean:  total / float64(n),
		Max:   max,
		P95:   nearestRank(pauses, 0.95, minSamplesP95),
		P99:   nearestRank(pauses, 0.99, minSamplesP99),
	}
}

// nearestRank returns the value at index floor(n*q) of the ascending-sorted
// sample, or the maximum when the sample holds minSamples values or fewer.
func nearestRank(sorted []float64, q float64, minSamples int) float64 {
	n := len(sorted)
	if n <= minSamples {
		return sorted[n-1]
	}
	idx := int(float64(n) * q)
	if idx >= n {
		idx = n - 1
	}
	return sorted[idx]
}
