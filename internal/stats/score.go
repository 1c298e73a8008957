package stats

import "math"

// Weights holds the coefficients of the composite pause score. Tail latency
// terms dominate; the total is divided down so aggregate pause time stays
// commensurate with millisecond-scale percentile terms.
type Weights struct {
	P99          float64 `yaml:"p99"`
	P95          float64 `yaml:"p95"`
	Max          float64 `yaml:"max"`
	Mean         float64 `yaml:"mean"`
	TotalDivisor float64 `yaml:"total_divisor"`
}

// DefaultWeights returns the coefficients used by historical reports.
func DefaultWeights() Weights {
	return Weights{P99: 3, P95: 2, Max: 2, Mean: 1, TotalDivisor: 1000}
}

// Valid reports whether the weights can be used for scoring.
func (w Weights) Valid() bool {
	return w.P99 >= 0 && w.P95 >= 0 && w.Max >= 0 && w.Mean >= 0 && w.TotalDivisor > 0
}

// Score maps a summary to a single comparable value; lower is better.
// A summary without data scores +Inf so that a failed or missing run can
// never win a comparison.
func (w Weights) Score(s Summary) float64 {
	if !s.HasData() {
		return math.Inf(1)
	}
	return w.P99*s.P99 + w.P95*s.P95 + w.Max*s.Max + w.Mean*s.Mean + s.Total/w.TotalDivisor
}
