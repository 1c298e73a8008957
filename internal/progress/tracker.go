// Package progress renders a progress bar over the logs being analyzed.
package progress

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Tracker tracks analysis progress across log files.
type Tracker struct {
	bar       *progressbar.ProgressBar
	quiet     bool
	files     atomic.Int64
	events    atomic.Int64
	startTime time.Time
}

// New creates a progress tracker. A quiet tracker counts but renders
// nothing.
func New(quiet bool) *Tracker {
	return &Tracker{
		quiet:     quiet,
		startTime: time.Now(),
	}
}

// SetTotal sets the number of log files the run will process.
func (t *Tracker) SetTotal(total int64) {
	if t.quiet {
		return
	}
	t.bar = progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionShowBytes(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("logs"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// FileDone records one processed log file and the pause events it yielded.
func (t *Tracker) FileDone(eventCount int) {
	t.files.Add(1)
	t.events.Add(int64(eventCount))
	if t.bar != nil {
		t.bar.Add64(1)
	}
}

// Files returns the number of processed log files.
func (t *Tracker) Files() int64 {
	return t.files.Load()
}

// Events returns the number of extracted pause events.
func (t *Tracker) Events() int64 {
	return t.events.Load()
}

// Finish completes the bar and prints a throughput line.
func (t *Tracker) Finish() {
	if t.bar != nil {
		t.bar.Finish()
	}
	if t.quiet {
		return
	}

	elapsed := time.Since(t.startTime)
	fmt.Println()
	fmt.Printf("Analyzed %d logs (%d pause events) in %s\n",
		t.files.Load(), t.events.Load(), elapsed.Round(time.Millisecond))
}
