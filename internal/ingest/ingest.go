// Package ingest reads GC log sources into pause event sequences.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pauselab/gcbench/internal/parser"
)

// ErrNotFound marks a log source that does not exist. Callers collapse it
// to an empty event sequence but may report the missing source separately
// from a present-but-eventless log.
var ErrNotFound = errors.New("log source not found")

// Events applies the parser to every line of r, drops lines that hold no
// pause record, and stamps surviving events with the collector and scenario
// of the ingestion context. Only a failing read is an error; unparseable
// content never is.
func Events(r io.Reader, collector, scenario string) ([]parser.PauseEvent, error) {
	var events []parser.PauseEvent
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		ev, ok := parser.Parse(sc.Text())
		if !ok {
			continue
		}
		ev.Collector = collector
		ev.Scenario = scenario
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s/%s log: %w", scenario, collector, err)
	}
	return events, nil
}

// ReadFile opens the log at path and extracts its events. A missing file is
// reported as ErrNotFound; any other open or read failure is a hard error.
func ReadFile(path, collector, scenario string) ([]parser.PauseEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("opening log %s: %w", path, err)
	}
	defer f.Close()
	return Events(f, collector, scenario)
}
