// Package parser extracts pause events from unified GC log lines.
//
// Collector log formats differ in timestamp prefixes, duration units and
// surrounding text, so extraction is tolerant: a line either yields exactly
// one pause event or is ignored.
package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// PauseEvent is a single recorded stop-the-world pause.
type PauseEvent struct {
	// PauseMs is the pause duration in milliseconds. Always >= 0.
	PauseMs float64

	// Timestamp is the ISO-8601 prefix of the source line, empty if the
	// line carried none.
	Timestamp string

	// UptimeSec is the process-relative time of the event, nil if the
	// line carried no uptime prefix.
	UptimeSec *float64

	// Collector and Scenario identify which run produced the event.
	// They are stamped by the ingestion context, not by the parser.
	Collector string
	Scenario  string
}

// Lines like
//
//	2024-03-01T10:15:30.123+0000: 4.312s: GC(12) Pause Young (Normal): 1.234ms
//	12.5: GC(3) Pause Full: 0.5 s
//	GC(7) Pause Remark: 0.876ms
//
// must all resolve (the last one without prefix data). The millisecond form
// wins when both units match.
var (
	pauseMillisRe  = regexp.MustCompile(`Pause[^:]*?:\s*([\d.]+)\s*ms`)
	pauseSecondsRe = regexp.MustCompile(`Pause[^:]*?:\s*([\d.]+)\s*s`)
	linePrefixRe   = regexp.MustCompile(`^(?:(\d{4}-\d{2}-\d{2}T[0-9:.+-]+):\s*)?([\d.]+)s?:\s*`)
)

const pauseMarker = "Pause"

// Parse extracts a pause event from one log line. The second return value
// is false when the line holds no recognizable pause record; such lines are
// dropped by callers, never treated as errors.
func Parse(line string) (PauseEvent, bool) {
	if !strings.Contains(line, pauseMarker) {
		return PauseEvent{}, false
	}

	pauseMs, ok := extractDuration(line)
	if !ok {
		return PauseEvent{}, false
	}

	ev := PauseEvent{PauseMs: pauseMs}

	// The prefix is independent of the duration: a line without it still
	// yields an event, with timestamp and uptime left unset.
	if m := linePrefixRe.FindStringSubmatch(line); m != nil {
		ev.Timestamp = m[1]
		if m[2] != "" {
			if uptime, err := strconv.ParseFloat(m[2], 64); err == nil {
				ev.UptimeSec = &uptime
			}
		}
	}

	return ev, true
}

// extractDuration finds the pause duration in milliseconds. The explicit
// "<n> ms" form takes priority over the "<n> s" form.
func extractDuration(line string) (float64, bool) {
	if m := pauseMillisRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	if m := pauseSecondsRe.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v * 1000.0, true
		}
	}
	return 0, false
}
