package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleLog = `OpenJDK 64-Bit Server VM warning: something unrelated
0.512: GC(0) Pause Init Mark: 1.5 ms
Concurrent marking 123M->100M(512M) 45.2 ms
1.034: GC(0) Pause Final Mark: 2.25 ms
garbage text with Pause but no duration
2024-03-01T10:15:30.123+0000: 2.100s: GC(1) Pause Full: 0.1 s
`

func TestEvents(t *testing.T) {
	events, err := Events(strings.NewReader(sampleLog), "shenandoah", "baseline")
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}

	want := []float64{1.5, 2.25, 100.0}
	for i, ev := range events {
		if ev.PauseMs != want[i] {
			t.Errorf("event %d PauseMs = %v, want %v", i, ev.PauseMs, want[i])
		}
		if ev.Collector != "shenandoah" || ev.Scenario != "baseline" {
			t.Errorf("event %d stamped %s/%s, want baseline/shenandoah", i, ev.Scenario, ev.Collector)
		}
	}

	// Line order preserved: uptimes must come through ascending.
	if events[0].UptimeSec == nil || *events[0].UptimeSec != 0.512 {
		t.Errorf("event 0 uptime = %v, want 0.512", events[0].UptimeSec)
	}
	if events[2].Timestamp != "2024-03-01T10:15:30.123+0000" {
		t.Errorf("event 2 timestamp = %q", events[2].Timestamp)
	}
}

func TestEventsEmptyInput(t *testing.T) {
	events, err := Events(strings.NewReader(""), "zgc", "baseline")
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("len(events) = %d, want 0", len(events))
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gc-zgc.log")
	if err := os.WriteFile(path, []byte(sampleLog), 0o644); err != nil {
		t.Fatal(err)
	}

	events, err := ReadFile(path, "zgc", "high1")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.log"), "zgc", "baseline")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
