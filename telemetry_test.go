package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTelemetryCountersAccumulate(t *testing.T) {
	counters := newTelemetryCounters()
	counters.RecordTick(time.Now())
	counters.RecordTick(time.Now())
	counters.RecordDecision()
	counters.RecordProbeSpawned()
	counters.RecordSectorGenerated(3)
	counters.RecordSectorGenerated(0)
	counters.RecordBroadcast(128)

	snap := counters.Snapshot()
	if snap.Ticks != 2 {
		t.Fatalf("ticks = %d, want 2", snap.Ticks)
	}
	if snap.Decisions != 1 || snap.ProbesSpawned != 1 {
		t.Fatalf("decisions=%d spawned=%d, want 1 and 1", snap.Decisions, snap.ProbesSpawned)
	}
	if snap.SectorsGenerated != 2 || snap.SystemsGenerated != 3 {
		t.Fatalf("sectors=%d systems=%d, want 2 and 3", snap.SectorsGenerated, snap.SystemsGenerated)
	}
	if snap.BytesSent != 128 {
		t.Fatalf("bytes = %d, want 128", snap.BytesSent)
	}
}

func TestMetricsRecorderWritesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.csv")
	recorder := newMetricsRecorder(path)
	w := newTestWorld(t, 2)
	stepWorld(t, w, 10, nil)

	recorder.Sample(w, 4)
	recorder.Sample(w, 0)
	if err := recorder.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "tick") || !strings.Contains(content, "science_pool") {
		t.Fatalf("csv header missing expected columns:\n%s", content)
	}
	if lines := strings.Count(strings.TrimSpace(content), "\n"); lines != 2 {
		t.Fatalf("expected header plus 2 rows, got %d newlines:\n%s", lines, content)
	}
}

func TestMetricsRecorderDisabledIsNoOp(t *testing.T) {
	var recorder *metricsRecorder
	recorder.Sample(newTestWorld(t, 1), 0)
	if err := recorder.Flush(); err != nil {
		t.Fatalf("nil recorder flush: %v", err)
	}
}
