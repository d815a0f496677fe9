package main

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gocarina/gocsv"
)

// telemetryCounters aggregates cheap per-tick counters for diagnostics.
type telemetryCounters struct {
	ticks              atomic.Uint64
	decisions          atomic.Uint64
	probesSpawned      atomic.Uint64
	sectorsGenerated   atomic.Uint64
	systemsGenerated   atomic.Uint64
	bytesSent          atomic.Uint64
	tickDurationMillis atomic.Int64
	debug              bool
}

// telemetrySnapshot is the JSON view served by /diagnostics.
type telemetrySnapshot struct {
	Ticks              uint64 `json:"ticks"`
	Decisions          uint64 `json:"decisions"`
	ProbesSpawned      uint64 `json:"probesSpawned"`
	SectorsGenerated   uint64 `json:"sectorsGenerated"`
	SystemsGenerated   uint64 `json:"systemsGenerated"`
	BytesSent          uint64 `json:"bytesSent"`
	TickDurationMillis int64  `json:"tickDurationMillis"`
}

func newTelemetryCounters() *telemetryCounters {
	t := &telemetryCounters{}
	if os.Getenv("DEBUG_TELEMETRY") == "1" {
		t.debug = true
	}
	return t
}

func (t *telemetryCounters) RecordTick(now time.Time) {
	t.ticks.Add(1)
}

func (t *telemetryCounters) RecordDecision() {
	t.decisions.Add(1)
}

func (t *telemetryCounters) RecordProbeSpawned() {
	t.probesSpawned.Add(1)
}

func (t *telemetryCounters) RecordSectorGenerated(systems int) {
	t.sectorsGenerated.Add(1)
	if systems > 0 {
		t.systemsGenerated.Add(uint64(systems))
	}
}

func (t *telemetryCounters) RecordBroadcast(bytes int) {
	if bytes > 0 {
		t.bytesSent.Add(uint64(bytes))
	}
}

func (t *telemetryCounters) RecordTickDuration(duration time.Duration) {
	millis := duration.Milliseconds()
	t.tickDurationMillis.Store(millis)
	if t.debug && duration > time.Second/tickRate {
		fmt.Fprintf(os.Stderr, "slow tick: %dms\n", millis)
	}
}

func (t *telemetryCounters) Snapshot() telemetrySnapshot {
	return telemetrySnapshot{
		Ticks:              t.ticks.Load(),
		Decisions:          t.decisions.Load(),
		ProbesSpawned:      t.probesSpawned.Load(),
		SectorsGenerated:   t.sectorsGenerated.Load(),
		SystemsGenerated:   t.systemsGenerated.Load(),
		BytesSent:          t.bytesSent.Load(),
		TickDurationMillis: t.tickDurationMillis.Load(),
	}
}

// tickMetricsRow is one CSV line of the periodic metrics export.
type tickMetricsRow struct {
	Tick          uint64  `csv:"tick"`
	SimTime       float64 `csv:"sim_time"`
	Probes        int     `csv:"probes"`
	Systems       int     `csv:"systems"`
	Discovered    int     `csv:"discovered"`
	SciencePool   float64 `csv:"science_pool"`
	TotalMetal    float64 `csv:"total_metal"`
	TotalFuel     float64 `csv:"total_plutonium"`
	PatchesViewed int     `csv:"patches"`
}

// metricsRecorder accumulates rows and flushes them to a CSV file. Rows are
// sampled by the hub loop, not inside the tick.
type metricsRecorder struct {
	mu   sync.Mutex
	path string
	rows []*tickMetricsRow
}

func newMetricsRecorder(path string) *metricsRecorder {
	if path == "" {
		return nil
	}
	return &metricsRecorder{path: path, rows: make([]*tickMetricsRow, 0, 256)}
}

// Sample derives one metrics row from the current world.
func (m *metricsRecorder) Sample(w *World, patches int) {
	if m == nil || w == nil {
		return
	}
	row := &tickMetricsRow{
		Tick:          w.currentTick,
		SimTime:       w.simTime,
		Probes:        len(w.probes),
		Systems:       len(w.systems),
		SciencePool:   w.sciencePool,
		PatchesViewed: patches,
	}
	for _, sys := range w.systems {
		if sys.Discovered {
			row.Discovered++
		}
	}
	for _, probe := range w.probes {
		row.TotalMetal += probe.Inventory.Metal
		row.TotalFuel += probe.Inventory.Plutonium
	}
	m.mu.Lock()
	m.rows = append(m.rows, row)
	m.mu.Unlock()
}

// Flush writes the accumulated rows out as CSV, replacing the file.
func (m *metricsRecorder) Flush() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	rows := make([]*tickMetricsRow, len(m.rows))
	copy(rows, m.rows)
	m.mu.Unlock()

	file, err := os.Create(m.path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer file.Close()
	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
