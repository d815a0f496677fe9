package main

import (
	"testing"

	"starseeder/server/logging"
)

func newTestWorld(t *testing.T, probes int) *World {
	t.Helper()
	cfg := defaultWorldConfig()
	cfg.InitialProbes = probes
	return newWorld(cfg, defaultTuning(), logging.NopPublisher())
}

// addTestSystem registers a fully discovered system at the given position.
func addTestSystem(w *World, x, y float64, yield ResourceStock, science float64) *systemState {
	sys := &systemState{
		SolarSystem: SolarSystem{
			ID:               w.mintSystemID(),
			Ordinal:          w.nextSystemOrdinal,
			Name:             "Test System",
			X:                x,
			Y:                y,
			Discovered:       true,
			Resources:        ResourceStock{Metal: 50, Plutonium: 50},
			Yield:            yield,
			ScienceRemaining: science,
			ScienceTotal:     science,
		},
	}
	w.addSystem(sys)
	w.sectors[w.sectorFor(x, y)] = true
	return sys
}

func TestNewWorldSpawnsOriginAndProbes(t *testing.T) {
	w := newTestWorld(t, 2)

	if len(w.systems) != 1 {
		t.Fatalf("expected 1 system at start, got %d", len(w.systems))
	}
	origin := w.systems[w.systemOrder[0]]
	if !origin.Discovered || !origin.Visited || !origin.Analyzed {
		t.Fatalf("origin system should start fully known: %+v", origin.SolarSystem)
	}
	if origin.X != 0 || origin.Y != 0 {
		t.Fatalf("origin system should sit at the universe origin, got (%v, %v)", origin.X, origin.Y)
	}

	if len(w.probes) != 2 {
		t.Fatalf("expected 2 probes, got %d", len(w.probes))
	}
	for _, probe := range w.orderedProbes() {
		if probe.State != StateIdle {
			t.Fatalf("probe %s should start idle, got %s", probe.ID, probe.State)
		}
		if probe.LocationID != origin.ID {
			t.Fatalf("probe %s should start docked at the origin", probe.ID)
		}
		if probe.OriginSystemID != origin.ID {
			t.Fatalf("probe %s origin should be %s, got %s", probe.ID, origin.ID, probe.OriginSystemID)
		}
	}

	// The origin's sector counts as generated so re-entry never regenerates it.
	if !w.sectors[w.sectorFor(0, 0)] {
		t.Fatal("origin sector should be marked generated")
	}
}

func TestProbeIDsAreSequential(t *testing.T) {
	w := newTestWorld(t, 1)
	first := w.probeOrder[0]
	if first != "probe-1" {
		t.Fatalf("first probe id = %q, want probe-1", first)
	}
	spawned := w.spawnProbe(defaultProbeModel, defaultProbeStats(), ResourceStock{}, w.systemOrder[0])
	if spawned.ID != "probe-2" {
		t.Fatalf("second probe id = %q, want probe-2", spawned.ID)
	}
}

func TestRemoveProbePurgesJournal(t *testing.T) {
	w := newTestWorld(t, 1)
	id := w.probeOrder[0]
	w.SetProbePosition(id, 10, 10)

	if !w.RemoveProbe(id) {
		t.Fatal("RemoveProbe should report success for a known probe")
	}
	if w.RemoveProbe(id) {
		t.Fatal("RemoveProbe should report failure for a removed probe")
	}
	for _, patch := range w.journal.SnapshotPatches() {
		if patch.EntityID == id {
			t.Fatalf("journal still holds patch %v for removed probe", patch.Kind)
		}
	}
}

func TestNearestSystemTieBreaksByGenerationOrder(t *testing.T) {
	w := newTestWorld(t, 1)
	first := addTestSystem(w, 100, 0, ResourceStock{}, 0)
	addTestSystem(w, -100, 0, ResourceStock{}, 0)

	got, dist := w.nearestSystem(0, 0, func(sys *systemState) bool {
		return sys.ID != w.systemOrder[0]
	})
	if got == nil || got.ID != first.ID {
		t.Fatalf("tie should resolve to the earliest-generated system, got %+v", got)
	}
	if dist != 100 {
		t.Fatalf("distance = %v, want 100", dist)
	}
}

func TestRebuildColonizedSetTracksOrigins(t *testing.T) {
	w := newTestWorld(t, 1)
	remote := addTestSystem(w, 400, 0, ResourceStock{Metal: 1000}, 0)
	w.spawnProbe(defaultProbeModel, defaultProbeStats(), ResourceStock{}, remote.ID)

	w.rebuildColonizedSet()
	if !w.colonized[w.systemOrder[0]] {
		t.Fatal("origin system should be colonized")
	}
	if !w.colonized[remote.ID] {
		t.Fatal("remote spawn site should be colonized")
	}
	if len(w.colonized) != 2 {
		t.Fatalf("colonized set size = %d, want 2", len(w.colonized))
	}
}

func TestFlushNameRequestsDrains(t *testing.T) {
	w := newTestWorld(t, 1)
	w.queueNameRequest(nameRequest{Kind: nameRequestProbe, EntityID: "probe-1"})

	drained := w.flushNameRequests()
	if len(drained) != 1 {
		t.Fatalf("expected 1 staged request, got %d", len(drained))
	}
	if again := w.flushNameRequests(); again != nil {
		t.Fatalf("second flush should be empty, got %d", len(again))
	}
}
