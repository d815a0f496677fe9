package main

import (
	"testing"
	"time"

	"starseeder/server/logging"
)

func TestSnapshotRoundTrip(t *testing.T) {
	w := newTestWorld(t, 2)
	stepWorld(t, w, 60, nil)

	doc := w.BuildSnapshot()
	restored, err := restoreWorld(doc, defaultTuning(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if worldChecksum(t, restored) != worldChecksum(t, w) {
		t.Fatal("restored world differs from the original")
	}
	if restored.currentTick != w.currentTick || restored.simTime != w.simTime {
		t.Fatalf("clock mismatch: tick %d/%d simTime %v/%v",
			restored.currentTick, w.currentTick, restored.simTime, w.simTime)
	}
	if len(restored.sectors) != len(w.sectors) {
		t.Fatalf("sector set size %d, want %d", len(restored.sectors), len(w.sectors))
	}
}

func TestRestoreContinuesDeterministically(t *testing.T) {
	full := newTestWorld(t, 2)
	stepWorld(t, full, 100, nil)

	half := newTestWorld(t, 2)
	stepWorld(t, half, 50, nil)
	restored, err := restoreWorld(half.BuildSnapshot(), defaultTuning(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	now := time.Unix(0, 0)
	for i := 51; i <= 100; i++ {
		restored.Step(uint64(i), now, 1.0/float64(tickRate), nil)
	}

	if worldChecksum(t, restored) != worldChecksum(t, full) {
		t.Fatal("resumed run diverged from the uninterrupted run")
	}
}

func TestRestoreRejectsNewerVersion(t *testing.T) {
	w := newTestWorld(t, 1)
	doc := w.BuildSnapshot()
	doc.Version = snapshotVersion + 1

	if _, err := restoreWorld(doc, defaultTuning(), logging.NopPublisher()); err == nil {
		t.Fatal("newer snapshot version should be rejected")
	}
}

func TestRestoreRejectsDuplicateProbes(t *testing.T) {
	w := newTestWorld(t, 1)
	doc := w.BuildSnapshot()
	doc.Probes = append(doc.Probes, doc.Probes[0])

	if _, err := restoreWorld(doc, defaultTuning(), logging.NopPublisher()); err == nil {
		t.Fatal("duplicate probe ids should be rejected")
	}
}

func TestRestoreRejectsUnknownLocation(t *testing.T) {
	w := newTestWorld(t, 1)
	doc := w.BuildSnapshot()
	doc.Probes[0].LocationID = "system-404"

	if _, err := restoreWorld(doc, defaultTuning(), logging.NopPublisher()); err == nil {
		t.Fatal("dangling location reference should be rejected")
	}
}

func TestRestoreAppliesSafeDefaults(t *testing.T) {
	w := newTestWorld(t, 1)
	doc := w.BuildSnapshot()
	doc.Probes[0].State = "warp_drive"
	doc.Probes[0].Stats = ProbeStats{}
	doc.Probes[0].Inventory = ResourceStock{Metal: -5, Plutonium: -1}
	doc.Systems[0].Yield = ResourceStock{Metal: -10}
	doc.Systems[0].ScienceRemaining = -3

	restored, err := restoreWorld(doc, defaultTuning(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	probe := restored.probes[doc.Probes[0].ID]
	if probe.State != StateIdle {
		t.Fatalf("invalid state should default to idle, got %s", probe.State)
	}
	if probe.Stats != defaultProbeStats() {
		t.Fatalf("zero stats should default, got %+v", probe.Stats)
	}
	if probe.Inventory.Metal != 0 || probe.Inventory.Plutonium != 0 {
		t.Fatalf("negative inventory should clamp, got %+v", probe.Inventory)
	}

	sys := restored.systems[doc.Systems[0].ID]
	if sys.Yield.Metal != 0 || sys.ScienceRemaining != 0 {
		t.Fatalf("negative stocks should clamp, got %+v", sys.SolarSystem)
	}
}

func TestRestoreDowngradesOrphanedStates(t *testing.T) {
	w := newTestWorld(t, 1)
	doc := w.BuildSnapshot()
	doc.Probes[0].State = StateTraveling
	doc.Probes[0].TargetSystemID = ""

	restored, err := restoreWorld(doc, defaultTuning(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if got := restored.probes[doc.Probes[0].ID].State; got != StateIdle {
		t.Fatalf("traveling without a target should restore idle, got %s", got)
	}

	doc = w.BuildSnapshot()
	doc.Probes[0].State = StateReplicating
	restored, err = restoreWorld(doc, defaultTuning(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if got := restored.probes[doc.Probes[0].ID].State; got != StateIdle {
		t.Fatalf("replicating without a blueprint should restore idle, got %s", got)
	}
}

func TestRestoreRederivesSectorsFromSystems(t *testing.T) {
	w := newTestWorld(t, 1)
	w.ensureSector(sectorKey{X: 2, Y: 2})
	doc := w.BuildSnapshot()
	doc.Sectors = nil

	restored, err := restoreWorld(doc, defaultTuning(), logging.NopPublisher())
	if err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	for _, sys := range restored.systems {
		if !restored.sectors[restored.sectorFor(sys.X, sys.Y)] {
			t.Fatalf("sector for system %s not marked generated", sys.ID)
		}
	}
}
