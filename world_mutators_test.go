package main

import "testing"

func TestVisibilityFlagsAreMonotone(t *testing.T) {
	w := newTestWorld(t, 1)
	sys := addTestSystem(w, 300, 0, ResourceStock{}, 0)
	sys.Discovered = false

	w.MarkSystemVisited(sys.ID)
	if !sys.Discovered || !sys.Visited {
		t.Fatalf("visited should imply discovered: %+v", sys.SolarSystem)
	}

	w.MarkSystemAnalyzed(sys.ID)
	if !sys.Analyzed || !sys.Discovered || !sys.Visited {
		t.Fatalf("flags dropped after analyze: %+v", sys.SolarSystem)
	}

	// Raising an already-set flag is a no-op and emits no patch.
	w.journal.DrainPatches()
	w.MarkSystemDiscovered(sys.ID)
	if patches := w.journal.SnapshotPatches(); len(patches) != 0 {
		t.Fatalf("redundant visibility raise emitted %d patches", len(patches))
	}
}

func TestReduceSystemYieldClampsAndReports(t *testing.T) {
	w := newTestWorld(t, 1)
	sys := addTestSystem(w, 300, 0, ResourceStock{Metal: 5}, 0)

	if got := w.ReduceSystemYield(sys.ID, ResourceMetal, 3); got != 3 {
		t.Fatalf("extracted %v, want 3", got)
	}
	if got := w.ReduceSystemYield(sys.ID, ResourceMetal, 10); got != 2 {
		t.Fatalf("over-extraction returned %v, want remaining 2", got)
	}
	if sys.Yield.Metal != 0 {
		t.Fatalf("yield went to %v, want 0", sys.Yield.Metal)
	}
	if got := w.ReduceSystemYield(sys.ID, ResourceMetal, 1); got != 0 {
		t.Fatalf("depleted system yielded %v, want 0", got)
	}
}

func TestSpendProbeResourceNeverGoesNegative(t *testing.T) {
	w := newTestWorld(t, 1)
	id := w.probeOrder[0]
	w.GrantProbeResource(id, ResourcePlutonium, 10)

	if paid := w.SpendProbeResource(id, ResourcePlutonium, 25); paid != 10 {
		t.Fatalf("paid %v, want clamp at 10", paid)
	}
	if fuel := w.probes[id].Inventory.Plutonium; fuel != 0 {
		t.Fatalf("inventory = %v, want 0", fuel)
	}
}

func TestSetProbeStateResetsProgressAndTarget(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	target := addTestSystem(w, 300, 0, ResourceStock{}, 0)

	w.SetProbeState(probe.ID, StateTraveling, target.ID)
	if probe.TargetSystemID != target.ID {
		t.Fatalf("travel target = %q, want %q", probe.TargetSystemID, target.ID)
	}

	w.setProbeProgress(probe, 40)
	probe.miningBuffer = 0.7

	w.SetProbeState(probe.ID, StateScanning, target.ID)
	if probe.Progress != 0 || probe.miningBuffer != 0 {
		t.Fatalf("transition kept progress=%v buffer=%v", probe.Progress, probe.miningBuffer)
	}
	if probe.TargetSystemID != "" {
		t.Fatalf("non-travel state retained target %q", probe.TargetSystemID)
	}
}

func TestSetProbeLocationValidatesSystem(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	origin := probe.LocationID

	w.SetProbeLocation(probe.ID, "system-does-not-exist")
	if probe.LocationID != origin {
		t.Fatalf("location changed to unknown system %q", probe.LocationID)
	}

	w.SetProbeLocation(probe.ID, "")
	if probe.LocationID != "" {
		t.Fatal("clearing location should always work")
	}
}

func TestSetSystemLoreIsWriteOnce(t *testing.T) {
	w := newTestWorld(t, 1)
	sys := addTestSystem(w, 300, 0, ResourceStock{}, 0)

	w.SetSystemLore(sys.ID, "first survey")
	w.SetSystemLore(sys.ID, "second survey")
	if sys.Lore != "first survey" {
		t.Fatalf("lore = %q, want the first write to stand", sys.Lore)
	}
}

func TestConsumeSystemScienceClamps(t *testing.T) {
	w := newTestWorld(t, 1)
	sys := addTestSystem(w, 300, 0, ResourceStock{}, 10)

	if got := w.ConsumeSystemScience(sys.ID, 4); got != 4 {
		t.Fatalf("consumed %v, want 4", got)
	}
	if got := w.ConsumeSystemScience(sys.ID, 100); got != 6 {
		t.Fatalf("consumed %v, want the remaining 6", got)
	}
	if sys.ScienceRemaining != 0 {
		t.Fatalf("science remaining = %v, want 0", sys.ScienceRemaining)
	}
}

func TestMutatorsJournalPatches(t *testing.T) {
	w := newTestWorld(t, 1)
	id := w.probeOrder[0]
	w.journal.DrainPatches()

	w.SetProbePosition(id, 5, 5)
	w.SetProbeHeading(id, 45)
	w.GrantProbeResource(id, ResourceMetal, 3)
	w.AddSciencePool(2)

	kinds := map[PatchKind]bool{}
	for _, patch := range w.journal.DrainPatches() {
		kinds[patch.Kind] = true
	}
	for _, want := range []PatchKind{PatchProbePos, PatchProbeHeading, PatchProbeInventory, PatchSciencePool} {
		if !kinds[want] {
			t.Fatalf("journal missing %v patch, got %v", want, kinds)
		}
	}
}

func TestIdenticalPositionWriteEmitsNoPatch(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	w.journal.DrainPatches()

	w.SetProbePosition(probe.ID, probe.X, probe.Y)
	if patches := w.journal.SnapshotPatches(); len(patches) != 0 {
		t.Fatalf("no-op position write emitted %d patches", len(patches))
	}
}
