package main

import "testing"

func TestBeginReplicationDeductsCostAndClaimsSite(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.Inventory = ResourceStock{Metal: 600, Plutonium: 400}

	w.beginReplication(probe, w.syntheticBlueprint(probe))

	if probe.State != StateReplicating {
		t.Fatalf("state = %s, want replicating", probe.State)
	}
	if probe.Inventory.Metal != 100 || probe.Inventory.Plutonium != 100 {
		t.Fatalf("inventory after deduction = %+v, want 100/100", probe.Inventory)
	}
	if !w.colonized[probe.LocationID] {
		t.Fatal("build site should join the colonized set immediately")
	}
	if probe.pendingBlueprint == nil {
		t.Fatal("pending blueprint should be installed")
	}
}

func TestCompleteReplicationSpawnsChildAtSite(t *testing.T) {
	w := newTestWorld(t, 1)
	parent := w.probes[w.probeOrder[0]]
	parent.Inventory = ResourceStock{Metal: 500, Plutonium: 300}
	stats := parent.Stats
	stats.MiningSpeed = 2

	blueprint := w.syntheticBlueprint(parent)
	blueprint.Stats = stats
	blueprint.InitialInventory = ResourceStock{Plutonium: 25}
	w.beginReplication(parent, blueprint)
	w.completeReplication(parent)

	if parent.State != StateIdle || parent.pendingBlueprint != nil {
		t.Fatalf("parent should idle with no pending build: state=%s", parent.State)
	}
	if !parent.hasReplicated {
		t.Fatal("parent should record the completed replication")
	}
	if len(w.probes) != 2 {
		t.Fatalf("probe count = %d, want 2", len(w.probes))
	}

	child := w.probes[w.probeOrder[1]]
	if child.LocationID != parent.LocationID || child.OriginSystemID != parent.LocationID {
		t.Fatalf("child location=%q origin=%q, want both %q", child.LocationID, child.OriginSystemID, parent.LocationID)
	}
	if child.Stats.MiningSpeed != 2 {
		t.Fatalf("child stats not taken from blueprint: %+v", child.Stats)
	}
	if child.Inventory.Plutonium != 25 {
		t.Fatalf("child initial inventory = %+v, want 25 plutonium", child.Inventory)
	}
}

func TestCompleteReplicationQueuesNameLookup(t *testing.T) {
	w := newTestWorld(t, 1)
	parent := w.probes[w.probeOrder[0]]
	parent.Inventory = ResourceStock{Metal: 500, Plutonium: 300}
	w.beginReplication(parent, w.syntheticBlueprint(parent))
	w.flushNameRequests()

	w.completeReplication(parent)

	requests := w.flushNameRequests()
	if len(requests) != 1 || requests[0].Kind != nameRequestProbe {
		t.Fatalf("unnamed child should queue a naming lookup, got %+v", requests)
	}
	child := w.probes[w.probeOrder[1]]
	if child.Name == "" {
		t.Fatal("child should carry a placeholder name until the lookup resolves")
	}
}

func TestCompleteReplicationHonorsBlueprintName(t *testing.T) {
	w := newTestWorld(t, 1)
	parent := w.probes[w.probeOrder[0]]
	parent.Inventory = ResourceStock{Metal: 500, Plutonium: 300}

	blueprint := w.syntheticBlueprint(parent)
	blueprint.Name = "Magellan"
	w.beginReplication(parent, blueprint)
	w.flushNameRequests()
	w.completeReplication(parent)

	child := w.probes[w.probeOrder[1]]
	if child.Name != "Magellan" {
		t.Fatalf("child name = %q, want Magellan", child.Name)
	}
	if requests := w.flushNameRequests(); len(requests) != 0 {
		t.Fatalf("named blueprint should skip the lookup, got %+v", requests)
	}
}

func TestCanAffordBlueprint(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	blueprint := w.syntheticBlueprint(probe)

	probe.Inventory = ResourceStock{Metal: 499, Plutonium: 300}
	if canAffordBlueprint(probe, blueprint) {
		t.Fatal("one metal short should not afford the build")
	}
	probe.Inventory = ResourceStock{Metal: 500, Plutonium: 300}
	if !canAffordBlueprint(probe, blueprint) {
		t.Fatal("exact cost should afford the build")
	}
}
