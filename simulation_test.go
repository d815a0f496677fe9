package main

import (
	"crypto/sha256"
	"encoding/json"
	"testing"
	"time"
)

func stepWorld(t *testing.T, w *World, ticks int, commands map[int][]Command) {
	t.Helper()
	now := time.Unix(0, 0)
	for i := 1; i <= ticks; i++ {
		now = now.Add(time.Second / tickRate)
		w.Step(uint64(i), now, 1.0/float64(tickRate), commands[i])
	}
}

func worldChecksum(t *testing.T, w *World) [32]byte {
	t.Helper()
	data, err := json.Marshal(w.BuildSnapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	return sha256.Sum256(data)
}

func TestStepIsDeterministicAcrossRuns(t *testing.T) {
	commands := map[int][]Command{
		5: {{Type: CommandSetAutonomy, ProbeID: "probe-1", Autonomy: &SetAutonomyCommand{
			Behavior: behaviorPtr(BehaviorFocusMining),
		}}},
	}

	a := newTestWorld(t, 2)
	b := newTestWorld(t, 2)
	stepWorld(t, a, 120, commands)
	stepWorld(t, b, 120, commands)

	if worldChecksum(t, a) != worldChecksum(t, b) {
		t.Fatal("identical seeds and commands diverged")
	}
}

func behaviorPtr(mode BehaviorMode) *BehaviorMode { return &mode }
func boolPtr(v bool) *bool                        { return &v }

func TestSequentialVisibilityWithinOneTick(t *testing.T) {
	w := newTestWorld(t, 2)
	sys := addTestSystem(w, 300, 0, ResourceStock{Metal: 1}, 0)

	first := w.probes[w.probeOrder[0]]
	second := w.probes[w.probeOrder[1]]
	for _, probe := range []*probeState{first, second} {
		probe.AutonomyEnabled = false
		w.SetProbeLocation(probe.ID, sys.ID)
		w.SetProbeState(probe.ID, StateMiningMetal, "")
		probe.miningBuffer = 0.9
	}

	// Both probes cross a whole unit this tick, but only one unit exists. The
	// probe processed first gets it; the second observes the depleted yield in
	// the same tick and stops.
	w.Step(1, time.Unix(0, 0), 1.0, nil)

	if first.Inventory.Metal != 1 {
		t.Fatalf("first probe mined %v, want 1", first.Inventory.Metal)
	}
	if second.Inventory.Metal != 0 {
		t.Fatalf("second probe mined %v, want 0", second.Inventory.Metal)
	}
	if sys.Yield.Metal != 0 {
		t.Fatalf("yield = %v, want 0", sys.Yield.Metal)
	}
	if second.State != StateIdle {
		t.Fatalf("second probe should observe depletion and idle, got %s", second.State)
	}
}

func TestLaunchCommandStartsTravel(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.AutonomyEnabled = false
	target := addTestSystem(w, 100, 0, ResourceStock{}, 0)
	w.GrantProbeResource(probe.ID, ResourcePlutonium, 100)

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandLaunch,
		ProbeID: probe.ID,
		Launch:  &LaunchCommand{TargetSystemID: target.ID},
	}})

	if probe.State != StateTraveling || probe.TargetSystemID != target.ID {
		t.Fatalf("launch did not start travel: state=%s target=%q", probe.State, probe.TargetSystemID)
	}
}

func TestLaunchCommandAllowsDryTank(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.AutonomyEnabled = false
	target := addTestSystem(w, 100, 0, ResourceStock{}, 0)

	// Fuel is not a launch precondition; the trip just runs on the sail.
	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandLaunch,
		ProbeID: probe.ID,
		Launch:  &LaunchCommand{TargetSystemID: target.ID},
	}})

	if probe.State != StateTraveling {
		t.Fatalf("dry launch rejected, state=%s", probe.State)
	}
}

func TestLaunchCommandRejectsUnknownTarget(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.AutonomyEnabled = false

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandLaunch,
		ProbeID: probe.ID,
		Launch:  &LaunchCommand{TargetSystemID: "system-404"},
	}})

	if probe.State != StateIdle {
		t.Fatalf("invalid launch changed state to %s", probe.State)
	}
}

func TestMineCommandRequiresDocking(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.AutonomyEnabled = false
	w.SetProbeLocation(probe.ID, "")

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandMine,
		ProbeID: probe.ID,
		Mine:    &MineCommand{Resource: ResourceMetal},
	}})

	if probe.State != StateIdle {
		t.Fatalf("undocked mine accepted, state=%s", probe.State)
	}
}

func TestCommandsRequireIdleState(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.AutonomyEnabled = false
	w.SetProbeState(probe.ID, StateScanning, "")

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandMine,
		ProbeID: probe.ID,
		Mine:    &MineCommand{Resource: ResourceMetal},
	}})

	if probe.State == StateMiningMetal {
		t.Fatal("busy probe accepted a mine command")
	}
}

func TestStopOperationLeavesTravelingProbeAdrift(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.AutonomyEnabled = false
	target := addTestSystem(w, 0, 100, ResourceStock{}, 0)
	w.GrantProbeResource(probe.ID, ResourcePlutonium, 100)
	w.beginTravel(probe, target)

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandStopOperation,
		ProbeID: probe.ID,
	}})

	if probe.State != StateIdle {
		t.Fatalf("stop should idle the probe, got %s", probe.State)
	}
	if probe.LocationID != "" {
		t.Fatalf("aborted transit should leave the probe undocked, got %q", probe.LocationID)
	}
	if probe.Heading != 90 {
		t.Fatalf("adrift heading = %v, want the travel vector 90", probe.Heading)
	}
}

func TestStopOperationForfeitsReplication(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.AutonomyEnabled = false
	probe.Inventory = ResourceStock{Metal: 500, Plutonium: 300}
	w.beginReplication(probe, w.syntheticBlueprint(probe))

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandStopOperation,
		ProbeID: probe.ID,
	}})

	if probe.State != StateIdle {
		t.Fatalf("stop should idle the probe, got %s", probe.State)
	}
	if probe.pendingBlueprint != nil {
		t.Fatal("cancelled build should drop the blueprint")
	}
	if probe.Inventory.Metal != 0 || probe.Inventory.Plutonium != 0 {
		t.Fatalf("cancelled build should forfeit its cost, inventory=%+v", probe.Inventory)
	}
	if len(w.probes) != 1 {
		t.Fatalf("cancelled build spawned a probe, count=%d", len(w.probes))
	}
}

func TestSetAutonomyPreservesUnsetFields(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:     CommandSetAutonomy,
		ProbeID:  probe.ID,
		Autonomy: &SetAutonomyCommand{Enabled: boolPtr(false)},
	}})
	if probe.AutonomyEnabled {
		t.Fatal("enabled flag should be off")
	}
	if probe.Behavior != BehaviorDefault {
		t.Fatalf("behavior changed without being set: %s", probe.Behavior)
	}

	w.Step(2, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:     CommandSetAutonomy,
		ProbeID:  probe.ID,
		Autonomy: &SetAutonomyCommand{Behavior: behaviorPtr(BehaviorFocusScience)},
	}})
	if probe.AutonomyEnabled {
		t.Fatal("enabled flag should survive a behavior-only update")
	}
	if probe.Behavior != BehaviorFocusScience {
		t.Fatalf("behavior = %s, want focus_science", probe.Behavior)
	}
}

func TestAnalyzeCommandTargetsSystem(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.AutonomyEnabled = false
	sys := addTestSystem(w, 400, 0, ResourceStock{}, 0)

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandAnalyze,
		Analyze: &AnalyzeCommand{SystemID: sys.ID},
	}})

	if !sys.Analyzed {
		t.Fatal("analyze command should mark the system analyzed")
	}
	if requests := w.flushNameRequests(); len(requests) != 1 {
		t.Fatalf("analyze should queue a lore lookup, got %d", len(requests))
	}
}

func TestAnalyzeCommandRequiresDiscovery(t *testing.T) {
	w := newTestWorld(t, 1)
	w.probes[w.probeOrder[0]].AutonomyEnabled = false
	sys := addTestSystem(w, 400, 0, ResourceStock{}, 0)
	sys.Discovered = false

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandAnalyze,
		Analyze: &AnalyzeCommand{SystemID: sys.ID},
	}})

	if sys.Analyzed {
		t.Fatal("undiscovered system must not be analyzable")
	}
}

func TestRemoveProbeCommand(t *testing.T) {
	w := newTestWorld(t, 2)
	id := w.probeOrder[0]

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandRemoveProbe,
		ProbeID: id,
	}})

	if _, ok := w.probes[id]; ok {
		t.Fatal("probe should be removed")
	}
	if len(w.probes) != 1 {
		t.Fatalf("probe count = %d, want 1", len(w.probes))
	}
}

func TestReplicationCompletesAndSpawnsChild(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.AutonomyEnabled = false
	probe.Inventory = ResourceStock{Metal: 500, Plutonium: 300}

	// The probe's own origin is always in the colonized set, so the build has
	// to happen at a new site.
	site := addTestSystem(w, 400, 0, ResourceStock{Metal: 1000}, 0)
	w.SetProbeLocation(probe.ID, site.ID)

	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandReplicate,
		ProbeID: probe.ID,
	}})
	if probe.State != StateReplicating {
		t.Fatalf("replicate command should start the build, got %s", probe.State)
	}
	if probe.Inventory.Metal != 0 || probe.Inventory.Plutonium != 0 {
		t.Fatalf("build cost should be deducted up front, inventory=%+v", probe.Inventory)
	}

	// 30s of build time at one-second ticks.
	for i := 2; i <= 40 && probe.State == StateReplicating; i++ {
		w.Step(uint64(i), time.Unix(0, 0), 1.0, nil)
	}

	if probe.State != StateIdle {
		t.Fatalf("parent should idle after the build, got %s", probe.State)
	}
	if len(w.probes) != 2 {
		t.Fatalf("probe count = %d, want 2", len(w.probes))
	}
	child := w.probes[w.probeOrder[1]]
	if child.OriginSystemID != probe.LocationID {
		t.Fatalf("child origin = %q, want parent location %q", child.OriginSystemID, probe.LocationID)
	}
	if child.State != StateIdle || child.LocationID != probe.LocationID {
		t.Fatalf("child should start idle at the build site: %+v", child.Probe)
	}
}

func TestReplicateCommandBlockedAtColonizedSystem(t *testing.T) {
	w := newTestWorld(t, 1)
	probe := w.probes[w.probeOrder[0]]
	probe.AutonomyEnabled = false
	probe.Inventory = ResourceStock{Metal: 500, Plutonium: 300}

	// The origin is the probe's own origin system, so the per-tick colonized
	// set always contains it.
	w.Step(1, time.Unix(0, 0), 1.0/float64(tickRate), []Command{{
		Type:    CommandReplicate,
		ProbeID: probe.ID,
	}})

	if probe.State != StateIdle {
		t.Fatalf("replication at a colonized system accepted, state=%s", probe.State)
	}
	if probe.Inventory.Metal != 500 {
		t.Fatalf("rejected replication spent resources: %+v", probe.Inventory)
	}
}
