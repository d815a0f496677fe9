package main

import (
	"context"
	"fmt"
	"time"

	"starseeder/server/logging/economy"
)

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandLaunch          CommandType = "Launch"
	CommandDeepSpaceLaunch CommandType = "DeepSpaceLaunch"
	CommandMine            CommandType = "Mine"
	CommandScan            CommandType = "Scan"
	CommandResearch        CommandType = "Research"
	CommandReplicate       CommandType = "Replicate"
	CommandStopOperation   CommandType = "StopOperation"
	CommandAnalyze         CommandType = "Analyze"
	CommandSetAutonomy     CommandType = "SetAutonomy"
	CommandDeployRelay     CommandType = "DeployRelay"
	CommandRemoveRelay     CommandType = "RemoveRelay"
	CommandRemoveProbe     CommandType = "RemoveProbe"
)

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64
	ProbeID    string
	Type       CommandType
	IssuedAt   time.Time
	Launch     *LaunchCommand
	DeepSpace  *DeepSpaceLaunchCommand
	Mine       *MineCommand
	Replicate  *ReplicateCommand
	Analyze    *AnalyzeCommand
	Autonomy   *SetAutonomyCommand
}

// LaunchCommand targets a directed trip at a known system.
type LaunchCommand struct {
	TargetSystemID string
}

// DeepSpaceLaunchCommand casts off on a raw heading.
type DeepSpaceLaunchCommand struct {
	Heading float64
}

// MineCommand selects the resource to extract.
type MineCommand struct {
	Resource ResourceType
}

// ReplicateCommand optionally carries a custom blueprint; absent, the probe
// replicates from its own stats.
type ReplicateCommand struct {
	Blueprint *Blueprint
}

// AnalyzeCommand targets a system rather than a probe.
type AnalyzeCommand struct {
	SystemID string
}

// SetAutonomyCommand updates autonomy flags; nil fields keep current values.
type SetAutonomyCommand struct {
	Enabled  *bool
	Behavior *BehaviorMode
}

// Step advances the simulation by a single tick. Probes are processed in
// stable spawn order; each eligible probe's autonomy proposal commits before
// its state update runs, and every mutation is visible to probes processed
// later in the same tick. The accumulated patch batch is drained once by the
// caller at tick end.
func (w *World) Step(tick uint64, now time.Time, dt float64, commands []Command) {
	if dt <= 0 {
		dt = 1.0 / float64(tickRate)
	}
	w.currentTick = tick
	w.simTime += dt

	w.rebuildColonizedSet()

	for _, cmd := range commands {
		w.applyCommand(cmd)
	}

	// Snapshot the order so probes spawned mid-tick start acting next tick.
	order := append([]string(nil), w.probeOrder...)
	for _, id := range order {
		probe, ok := w.probes[id]
		if !ok {
			continue
		}
		if probe.AutonomyEnabled && probe.Stats.AutonomyLevel > 0 && !autonomyBlocked(probe.State) {
			w.runAutonomyFor(probe)
		}
		w.advanceProbe(probe, dt)
	}

	if w.telemetry != nil {
		w.telemetry.RecordTick(now)
	}
}

func (w *World) applyCommand(cmd Command) {
	switch cmd.Type {
	case CommandLaunch:
		w.commandLaunch(cmd)
	case CommandDeepSpaceLaunch:
		w.commandDeepSpaceLaunch(cmd)
	case CommandMine:
		w.commandMine(cmd)
	case CommandScan:
		w.commandScan(cmd)
	case CommandResearch:
		w.commandResearch(cmd)
	case CommandReplicate:
		w.commandReplicate(cmd)
	case CommandStopOperation:
		w.commandStopOperation(cmd)
	case CommandAnalyze:
		w.commandAnalyze(cmd)
	case CommandSetAutonomy:
		w.commandSetAutonomy(cmd)
	case CommandDeployRelay:
		w.commandDeployRelay(cmd)
	case CommandRemoveRelay:
		w.commandRemoveRelay(cmd)
	case CommandRemoveProbe:
		if !w.RemoveProbe(cmd.ProbeID) {
			w.rejectCommand(cmd, "unknown probe")
		}
	default:
		w.rejectCommand(cmd, "unknown command type")
	}
}

// rejectCommand turns an invalid command into an advisory no-op. No error
// propagates to the caller.
func (w *World) rejectCommand(cmd Command, reason string) {
	economy.CommandRejected(context.Background(), w.publisher, w.currentTick, probeRef(cmd.ProbeID), economy.CommandRejectedPayload{
		Command: string(cmd.Type),
		Reason:  reason,
	})
}

// idleProbe resolves the probe for a command that requires the rest state.
func (w *World) idleProbe(cmd Command) *probeState {
	probe, ok := w.probes[cmd.ProbeID]
	if !ok {
		w.rejectCommand(cmd, "unknown probe")
		return nil
	}
	if probe.State != StateIdle {
		w.rejectCommand(cmd, fmt.Sprintf("probe is %s, not idle", probe.State))
		return nil
	}
	return probe
}

func (w *World) commandLaunch(cmd Command) {
	probe := w.idleProbe(cmd)
	if probe == nil {
		return
	}
	if cmd.Launch == nil {
		w.rejectCommand(cmd, "missing launch target")
		return
	}
	target, ok := w.systems[cmd.Launch.TargetSystemID]
	if !ok {
		w.rejectCommand(cmd, "unknown target system")
		return
	}
	if target.ID == probe.LocationID {
		w.rejectCommand(cmd, "already at target system")
		return
	}
	// Fuel is not a precondition: a dry launch simply solar-sails.
	w.beginTravel(probe, target)
}

func (w *World) commandDeepSpaceLaunch(cmd Command) {
	probe := w.idleProbe(cmd)
	if probe == nil {
		return
	}
	if cmd.DeepSpace == nil {
		w.rejectCommand(cmd, "missing heading")
		return
	}
	w.SetProbeLocation(probe.ID, "")
	w.SetProbeHeading(probe.ID, cmd.DeepSpace.Heading)
	probe.lastSectorValid = false
	w.SetProbeState(probe.ID, StateExploring, "")
}

func (w *World) commandMine(cmd Command) {
	probe := w.idleProbe(cmd)
	if probe == nil {
		return
	}
	sys := w.dockedSystem(probe)
	if sys == nil {
		w.rejectCommand(cmd, "probe is not docked")
		return
	}
	resource := ResourceMetal
	if cmd.Mine != nil {
		resource = cmd.Mine.Resource
	}
	state := StateMiningMetal
	if resource == ResourcePlutonium {
		state = StateMiningPlutonium
	} else if resource != ResourceMetal {
		w.rejectCommand(cmd, "unknown resource")
		return
	}
	if sys.Yield.Amount(resource) <= 0 {
		w.rejectCommand(cmd, fmt.Sprintf("%s yield exhausted at %s", resource, sys.Name))
		return
	}
	w.SetProbeState(probe.ID, state, "")
}

func (w *World) commandScan(cmd Command) {
	probe := w.idleProbe(cmd)
	if probe == nil {
		return
	}
	if w.dockedSystem(probe) == nil {
		w.rejectCommand(cmd, "probe is not docked")
		return
	}
	w.SetProbeState(probe.ID, StateScanning, "")
}

func (w *World) commandResearch(cmd Command) {
	probe := w.idleProbe(cmd)
	if probe == nil {
		return
	}
	sys := w.dockedSystem(probe)
	if sys == nil {
		w.rejectCommand(cmd, "probe is not docked")
		return
	}
	if sys.ScienceRemaining <= 0 {
		w.rejectCommand(cmd, fmt.Sprintf("no science remains at %s", sys.Name))
		return
	}
	w.SetProbeState(probe.ID, StateResearching, "")
}

func (w *World) commandReplicate(cmd Command) {
	probe := w.idleProbe(cmd)
	if probe == nil {
		return
	}
	sys := w.dockedSystem(probe)
	if sys == nil {
		w.rejectCommand(cmd, "probe is not docked")
		return
	}
	if w.colonized[sys.ID] {
		w.rejectCommand(cmd, fmt.Sprintf("%s was already colonized this tick", sys.Name))
		return
	}
	blueprint := w.syntheticBlueprint(probe)
	if cmd.Replicate != nil && cmd.Replicate.Blueprint != nil {
		blueprint = *cmd.Replicate.Blueprint
		if blueprint.BuildTimeSeconds <= 0 {
			blueprint.BuildTimeSeconds = w.tuning.Replication.BuildTimeSeconds
		}
		if blueprint.Model == "" {
			blueprint.Model = probe.Model
		}
	}
	if !canAffordBlueprint(probe, blueprint) {
		w.rejectCommand(cmd, "insufficient resources for blueprint")
		return
	}
	w.beginReplication(probe, blueprint)
}

func (w *World) commandStopOperation(cmd Command) {
	probe, ok := w.probes[cmd.ProbeID]
	if !ok {
		w.rejectCommand(cmd, "unknown probe")
		return
	}
	if probe.State == StateIdle {
		w.rejectCommand(cmd, "probe is already idle")
		return
	}
	if probe.State == StateTraveling {
		// Aborting mid-transit leaves the probe adrift on its travel vector.
		heading := headingToward(probe.travelFromX, probe.travelFromY, probe.travelToX, probe.travelToY)
		w.SetProbeLocation(probe.ID, "")
		w.SetProbeHeading(probe.ID, heading)
		probe.travelDist = 0
	}
	if probe.State == StateReplicating {
		// A cancelled build forfeits its consumed resources.
		probe.pendingBlueprint = nil
	}
	w.SetProbeState(probe.ID, StateIdle, "")
}

func (w *World) commandAnalyze(cmd Command) {
	if cmd.Analyze == nil {
		w.rejectCommand(cmd, "missing system")
		return
	}
	sys, ok := w.systems[cmd.Analyze.SystemID]
	if !ok {
		w.rejectCommand(cmd, "unknown system")
		return
	}
	if !sys.Discovered {
		w.rejectCommand(cmd, fmt.Sprintf("%s has not been discovered", sys.Name))
		return
	}
	if sys.Analyzed {
		w.rejectCommand(cmd, fmt.Sprintf("%s is already analyzed", sys.Name))
		return
	}
	w.MarkSystemAnalyzed(sys.ID)
	w.queueNameRequest(nameRequest{
		Kind:     nameRequestSystemLore,
		EntityID: sys.ID,
		Hint:     sys.Name,
	})
}

func (w *World) commandSetAutonomy(cmd Command) {
	probe, ok := w.probes[cmd.ProbeID]
	if !ok {
		w.rejectCommand(cmd, "unknown probe")
		return
	}
	if cmd.Autonomy == nil {
		w.rejectCommand(cmd, "missing autonomy settings")
		return
	}
	enabled := probe.AutonomyEnabled
	behavior := probe.Behavior
	if cmd.Autonomy.Enabled != nil {
		enabled = *cmd.Autonomy.Enabled
	}
	if cmd.Autonomy.Behavior != nil {
		behavior = *cmd.Autonomy.Behavior
	}
	if !validBehaviorMode(behavior) {
		w.rejectCommand(cmd, "unknown behavior mode")
		return
	}
	w.SetProbeAutonomy(probe.ID, enabled, behavior)
}

func (w *World) commandDeployRelay(cmd Command) {
	probe, ok := w.probes[cmd.ProbeID]
	if !ok {
		w.rejectCommand(cmd, "unknown probe")
		return
	}
	sys := w.dockedSystem(probe)
	if sys == nil {
		w.rejectCommand(cmd, "probe is not docked")
		return
	}
	if !w.relaysUnlocked() {
		w.rejectCommand(cmd, "relays are not yet unlocked")
		return
	}
	if sys.HasRelay {
		w.rejectCommand(cmd, fmt.Sprintf("%s already has a relay", sys.Name))
		return
	}
	if probe.Inventory.Metal < w.tuning.Science.RelayCostMetal {
		w.rejectCommand(cmd, "insufficient metal for relay")
		return
	}
	w.SpendProbeResource(probe.ID, ResourceMetal, w.tuning.Science.RelayCostMetal)
	w.SetSystemRelay(sys.ID, true)
	economy.RelayDeployed(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), economy.RelayPayload{SystemID: sys.ID})
}

func (w *World) commandRemoveRelay(cmd Command) {
	probe, ok := w.probes[cmd.ProbeID]
	if !ok {
		w.rejectCommand(cmd, "unknown probe")
		return
	}
	sys := w.dockedSystem(probe)
	if sys == nil {
		w.rejectCommand(cmd, "probe is not docked")
		return
	}
	if !sys.HasRelay {
		w.rejectCommand(cmd, fmt.Sprintf("%s has no relay", sys.Name))
		return
	}
	w.SetSystemRelay(sys.ID, false)
	economy.RelayRemoved(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), economy.RelayPayload{SystemID: sys.ID})
}
