package main

import (
	"context"
	"fmt"

	"starseeder/server/logging/economy"
)

// decisionKind tags an autonomy action. Every variant carries only the
// fields relevant to it, with the justification attached uniformly.
type decisionKind string

const (
	decideAnalyze       decisionKind = "analyze"
	decideMineMetal     decisionKind = "mine_metal"
	decideMinePlutonium decisionKind = "mine_plutonium"
	decideTravel        decisionKind = "travel"
	decideScan          decisionKind = "scan"
	decideResearch      decisionKind = "research"
	decideDeployRelay   decisionKind = "deploy_relay"
	decideReplicate     decisionKind = "replicate"
	decideIdle          decisionKind = "idle"
)

// aiDecision is one tagged autonomy action plus its human-readable
// justification.
type aiDecision struct {
	Kind           decisionKind
	TargetSystemID string // decideTravel only
	Reason         string
}

func mineDecision(resource ResourceType, reason string) aiDecision {
	if resource == ResourcePlutonium {
		return aiDecision{Kind: decideMinePlutonium, Reason: reason}
	}
	return aiDecision{Kind: decideMineMetal, Reason: reason}
}

// autonomyBlockedStates is the fixed set of uninterruptible states. Mining,
// scanning, and researching stay interruptible so the default behavior's
// batch alternation can switch targets mid-extraction.
func autonomyBlocked(state ProbeState) bool {
	switch state {
	case StateTraveling, StateReplicating, StateExploring:
		return true
	}
	return false
}

// autonomyRule is one rung of the priority ladder: a pure predicate that
// either produces a decision or passes to the next rung.
type autonomyRule struct {
	name     string
	evaluate func(w *World, probe *probeState) (aiDecision, bool)
}

// autonomyLadder is evaluated top-down every tick per eligible probe; the
// first rung that fires wins.
var autonomyLadder = []autonomyRule{
	{name: "analyze-local", evaluate: ruleAnalyzeLocal},
	{name: "scan-unseen", evaluate: ruleScanUnseen},
	{name: "behavior-mode", evaluate: ruleBehaviorMode},
}

// ruleAnalyzeLocal marks an unanalyzed current system analyzed. The action
// is instantaneous and causes no state change.
func ruleAnalyzeLocal(w *World, probe *probeState) (aiDecision, bool) {
	sys := w.dockedSystem(probe)
	if sys == nil || sys.Analyzed {
		return aiDecision{}, false
	}
	return aiDecision{
		Kind:   decideAnalyze,
		Reason: fmt.Sprintf("system %s is unanalyzed", sys.Name),
	}, true
}

// ruleScanUnseen issues a scan when the probe has not yet scanned from its
// current system.
func ruleScanUnseen(w *World, probe *probeState) (aiDecision, bool) {
	sys := w.dockedSystem(probe)
	if sys == nil || probe.LastScannedID == probe.LocationID {
		return aiDecision{}, false
	}
	return aiDecision{
		Kind:   decideScan,
		Reason: fmt.Sprintf("no scan on record from %s", sys.Name),
	}, true
}

// ruleBehaviorMode delegates to the installed behavior mode's decider.
func ruleBehaviorMode(w *World, probe *probeState) (aiDecision, bool) {
	decider, ok := behaviorDeciders[probe.Behavior]
	if !ok {
		decider = decideDefault
	}
	return decider(w, probe), true
}

func (w *World) dockedSystem(probe *probeState) *systemState {
	if !probe.Docked() {
		return nil
	}
	return w.systems[probe.LocationID]
}

// runAutonomyFor walks the ladder for one eligible probe and commits the
// first rung that fires. The scheduler checks eligibility before calling.
func (w *World) runAutonomyFor(probe *probeState) {
	for _, rule := range autonomyLadder {
		decision, ok := rule.evaluate(w, probe)
		if !ok {
			continue
		}
		w.commitDecision(probe, decision)
		break
	}
	if w.telemetry != nil {
		w.telemetry.RecordDecision()
	}
}

// commitDecision applies a proposed action, re-validating anything that
// depends on world state mutated earlier in the tick. Travel orders that are
// no longer fuel-affordable are discarded without a transition or log entry.
func (w *World) commitDecision(probe *probeState, decision aiDecision) {
	switch decision.Kind {
	case decideAnalyze:
		w.MarkSystemAnalyzed(probe.LocationID)
		w.queueNameRequest(nameRequest{
			Kind:     nameRequestSystemLore,
			EntityID: probe.LocationID,
			Hint:     w.systemName(probe.LocationID),
		})
		w.logDecision(probe, decision)

	case decideScan:
		if probe.State == StateScanning {
			return
		}
		w.SetProbeState(probe.ID, StateScanning, "")
		w.logDecision(probe, decision)

	case decideMineMetal, decideMinePlutonium:
		resource := ResourceMetal
		state := StateMiningMetal
		if decision.Kind == decideMinePlutonium {
			resource = ResourcePlutonium
			state = StateMiningPlutonium
		}
		if probe.batchResource != resource || probe.State != state {
			probe.batchResource = resource
			probe.batchBaseline = probe.Inventory.Amount(resource)
		}
		if probe.State == state {
			return
		}
		w.SetProbeState(probe.ID, state, "")
		w.logDecision(probe, decision)

	case decideResearch:
		if probe.State == StateResearching {
			return
		}
		w.SetProbeState(probe.ID, StateResearching, "")
		w.logDecision(probe, decision)

	case decideTravel:
		target, ok := w.systems[decision.TargetSystemID]
		if !ok {
			return
		}
		cost := travelFuelCost(distanceBetween(probe.X, probe.Y, target.X, target.Y), w.tuning.Flight.FuelRatePerUnit)
		if cost > probe.Inventory.Plutonium {
			return
		}
		w.beginTravel(probe, target)
		w.logDecision(probe, decision)

	case decideDeployRelay:
		sys := w.dockedSystem(probe)
		if sys == nil || sys.HasRelay || !w.relaysUnlocked() {
			return
		}
		if probe.Inventory.Metal < w.tuning.Science.RelayCostMetal {
			return
		}
		w.SpendProbeResource(probe.ID, ResourceMetal, w.tuning.Science.RelayCostMetal)
		w.SetSystemRelay(sys.ID, true)
		economy.RelayDeployed(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), economy.RelayPayload{SystemID: sys.ID})
		w.logDecision(probe, decision)

	case decideReplicate:
		sys := w.dockedSystem(probe)
		if sys == nil || w.colonized[sys.ID] {
			return
		}
		blueprint := w.syntheticBlueprint(probe)
		if !canAffordBlueprint(probe, blueprint) {
			return
		}
		w.beginReplication(probe, blueprint)
		w.logDecision(probe, decision)

	case decideIdle:
		if probe.State == StateIdle {
			return
		}
		w.SetProbeState(probe.ID, StateIdle, "")
		w.logDecision(probe, decision)
	}
}

// logDecision appends the justification to the probe's bounded decision log.
func (w *World) logDecision(probe *probeState, decision aiDecision) {
	probe.appendDecision(DecisionRecord{
		Tick:   w.currentTick,
		Action: string(decision.Kind),
		Reason: decision.Reason,
	})
	probe.version++
}

func (w *World) systemName(systemID string) string {
	if sys, ok := w.systems[systemID]; ok {
		return sys.Name
	}
	return systemID
}
