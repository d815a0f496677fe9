package main

import "fmt"

// behaviorDecider turns world and probe state into one tagged action. A
// decider never mutates; the engine commits (or discards) its proposal.
type behaviorDecider func(w *World, probe *probeState) aiDecision

var behaviorDeciders = map[BehaviorMode]behaviorDecider{
	BehaviorDefault:          decideDefault,
	BehaviorFocusMining:      decideFocusMining,
	BehaviorFocusExploring:   decideFocusExploring,
	BehaviorFocusScience:     decideFocusScience,
	BehaviorFocusReplication: decideFocusReplication,
}

// decideDefault alternates Metal and Plutonium mining in fixed-size batches,
// falling back to whichever resource remains when the preferred one runs dry.
func decideDefault(w *World, probe *probeState) aiDecision {
	sys := w.dockedSystem(probe)
	if sys == nil {
		return travelHomeOrIdle(w, probe, "no local system to work")
	}

	preferred := probe.batchResource
	if preferred == "" {
		preferred = ResourceMetal
	}
	mined := probe.Inventory.Amount(preferred) - probe.batchBaseline
	if mined >= w.tuning.Behavior.MiningBatchSize {
		preferred = otherResource(preferred)
	}

	if sys.Yield.Amount(preferred) <= 0 {
		fallback := otherResource(preferred)
		if sys.Yield.Amount(fallback) <= 0 {
			return aiDecision{Kind: decideIdle, Reason: fmt.Sprintf("%s is mined out", sys.Name)}
		}
		return mineDecision(fallback, fmt.Sprintf("%s depleted at %s, switching to %s", preferred, sys.Name, fallback))
	}
	return mineDecision(preferred, fmt.Sprintf("mining %s batch at %s", preferred, sys.Name))
}

// decideFocusMining drains the current system to exhaustion (Metal before
// Plutonium), then moves to the nearest discovered system with material
// yield left.
func decideFocusMining(w *World, probe *probeState) aiDecision {
	sys := w.dockedSystem(probe)
	if sys == nil {
		return travelHomeOrIdle(w, probe, "no local system to mine")
	}
	if sys.Yield.Metal > 0 {
		return mineDecision(ResourceMetal, fmt.Sprintf("draining metal at %s", sys.Name))
	}
	if sys.Yield.Plutonium > 0 {
		return mineDecision(ResourcePlutonium, fmt.Sprintf("draining plutonium at %s", sys.Name))
	}

	target, dist := w.nearestSystem(probe.X, probe.Y, func(candidate *systemState) bool {
		if candidate.ID == sys.ID || !candidate.Discovered {
			return false
		}
		return w.materialYield(candidate)
	})
	if target == nil {
		return aiDecision{Kind: decideIdle, Reason: "no discovered system with material yield"}
	}
	if travelFuelCost(dist, w.tuning.Flight.FuelRatePerUnit) > probe.Inventory.Plutonium {
		if sys.Yield.Plutonium > 0 {
			return mineDecision(ResourcePlutonium, fmt.Sprintf("refueling at %s before moving on", sys.Name))
		}
		return aiDecision{Kind: decideIdle, Reason: fmt.Sprintf("cannot afford transit to %s", target.Name)}
	}
	return aiDecision{
		Kind:           decideTravel,
		TargetSystemID: target.ID,
		Reason:         fmt.Sprintf("%s exhausted, relocating to %s", sys.Name, target.Name),
	}
}

// decideFocusExploring pushes toward discovered-but-unvisited or unanalyzed
// systems, issuing fresh scans when the frontier runs out.
func decideFocusExploring(w *World, probe *probeState) aiDecision {
	sys := w.dockedSystem(probe)
	if sys == nil {
		return travelHomeOrIdle(w, probe, "adrift with nothing to survey")
	}

	target, dist := w.nearestSystem(probe.X, probe.Y, func(candidate *systemState) bool {
		if candidate.ID == sys.ID || !candidate.Discovered {
			return false
		}
		return !candidate.Visited || !candidate.Analyzed
	})
	if target == nil {
		return aiDecision{Kind: decideScan, Reason: "frontier empty, scanning for new systems"}
	}
	if travelFuelCost(dist, w.tuning.Flight.FuelRatePerUnit) > probe.Inventory.Plutonium {
		if sys.Yield.Plutonium > 0 {
			return mineDecision(ResourcePlutonium, fmt.Sprintf("refueling at %s for the trip to %s", sys.Name, target.Name))
		}
		return aiDecision{Kind: decideScan, Reason: fmt.Sprintf("cannot reach %s, scanning instead", target.Name)}
	}
	return aiDecision{
		Kind:           decideTravel,
		TargetSystemID: target.ID,
		Reason:         fmt.Sprintf("surveying %s", target.Name),
	}
}

// decideFocusScience researches locally, deploys relays where possible, and
// otherwise chases remaining science, falling back to Default when the
// science economy offers nothing.
func decideFocusScience(w *World, probe *probeState) aiDecision {
	sys := w.dockedSystem(probe)
	if sys == nil {
		return travelHomeOrIdle(w, probe, "no local system to research")
	}
	if sys.ScienceRemaining > 0 {
		return aiDecision{Kind: decideResearch, Reason: fmt.Sprintf("science remains at %s", sys.Name)}
	}
	if w.relaysUnlocked() && !sys.HasRelay && probe.Inventory.Metal >= w.tuning.Science.RelayCostMetal {
		return aiDecision{Kind: decideDeployRelay, Reason: fmt.Sprintf("establishing relay coverage at %s", sys.Name)}
	}

	threshold := w.tuning.Science.MaterialityThreshold
	target, dist := w.nearestSystem(probe.X, probe.Y, func(candidate *systemState) bool {
		return candidate.ID != sys.ID && candidate.Discovered && candidate.ScienceRemaining > threshold
	})
	if target != nil {
		if travelFuelCost(dist, w.tuning.Flight.FuelRatePerUnit) > probe.Inventory.Plutonium {
			if sys.Yield.Plutonium > 0 {
				return mineDecision(ResourcePlutonium, fmt.Sprintf("refueling at %s for the trip to %s", sys.Name, target.Name))
			}
		} else {
			return aiDecision{
				Kind:           decideTravel,
				TargetSystemID: target.ID,
				Reason:         fmt.Sprintf("science remains at %s", target.Name),
			}
		}
	}
	return decideDefault(w, probe)
}

// decideFocusReplication accumulates the build cost, verifies the child's
// launch window is fuel-viable, and commits a self-copy when everything
// lines up.
func decideFocusReplication(w *World, probe *probeState) aiDecision {
	sys := w.dockedSystem(probe)
	if sys == nil {
		return travelHomeOrIdle(w, probe, "no local system to colonize")
	}

	needMetal := w.tuning.Replication.MetalCost
	needPlutonium := w.tuning.Replication.PlutoniumCost
	cooldownActive := probe.hasReplicated && w.simTime-probe.lastReplicationAt < w.tuning.Replication.CooldownSeconds

	if probe.Inventory.Metal >= needMetal && probe.Inventory.Plutonium >= needPlutonium {
		if cooldownActive {
			return aiDecision{Kind: decideIdle, Reason: "replication cooling down"}
		}
		if !w.colonized[sys.ID] {
			target, dist := w.nearestSystem(probe.X, probe.Y, func(candidate *systemState) bool {
				return candidate.ID != sys.ID && candidate.Discovered && w.materialYield(candidate)
			})
			if target != nil {
				fuelAfter := probe.Inventory.Plutonium - needPlutonium
				if fuelAfter < travelFuelCost(dist, w.tuning.Flight.FuelRatePerUnit) {
					return mineDecision(ResourcePlutonium, fmt.Sprintf("post-build fuel too thin to reach %s", target.Name))
				}
			}
			return aiDecision{Kind: decideReplicate, Reason: fmt.Sprintf("resources ready, replicating at %s", sys.Name)}
		}
		// Another probe claimed this system within the tick batch.
		target, _ := w.nearestSystem(probe.X, probe.Y, func(candidate *systemState) bool {
			return candidate.ID != sys.ID && candidate.Discovered && !w.colonized[candidate.ID] && w.materialYield(candidate)
		})
		if target != nil {
			return aiDecision{
				Kind:           decideTravel,
				TargetSystemID: target.ID,
				Reason:         fmt.Sprintf("%s already colonized, moving to %s", sys.Name, target.Name),
			}
		}
		return aiDecision{Kind: decideIdle, Reason: "no uncolonized site in reach"}
	}

	if probe.Inventory.Metal < needMetal && sys.Yield.Metal > 0 {
		return mineDecision(ResourceMetal, fmt.Sprintf("stockpiling metal for replication at %s", sys.Name))
	}
	if probe.Inventory.Plutonium < needPlutonium && sys.Yield.Plutonium > 0 {
		return mineDecision(ResourcePlutonium, fmt.Sprintf("stockpiling plutonium for replication at %s", sys.Name))
	}

	minCombined := w.tuning.Replication.SiteMinCombinedYield
	target, _ := w.nearestSystem(probe.X, probe.Y, func(candidate *systemState) bool {
		return candidate.ID != sys.ID && candidate.Discovered && candidate.Yield.Combined() >= minCombined
	})
	if target != nil {
		return aiDecision{
			Kind:           decideTravel,
			TargetSystemID: target.ID,
			Reason:         fmt.Sprintf("%s cannot fund a build, moving to %s", sys.Name, target.Name),
		}
	}
	return aiDecision{Kind: decideIdle, Reason: "no system can fund a replication"}
}

// materialYield applies the focus-mode materiality thresholds.
func (w *World) materialYield(sys *systemState) bool {
	return sys.Yield.Metal > w.tuning.Behavior.FocusMetalThreshold ||
		sys.Yield.Plutonium > w.tuning.Behavior.FocusPlutoniumThreshold
}

// travelHomeOrIdle points an undocked probe at the nearest discovered system.
func travelHomeOrIdle(w *World, probe *probeState, reason string) aiDecision {
	target, _ := w.nearestSystem(probe.X, probe.Y, func(candidate *systemState) bool {
		return candidate.Discovered
	})
	if target == nil {
		return aiDecision{Kind: decideIdle, Reason: reason}
	}
	return aiDecision{
		Kind:           decideTravel,
		TargetSystemID: target.ID,
		Reason:         fmt.Sprintf("%s, heading to %s", reason, target.Name),
	}
}

func otherResource(resource ResourceType) ResourceType {
	if resource == ResourceMetal {
		return ResourcePlutonium
	}
	return ResourceMetal
}
