package main

import (
	"context"
	"math"

	"starseeder/server/logging/economy"
	"starseeder/server/logging/expedition"
)

// advanceProbe runs the current state's update function against the shared
// world. Mutations land immediately through the journaled mutators, so
// probes processed later in the same tick observe them (sequential
// visibility).
func (w *World) advanceProbe(probe *probeState, dt float64) {
	switch probe.State {
	case StateTraveling:
		w.stepTraveling(probe, dt)
	case StateExploring:
		w.stepExploring(probe, dt)
	case StateMiningMetal:
		w.stepMining(probe, ResourceMetal, dt)
	case StateMiningPlutonium:
		w.stepMining(probe, ResourcePlutonium, dt)
	case StateReplicating:
		w.stepReplicating(probe, dt)
	case StateScanning:
		w.stepScanning(probe, dt)
	case StateResearching:
		w.stepResearching(probe, dt)
	case StateIdle:
		// Rest state. Only commands or the autonomy engine leave it.
	}
}

// beginTravel seeds the interpolation endpoints and transitions to Traveling.
func (w *World) beginTravel(probe *probeState, target *systemState) {
	probe.travelFromX = probe.X
	probe.travelFromY = probe.Y
	probe.travelToX = target.X
	probe.travelToY = target.Y
	probe.travelDist = distanceBetween(probe.X, probe.Y, target.X, target.Y)
	w.SetProbeState(probe.ID, StateTraveling, target.ID)
	expedition.ProbeLaunched(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), expedition.LaunchedPayload{
		TargetSystemID: target.ID,
		Distance:       probe.travelDist,
		FuelBudget:     travelFuelCost(probe.travelDist, w.tuning.Flight.FuelRatePerUnit),
	})
}

func (w *World) stepTraveling(probe *probeState, dt float64) {
	target, ok := w.systems[probe.TargetSystemID]
	if !ok {
		w.SetProbeState(probe.ID, StateIdle, "")
		return
	}
	if probe.travelDist <= 0 {
		// Degenerate launch (same-system target); arrive immediately.
		w.arrive(probe, target)
		return
	}

	speed := flightSpeed(w.tuning.Flight.TravelBaseSpeed, probe.Stats.FlightSpeed, probe.Inventory.Plutonium, w.tuning.Flight.SolarSailMultiplier)
	moved := speed * dt
	if probe.Inventory.Plutonium > 0 {
		w.SpendProbeResource(probe.ID, ResourcePlutonium, travelFuelCost(moved, w.tuning.Flight.FuelRatePerUnit))
	}

	progress := probe.Progress + moved/probe.travelDist*100
	if progress >= 100 {
		w.arrive(probe, target)
		return
	}
	w.setProbeProgress(probe, progress)

	fraction := progress / 100
	x := probe.travelFromX + (probe.travelToX-probe.travelFromX)*fraction
	y := probe.travelFromY + (probe.travelToY-probe.travelFromY)*fraction
	w.SetProbePosition(probe.ID, x, y)

	// Passive scan runs against the interpolated position, not the endpoints.
	w.passiveScan(probe, x, y)
}

func (w *World) arrive(probe *probeState, target *systemState) {
	w.SetProbePosition(probe.ID, target.X, target.Y)
	w.SetProbeLocation(probe.ID, target.ID)
	w.MarkSystemVisited(target.ID)
	probe.travelDist = 0
	w.SetProbeState(probe.ID, StateIdle, "")
	expedition.ProbeArrived(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), expedition.ArrivedPayload{
		SystemID: target.ID,
	})
}

func (w *World) stepExploring(probe *probeState, dt float64) {
	speed := flightSpeed(w.tuning.Flight.ExploreBaseSpeed, probe.Stats.FlightSpeed, probe.Inventory.Plutonium, w.tuning.Flight.SolarSailMultiplier)
	moved := speed * dt

	rad := probe.Heading * math.Pi / degreesHalfTurn
	x := probe.X + math.Cos(rad)*moved
	y := probe.Y + math.Sin(rad)*moved

	// Fuel burns proportional to distance moved, but only while any remains.
	if probe.Inventory.Plutonium > 0 {
		w.SpendProbeResource(probe.ID, ResourcePlutonium, travelFuelCost(moved, w.tuning.Flight.FuelRatePerUnit))
	}
	w.SetProbePosition(probe.ID, x, y)

	if key := w.sectorFor(x, y); !probe.lastSectorValid || key != probe.lastSector {
		probe.lastSector = key
		probe.lastSectorValid = true
		w.ensureSector(key)
	}

	if w.tryAutoDock(probe, x, y) {
		return
	}

	w.passiveScan(probe, x, y)

	autonomous := probe.AutonomyEnabled && probe.Stats.AutonomyLevel > 0
	if autonomous && w.simTime >= probe.nextDivertCheck {
		probe.nextDivertCheck = w.simTime + autonomyCheckInterval
		w.autoDivert(probe, x, y)
	}
	if autonomous && w.simTime >= probe.nextSafetyCheck {
		probe.nextSafetyCheck = w.simTime + autonomyCheckInterval
		w.safetyOverride(probe, x, y)
	}
}

// tryAutoDock snaps an exploring probe onto any known system it drifts over.
func (w *World) tryAutoDock(probe *probeState, x, y float64) bool {
	dock, dist := w.nearestSystem(x, y, nil)
	if dock == nil || dist > w.tuning.Flight.AutoDockRadius {
		return false
	}
	w.SetProbePosition(probe.ID, dock.X, dock.Y)
	w.SetProbeLocation(probe.ID, dock.ID)
	w.MarkSystemVisited(dock.ID)
	w.SetProbeState(probe.ID, StateIdle, "")
	expedition.ProbeDocked(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), expedition.DockedPayload{
		SystemID: dock.ID,
	})
	return true
}

// autoDivert re-heads toward the nearest qualifying unknown system in scan
// range. The heading change is paid in fuel; a deduction that would go
// negative clamps to zero, pushing the probe onto its solar sail.
func (w *World) autoDivert(probe *probeState, x, y float64) {
	target, _ := w.nearestSystem(x, y, func(sys *systemState) bool {
		if sys.Discovered && sys.Analyzed {
			return false
		}
		return distanceBetween(x, y, sys.X, sys.Y) <= probe.Stats.ScanRange
	})
	if target == nil {
		return
	}
	desired := headingToward(x, y, target.X, target.Y)
	if desired == probe.Heading {
		return
	}
	w.SpendProbeResource(probe.ID, ResourcePlutonium, turnFuelCost(probe.Heading, desired, w.tuning.Flight.TurnFuelRate))
	w.SetProbeHeading(probe.ID, desired)
}

// safetyOverride forcibly re-heads toward the nearest known system when the
// projected return trip exceeds the fuel on board by more than the safety
// margin. Runs after autoDivert so it always wins.
func (w *World) safetyOverride(probe *probeState, x, y float64) {
	nearest, dist := w.nearestSystem(x, y, func(sys *systemState) bool {
		return sys.Discovered
	})
	if nearest == nil {
		return
	}
	desired := headingToward(x, y, nearest.X, nearest.Y)
	required := travelFuelCost(dist, w.tuning.Flight.FuelRatePerUnit) + turnFuelCost(probe.Heading, desired, w.tuning.Flight.TurnFuelRate)
	if required <= probe.Inventory.Plutonium+w.tuning.Flight.SafetyMarginFuel {
		return
	}
	if desired != probe.Heading {
		w.SpendProbeResource(probe.ID, ResourcePlutonium, turnFuelCost(probe.Heading, desired, w.tuning.Flight.TurnFuelRate))
		w.SetProbeHeading(probe.ID, desired)
	}
	expedition.SafetyOverride(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), expedition.SafetyOverridePayload{
		SystemID:     nearest.ID,
		FuelRequired: required,
		FuelOnBoard:  probe.Inventory.Plutonium,
	})
}

func (w *World) stepMining(probe *probeState, resource ResourceType, dt float64) {
	sys, ok := w.systems[probe.LocationID]
	if !ok {
		w.SetProbeState(probe.ID, StateIdle, "")
		return
	}
	if sys.Yield.Amount(resource) <= 0 {
		w.haltMiningDepleted(probe, sys, resource)
		return
	}

	rate := miningRate(w.tuning.Mining.BaseRate, sys.Resources.Amount(resource), probe.Stats.MiningSpeed)
	probe.miningBuffer += rate * dt

	// Only whole units transfer; the fractional remainder stays buffered.
	whole := math.Floor(probe.miningBuffer)
	if whole >= 1 {
		extracted := w.ReduceSystemYield(sys.ID, resource, whole)
		if extracted > 0 {
			w.GrantProbeResource(probe.ID, resource, extracted)
		}
		probe.miningBuffer -= whole
	}

	if sys.Yield.Amount(resource) <= 0 {
		w.haltMiningDepleted(probe, sys, resource)
	}
}

// haltMiningDepleted is the expected steady-state exit from a mining state.
// Depletion is informational, not an error.
func (w *World) haltMiningDepleted(probe *probeState, sys *systemState, resource ResourceType) {
	economy.ResourceDepleted(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), economy.ResourceDepletedPayload{
		SystemID: sys.ID,
		Resource: string(resource),
	})
	w.SetProbeState(probe.ID, StateIdle, "")
}

func (w *World) stepReplicating(probe *probeState, dt float64) {
	blueprint := probe.pendingBlueprint
	if blueprint == nil {
		w.SetProbeState(probe.ID, StateIdle, "")
		return
	}
	replicationSpeed := probe.Stats.ReplicationSpeed
	if replicationSpeed <= 0 {
		replicationSpeed = 1
	}
	duration := blueprint.BuildTimeSeconds / replicationSpeed
	if duration <= 0 {
		duration = dt
	}
	progress := probe.Progress + dt/duration*replicationProgressScale
	if progress >= 100 {
		w.completeReplication(probe)
		return
	}
	w.setProbeProgress(probe, progress)
}

func (w *World) stepScanning(probe *probeState, dt float64) {
	progress := probe.Progress + probe.Stats.ScanSpeed*dt/scanProgressDivisor
	if progress < 100 {
		w.setProbeProgress(probe, progress)
		return
	}

	probe.LastScannedID = probe.LocationID
	probe.version++

	w.ensureSectorAt(probe.X, probe.Y)

	discovered := 0
	for _, sys := range w.orderedSystems() {
		if sys.Discovered {
			continue
		}
		if distanceBetween(probe.X, probe.Y, sys.X, sys.Y) <= probe.Stats.ScanRange {
			w.MarkSystemDiscovered(sys.ID)
			discovered++
		}
	}

	w.SetProbeState(probe.ID, StateIdle, "")
	expedition.ScanCompleted(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), expedition.ScanCompletedPayload{
		SystemID:   probe.LocationID,
		Discovered: discovered,
	})
}

func (w *World) stepResearching(probe *probeState, dt float64) {
	sys, ok := w.systems[probe.LocationID]
	if !ok {
		w.SetProbeState(probe.ID, StateIdle, "")
		return
	}
	consumed := w.ConsumeSystemScience(sys.ID, w.tuning.Science.ResearchRateBase*probe.Stats.ScanSpeed*dt)
	if consumed > 0 {
		w.AddSciencePool(consumed)
	}
	if sys.ScienceRemaining <= 0 {
		economy.ScienceExhausted(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), economy.ScienceExhaustedPayload{
			SystemID:  sys.ID,
			Harvested: sys.ScienceTotal - sys.ScienceRemaining,
		})
		w.SetProbeState(probe.ID, StateIdle, "")
	}
}
