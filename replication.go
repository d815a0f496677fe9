package main

import (
	"context"

	"starseeder/server/logging/economy"
)

// Blueprint is the template consumed by a build order: a stat loadout plus a
// resource and time cost. Costs are deducted when the order commits and the
// probe is realized when the build completes.
type Blueprint struct {
	Name             string        `json:"name,omitempty"`
	Model            string        `json:"model"`
	Stats            ProbeStats    `json:"stats"`
	Cost             ResourceStock `json:"cost"`
	BuildTimeSeconds float64       `json:"buildTimeSeconds"`
	InitialInventory ResourceStock `json:"initialInventory"`
}

// syntheticBlueprint builds the self-copy template the autonomy engine
// installs: the probe's own stats at the standard replication cost.
func (w *World) syntheticBlueprint(probe *probeState) Blueprint {
	return Blueprint{
		Model: probe.Model,
		Stats: probe.Stats,
		Cost: ResourceStock{
			Metal:     w.tuning.Replication.MetalCost,
			Plutonium: w.tuning.Replication.PlutoniumCost,
		},
		BuildTimeSeconds: w.tuning.Replication.BuildTimeSeconds,
	}
}

// canAffordBlueprint reports whether the probe holds the full build cost.
func canAffordBlueprint(probe *probeState, blueprint Blueprint) bool {
	return probe.Inventory.Metal >= blueprint.Cost.Metal &&
		probe.Inventory.Plutonium >= blueprint.Cost.Plutonium
}

// beginReplication deducts the build cost, installs the pending blueprint,
// and transitions to Replicating. The current system joins the colonized set
// so no second order lands there within the same tick batch. Callers
// validate affordability and the colonized guard first.
func (w *World) beginReplication(probe *probeState, blueprint Blueprint) {
	w.SpendProbeResource(probe.ID, ResourceMetal, blueprint.Cost.Metal)
	w.SpendProbeResource(probe.ID, ResourcePlutonium, blueprint.Cost.Plutonium)
	copied := blueprint
	probe.pendingBlueprint = &copied
	w.colonized[probe.LocationID] = true
	w.SetProbeState(probe.ID, StateReplicating, "")
	economy.ReplicationStarted(context.Background(), w.publisher, w.currentTick, probeRef(probe.ID), economy.ReplicationPayload{
		SystemID:  probe.LocationID,
		Blueprint: blueprint.Model,
		Metal:     blueprint.Cost.Metal,
		Plutonium: blueprint.Cost.Plutonium,
	})
}

// completeReplication realizes the pending blueprint as a new probe at the
// parent's location. This is the sole population-growth mechanism.
func (w *World) completeReplication(parent *probeState) {
	blueprint := parent.pendingBlueprint
	parent.pendingBlueprint = nil
	parent.lastReplicationAt = w.simTime
	parent.hasReplicated = true
	w.SetProbeState(parent.ID, StateIdle, "")
	if blueprint == nil {
		return
	}

	child := w.spawnProbe(blueprint.Model, blueprint.Stats, blueprint.InitialInventory, parent.LocationID)
	if blueprint.Name != "" {
		child.Name = blueprint.Name
	} else {
		// Placeholder stands until the async naming lookup reconciles.
		w.queueNameRequest(nameRequest{
			Kind:     nameRequestProbe,
			EntityID: child.ID,
			Hint:     child.Model,
		})
	}

	w.journal.AppendPatch(Patch{
		Kind:     PatchProbeSpawned,
		EntityID: child.ID,
		Payload:  ProbeSpawnedPayload{Probe: child.snapshot()},
	})
	if w.telemetry != nil {
		w.telemetry.RecordProbeSpawned()
	}
	economy.ReplicationCompleted(context.Background(), w.publisher, w.currentTick, probeRef(parent.ID), economy.ReplicationPayload{
		SystemID:  parent.LocationID,
		Blueprint: blueprint.Model,
		ChildID:   child.ID,
	})
}
