package main

import "math"

const positionEpsilon = 1e-6

// positionsEqual reports whether two coordinate pairs are effectively the same.
func positionsEqual(ax, ay, bx, by float64) bool {
	return math.Abs(ax-bx) <= positionEpsilon && math.Abs(ay-by) <= positionEpsilon
}

// SetProbePosition updates a probe's position, bumps the version, and records
// a patch. All position writes must flow through this helper so the patch
// journal stays authoritative.
func (w *World) SetProbePosition(probeID string, x, y float64) {
	if w == nil {
		return
	}
	probe, ok := w.probes[probeID]
	if !ok {
		return
	}
	if positionsEqual(probe.X, probe.Y, x, y) {
		return
	}
	probe.X = x
	probe.Y = y
	probe.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchProbePos,
		EntityID: probeID,
		Payload:  ProbePosPayload{X: x, Y: y},
	})
}

// SetProbeState transitions a probe's state machine. Progress and the mining
// buffer always reset on a transition; the travel target is only retained
// while entering Traveling.
func (w *World) SetProbeState(probeID string, state ProbeState, targetSystemID string) {
	if w == nil || !validProbeState(state) {
		return
	}
	probe, ok := w.probes[probeID]
	if !ok {
		return
	}
	if state != StateTraveling {
		targetSystemID = ""
	}
	if probe.State == state && probe.TargetSystemID == targetSystemID {
		return
	}
	probe.State = state
	probe.TargetSystemID = targetSystemID
	probe.Progress = 0
	probe.miningBuffer = 0
	probe.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchProbeState,
		EntityID: probeID,
		Payload:  ProbeStatePayload{State: state, Progress: 0, TargetSystemID: targetSystemID},
	})
}

// setProbeProgress advances the per-state progress gauge. Progress moves
// every tick, so it rides along with state patches instead of emitting its
// own journal entry.
func (w *World) setProbeProgress(probe *probeState, progress float64) {
	if w == nil || probe == nil {
		return
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	if probe.Progress == progress {
		return
	}
	probe.Progress = progress
	probe.version++
}

// SetProbeHeading updates a free-flying probe's heading.
func (w *World) SetProbeHeading(probeID string, heading float64) {
	if w == nil {
		return
	}
	probe, ok := w.probes[probeID]
	if !ok {
		return
	}
	heading = normalizeHeading(heading)
	if probe.Heading == heading {
		return
	}
	probe.Heading = heading
	probe.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchProbeHeading,
		EntityID: probeID,
		Payload:  ProbeHeadingPayload{Heading: heading},
	})
}

// SetProbeLocation updates the docked system reference. An empty location
// means free flight.
func (w *World) SetProbeLocation(probeID, locationID string) {
	if w == nil {
		return
	}
	probe, ok := w.probes[probeID]
	if !ok {
		return
	}
	if locationID != "" {
		if _, exists := w.systems[locationID]; !exists {
			return
		}
	}
	if probe.LocationID == locationID {
		return
	}
	probe.LocationID = locationID
	probe.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchProbeLocation,
		EntityID: probeID,
		Payload:  ProbeLocationPayload{LocationID: locationID},
	})
}

// GrantProbeResource credits inventory and records a patch.
func (w *World) GrantProbeResource(probeID string, resource ResourceType, amount float64) {
	if w == nil || amount <= 0 {
		return
	}
	probe, ok := w.probes[probeID]
	if !ok {
		return
	}
	switch resource {
	case ResourcePlutonium:
		probe.Inventory.Plutonium += amount
	default:
		probe.Inventory.Metal += amount
	}
	w.journalInventory(probe)
}

// SpendProbeResource debits inventory, clamping at zero, and reports how
// much was actually paid. Inventory can never go negative.
func (w *World) SpendProbeResource(probeID string, resource ResourceType, amount float64) float64 {
	if w == nil || amount <= 0 {
		return 0
	}
	probe, ok := w.probes[probeID]
	if !ok {
		return 0
	}
	var held *float64
	switch resource {
	case ResourcePlutonium:
		held = &probe.Inventory.Plutonium
	default:
		held = &probe.Inventory.Metal
	}
	paid := amount
	if paid > *held {
		paid = *held
	}
	*held -= paid
	w.journalInventory(probe)
	return paid
}

func (w *World) journalInventory(probe *probeState) {
	probe.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchProbeInventory,
		EntityID: probe.ID,
		Payload:  ProbeInventoryPayload{Inventory: probe.Inventory},
	})
}

// SetProbeAutonomy updates the autonomy flags.
func (w *World) SetProbeAutonomy(probeID string, enabled bool, behavior BehaviorMode) {
	if w == nil || !validBehaviorMode(behavior) {
		return
	}
	probe, ok := w.probes[probeID]
	if !ok {
		return
	}
	if probe.AutonomyEnabled == enabled && probe.Behavior == behavior {
		return
	}
	probe.AutonomyEnabled = enabled
	probe.Behavior = behavior
	probe.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchProbeAutonomy,
		EntityID: probeID,
		Payload:  ProbeAutonomyPayload{Enabled: enabled, Behavior: behavior},
	})
}

// SetProbeName installs a resolved or fallback display name.
func (w *World) SetProbeName(probeID, name string) {
	if w == nil || name == "" {
		return
	}
	probe, ok := w.probes[probeID]
	if !ok {
		return
	}
	if probe.Name == name {
		return
	}
	probe.Name = name
	probe.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchProbeName,
		EntityID: probeID,
		Payload:  ProbeNamePayload{Name: name},
	})
}

// MarkSystemDiscovered raises the discovered flag. Visibility flags are
// monotone: they never drop back to false.
func (w *World) MarkSystemDiscovered(systemID string) {
	w.raiseVisibility(systemID, func(sys *systemState) bool {
		if sys.Discovered {
			return false
		}
		sys.Discovered = true
		return true
	})
}

// MarkSystemVisited raises visited, implying discovered.
func (w *World) MarkSystemVisited(systemID string) {
	w.raiseVisibility(systemID, func(sys *systemState) bool {
		if sys.Visited && sys.Discovered {
			return false
		}
		sys.Discovered = true
		sys.Visited = true
		return true
	})
}

// MarkSystemAnalyzed raises analyzed, implying discovered.
func (w *World) MarkSystemAnalyzed(systemID string) {
	w.raiseVisibility(systemID, func(sys *systemState) bool {
		if sys.Analyzed && sys.Discovered {
			return false
		}
		sys.Discovered = true
		sys.Analyzed = true
		return true
	})
}

func (w *World) raiseVisibility(systemID string, raise func(*systemState) bool) {
	if w == nil {
		return
	}
	sys, ok := w.systems[systemID]
	if !ok {
		return
	}
	if !raise(sys) {
		return
	}
	sys.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchSystemVisibility,
		EntityID: systemID,
		Payload: SystemVisibilityPayload{
			Discovered: sys.Discovered,
			Visited:    sys.Visited,
			Analyzed:   sys.Analyzed,
		},
	})
}

// ReduceSystemYield debits remaining stock, clamping at zero, and reports
// the amount actually extracted. Yield is monotone non-increasing after
// generation.
func (w *World) ReduceSystemYield(systemID string, resource ResourceType, amount float64) float64 {
	if w == nil || amount <= 0 {
		return 0
	}
	sys, ok := w.systems[systemID]
	if !ok {
		return 0
	}
	var remaining *float64
	switch resource {
	case ResourcePlutonium:
		remaining = &sys.Yield.Plutonium
	default:
		remaining = &sys.Yield.Metal
	}
	extracted := amount
	if extracted > *remaining {
		extracted = *remaining
	}
	if extracted <= 0 {
		return 0
	}
	*remaining -= extracted
	sys.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchSystemYield,
		EntityID: systemID,
		Payload:  SystemYieldPayload{Yield: sys.Yield},
	})
	return extracted
}

// ConsumeSystemScience debits remaining science, clamping at zero, and
// reports the amount actually consumed.
func (w *World) ConsumeSystemScience(systemID string, amount float64) float64 {
	if w == nil || amount <= 0 {
		return 0
	}
	sys, ok := w.systems[systemID]
	if !ok {
		return 0
	}
	consumed := amount
	if consumed > sys.ScienceRemaining {
		consumed = sys.ScienceRemaining
	}
	if consumed <= 0 {
		return 0
	}
	sys.ScienceRemaining -= consumed
	sys.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchSystemScience,
		EntityID: systemID,
		Payload:  SystemSciencePayload{ScienceRemaining: sys.ScienceRemaining},
	})
	return consumed
}

// SetSystemLore attaches narrative text. Lore is only ever written once,
// after analysis completes.
func (w *World) SetSystemLore(systemID, lore string) {
	if w == nil || lore == "" {
		return
	}
	sys, ok := w.systems[systemID]
	if !ok || sys.Lore != "" {
		return
	}
	sys.Lore = lore
	sys.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchSystemLore,
		EntityID: systemID,
		Payload:  SystemLorePayload{Lore: lore},
	})
}

// SetSystemRelay toggles relay presence at a system.
func (w *World) SetSystemRelay(systemID string, present bool) {
	if w == nil {
		return
	}
	sys, ok := w.systems[systemID]
	if !ok || sys.HasRelay == present {
		return
	}
	sys.HasRelay = present
	sys.version++
	w.journal.AppendPatch(Patch{
		Kind:     PatchSystemRelay,
		EntityID: systemID,
		Payload:  SystemRelayPayload{HasRelay: present},
	})
}

// AddSciencePool credits the global science pool.
func (w *World) AddSciencePool(amount float64) {
	if w == nil || amount <= 0 {
		return
	}
	w.sciencePool += amount
	w.journal.AppendPatch(Patch{
		Kind:    PatchSciencePool,
		Payload: SciencePoolPayload{Total: w.sciencePool},
	})
}

// markSectorGenerated records a sector key in the generated set.
func (w *World) markSectorGenerated(key sectorKey) {
	if w == nil || w.sectors[key] {
		return
	}
	w.sectors[key] = true
	w.journal.AppendPatch(Patch{
		Kind:    PatchSectorGenerated,
		Payload: SectorGeneratedPayload{SectorX: key.X, SectorY: key.Y},
	})
}
