package main

import (
	"fmt"
	"sort"

	"starseeder/server/logging"
)

const snapshotVersion = 1

// SnapshotDocument is the persisted form of the full world: probes, systems,
// the generated-sector set, and the global science pool. Missing fields load
// with safe defaults; structural violations reject the whole document.
type SnapshotDocument struct {
	Version           int               `json:"version"`
	Seed              string            `json:"seed"`
	Tick              uint64            `json:"tick"`
	SimTime           float64           `json:"simTime"`
	SciencePool       float64           `json:"sciencePool"`
	NextProbeOrdinal  uint64            `json:"nextProbeOrdinal"`
	NextSystemOrdinal uint64            `json:"nextSystemOrdinal"`
	Probes            []ProbeSnapshot   `json:"probes"`
	Systems           []SolarSystem     `json:"systems"`
	Sectors           []SectorSnapshot  `json:"sectors"`
}

// ProbeSnapshot persists the broadcast view plus server-side bookkeeping.
type ProbeSnapshot struct {
	Probe

	MiningBuffer      float64    `json:"miningBuffer,omitempty"`
	TravelFromX       float64    `json:"travelFromX,omitempty"`
	TravelFromY       float64    `json:"travelFromY,omitempty"`
	TravelToX         float64    `json:"travelToX,omitempty"`
	TravelToY         float64    `json:"travelToY,omitempty"`
	TravelDist        float64    `json:"travelDist,omitempty"`
	PendingBlueprint  *Blueprint `json:"pendingBlueprint,omitempty"`
	LastReplicationAt float64    `json:"lastReplicationAt,omitempty"`
	HasReplicated     bool       `json:"hasReplicated,omitempty"`
}

// SectorSnapshot persists one generated-sector key.
type SectorSnapshot struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// BuildSnapshot captures the full world for persistence.
func (w *World) BuildSnapshot() SnapshotDocument {
	doc := SnapshotDocument{
		Version:           snapshotVersion,
		Seed:              w.seed,
		Tick:              w.currentTick,
		SimTime:           w.simTime,
		SciencePool:       w.sciencePool,
		NextProbeOrdinal:  w.nextProbeOrdinal,
		NextSystemOrdinal: w.nextSystemOrdinal,
		Probes:            make([]ProbeSnapshot, 0, len(w.probes)),
		Systems:           make([]SolarSystem, 0, len(w.systems)),
		Sectors:           make([]SectorSnapshot, 0, len(w.sectors)),
	}
	for _, probe := range w.orderedProbes() {
		doc.Probes = append(doc.Probes, ProbeSnapshot{
			Probe:             probe.snapshot(),
			MiningBuffer:      probe.miningBuffer,
			TravelFromX:       probe.travelFromX,
			TravelFromY:       probe.travelFromY,
			TravelToX:         probe.travelToX,
			TravelToY:         probe.travelToY,
			TravelDist:        probe.travelDist,
			PendingBlueprint:  probe.pendingBlueprint,
			LastReplicationAt: probe.lastReplicationAt,
			HasReplicated:     probe.hasReplicated,
		})
	}
	for _, sys := range w.orderedSystems() {
		doc.Systems = append(doc.Systems, sys.snapshot())
	}
	for key := range w.sectors {
		doc.Sectors = append(doc.Sectors, SectorSnapshot{X: key.X, Y: key.Y})
	}
	sort.Slice(doc.Sectors, func(i, j int) bool {
		if doc.Sectors[i].X != doc.Sectors[j].X {
			return doc.Sectors[i].X < doc.Sectors[j].X
		}
		return doc.Sectors[i].Y < doc.Sectors[j].Y
	})
	return doc
}

// restoreWorld rebuilds a world from a snapshot. The load is all-or-nothing:
// any structural violation returns an error and the caller keeps its current
// world untouched. Missing optional fields take safe defaults.
func restoreWorld(doc SnapshotDocument, tuning simTuning, publisher logging.Publisher) (*World, error) {
	if doc.Version > snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d is newer than supported %d", doc.Version, snapshotVersion)
	}

	cfg := defaultWorldConfig()
	cfg.Seed = doc.Seed
	cfg = cfg.normalized()

	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	w := newWorld(cfg, tuning, publisher)
	// Drop the bootstrap population; the snapshot is authoritative.
	w.probes = make(map[string]*probeState)
	w.probeOrder = w.probeOrder[:0]
	w.systems = make(map[string]*systemState)
	w.systemOrder = w.systemOrder[:0]
	w.sectors = make(map[sectorKey]bool)
	w.journal.DrainPatches()

	w.currentTick = doc.Tick
	w.simTime = doc.SimTime
	w.sciencePool = doc.SciencePool
	w.nextProbeOrdinal = doc.NextProbeOrdinal
	w.nextSystemOrdinal = doc.NextSystemOrdinal

	for _, snap := range doc.Systems {
		if snap.ID == "" {
			return nil, fmt.Errorf("snapshot contains a system without an id")
		}
		if _, exists := w.systems[snap.ID]; exists {
			return nil, fmt.Errorf("snapshot contains duplicate system %s", snap.ID)
		}
		sys := &systemState{SolarSystem: snap}
		sanitizeSystem(sys)
		w.addSystem(sys)
	}

	for _, snap := range doc.Probes {
		if snap.ID == "" {
			return nil, fmt.Errorf("snapshot contains a probe without an id")
		}
		if _, exists := w.probes[snap.ID]; exists {
			return nil, fmt.Errorf("snapshot contains duplicate probe %s", snap.ID)
		}
		if snap.LocationID != "" {
			if _, exists := w.systems[snap.LocationID]; !exists {
				return nil, fmt.Errorf("probe %s references unknown system %s", snap.ID, snap.LocationID)
			}
		}
		probe := &probeState{
			Probe:             snap.Probe,
			miningBuffer:      snap.MiningBuffer,
			travelFromX:       snap.TravelFromX,
			travelFromY:       snap.TravelFromY,
			travelToX:         snap.TravelToX,
			travelToY:         snap.TravelToY,
			travelDist:        snap.TravelDist,
			pendingBlueprint:  snap.PendingBlueprint,
			lastReplicationAt: snap.LastReplicationAt,
			hasReplicated:     snap.HasReplicated,
			batchResource:     ResourceMetal,
		}
		sanitizeProbe(probe)
		w.addProbe(probe)
	}

	for _, key := range doc.Sectors {
		w.sectors[sectorKey{X: key.X, Y: key.Y}] = true
	}
	// Every system's sector must be in the generated set, or re-entry would
	// regenerate on top of it.
	for _, sys := range w.systems {
		w.sectors[w.sectorFor(sys.X, sys.Y)] = true
	}

	w.deriveOrdinals()
	return w, nil
}

// sanitizeProbe applies safe defaults for missing or invalid fields.
func sanitizeProbe(probe *probeState) {
	if !validProbeState(probe.State) {
		probe.State = StateIdle
	}
	if !validBehaviorMode(probe.Behavior) {
		probe.Behavior = BehaviorDefault
	}
	if probe.Stats == (ProbeStats{}) {
		probe.Stats = defaultProbeStats()
	}
	if probe.Model == "" {
		probe.Model = defaultProbeModel
	}
	if probe.Inventory.Metal < 0 {
		probe.Inventory.Metal = 0
	}
	if probe.Inventory.Plutonium < 0 {
		probe.Inventory.Plutonium = 0
	}
	if probe.Progress < 0 || probe.Progress > 100 {
		probe.Progress = 0
	}
	if probe.State == StateTraveling && probe.TargetSystemID == "" {
		probe.State = StateIdle
	}
	if probe.State == StateReplicating && probe.pendingBlueprint == nil {
		probe.State = StateIdle
	}
}

// sanitizeSystem clamps depletable fields into their invariant ranges.
func sanitizeSystem(sys *systemState) {
	if sys.Yield.Metal < 0 {
		sys.Yield.Metal = 0
	}
	if sys.Yield.Plutonium < 0 {
		sys.Yield.Plutonium = 0
	}
	if sys.ScienceRemaining < 0 {
		sys.ScienceRemaining = 0
	}
	if sys.ScienceTotal < sys.ScienceRemaining {
		sys.ScienceTotal = sys.ScienceRemaining
	}
	// Visited or analyzed systems have necessarily been discovered.
	if sys.Visited || sys.Analyzed {
		sys.Discovered = true
	}
}

// deriveOrdinals recovers id counters from the snapshot contents when the
// document predates the ordinal fields.
func (w *World) deriveOrdinals() {
	for _, probe := range w.probes {
		if probe.Ordinal > w.nextProbeOrdinal {
			w.nextProbeOrdinal = probe.Ordinal
		}
	}
	for _, sys := range w.systems {
		if sys.Ordinal > w.nextSystemOrdinal {
			w.nextSystemOrdinal = sys.Ordinal
		}
	}
}
