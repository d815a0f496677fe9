package main

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"starseeder/server/logging"
)

// World owns the authoritative simulation state.
type World struct {
	probes     map[string]*probeState
	probeOrder []string

	systems     map[string]*systemState
	systemOrder []string

	// sectors is the generated-set gating lazy universe generation. The key
	// set is persisted state.
	sectors map[sectorKey]bool

	sciencePool float64

	// colonized is rebuilt every tick from each probe's origin system and
	// blocks a second replication at the same system within one tick batch.
	colonized map[string]bool

	nextProbeOrdinal  uint64
	nextSystemOrdinal uint64

	config  worldConfig
	tuning  simTuning
	rng     *rand.Rand
	noise   opensimplex.Noise
	seed    string
	journal Journal

	publisher logging.Publisher
	telemetry *telemetryCounters

	currentTick uint64
	simTime     float64

	nameRequests []nameRequest
}

// newWorld constructs an empty world seeded with its origin system and the
// configured number of pioneer probes.
func newWorld(cfg worldConfig, tuning simTuning, publisher logging.Publisher) *World {
	normalized := cfg.normalized()

	if publisher == nil {
		publisher = logging.NopPublisher()
	}

	w := &World{
		probes:       make(map[string]*probeState),
		probeOrder:   make([]string, 0),
		systems:      make(map[string]*systemState),
		systemOrder:  make([]string, 0),
		sectors:      make(map[sectorKey]bool),
		colonized:    make(map[string]bool),
		config:       normalized,
		tuning:       tuning,
		rng:          newDeterministicRNG(normalized.Seed, "world"),
		noise:        opensimplex.NewNormalized(seedHash(normalized.Seed, "noise")),
		seed:         normalized.Seed,
		journal:      newJournal(),
		publisher:    publisher,
		telemetry:    newTelemetryCounters(),
		nameRequests: make([]nameRequest, 0),
	}

	origin := w.spawnOriginSystem()
	w.markSectorGenerated(w.sectorFor(origin.X, origin.Y))

	for i := 0; i < normalized.InitialProbes; i++ {
		w.spawnProbe(defaultProbeModel, defaultProbeStats(), ResourceStock{}, origin.ID)
	}
	return w
}

const defaultProbeModel = "Pioneer"

// spawnOriginSystem creates the fully known home system at the universe
// origin. It is the only system not produced by the procedural generator.
func (w *World) spawnOriginSystem() *systemState {
	sys := &systemState{
		SolarSystem: SolarSystem{
			ID:         w.mintSystemID(),
			Ordinal:    w.nextSystemOrdinal,
			Name:       "Meridian",
			X:          0,
			Y:          0,
			Discovered: true,
			Visited:    true,
			Analyzed:   true,
			Resources:  ResourceStock{Metal: 60, Plutonium: 40},
			Yield:      ResourceStock{Metal: 1200, Plutonium: 600},
			// The home system was surveyed long before the simulation starts.
			ScienceRemaining: 0,
			ScienceTotal:     100,
		},
	}
	w.addSystem(sys)
	return sys
}

func (w *World) mintProbeID() string {
	w.nextProbeOrdinal++
	return fmt.Sprintf("probe-%d", w.nextProbeOrdinal)
}

func (w *World) mintSystemID() string {
	w.nextSystemOrdinal++
	return fmt.Sprintf("system-%d", w.nextSystemOrdinal)
}

// spawnProbe allocates and registers a probe docked at the given system.
func (w *World) spawnProbe(model string, stats ProbeStats, inventory ResourceStock, locationID string) *probeState {
	var x, y float64
	if sys, ok := w.systems[locationID]; ok {
		x, y = sys.X, sys.Y
	}
	id := w.mintProbeID()
	probe := &probeState{
		Probe: Probe{
			ID:              id,
			Ordinal:         w.nextProbeOrdinal,
			Name:            fmt.Sprintf("%s-%d", model, w.nextProbeOrdinal),
			Model:           model,
			State:           StateIdle,
			X:               x,
			Y:               y,
			LocationID:      locationID,
			OriginSystemID:  locationID,
			Inventory:       inventory,
			Stats:           stats,
			AutonomyEnabled: true,
			Behavior:        BehaviorDefault,
		},
		batchResource: ResourceMetal,
	}
	w.addProbe(probe)
	return probe
}

func (w *World) addProbe(probe *probeState) {
	if probe == nil || probe.ID == "" {
		return
	}
	if _, exists := w.probes[probe.ID]; exists {
		return
	}
	w.probes[probe.ID] = probe
	w.probeOrder = append(w.probeOrder, probe.ID)
}

// RemoveProbe drops a probe from the world. The simulation never does this
// itself; only an external command retires a probe.
func (w *World) RemoveProbe(id string) bool {
	if _, ok := w.probes[id]; !ok {
		return false
	}
	delete(w.probes, id)
	for i, probeID := range w.probeOrder {
		if probeID == id {
			w.probeOrder = append(w.probeOrder[:i], w.probeOrder[i+1:]...)
			break
		}
	}
	w.journal.PurgeEntity(id)
	return true
}

func (w *World) addSystem(sys *systemState) {
	if sys == nil || sys.ID == "" {
		return
	}
	if _, exists := w.systems[sys.ID]; exists {
		return
	}
	w.systems[sys.ID] = sys
	w.systemOrder = append(w.systemOrder, sys.ID)
}

// orderedProbes returns probes in stable spawn order for tick processing.
func (w *World) orderedProbes() []*probeState {
	ordered := make([]*probeState, 0, len(w.probeOrder))
	for _, id := range w.probeOrder {
		if probe, ok := w.probes[id]; ok {
			ordered = append(ordered, probe)
		}
	}
	return ordered
}

// orderedSystems returns systems in stable generation order.
func (w *World) orderedSystems() []*systemState {
	ordered := make([]*systemState, 0, len(w.systemOrder))
	for _, id := range w.systemOrder {
		if sys, ok := w.systems[id]; ok {
			ordered = append(ordered, sys)
		}
	}
	return ordered
}

// Snapshot copies probes and systems into broadcast-friendly structs.
func (w *World) Snapshot() ([]Probe, []SolarSystem) {
	probes := make([]Probe, 0, len(w.probes))
	for _, probe := range w.orderedProbes() {
		probes = append(probes, probe.snapshot())
	}
	systems := make([]SolarSystem, 0, len(w.systems))
	for _, sys := range w.orderedSystems() {
		systems = append(systems, sys.snapshot())
	}
	return probes, systems
}

// SciencePool returns the accumulated global science total.
func (w *World) SciencePool() float64 {
	return w.sciencePool
}

// relaysUnlocked reports whether the science pool has crossed the relay
// unlock threshold.
func (w *World) relaysUnlocked() bool {
	return w.sciencePool >= w.tuning.Science.RelayUnlockScience
}

// rebuildColonizedSet seeds the per-tick replication guard from every
// probe's origin system.
func (w *World) rebuildColonizedSet() {
	for id := range w.colonized {
		delete(w.colonized, id)
	}
	for _, probe := range w.probes {
		if probe.OriginSystemID != "" {
			w.colonized[probe.OriginSystemID] = true
		}
	}
}

// queueNameRequest stages an outbound naming lookup. Requests are flushed
// outside the tick so external latency can never stall the scheduler.
func (w *World) queueNameRequest(req nameRequest) {
	w.nameRequests = append(w.nameRequests, req)
}

// flushNameRequests drains the staged naming lookups.
func (w *World) flushNameRequests() []nameRequest {
	if len(w.nameRequests) == 0 {
		return nil
	}
	drained := make([]nameRequest, len(w.nameRequests))
	copy(drained, w.nameRequests)
	w.nameRequests = w.nameRequests[:0]
	return drained
}

// nearestSystem returns the closest system accepted by the filter, measured
// from the given point. Ties resolve to the earliest-generated system so the
// scheduler stays deterministic.
func (w *World) nearestSystem(x, y float64, accept func(*systemState) bool) (*systemState, float64) {
	var best *systemState
	bestDist := 0.0
	for _, sys := range w.orderedSystems() {
		if accept != nil && !accept(sys) {
			continue
		}
		dist := distanceBetween(x, y, sys.X, sys.Y)
		if best == nil || dist < bestDist {
			best = sys
			bestDist = dist
		}
	}
	return best, bestDist
}
