package main

import "sync"

// PatchKind identifies the type of diff entry.
type PatchKind string

const (
	// PatchProbePos updates a probe's continuous position.
	PatchProbePos PatchKind = "probe_pos"
	// PatchProbeState updates a probe's state-machine node and progress.
	PatchProbeState PatchKind = "probe_state"
	// PatchProbeHeading updates a free-flying probe's heading.
	PatchProbeHeading PatchKind = "probe_heading"
	// PatchProbeLocation updates a probe's docked system reference.
	PatchProbeLocation PatchKind = "probe_location"
	// PatchProbeInventory updates a probe's resource inventory.
	PatchProbeInventory PatchKind = "probe_inventory"
	// PatchProbeAutonomy updates a probe's autonomy flags.
	PatchProbeAutonomy PatchKind = "probe_autonomy"
	// PatchProbeName updates a probe's display name.
	PatchProbeName PatchKind = "probe_name"
	// PatchProbeSpawned announces a freshly replicated probe.
	PatchProbeSpawned PatchKind = "probe_spawned"

	// PatchSystemVisibility raises a system's discovered/visited/analyzed flags.
	PatchSystemVisibility PatchKind = "system_visibility"
	// PatchSystemYield updates a system's remaining extractable stock.
	PatchSystemYield PatchKind = "system_yield"
	// PatchSystemScience updates a system's remaining science.
	PatchSystemScience PatchKind = "system_science"
	// PatchSystemLore attaches narrative text after analysis.
	PatchSystemLore PatchKind = "system_lore"
	// PatchSystemRelay toggles relay presence.
	PatchSystemRelay PatchKind = "system_relay"
	// PatchSystemSpawned announces a freshly generated system.
	PatchSystemSpawned PatchKind = "system_spawned"

	// PatchSciencePool updates the global science pool.
	PatchSciencePool PatchKind = "science_pool"
	// PatchSectorGenerated records a sector key entering the generated set.
	PatchSectorGenerated PatchKind = "sector_generated"
)

// Patch represents a diff entry that can be applied to the client state.
type Patch struct {
	Kind     PatchKind `json:"kind"`
	EntityID string    `json:"entityId,omitempty"`
	Payload  any       `json:"payload,omitempty"`
}

// ProbePosPayload captures the coordinates for a probe position patch.
type ProbePosPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ProbeStatePayload captures a state transition. Progress always resets to
// zero on a transition, so it is carried for completeness only.
type ProbeStatePayload struct {
	State          ProbeState `json:"state"`
	Progress       float64    `json:"progress"`
	TargetSystemID string     `json:"targetSystemId,omitempty"`
}

// ProbeHeadingPayload captures the heading for a free-flying probe patch.
type ProbeHeadingPayload struct {
	Heading float64 `json:"heading"`
}

// ProbeLocationPayload captures the docked system for a probe patch.
type ProbeLocationPayload struct {
	LocationID string `json:"locationId"`
}

// ProbeInventoryPayload captures the resource stock for a probe patch.
type ProbeInventoryPayload struct {
	Inventory ResourceStock `json:"inventory"`
}

// ProbeAutonomyPayload captures the autonomy flags for a probe patch.
type ProbeAutonomyPayload struct {
	Enabled  bool         `json:"enabled"`
	Behavior BehaviorMode `json:"behavior"`
}

// ProbeNamePayload captures the display name for a probe patch.
type ProbeNamePayload struct {
	Name string `json:"name"`
}

// ProbeSpawnedPayload carries the full view of a new probe.
type ProbeSpawnedPayload struct {
	Probe Probe `json:"probe"`
}

// SystemVisibilityPayload captures the monotone visibility flags. Flags only
// ever rise, so a payload always reflects the post-raise values.
type SystemVisibilityPayload struct {
	Discovered bool `json:"discovered"`
	Visited    bool `json:"visited"`
	Analyzed   bool `json:"analyzed"`
}

// SystemYieldPayload captures the remaining stock for a system patch.
type SystemYieldPayload struct {
	Yield ResourceStock `json:"yield"`
}

// SystemSciencePayload captures the remaining science for a system patch.
type SystemSciencePayload struct {
	ScienceRemaining float64 `json:"scienceRemaining"`
}

// SystemLorePayload captures narrative text for a system patch.
type SystemLorePayload struct {
	Lore string `json:"lore"`
}

// SystemRelayPayload captures relay presence for a system patch.
type SystemRelayPayload struct {
	HasRelay bool `json:"hasRelay"`
}

// SystemSpawnedPayload carries the full view of a generated system.
type SystemSpawnedPayload struct {
	System SolarSystem `json:"system"`
}

// SciencePoolPayload captures the global science pool total.
type SciencePoolPayload struct {
	Total float64 `json:"total"`
}

// SectorGeneratedPayload records the generated sector key.
type SectorGeneratedPayload struct {
	SectorX int `json:"sectorX"`
	SectorY int `json:"sectorY"`
}

// Journal accumulates patches generated during a tick. Mutators append as
// they apply, and the scheduler drains the batch exactly once at tick end,
// which is what makes the commit boundary explicit.
type Journal struct {
	mu      sync.RWMutex
	patches []Patch
}

func newJournal() Journal {
	return Journal{patches: make([]Patch, 0)}
}

// AppendPatch stages a diff entry for the current tick.
func (j *Journal) AppendPatch(patch Patch) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.patches = append(j.patches, patch)
}

// DrainPatches returns the staged batch and resets the journal.
func (j *Journal) DrainPatches() []Patch {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.patches) == 0 {
		return nil
	}
	drained := make([]Patch, len(j.patches))
	copy(drained, j.patches)
	j.patches = j.patches[:0]
	return drained
}

// SnapshotPatches returns a copy of the staged batch without clearing it.
func (j *Journal) SnapshotPatches() []Patch {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.patches) == 0 {
		return nil
	}
	copied := make([]Patch, len(j.patches))
	copy(copied, j.patches)
	return copied
}

// PurgeEntity drops staged patches for an entity that no longer exists.
func (j *Journal) PurgeEntity(entityID string) {
	if entityID == "" {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	kept := j.patches[:0]
	for _, patch := range j.patches {
		if patch.EntityID == entityID {
			continue
		}
		kept = append(kept, patch)
	}
	j.patches = kept
}
