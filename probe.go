package main

// ProbeState identifies the probe state machine's current node.
type ProbeState string

const (
	StateIdle            ProbeState = "idle"
	StateTraveling       ProbeState = "traveling"
	StateMiningMetal     ProbeState = "mining_metal"
	StateMiningPlutonium ProbeState = "mining_plutonium"
	StateReplicating     ProbeState = "replicating"
	StateScanning        ProbeState = "scanning"
	StateExploring       ProbeState = "exploring"
	StateResearching     ProbeState = "researching"
)

func validProbeState(state ProbeState) bool {
	switch state {
	case StateIdle, StateTraveling, StateMiningMetal, StateMiningPlutonium,
		StateReplicating, StateScanning, StateExploring, StateResearching:
		return true
	}
	return false
}

// BehaviorMode selects the autonomy strategy installed on a probe.
type BehaviorMode string

const (
	BehaviorDefault          BehaviorMode = "default"
	BehaviorFocusMining      BehaviorMode = "focus_mining"
	BehaviorFocusExploring   BehaviorMode = "focus_exploring"
	BehaviorFocusScience     BehaviorMode = "focus_science"
	BehaviorFocusReplication BehaviorMode = "focus_replication"
)

func validBehaviorMode(mode BehaviorMode) bool {
	switch mode {
	case BehaviorDefault, BehaviorFocusMining, BehaviorFocusExploring,
		BehaviorFocusScience, BehaviorFocusReplication:
		return true
	}
	return false
}

// ResourceType names an extractable resource. Plutonium doubles as fuel.
type ResourceType string

const (
	ResourceMetal     ResourceType = "metal"
	ResourcePlutonium ResourceType = "plutonium"
)

// ResourceStock holds per-resource quantities. Used for probe inventories,
// system yields, and blueprint costs alike.
type ResourceStock struct {
	Metal     float64 `json:"metal"`
	Plutonium float64 `json:"plutonium"`
}

// Amount returns the stock held for the given resource type.
func (s ResourceStock) Amount(resource ResourceType) float64 {
	if resource == ResourcePlutonium {
		return s.Plutonium
	}
	return s.Metal
}

// Combined returns the total stock across both resource types.
func (s ResourceStock) Combined() float64 {
	return s.Metal + s.Plutonium
}

// ProbeStats is the capability template a probe operates with.
type ProbeStats struct {
	MiningSpeed      float64 `json:"miningSpeed"`
	FlightSpeed      float64 `json:"flightSpeed"`
	ReplicationSpeed float64 `json:"replicationSpeed"`
	ScanRange        float64 `json:"scanRange"`
	ScanSpeed        float64 `json:"scanSpeed"`
	AutonomyLevel    int     `json:"autonomyLevel"`
}

// defaultProbeStats returns the baseline pioneer loadout.
func defaultProbeStats() ProbeStats {
	return ProbeStats{
		MiningSpeed:      1,
		FlightSpeed:      1,
		ReplicationSpeed: 1,
		ScanRange:        300,
		ScanSpeed:        1,
		AutonomyLevel:    1,
	}
}

// DecisionRecord is one autonomy justification retained in the bounded log.
type DecisionRecord struct {
	Tick   uint64 `json:"tick"`
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// Probe is the broadcast-facing view of a probe.
type Probe struct {
	ID              string           `json:"id"`
	Ordinal         uint64           `json:"ordinal"`
	Name            string           `json:"name"`
	Model           string           `json:"model"`
	State           ProbeState       `json:"state"`
	X               float64          `json:"x"`
	Y               float64          `json:"y"`
	Heading         float64          `json:"heading"`
	LocationID      string           `json:"locationId,omitempty"`
	TargetSystemID  string           `json:"targetSystemId,omitempty"`
	OriginSystemID  string           `json:"originSystemId"`
	LastScannedID   string           `json:"lastScannedSystemId,omitempty"`
	Inventory       ResourceStock    `json:"inventory"`
	Stats           ProbeStats       `json:"stats"`
	Progress        float64          `json:"progress"`
	AutonomyEnabled bool             `json:"autonomyEnabled"`
	Behavior        BehaviorMode     `json:"behavior"`
	DecisionLog     []DecisionRecord `json:"decisionLog,omitempty"`
}

// Docked reports whether the probe currently sits at a system. While
// traveling, LocationID still names the departure system.
func (p Probe) Docked() bool {
	return p.LocationID != "" && p.State != StateTraveling
}

// probeState wraps the broadcast view with server-side bookkeeping.
type probeState struct {
	Probe

	version      uint64
	miningBuffer float64

	travelFromX float64
	travelFromY float64
	travelToX   float64
	travelToY   float64
	travelDist  float64

	pendingBlueprint *Blueprint

	// Batch bookkeeping for the default behavior's alternating mining.
	batchResource ResourceType
	batchBaseline float64

	lastSector        sectorKey
	lastSectorValid   bool
	nextDivertCheck   float64
	nextSafetyCheck   float64
	lastReplicationAt float64
	hasReplicated     bool
}

// snapshot returns the broadcast view with a defensive copy of the log.
func (p *probeState) snapshot() Probe {
	view := p.Probe
	if len(p.DecisionLog) > 0 {
		view.DecisionLog = append([]DecisionRecord(nil), p.DecisionLog...)
	}
	return view
}

// appendDecision records a justification, evicting the oldest past capacity.
func (p *probeState) appendDecision(record DecisionRecord) {
	p.DecisionLog = append(p.DecisionLog, record)
	if overflow := len(p.DecisionLog) - decisionLogCapacity; overflow > 0 {
		p.DecisionLog = append(p.DecisionLog[:0], p.DecisionLog[overflow:]...)
	}
}
