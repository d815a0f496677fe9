package main

// clientMessage is the envelope for everything a client sends over the
// websocket. Type selects the command; the remaining fields are read only by
// the commands that need them.
type clientMessage struct {
	Type           string        `json:"type"`
	ProbeID        string        `json:"probeId,omitempty"`
	TargetSystemID string        `json:"targetSystemId,omitempty"`
	SystemID       string        `json:"systemId,omitempty"`
	Heading        float64       `json:"heading,omitempty"`
	Resource       ResourceType  `json:"resource,omitempty"`
	Blueprint      *Blueprint    `json:"blueprint,omitempty"`
	Enabled        *bool         `json:"enabled,omitempty"`
	Behavior       *BehaviorMode `json:"behavior,omitempty"`
	SentAt         int64         `json:"sentAt,omitempty"`
}

type joinResponse struct {
	Ver         int           `json:"ver"`
	ID          string        `json:"id"`
	Probes      []Probe       `json:"probes"`
	Systems     []SolarSystem `json:"systems"`
	SciencePool float64       `json:"sciencePool"`
	Seed        string        `json:"seed"`
	TickRate    int           `json:"tickRate"`
}

type stateMessage struct {
	Ver         int           `json:"ver"`
	Type        string        `json:"type"`
	Tick        uint64        `json:"t"`
	ServerTime  int64         `json:"serverTime"`
	Probes      []Probe       `json:"probes,omitempty"`
	Systems     []SolarSystem `json:"systems,omitempty"`
	SciencePool float64       `json:"sciencePool"`
	Patches     []Patch       `json:"patches"`
}

type heartbeatMessage struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}

type errorMessage struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// commandFromMessage translates a client envelope into a simulation command.
// Unknown types return false; validation beyond shape happens inside the tick.
func commandFromMessage(msg clientMessage) (Command, bool) {
	cmd := Command{ProbeID: msg.ProbeID}
	switch msg.Type {
	case "launch":
		cmd.Type = CommandLaunch
		cmd.Launch = &LaunchCommand{TargetSystemID: msg.TargetSystemID}
	case "deep_space_launch":
		cmd.Type = CommandDeepSpaceLaunch
		cmd.DeepSpace = &DeepSpaceLaunchCommand{Heading: msg.Heading}
	case "mine":
		cmd.Type = CommandMine
		cmd.Mine = &MineCommand{Resource: msg.Resource}
	case "scan":
		cmd.Type = CommandScan
	case "research":
		cmd.Type = CommandResearch
	case "replicate":
		cmd.Type = CommandReplicate
		cmd.Replicate = &ReplicateCommand{Blueprint: msg.Blueprint}
	case "stop":
		cmd.Type = CommandStopOperation
	case "analyze":
		cmd.Type = CommandAnalyze
		cmd.Analyze = &AnalyzeCommand{SystemID: msg.SystemID}
	case "set_autonomy":
		cmd.Type = CommandSetAutonomy
		cmd.Autonomy = &SetAutonomyCommand{Enabled: msg.Enabled, Behavior: msg.Behavior}
	case "deploy_relay":
		cmd.Type = CommandDeployRelay
	case "remove_relay":
		cmd.Type = CommandRemoveRelay
	case "remove_probe":
		cmd.Type = CommandRemoveProbe
	default:
		return Command{}, false
	}
	return cmd, true
}
