package expedition

import (
	"context"

	"starseeder/server/logging"
)

const (
	// EventProbeLaunched is emitted when a probe departs for a target system.
	EventProbeLaunched logging.EventType = "expedition.probe_launched"
	// EventProbeArrived is emitted when a traveling probe reaches its target.
	EventProbeArrived logging.EventType = "expedition.probe_arrived"
	// EventProbeDocked is emitted when a free-flying probe auto-docks at a system.
	EventProbeDocked logging.EventType = "expedition.probe_docked"
	// EventSafetyOverride is emitted when the fuel safety check re-heads a probe.
	EventSafetyOverride logging.EventType = "expedition.safety_override"
	// EventSectorGenerated is emitted when the generator populates a new sector.
	EventSectorGenerated logging.EventType = "expedition.sector_generated"
	// EventScanCompleted is emitted when an active scan finishes.
	EventScanCompleted logging.EventType = "expedition.scan_completed"
)

// LaunchedPayload describes a directed departure.
type LaunchedPayload struct {
	TargetSystemID string  `json:"targetSystemId"`
	Distance       float64 `json:"distance"`
	FuelBudget     float64 `json:"fuelBudget"`
}

// ArrivedPayload describes an arrival at the travel target.
type ArrivedPayload struct {
	SystemID string `json:"systemId"`
}

// DockedPayload describes an auto-dock during free flight.
type DockedPayload struct {
	SystemID string `json:"systemId"`
}

// SafetyOverridePayload describes a forced return heading.
type SafetyOverridePayload struct {
	SystemID     string  `json:"systemId"`
	FuelRequired float64 `json:"fuelRequired"`
	FuelOnBoard  float64 `json:"fuelOnBoard"`
}

// SectorGeneratedPayload describes a freshly generated sector.
type SectorGeneratedPayload struct {
	SectorX int `json:"sectorX"`
	SectorY int `json:"sectorY"`
	Systems int `json:"systems"`
}

// ScanCompletedPayload describes the outcome of an active scan.
type ScanCompletedPayload struct {
	SystemID   string `json:"systemId"`
	Discovered int    `json:"discovered"`
}

// ProbeLaunched publishes a directed-travel departure event.
func ProbeLaunched(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload LaunchedPayload) {
	publish(ctx, pub, EventProbeLaunched, tick, actor, payload)
}

// ProbeArrived publishes an arrival event.
func ProbeArrived(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ArrivedPayload) {
	publish(ctx, pub, EventProbeArrived, tick, actor, payload)
}

// ProbeDocked publishes an auto-dock event.
func ProbeDocked(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload DockedPayload) {
	publish(ctx, pub, EventProbeDocked, tick, actor, payload)
}

// SafetyOverride publishes a forced return-heading event.
func SafetyOverride(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload SafetyOverridePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSafetyOverride,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryExpedition,
		Payload:  payload,
	})
}

// SectorGenerated publishes a sector generation event.
func SectorGenerated(ctx context.Context, pub logging.Publisher, tick uint64, payload SectorGeneratedPayload) {
	publish(ctx, pub, EventSectorGenerated, tick, logging.EntityRef{Kind: logging.EntityKindWorld}, payload)
}

// ScanCompleted publishes a completed-scan event.
func ScanCompleted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ScanCompletedPayload) {
	publish(ctx, pub, EventScanCompleted, tick, actor, payload)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryExpedition,
		Payload:  payload,
	})
}
