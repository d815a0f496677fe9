package economy

import (
	"context"

	"starseeder/server/logging"
)

const (
	// EventResourceDepleted is emitted when a mining site runs dry.
	EventResourceDepleted logging.EventType = "economy.resource_depleted"
	// EventScienceExhausted is emitted when a system's science is fully consumed.
	EventScienceExhausted logging.EventType = "economy.science_exhausted"
	// EventReplicationStarted is emitted when a probe commits a build order.
	EventReplicationStarted logging.EventType = "economy.replication_started"
	// EventReplicationCompleted is emitted when a new probe comes online.
	EventReplicationCompleted logging.EventType = "economy.replication_completed"
	// EventRelayDeployed is emitted when a science relay is placed.
	EventRelayDeployed logging.EventType = "economy.relay_deployed"
	// EventRelayRemoved is emitted when a science relay is retired.
	EventRelayRemoved logging.EventType = "economy.relay_removed"
	// EventCommandRejected is emitted when a command fails validation.
	EventCommandRejected logging.EventType = "economy.command_rejected"
	// EventExternalUnavailable is emitted when the naming service falls back.
	EventExternalUnavailable logging.EventType = "economy.external_unavailable"
)

// ResourceDepletedPayload names the dry resource and its system.
type ResourceDepletedPayload struct {
	SystemID string `json:"systemId"`
	Resource string `json:"resource"`
}

// ScienceExhaustedPayload names the exhausted system.
type ScienceExhaustedPayload struct {
	SystemID  string  `json:"systemId"`
	Harvested float64 `json:"harvested"`
}

// ReplicationPayload describes a build order.
type ReplicationPayload struct {
	SystemID  string  `json:"systemId"`
	Blueprint string  `json:"blueprint"`
	Metal     float64 `json:"metal,omitempty"`
	Plutonium float64 `json:"plutonium,omitempty"`
	ChildID   string  `json:"childId,omitempty"`
}

// RelayPayload names the system a relay was placed at or removed from.
type RelayPayload struct {
	SystemID string `json:"systemId"`
}

// CommandRejectedPayload explains why a command was discarded.
type CommandRejectedPayload struct {
	Command string `json:"command"`
	Reason  string `json:"reason"`
}

// ExternalUnavailablePayload describes a naming-service fallback.
type ExternalUnavailablePayload struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// ResourceDepleted publishes an informational depletion event.
func ResourceDepleted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ResourceDepletedPayload) {
	publish(ctx, pub, EventResourceDepleted, tick, actor, logging.SeverityInfo, payload)
}

// ScienceExhausted publishes an informational exhaustion event.
func ScienceExhausted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ScienceExhaustedPayload) {
	publish(ctx, pub, EventScienceExhausted, tick, actor, logging.SeverityInfo, payload)
}

// ReplicationStarted publishes a committed build order.
func ReplicationStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ReplicationPayload) {
	publish(ctx, pub, EventReplicationStarted, tick, actor, logging.SeverityInfo, payload)
}

// ReplicationCompleted publishes a finished build order.
func ReplicationCompleted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ReplicationPayload) {
	publish(ctx, pub, EventReplicationCompleted, tick, actor, logging.SeverityInfo, payload)
}

// RelayDeployed publishes a relay placement.
func RelayDeployed(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RelayPayload) {
	publish(ctx, pub, EventRelayDeployed, tick, actor, logging.SeverityInfo, payload)
}

// RelayRemoved publishes a relay removal.
func RelayRemoved(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload RelayPayload) {
	publish(ctx, pub, EventRelayRemoved, tick, actor, logging.SeverityInfo, payload)
}

// CommandRejected publishes a validation-rejected advisory.
func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CommandRejectedPayload) {
	publish(ctx, pub, EventCommandRejected, tick, actor, logging.SeverityWarn, payload)
}

// ExternalUnavailable publishes an external-service fallback advisory.
func ExternalUnavailable(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ExternalUnavailablePayload) {
	publish(ctx, pub, EventExternalUnavailable, tick, actor, logging.SeverityWarn, payload)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, tick uint64, actor logging.EntityRef, severity logging.Severity, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryEconomy,
		Payload:  payload,
	})
}
