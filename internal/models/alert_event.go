package models

import "time"

// Alert lifecycle event types.
const (
	EventRaised       = "RAISED"
	EventAcknowledged = "ACKNOWLEDGED"
	EventResolved     = "RESOLVED"
	EventPurged       = "PURGED"
)

// AlertEvent is a single audit log entry of the alert lifecycle.
type AlertEvent struct {
	EventID     string    `json:"eventId"`
	OccurredAt  time.Time `json:"occurredAt"`
	Type        string    `json:"type"` // RAISED | ACKNOWLEDGED | RESOLVED | PURGED
	AlertID     string    `json:"alertId"`
	DeviceID    string    `json:"deviceId,omitempty"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
