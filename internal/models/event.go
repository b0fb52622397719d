package models

import "time"

// Game event types.
const (
	EventDiscovery    = "DISCOVERY"
	EventReset        = "RESET"
	EventCorruptState = "CORRUPT_STATE"
	EventError        = "ERROR"
)

// GameEvent is a single entry of the persisted game log.
type GameEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // DISCOVERY | RESET | CORRUPT_STATE | ERROR
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
