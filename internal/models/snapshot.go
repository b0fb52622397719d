package models

import "time"

// RadarBeacon is one active beacon as presented to the display client.
type RadarBeacon struct {
	ID        uint32    `json:"id"`
	Name      string    `json:"name"`
	DistanceM float64   `json:"distance_m"`
	RSSI      float64   `json:"rssi"`
	Points    int       `json:"points"`
	LastSeen  time.Time `json:"last_seen"`
	Angle     float64   `json:"angle"` // display placement, degrees 0-359
	Found     bool      `json:"found"`
}

// IngestStats are cumulative tracker-side sample counters.
type IngestStats struct {
	Accepted   uint64 `json:"accepted"`
	Unknown    uint64 `json:"unknown"`    // samples for identities not in the registry
	Suppressed uint64 `json:"suppressed"` // samples dropped during reset cooldown
}

// RadarSnapshot is the read-only view served to the display client.
// Beacons is empty while a reset cooldown holds.
type RadarSnapshot struct {
	Timestamp       time.Time     `json:"timestamp"`
	ActiveCount     int           `json:"active_count"`
	MaxRangeM       float64       `json:"max_range_m"`
	InResetCooldown bool          `json:"in_reset_cooldown"`
	Beacons         []RadarBeacon `json:"beacons"`
	Ingest          IngestStats   `json:"ingest"`
}

// FoundBeacon is one found-set entry in score and export payloads.
type FoundBeacon struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// ScoreReport answers the score query.
type ScoreReport struct {
	TotalScore      int           `json:"total_score"`
	FoundCount      int           `json:"found_count"`
	SessionElapsedS float64       `json:"session_elapsed_s"`
	Found           []FoundBeacon `json:"found"`
}

// ActiveBeaconReport is one currently-active beacon in the export report.
type ActiveBeaconReport struct {
	ID        uint32  `json:"id"`
	Name      string  `json:"name"`
	DistanceM float64 `json:"distance_m"`
	RSSI      float64 `json:"rssi"`
}

// HuntReport is the downloadable point-in-time result export. It is a
// one-shot serialization, not part of the game state machine.
type HuntReport struct {
	FormatVersion int                  `json:"format_version"`
	DeviceID      string               `json:"device_id"`
	SessionID     string               `json:"session_id"`
	GeneratedAt   time.Time            `json:"generated_at"`
	TotalScore    int                  `json:"total_score"`
	FoundCount    int                  `json:"found_count"`
	Found         []FoundBeacon        `json:"found"`
	Active        []ActiveBeaconReport `json:"active"`
}

// HuntReportVersion is bumped when the export layout changes.
const HuntReportVersion = 1
