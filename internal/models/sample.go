package models

import "time"

// Sample is one signal-strength observation delivered by a source. The
// channel gives no ordering or delivery guarantee; a lost sample is simply
// absent and is handled by the liveness timeout.
type Sample struct {
	BeaconID uint32
	DBm      float64   // signed, more negative = weaker
	At       time.Time // arrival time as observed by the source
	Source   string    // source name, for logging only
}
