package models

import "time"

// BeaconRecord is one entry of the fixed beacon catalog. Loaded from
// configuration at startup and never mutated afterwards.
type BeaconRecord struct {
	ID     uint32 `json:"id"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// SignalLevel is a received signal strength that may not exist yet.
// Valid is false until the smoothing filter has seen at least one sample
// for the beacon; there is no in-band magic value for "unset".
type SignalLevel struct {
	DBm   float64
	Valid bool
}

// BeaconStatus is the mutable per-beacon runtime state owned by the
// tracker. One instance per registry entry, created at startup with zero
// values and reset (not destroyed) on game reset or signal timeout.
type BeaconStatus struct {
	BeaconID uint32

	RawDBm    float64     // last raw sample, meaningful only while Smoothed.Valid
	Smoothed  SignalLevel // EMA-filtered strength; invalid until first sample and after timeout
	DistanceM float64     // path-loss estimate, meaningful only while Smoothed.Valid

	LastSeen    time.Time
	Active      bool
	SampleCount int // consecutive accepted samples, capped by config
}
