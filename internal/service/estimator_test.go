package service

import (
	"math"
	"testing"

	"github.com/Deratheone/Signal-Hunt/internal/config"
)

func testCalibration() config.CalibrationConfig {
	return config.CalibrationConfig{
		ReferenceRSSI:    -59,
		PathLossExponent: 2.5,
		DistanceScale:    1.0,
		MinDistanceM:     0.5,
		MaxDistanceM:     50,
	}
}

func TestDistanceEstimator_ReferencePoint(t *testing.T) {
	e := NewDistanceEstimator(testCalibration())

	// At exactly the reference strength the model reads one metre.
	got := e.Estimate(-59)
	if math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("at reference strength: got %v, want 1.0", got)
	}
}

func TestDistanceEstimator_KnownValues(t *testing.T) {
	e := NewDistanceEstimator(testCalibration())

	tests := []struct {
		name string
		rssi float64
		want float64
	}{
		{"strong signal close in", -60.0, math.Pow(10, 1.0/25)},
		{"moderate signal", -69.0, math.Pow(10, 10.0/25)},
		{"weak signal", -80.0, math.Pow(10, 21.0/25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Estimate(tt.rssi)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Estimate(%v) = %v, want %v", tt.rssi, got, tt.want)
			}
		})
	}
}

func TestDistanceEstimator_ClampsToBounds(t *testing.T) {
	e := NewDistanceEstimator(testCalibration())

	if got := e.Estimate(-20); got != 0.5 {
		t.Fatalf("very strong signal must clamp to min: got %v", got)
	}
	if got := e.Estimate(-120); got != 50.0 {
		t.Fatalf("very weak signal must clamp to max: got %v", got)
	}
}

func TestDistanceEstimator_MonotoneInStrength(t *testing.T) {
	e := NewDistanceEstimator(testCalibration())

	// Stronger signal must never read as farther away.
	prev := e.Estimate(-110)
	for rssi := -109.0; rssi <= -30; rssi++ {
		d := e.Estimate(rssi)
		if d > prev {
			t.Fatalf("distance increased with stronger signal at %v dBm: %v > %v", rssi, d, prev)
		}
		prev = d
	}
}

func TestDistanceEstimator_ScaleFactorApplies(t *testing.T) {
	cal := testCalibration()
	cal.DistanceScale = 2.0
	e := NewDistanceEstimator(cal)

	got := e.Estimate(-59)
	if math.Abs(got-2.0) > 1e-9 {
		t.Fatalf("scale factor not applied: got %v, want 2.0", got)
	}
}
