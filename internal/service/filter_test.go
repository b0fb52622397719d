package service

import (
	"math"
	"testing"

	"github.com/Deratheone/Signal-Hunt/internal/models"
)

func TestSignalFilter_FirstSampleBootstraps(t *testing.T) {
	f := NewSignalFilter(0.25)

	got := f.Next(models.SignalLevel{}, -63.5)
	if !got.Valid {
		t.Fatalf("expected valid level after first sample")
	}
	if got.DBm != -63.5 {
		t.Fatalf("bootstrap must equal raw sample exactly: got %v, want -63.5", got.DBm)
	}
}

func TestSignalFilter_BlendsWithAlpha(t *testing.T) {
	f := NewSignalFilter(0.25)

	prev := models.SignalLevel{DBm: -60, Valid: true}
	got := f.Next(prev, -80)

	want := 0.25*(-80) + 0.75*(-60) // -65
	if math.Abs(got.DBm-want) > 1e-9 {
		t.Fatalf("smoothed: got %v, want %v", got.DBm, want)
	}
	if !got.Valid {
		t.Fatalf("expected valid level")
	}
}

func TestSignalFilter_ConvergesTowardSteadyInput(t *testing.T) {
	f := NewSignalFilter(0.3)

	level := models.SignalLevel{}
	for i := 0; i < 50; i++ {
		level = f.Next(level, -72)
	}
	if math.Abs(level.DBm-(-72)) > 1e-6 {
		t.Fatalf("filter should converge to steady input: got %v", level.DBm)
	}
}

func TestSignalFilter_SingleSpikeMovesEstimateOnlyPartially(t *testing.T) {
	f := NewSignalFilter(0.25)

	level := models.SignalLevel{DBm: -60, Valid: true}
	level = f.Next(level, -95)

	// One outlier must not drag the estimate all the way down.
	if level.DBm <= -95 || level.DBm >= -60 {
		t.Fatalf("spike response out of range: got %v", level.DBm)
	}
	if math.Abs(level.DBm-(-68.75)) > 1e-9 {
		t.Fatalf("expected -68.75 after spike, got %v", level.DBm)
	}
}
