package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Deratheone/Signal-Hunt/internal/config"
	"github.com/Deratheone/Signal-Hunt/internal/logger"
	"github.com/Deratheone/Signal-Hunt/internal/models"
)

func simCalibration() config.CalibrationConfig {
	return config.CalibrationConfig{
		ReferenceRSSI:    -59,
		PathLossExponent: 2.5,
		DistanceScale:    1.0,
		MinDistanceM:     0.5,
		MaxDistanceM:     50,
	}
}

func TestSimSourceEmitsKnownBeacons(t *testing.T) {
	records := []models.BeaconRecord{
		{ID: 1, Name: "Alpha", Points: 10},
		{ID: 2, Name: "Bravo", Points: 20},
	}
	src := NewSimSource(records, simCalibration(), time.Millisecond, logger.Nop())
	sink := make(chan models.Sample, 256)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = src.Run(ctx, sink) }()

	known := map[uint32]bool{1: true, 2: true}
	var collected []models.Sample
	deadline := time.After(2 * time.Second)
	for len(collected) < 20 {
		select {
		case smp := <-sink:
			collected = append(collected, smp)
		case <-deadline:
			t.Fatalf("collected only %d samples before the deadline", len(collected))
		}
	}
	cancel()

	for _, smp := range collected {
		if !known[smp.BeaconID] {
			t.Fatalf("sample for unregistered beacon %d", smp.BeaconID)
		}
		if smp.Source != "sim" {
			t.Fatalf("expected source sim, got %q", smp.Source)
		}
		if smp.At.IsZero() {
			t.Fatal("expected a non-zero sample time")
		}
		// Strength stays inside what the walk range plus noise can produce.
		if smp.DBm > -45 || smp.DBm < -90 {
			t.Fatalf("implausible simulated strength %g dBm", smp.DBm)
		}
	}
}

func TestSimSourceStopsOnCancel(t *testing.T) {
	records := []models.BeaconRecord{{ID: 1, Name: "Alpha", Points: 10}}
	src := NewSimSource(records, simCalibration(), time.Millisecond, logger.Nop())
	sink := make(chan models.Sample, 16)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- src.Run(ctx, sink) }()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestSimSourceDefaultsInterval(t *testing.T) {
	src := NewSimSource(nil, simCalibration(), 0, logger.Nop())
	if src.interval != defaultSimInterval {
		t.Fatalf("expected default interval %s, got %s", defaultSimInterval, src.interval)
	}
}
