package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const minimalYAML = `
auth:
  signing_key: "test-key"
beacons:
  - id: 1
    name: "Alpha"
    points: 10
  - id: 2
    name: "Bravo"
    points: 20
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("server port: got %q, want %q", cfg.Server.Port, "8080")
	}
	if cfg.Source.Mode != SourceUDP {
		t.Errorf("source mode: got %q, want %q", cfg.Source.Mode, SourceUDP)
	}
	if cfg.Calibration.ReferenceRSSI != -59.0 {
		t.Errorf("reference rssi: got %g, want -59", cfg.Calibration.ReferenceRSSI)
	}
	if cfg.Game.SmoothingAlpha != 0.25 {
		t.Errorf("smoothing alpha: got %g, want 0.25", cfg.Game.SmoothingAlpha)
	}
	if cfg.Game.StabilityPeriod != 5*time.Second {
		t.Errorf("stability period: got %s, want 5s", cfg.Game.StabilityPeriod)
	}
	if cfg.Game.SignalTimeout != 10*time.Second {
		t.Errorf("signal timeout: got %s, want 10s", cfg.Game.SignalTimeout)
	}
	if cfg.Device.ID == "" {
		t.Error("device id should fall back to a non-empty default")
	}
	if len(cfg.Beacons) != 2 {
		t.Fatalf("beacons: got %d, want 2", len(cfg.Beacons))
	}
	if cfg.Beacons[1].Name != "Bravo" || cfg.Beacons[1].Points != 20 {
		t.Errorf("beacon[1]: got %+v", cfg.Beacons[1])
	}
}

func TestLoadOverrides(t *testing.T) {
	body := minimalYAML + `
server:
  port: "9090"
source:
  mode: sim
game:
  smoothing_alpha: 0.5
  stability_period: 2s
calibration:
  path_loss_exponent: 2.0
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("server port: got %q, want %q", cfg.Server.Port, "9090")
	}
	if cfg.Source.Mode != SourceSim {
		t.Errorf("source mode: got %q, want %q", cfg.Source.Mode, SourceSim)
	}
	if cfg.Game.SmoothingAlpha != 0.5 {
		t.Errorf("smoothing alpha: got %g, want 0.5", cfg.Game.SmoothingAlpha)
	}
	if cfg.Game.StabilityPeriod != 2*time.Second {
		t.Errorf("stability period: got %s, want 2s", cfg.Game.StabilityPeriod)
	}
	if cfg.Calibration.PathLossExponent != 2.0 {
		t.Errorf("path loss exponent: got %g, want 2.0", cfg.Calibration.PathLossExponent)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "bad source mode",
			yaml: minimalYAML + "\nsource:\n  mode: carrier-pigeon\n",
		},
		{
			name: "alpha out of range",
			yaml: minimalYAML + "\ngame:\n  smoothing_alpha: 1.5\n",
		},
		{
			name: "alpha zero",
			yaml: minimalYAML + "\ngame:\n  smoothing_alpha: 0\n",
		},
		{
			name: "min distance above max",
			yaml: minimalYAML + "\ncalibration:\n  min_distance_m: 60\n",
		},
		{
			name: "negative path loss exponent",
			yaml: minimalYAML + "\ncalibration:\n  path_loss_exponent: -1\n",
		},
		{
			name: "discovery range beyond max distance",
			yaml: minimalYAML + "\ngame:\n  discovery_range_m: 100\n",
		},
		{
			name: "zero min samples",
			yaml: minimalYAML + "\ngame:\n  min_samples: 0\n",
		},
		{
			name: "sample cap below min samples",
			yaml: minimalYAML + "\ngame:\n  max_sample_count: 2\n",
		},
		{
			name: "zero stability period",
			yaml: minimalYAML + "\ngame:\n  stability_period: 0s\n",
		},
		{
			name: "missing signing key",
			yaml: `
beacons:
  - id: 1
    name: "Alpha"
    points: 10
`,
		},
		{
			name: "empty beacon list",
			yaml: "auth:\n  signing_key: k\nbeacons: []\n",
		},
		{
			name: "duplicate beacon id",
			yaml: `
auth:
  signing_key: k
beacons:
  - id: 7
    name: "Alpha"
    points: 10
  - id: 7
    name: "Bravo"
    points: 20
`,
		},
		{
			name: "zero beacon points",
			yaml: `
auth:
  signing_key: k
beacons:
  - id: 1
    name: "Alpha"
    points: 0
`,
		},
		{
			name: "unnamed beacon",
			yaml: `
auth:
  signing_key: k
beacons:
  - id: 1
    name: ""
    points: 5
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.yaml)); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}
