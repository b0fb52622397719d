package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// Source modes.
const (
	SourceUDP  = "udp"
	SourceMQTT = "mqtt"
	SourceSim  = "sim"
)

// Config is the full runtime configuration, loaded once at startup from
// configs/config.yml. Discovery and calibration values are deliberately
// configuration rather than constants: they are tuned per venue.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	DB          DBConfig          `mapstructure:"db"`
	Log         LogConfig         `mapstructure:"log"`
	Device      DeviceConfig      `mapstructure:"device"`
	Source      SourceConfig      `mapstructure:"source"`
	Calibration CalibrationConfig `mapstructure:"calibration"`
	Game        GameConfig        `mapstructure:"game"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Beacons     []BeaconEntry     `mapstructure:"beacons"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DeviceConfig identifies this receiver in exports.
type DeviceConfig struct {
	ID string `mapstructure:"id"`
}

// SourceConfig selects and configures the sample transport.
type SourceConfig struct {
	Mode string     `mapstructure:"mode"` // udp | mqtt | sim
	UDP  UDPConfig  `mapstructure:"udp"`
	MQTT MQTTConfig `mapstructure:"mqtt"`
}

type UDPConfig struct {
	Listen string `mapstructure:"listen"`
}

type MQTTConfig struct {
	Host  string `mapstructure:"host"`
	Port  int    `mapstructure:"port"`
	Topic string `mapstructure:"topic"`
}

// CalibrationConfig holds the path-loss model parameters. ReferenceRSSI is
// the expected strength at one metre; both it and the exponent must be
// measured per deployment for distances to mean anything.
type CalibrationConfig struct {
	ReferenceRSSI    float64 `mapstructure:"reference_rssi"`
	PathLossExponent float64 `mapstructure:"path_loss_exponent"`
	DistanceScale    float64 `mapstructure:"distance_scale"`
	MinDistanceM     float64 `mapstructure:"min_distance_m"`
	MaxDistanceM     float64 `mapstructure:"max_distance_m"`
}

// GameConfig holds the discovery policy tunables.
type GameConfig struct {
	SmoothingAlpha  float64       `mapstructure:"smoothing_alpha"`
	RSSIThreshold   float64       `mapstructure:"rssi_threshold"`   // dBm; smoothed must be at least this strong
	DiscoveryRangeM float64       `mapstructure:"discovery_range_m"`
	StabilityPeriod time.Duration `mapstructure:"stability_period"`
	MinSamples      int           `mapstructure:"min_samples"`
	MaxSampleCount  int           `mapstructure:"max_sample_count"` // cap on the consecutive-sample counter
	SignalTimeout   time.Duration `mapstructure:"signal_timeout"`
	ResetCooldown   time.Duration `mapstructure:"reset_cooldown"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

type AuthConfig struct {
	SigningKey string        `mapstructure:"signing_key"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

// BeaconEntry is one registry row as written in configuration.
type BeaconEntry struct {
	ID     uint32 `mapstructure:"id"`
	Name   string `mapstructure:"name"`
	Points int    `mapstructure:"points"`
}

// BeaconRecords converts the configured beacon list to domain records.
func (c *Config) BeaconRecords() []models.BeaconRecord {
	out := make([]models.BeaconRecord, 0, len(c.Beacons))
	for _, b := range c.Beacons {
		out = append(out, models.BeaconRecord{ID: b.ID, Name: b.Name, Points: b.Points})
	}
	return out
}

// setDefaults registers every default so a partial config file is safe.
// The auth signing key and the beacon list have no defaults on purpose.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("db.path", "signalhunt.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("device.id", "")

	v.SetDefault("source.mode", SourceUDP)
	v.SetDefault("source.udp.listen", ":9750")
	v.SetDefault("source.mqtt.host", "localhost")
	v.SetDefault("source.mqtt.port", 1883)
	v.SetDefault("source.mqtt.topic", "signalhunt/samples")

	v.SetDefault("calibration.reference_rssi", -59.0)
	v.SetDefault("calibration.path_loss_exponent", 2.5)
	v.SetDefault("calibration.distance_scale", 1.0)
	v.SetDefault("calibration.min_distance_m", 0.5)
	v.SetDefault("calibration.max_distance_m", 50.0)

	v.SetDefault("game.smoothing_alpha", 0.25)
	v.SetDefault("game.rssi_threshold", -70.0)
	v.SetDefault("game.discovery_range_m", 2.0)
	v.SetDefault("game.stability_period", "5s")
	v.SetDefault("game.min_samples", 5)
	v.SetDefault("game.max_sample_count", 1000)
	v.SetDefault("game.signal_timeout", "10s")
	v.SetDefault("game.reset_cooldown", "5s")
	v.SetDefault("game.sweep_interval", "1s")

	v.SetDefault("auth.token_ttl", "1h")
}

// Load reads config.yml from dir, applies defaults, and validates.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Device.ID == "" {
		cfg.Device.ID = defaultDeviceID()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// defaultDeviceID falls back to the hostname so exports from different
// receivers stay distinguishable without per-device config edits.
func defaultDeviceID() string {
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "signal-hunt"
}

// Validate checks every tunable against its legal range.
func (c *Config) Validate() error {
	switch c.Source.Mode {
	case SourceUDP, SourceMQTT, SourceSim:
	default:
		return fmt.Errorf("source.mode must be one of udp, mqtt, sim; got %q", c.Source.Mode)
	}

	cal := c.Calibration
	if cal.PathLossExponent <= 0 {
		return fmt.Errorf("calibration.path_loss_exponent must be > 0, got %g", cal.PathLossExponent)
	}
	if cal.DistanceScale <= 0 {
		return fmt.Errorf("calibration.distance_scale must be > 0, got %g", cal.DistanceScale)
	}
	if cal.MinDistanceM <= 0 || cal.MinDistanceM >= cal.MaxDistanceM {
		return fmt.Errorf("calibration distances must satisfy 0 < min < max, got [%g, %g]",
			cal.MinDistanceM, cal.MaxDistanceM)
	}

	g := c.Game
	if g.SmoothingAlpha <= 0 || g.SmoothingAlpha >= 1 {
		return fmt.Errorf("game.smoothing_alpha must be in (0,1), got %g", g.SmoothingAlpha)
	}
	if g.DiscoveryRangeM <= 0 || g.DiscoveryRangeM > cal.MaxDistanceM {
		return fmt.Errorf("game.discovery_range_m must be in (0, %g], got %g",
			cal.MaxDistanceM, g.DiscoveryRangeM)
	}
	if g.MinSamples < 1 {
		return fmt.Errorf("game.min_samples must be >= 1, got %d", g.MinSamples)
	}
	if g.MaxSampleCount < g.MinSamples {
		return fmt.Errorf("game.max_sample_count (%d) must be >= game.min_samples (%d)",
			g.MaxSampleCount, g.MinSamples)
	}
	for name, d := range map[string]time.Duration{
		"game.stability_period": g.StabilityPeriod,
		"game.signal_timeout":   g.SignalTimeout,
		"game.reset_cooldown":   g.ResetCooldown,
		"game.sweep_interval":   g.SweepInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be a positive duration, got %s", name, d)
		}
	}

	if c.Auth.SigningKey == "" {
		return fmt.Errorf("auth.signing_key is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be a positive duration, got %s", c.Auth.TokenTTL)
	}

	if len(c.Beacons) == 0 {
		return fmt.Errorf("at least one beacon must be configured")
	}
	seen := make(map[uint32]bool, len(c.Beacons))
	for i, b := range c.Beacons {
		if b.Name == "" {
			return fmt.Errorf("beacons[%d]: name is required", i)
		}
		if b.Points < 1 {
			return fmt.Errorf("beacons[%d] (%s): points must be >= 1, got %d", i, b.Name, b.Points)
		}
		if seen[b.ID] {
			return fmt.Errorf("beacons[%d] (%s): duplicate beacon id %d", i, b.Name, b.ID)
		}
		seen[b.ID] = true
	}
	return nil
}
