package source

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/Deratheone/Signal-Hunt/internal/config"
	"github.com/Deratheone/Signal-Hunt/internal/logger"
	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// ----------- Simulation constants -----------
const (
	simMinDistanceM    = 0.6  // closest a walk may approach, metres
	simMaxDistanceM    = 8.0  // farthest a walk may wander, metres
	simStepM           = 0.35 // max distance change per tick
	simNoiseDB         = 2.0  // uniform receiver noise, +- dB
	simSilenceChance   = 0.02 // per-tick probability a beacon goes quiet
	simSilenceMinTicks = 8
	simSilenceMaxTicks = 30
)

// defaultSimInterval is used when no emit interval is given.
const defaultSimInterval = 200 * time.Millisecond

// simBeacon is the walk state of one simulated transmitter.
type simBeacon struct {
	id        uint32
	distanceM float64
	silentFor int // remaining quiet ticks; 0 means transmitting
}

// SimSource synthesizes samples for the configured registry so the whole
// pipeline can run without radio hardware. Each beacon random-walks a true
// distance, the path-loss model is inverted to produce the strength a
// receiver would see, and beacons occasionally fall silent long enough for
// the liveness timeout to fire.
type SimSource struct {
	interval time.Duration
	cal      config.CalibrationConfig
	beacons  []simBeacon
	rng      *rand.Rand
	log      *logger.Logger
}

// NewSimSource seeds one walk per registry entry. A non-positive interval
// selects the default emit rate.
func NewSimSource(records []models.BeaconRecord, cal config.CalibrationConfig, interval time.Duration, log *logger.Logger) *SimSource {
	if interval <= 0 {
		interval = defaultSimInterval
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	beacons := make([]simBeacon, 0, len(records))
	for _, r := range records {
		beacons = append(beacons, simBeacon{
			id:        r.ID,
			distanceM: simMinDistanceM + rng.Float64()*(simMaxDistanceM-simMinDistanceM),
		})
	}
	return &SimSource{
		interval: interval,
		cal:      cal,
		beacons:  beacons,
		rng:      rng,
		log:      log,
	}
}

func (s *SimSource) Name() string { return "sim" }

// Run ticks at the emit interval until ctx is canceled.
func (s *SimSource) Run(ctx context.Context, sink chan<- models.Sample) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()

	s.log.Infow("simulator source started", "beacons", len(s.beacons), "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			for i := range s.beacons {
				b := &s.beacons[i]
				s.step(b)
				if b.silentFor > 0 {
					b.silentFor--
					continue
				}
				offer(sink, models.Sample{
					BeaconID: b.id,
					DBm:      s.strengthAt(b.distanceM),
					At:       now,
					Source:   s.Name(),
				})
			}
		}
	}
}

// step advances one beacon's walk and rolls for a silent spell.
func (s *SimSource) step(b *simBeacon) {
	b.distanceM += (s.rng.Float64()*2 - 1) * simStepM
	if b.distanceM < simMinDistanceM {
		b.distanceM = simMinDistanceM
	}
	if b.distanceM > simMaxDistanceM {
		b.distanceM = simMaxDistanceM
	}
	if b.silentFor == 0 && s.rng.Float64() < simSilenceChance {
		b.silentFor = simSilenceMinTicks + s.rng.Intn(simSilenceMaxTicks-simSilenceMinTicks+1)
	}
}

// strengthAt inverts the path-loss model and adds receiver noise.
func (s *SimSource) strengthAt(distanceM float64) float64 {
	ideal := s.cal.ReferenceRSSI - 10*s.cal.PathLossExponent*math.Log10(distanceM/s.cal.DistanceScale)
	noise := (s.rng.Float64()*2 - 1) * simNoiseDB
	return ideal + noise
}
