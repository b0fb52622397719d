package service

import (
	"math"

	"github.com/Deratheone/Signal-Hunt/internal/config"
)

// DistanceEstimator converts smoothed signal strength to metres with the
// log-distance path-loss model:
//
//	distance = scale * 10^((reference - rssi) / (10 * exponent))
//
// where reference is the expected strength at one metre and exponent how
// fast the signal decays in this environment (2 in free space, higher
// indoors). Estimates are clamped to a sane window because the model
// diverges wildly at both extremes.
type DistanceEstimator struct {
	referenceDBm float64
	exponent     float64
	scale        float64
	minM         float64
	maxM         float64
}

func NewDistanceEstimator(cal config.CalibrationConfig) *DistanceEstimator {
	return &DistanceEstimator{
		referenceDBm: cal.ReferenceRSSI,
		exponent:     cal.PathLossExponent,
		scale:        cal.DistanceScale,
		minM:         cal.MinDistanceM,
		maxM:         cal.MaxDistanceM,
	}
}

// Estimate maps a smoothed strength to metres, clamped to [min, max].
func (e *DistanceEstimator) Estimate(smoothedDBm float64) float64 {
	d := e.scale * math.Pow(10, (e.referenceDBm-smoothedDBm)/(10*e.exponent))
	if d < e.minM {
		return e.minM
	}
	if d > e.maxM {
		return e.maxM
	}
	return d
}
