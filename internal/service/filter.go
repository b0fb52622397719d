package service

import (
	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// SignalFilter smooths raw signal strength with an exponential moving
// average. Raw readings jitter by several dB even for a stationary
// transmitter; the filter trades a little lag for a stable estimate.
type SignalFilter struct {
	alpha float64 // weight of the newest sample, in (0,1)
}

func NewSignalFilter(alpha float64) *SignalFilter {
	return &SignalFilter{alpha: alpha}
}

// Next folds one raw reading into the running average. The first reading
// seeds the average directly so the estimate does not climb up from zero.
func (f *SignalFilter) Next(prev models.SignalLevel, rawDBm float64) models.SignalLevel {
	if !prev.Valid {
		return models.SignalLevel{DBm: rawDBm, Valid: true}
	}
	return models.SignalLevel{
		DBm:   f.alpha*rawDBm + (1-f.alpha)*prev.DBm,
		Valid: true,
	}
}
