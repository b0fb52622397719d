// Package source contains the sample transports feeding the tracker:
// a UDP listener for the radio head relay, an MQTT subscriber, and a
// simulator for development without hardware. All of them push into the
// engine's fan-in channel and never block on it; the wireless channel
// already tolerates loss, so a full buffer just drops the sample.
package source

import (
	"context"

	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// Source delivers signal samples into the engine's fan-in channel.
// Run blocks until ctx is canceled or the transport fails. An error from
// the initial transport setup means no samples can ever arrive and is
// treated as fatal by the caller.
type Source interface {
	Name() string
	Run(ctx context.Context, sink chan<- models.Sample) error
}

// offer sends without blocking. Reports whether the sample was accepted.
func offer(sink chan<- models.Sample, smp models.Sample) bool {
	select {
	case sink <- smp:
		return true
	default:
		return false
	}
}
