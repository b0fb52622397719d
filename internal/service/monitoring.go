package service

import (
	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// MonitoringService serves the radar view. It is a thin facade: the
// tracker owns the state and assembles the snapshot under its lock.
type MonitoringService struct {
	tracker *TrackerService
}

func NewMonitoringService(tracker *TrackerService) *MonitoringService {
	return &MonitoringService{tracker: tracker}
}

// Radar returns the current read-only snapshot for the display client.
func (s *MonitoringService) Radar() models.RadarSnapshot {
	return s.tracker.Snapshot()
}
