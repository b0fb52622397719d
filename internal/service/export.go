package service

import (
	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// ExportService renders the downloadable result report. The device id is
// baked in at startup so every exported file says which receiver wrote it.
type ExportService struct {
	tracker  *TrackerService
	deviceID string
}

func NewExportService(tracker *TrackerService, deviceID string) *ExportService {
	return &ExportService{tracker: tracker, deviceID: deviceID}
}

// Report serializes the current standing: found beacons with their point
// values plus whatever is live on the radar right now.
func (s *ExportService) Report() models.HuntReport {
	return s.tracker.Report(s.deviceID)
}
