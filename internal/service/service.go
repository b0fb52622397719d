package service

import (
	"context"
	"time"

	"github.com/Deratheone/Signal-Hunt/internal/config"
	"github.com/Deratheone/Signal-Hunt/internal/logger"
	"github.com/Deratheone/Signal-Hunt/internal/models"
	"github.com/Deratheone/Signal-Hunt/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Monitoring exposes the read-only radar view for the display client.
type Monitoring interface {
	Radar() models.RadarSnapshot
}

// Hunt exposes game operations: the score query and the operator reset.
type Hunt interface {
	Score() models.ScoreReport
	Reset(ctx context.Context) (models.SessionState, error)
}

// Export produces the downloadable hunt report.
type Export interface {
	Report() models.HuntReport
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.GameEvent, error)
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "DISCOVERY", "RESET", "CORRUPT_STATE", "ERROR"
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Monitoring
	Hunt
	Export
	EventLog
	Authorization

	// Tracker is exported so main can run the ingestion loop; handlers
	// only ever touch the interfaces above.
	Tracker *TrackerService
}

// NewService wires the repository layer into concrete services. Building
// the tracker loads (or initializes) the persisted session, so this can
// fail on an unreachable database.
func NewService(ctx context.Context, repos *repository.Repository, cfg *config.Config, log *logger.Logger) (*Service, error) {
	registry, err := NewBeaconRegistry(cfg.BeaconRecords())
	if err != nil {
		return nil, err
	}

	tracker, err := NewTrackerService(
		ctx,
		registry,
		NewSignalFilter(cfg.Game.SmoothingAlpha),
		NewDistanceEstimator(cfg.Calibration),
		cfg.Game,
		repos.SessionRepo,
		repos.EventRepo,
		log,
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		Monitoring:    NewMonitoringService(tracker),
		Hunt:          NewHuntService(tracker),
		Export:        NewExportService(tracker, cfg.Device.ID),
		EventLog:      NewEventLogService(repos.EventRepo),
		Authorization: NewAuthService(repos.Auth, cfg.Auth),
		Tracker:       tracker,
	}, nil
}
