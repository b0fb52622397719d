package service

import (
	"context"

	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// HuntService exposes the game operations an operator or player reaches
// over HTTP: the score standing and the session reset.
type HuntService struct {
	tracker *TrackerService
}

func NewHuntService(tracker *TrackerService) *HuntService {
	return &HuntService{tracker: tracker}
}

// Score reports total score, found count and the found beacon list.
func (s *HuntService) Score() models.ScoreReport {
	return s.tracker.Score()
}

// Reset abandons the running session and starts the cooldown window.
func (s *HuntService) Reset(ctx context.Context) (models.SessionState, error) {
	return s.tracker.Reset(ctx)
}
