package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Deratheone/Signal-Hunt/internal/config"
	"github.com/Deratheone/Signal-Hunt/internal/logger"
	"github.com/Deratheone/Signal-Hunt/internal/models"
	"github.com/Deratheone/Signal-Hunt/internal/repository"
)

// angleDriftDegPerSec rotates radar markers slowly so the display looks
// alive. Purely cosmetic; game logic never reads the angle.
const angleDriftDegPerSec = 1.5

// ingestHealthInterval paces the engine's counter log line.
const ingestHealthInterval = 30 * time.Second

// TrackerService owns all mutable game state: the per-beacon runtime
// table, discovery candidacies, and the session. Every access path
// (sample ingestion, liveness sweep, HTTP reads, reset) goes through one
// mutex, which keeps "score and persist" an atomic step.
type TrackerService struct {
	mu         sync.Mutex
	table      map[uint32]*models.BeaconStatus
	candidates map[uint32]time.Time // beacon id -> candidacy start
	session    models.SessionState
	stats      models.IngestStats

	cooldownActive bool
	cooldownUntil  time.Time

	registry  *BeaconRegistry
	filter    *SignalFilter
	estimator *DistanceEstimator
	cfg       config.GameConfig

	sessions repository.SessionRepo
	events   repository.EventRepo
	log      *logger.Logger

	now func() time.Time // swapped out in tests
}

// NewTrackerService builds the runtime table from the registry and loads
// or initializes the persisted session. A storage error other than
// corruption is returned as-is; corruption recovers to a fresh session.
func NewTrackerService(
	ctx context.Context,
	registry *BeaconRegistry,
	filter *SignalFilter,
	estimator *DistanceEstimator,
	cfg config.GameConfig,
	sessions repository.SessionRepo,
	events repository.EventRepo,
	log *logger.Logger,
) (*TrackerService, error) {
	t := &TrackerService{
		table:      make(map[uint32]*models.BeaconStatus, registry.Size()),
		candidates: make(map[uint32]time.Time),
		registry:   registry,
		filter:     filter,
		estimator:  estimator,
		cfg:        cfg,
		sessions:   sessions,
		events:     events,
		log:        log,
		now:        time.Now,
	}
	for _, rec := range registry.All() {
		t.table[rec.ID] = &models.BeaconStatus{BeaconID: rec.ID}
	}

	if err := t.restoreSession(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// restoreSession loads the persisted session, falling back to a fresh one
// when nothing is stored or the stored row fails validation.
func (t *TrackerService) restoreSession(ctx context.Context) error {
	loaded, err := t.sessions.Load(ctx)
	switch {
	case errors.Is(err, repository.ErrCorruptSession):
		t.log.Warnw("persisted session is corrupt, reinitializing", "error", err)
		return t.reinitSession(ctx, err.Error())
	case err != nil:
		return fmt.Errorf("load session: %w", err)
	}

	if loaded.SessionID == "" {
		// First boot, nothing stored yet.
		t.session = t.freshSession()
		if err := t.sessions.Save(ctx, t.session); err != nil {
			return fmt.Errorf("persist initial session: %w", err)
		}
		t.log.Infow("started new hunt session", "session_id", t.session.SessionID)
		return nil
	}

	if reason, ok := t.checkSession(loaded); !ok {
		t.log.Warnw("persisted session failed validation, reinitializing",
			"session_id", loaded.SessionID, "reason", reason)
		return t.reinitSession(ctx, reason)
	}

	t.session = loaded
	t.log.Infow("restored hunt session",
		"session_id", loaded.SessionID,
		"total_score", loaded.TotalScore,
		"found_count", loaded.FoundCount())
	return nil
}

// checkSession validates a loaded session against the registry: every
// found identity must be known and the score must equal the sum of their
// point values. Anything else means the stored row cannot be trusted.
func (t *TrackerService) checkSession(s models.SessionState) (string, bool) {
	if s.StartedAt.IsZero() {
		return "zero session start time", false
	}
	if s.TotalScore < 0 || s.TotalScore > t.registry.TotalPoints() {
		return fmt.Sprintf("score %d outside [0, %d]", s.TotalScore, t.registry.TotalPoints()), false
	}
	sum := 0
	for _, id := range s.FoundIDs() {
		rec, ok := t.registry.Get(id)
		if !ok {
			return fmt.Sprintf("found beacon %d not in registry", id), false
		}
		sum += rec.Points
	}
	if sum != s.TotalScore {
		return fmt.Sprintf("score %d does not match found set worth %d", s.TotalScore, sum), false
	}
	return "", true
}

func (t *TrackerService) freshSession() models.SessionState {
	return models.SessionState{
		SessionID: uuid.NewString(),
		Found:     make(map[uint32]bool),
		StartedAt: t.now().UTC(),
	}
}

// reinitSession replaces a corrupt session with an empty one, persists it
// over the bad row, and records what happened in the event log.
func (t *TrackerService) reinitSession(ctx context.Context, reason string) error {
	t.session = t.freshSession()
	if err := t.sessions.Save(ctx, t.session); err != nil {
		return fmt.Errorf("persist reinitialized session: %w", err)
	}
	if err := t.events.Append(ctx, models.GameEvent{
		OccurredAt:  t.now().UTC(),
		Type:        models.EventCorruptState,
		Description: "Persisted session was corrupt and has been reinitialized",
		Metadata:    map[string]any{"reason": reason, "new_session_id": t.session.SessionID},
	}); err != nil {
		t.log.Errorw("append corrupt-state event", "error", err)
	}
	return nil
}

// Run drives the tracker until ctx is canceled: samples from the fan-in
// channel and a steady sweep tick. The tick runs regardless of sample
// traffic; a beacon that goes silent produces no events of its own.
func (t *TrackerService) Run(ctx context.Context, samples <-chan models.Sample) {
	tick := time.NewTicker(t.cfg.SweepInterval)
	defer tick.Stop()

	lastHealth := t.now()
	var reported models.IngestStats
	for {
		select {
		case <-ctx.Done():
			return
		case smp, ok := <-samples:
			if !ok {
				return
			}
			t.HandleSample(ctx, smp)
		case <-tick.C:
			now := t.now()
			t.Sweep(now)
			if now.Sub(lastHealth) >= ingestHealthInterval {
				lastHealth = now
				if cur := t.ingestStats(); cur != reported {
					reported = cur
					t.log.Infow("ingest counters",
						"accepted", cur.Accepted,
						"unknown", cur.Unknown,
						"suppressed", cur.Suppressed)
				}
			}
		}
	}
}

func (t *TrackerService) ingestStats() models.IngestStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// HandleSample ingests one observation: registry lookup, cooldown gate,
// smoothing, distance estimate, then discovery evaluation.
func (t *TrackerService) HandleSample(ctx context.Context, smp models.Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.registry.Get(smp.BeaconID)
	if !ok {
		t.stats.Unknown++
		t.log.Debugw("sample for unknown beacon, discarded",
			"beacon_id", smp.BeaconID, "source", smp.Source)
		return
	}

	// Cooldown swallows samples whole; it clears on the sweep tick.
	if t.cooldownActive {
		t.stats.Suppressed++
		return
	}

	t.stats.Accepted++
	st := t.table[smp.BeaconID]

	st.RawDBm = smp.DBm
	st.Smoothed = t.filter.Next(st.Smoothed, smp.DBm)
	st.DistanceM = t.estimator.Estimate(st.Smoothed.DBm)
	st.LastSeen = smp.At
	if !st.Active {
		st.Active = true
		t.log.Infow("beacon signal acquired",
			"beacon", rec.Name, "beacon_id", rec.ID, "rssi", smp.DBm, "source", smp.Source)
	}
	if st.SampleCount < t.cfg.MaxSampleCount {
		st.SampleCount++
	}

	// Found beacons keep feeding the radar but are done scoring.
	if t.session.Found[rec.ID] {
		return
	}
	t.evaluateLocked(ctx, rec, st, smp.At)
}

// evaluateLocked advances the per-beacon discovery state machine by one
// sample. Candidacy survives only while every gate keeps passing; a
// single miss throws the accumulated window away.
func (t *TrackerService) evaluateLocked(ctx context.Context, rec models.BeaconRecord, st *models.BeaconStatus, at time.Time) {
	qualifies := st.SampleCount >= t.cfg.MinSamples &&
		st.Smoothed.Valid &&
		st.Smoothed.DBm >= t.cfg.RSSIThreshold &&
		st.DistanceM <= t.cfg.DiscoveryRangeM

	startedAt, isCandidate := t.candidates[rec.ID]

	if !qualifies {
		if isCandidate {
			delete(t.candidates, rec.ID)
			t.log.Debugw("discovery candidacy broken",
				"beacon", rec.Name, "rssi", st.Smoothed.DBm, "distance_m", st.DistanceM)
		}
		return
	}

	if !isCandidate {
		t.candidates[rec.ID] = at
		t.log.Debugw("beacon entered discovery candidacy",
			"beacon", rec.Name, "distance_m", st.DistanceM)
		return
	}

	if at.Sub(startedAt) >= t.cfg.StabilityPeriod {
		t.confirmDiscoveryLocked(ctx, rec, st, at)
	}
}

// confirmDiscoveryLocked scores a beacon exactly once: found-set and score
// mutate together, then the session is persisted synchronously. Memory
// stays authoritative if the write fails.
func (t *TrackerService) confirmDiscoveryLocked(ctx context.Context, rec models.BeaconRecord, st *models.BeaconStatus, at time.Time) {
	delete(t.candidates, rec.ID)
	t.session.Found[rec.ID] = true
	t.session.TotalScore += rec.Points

	if err := t.sessions.Save(ctx, t.session); err != nil {
		t.log.Errorw("persist session after discovery",
			"beacon", rec.Name, "error", err)
	}
	if err := t.events.Append(ctx, models.GameEvent{
		OccurredAt:  at.UTC(),
		Type:        models.EventDiscovery,
		Description: fmt.Sprintf("Beacon %q discovered (+%d points)", rec.Name, rec.Points),
		Metadata: map[string]any{
			"beacon_id":   rec.ID,
			"beacon":      rec.Name,
			"points":      rec.Points,
			"total_score": t.session.TotalScore,
			"distance_m":  st.DistanceM,
			"rssi":        st.Smoothed.DBm,
		},
	}); err != nil {
		t.log.Errorw("append discovery event", "beacon", rec.Name, "error", err)
	}

	t.log.Infow("beacon discovered",
		"beacon", rec.Name,
		"beacon_id", rec.ID,
		"points", rec.Points,
		"total_score", t.session.TotalScore,
		"found_count", t.session.FoundCount())
}

// Sweep expires stale beacons and, when due, the reset cooldown. It is
// the only path from active to inactive.
func (t *TrackerService) Sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cooldownActive && !now.Before(t.cooldownUntil) {
		t.cooldownActive = false
		t.session.InCooldown = false
		t.log.Infow("reset cooldown over, discovery re-enabled")
	}

	for id, st := range t.table {
		if !st.Active || now.Sub(st.LastSeen) <= t.cfg.SignalTimeout {
			continue
		}
		st.Active = false
		st.Smoothed = models.SignalLevel{}
		st.DistanceM = 0
		st.SampleCount = 0
		delete(t.candidates, id)

		rec, _ := t.registry.Get(id)
		t.log.Infow("beacon signal lost",
			"beacon", rec.Name, "beacon_id", id, "last_seen", st.LastSeen)
	}
}

// Reset abandons the current session: fresh session id, zero score, empty
// found-set, every beacon back to its initialized defaults, and a
// cooldown during which ingestion and discovery stay suppressed. The
// in-memory reset holds even if persistence fails; the returned error
// then signals only the storage problem.
func (t *TrackerService) Reset(ctx context.Context) (models.SessionState, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	prev := t.session

	t.session = models.SessionState{
		SessionID:  uuid.NewString(),
		Found:      make(map[uint32]bool),
		StartedAt:  now.UTC(),
		LastReset:  now.UTC(),
		InCooldown: true,
	}
	for id := range t.table {
		t.table[id] = &models.BeaconStatus{BeaconID: id}
	}
	t.candidates = make(map[uint32]time.Time)
	t.cooldownActive = true
	t.cooldownUntil = now.Add(t.cfg.ResetCooldown)

	t.log.Infow("game reset",
		"previous_session", prev.SessionID,
		"previous_score", prev.TotalScore,
		"new_session", t.session.SessionID,
		"cooldown", t.cfg.ResetCooldown)

	if err := t.events.Append(ctx, models.GameEvent{
		OccurredAt:  now.UTC(),
		Type:        models.EventReset,
		Description: "Game reset by operator",
		Metadata: map[string]any{
			"previous_session": prev.SessionID,
			"previous_score":   prev.TotalScore,
			"previous_found":   prev.FoundCount(),
			"new_session":      t.session.SessionID,
		},
	}); err != nil {
		t.log.Errorw("append reset event", "error", err)
	}

	if err := t.sessions.Save(ctx, t.session); err != nil {
		t.log.Errorw("persist session after reset", "error", err)
		return t.session, fmt.Errorf("reset applied but not persisted: %w", err)
	}
	return t.session, nil
}

// Snapshot assembles the read-only radar view. During a reset cooldown
// the beacon list is empty: the radar goes dark until the game resumes.
func (t *TrackerService) Snapshot() models.RadarSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	snap := models.RadarSnapshot{
		Timestamp:       now.UTC(),
		InResetCooldown: t.cooldownActive,
		Beacons:         []models.RadarBeacon{},
		Ingest:          t.stats,
	}
	if t.cooldownActive {
		return snap
	}

	elapsed := now.Sub(t.session.StartedAt).Seconds()
	for id, st := range t.table {
		if !st.Active {
			continue
		}
		rec, _ := t.registry.Get(id)
		snap.Beacons = append(snap.Beacons, models.RadarBeacon{
			ID:        rec.ID,
			Name:      rec.Name,
			DistanceM: st.DistanceM,
			RSSI:      st.Smoothed.DBm,
			Points:    rec.Points,
			LastSeen:  st.LastSeen.UTC(),
			Angle:     t.displayAngle(rec.ID, elapsed),
			Found:     t.session.Found[id],
		})
		if st.DistanceM > snap.MaxRangeM {
			snap.MaxRangeM = st.DistanceM
		}
	}
	sort.Slice(snap.Beacons, func(i, j int) bool {
		if snap.Beacons[i].DistanceM != snap.Beacons[j].DistanceM {
			return snap.Beacons[i].DistanceM < snap.Beacons[j].DistanceM
		}
		return snap.Beacons[i].ID < snap.Beacons[j].ID
	})
	snap.ActiveCount = len(snap.Beacons)
	return snap
}

// displayAngle spreads beacons evenly around the dial by registry ordinal
// and drifts them with session elapsed time. Cosmetic only.
func (t *TrackerService) displayAngle(id uint32, elapsedS float64) float64 {
	base := 360.0 * float64(t.registry.Index(id)) / float64(t.registry.Size())
	return math.Mod(base+angleDriftDegPerSec*elapsedS, 360)
}

// Score reports the session standing.
func (t *TrackerService) Score() models.ScoreReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	return models.ScoreReport{
		TotalScore:      t.session.TotalScore,
		FoundCount:      t.session.FoundCount(),
		SessionElapsedS: t.now().Sub(t.session.StartedAt).Seconds(),
		Found:           t.foundListLocked(),
	}
}

// Report produces the downloadable point-in-time result export.
func (t *TrackerService) Report(deviceID string) models.HuntReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	rep := models.HuntReport{
		FormatVersion: models.HuntReportVersion,
		DeviceID:      deviceID,
		SessionID:     t.session.SessionID,
		GeneratedAt:   t.now().UTC(),
		TotalScore:    t.session.TotalScore,
		FoundCount:    t.session.FoundCount(),
		Found:         t.foundListLocked(),
		Active:        []models.ActiveBeaconReport{},
	}
	for id, st := range t.table {
		if !st.Active {
			continue
		}
		rec, _ := t.registry.Get(id)
		rep.Active = append(rep.Active, models.ActiveBeaconReport{
			ID:        rec.ID,
			Name:      rec.Name,
			DistanceM: st.DistanceM,
			RSSI:      st.Smoothed.DBm,
		})
	}
	sort.Slice(rep.Active, func(i, j int) bool { return rep.Active[i].ID < rep.Active[j].ID })
	return rep
}

func (t *TrackerService) foundListLocked() []models.FoundBeacon {
	out := make([]models.FoundBeacon, 0, len(t.session.Found))
	for _, id := range t.session.FoundIDs() {
		rec, ok := t.registry.Get(id)
		if !ok {
			continue
		}
		out = append(out, models.FoundBeacon{ID: rec.ID, Name: rec.Name, Points: rec.Points})
	}
	return out
}
