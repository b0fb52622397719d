package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// ErrCorruptSession marks a persisted session row that exists but cannot be
// decoded. Callers treat it as recoverable and reinitialize, unlike real
// storage errors.
var ErrCorruptSession = errors.New("corrupt session row")

type SessionSQLite struct {
	db *sql.DB
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db}
}

// constants and helpers for clarity and reuse
const (
	huntSessionRowID = 1

	insertOrUpdateSessionSQL = `
		INSERT INTO hunt_session (id, session_id, total_score, found, started_at, last_reset, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id=excluded.session_id,
			total_score=excluded.total_score,
			found=excluded.found,
			started_at=excluded.started_at,
			last_reset=excluded.last_reset,
			updated_at=excluded.updated_at
	`

	selectSessionSQL = `
		SELECT session_id, total_score, found, started_at, last_reset, updated_at
		FROM hunt_session WHERE id=?
	`
)

// marshalFoundIDs converts the found set to a sorted JSON id array.
func marshalFoundIDs(s models.SessionState) (string, error) {
	ids := s.FoundIDs()
	if ids == nil {
		ids = []uint32{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalFoundIDs parses a JSON id array back into the found set.
func unmarshalFoundIDs(raw string) (map[uint32]bool, error) {
	if raw == "" {
		return map[uint32]bool{}, nil
	}
	var ids []uint32
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, err
	}
	found := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

// Save updates or inserts the hunt_session row (id always 1).
func (r *SessionSQLite) Save(ctx context.Context, s models.SessionState) error {
	foundJSON, err := marshalFoundIDs(s)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, insertOrUpdateSessionSQL,
		huntSessionRowID,
		s.SessionID,
		s.TotalScore,
		foundJSON,
		s.StartedAt.UTC(),
		s.LastReset.UTC(),
		time.Now().UTC(),
	)
	return err
}

// Load fetches the single hunt_session row (id=1). A missing row yields the
// zero SessionState and no error; the caller starts a fresh session from it.
// A row that cannot be decoded yields ErrCorruptSession.
func (r *SessionSQLite) Load(ctx context.Context) (models.SessionState, error) {
	row := r.db.QueryRowContext(ctx, selectSessionSQL, huntSessionRowID)

	var s models.SessionState
	var foundJSON string
	var updatedAt time.Time
	if err := row.Scan(
		&s.SessionID,
		&s.TotalScore,
		&foundJSON,
		&s.StartedAt,
		&s.LastReset,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SessionState{}, nil // no session yet
		}
		return models.SessionState{}, err
	}

	found, err := unmarshalFoundIDs(foundJSON)
	if err != nil {
		return models.SessionState{}, fmt.Errorf("%w: found ids: %v", ErrCorruptSession, err)
	}
	if s.SessionID == "" {
		return models.SessionState{}, fmt.Errorf("%w: empty session id", ErrCorruptSession)
	}
	s.Found = found
	s.StartedAt = s.StartedAt.UTC()
	s.LastReset = s.LastReset.UTC()

	return s, nil
}
