package models

import (
	"sort"
	"time"
)

// SessionState is the persisted game session: cumulative score and the set
// of beacons already found. In-memory state is authoritative; every
// mutation is followed by a synchronous save.
type SessionState struct {
	SessionID  string          // uuid, regenerated on fresh init and on reset
	TotalScore int             // invariant: sum of points over Found
	Found      map[uint32]bool // beacon identity → found this session
	StartedAt  time.Time
	LastReset  time.Time // zero until the first reset
	InCooldown bool      // derived from LastReset at runtime, not persisted
}

// FoundIDs returns the found-set as a sorted identity list, the form used
// for persistence and export.
func (s SessionState) FoundIDs() []uint32 {
	ids := make([]uint32, 0, len(s.Found))
	for id, ok := range s.Found {
		if ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FoundCount reports the size of the found-set.
func (s SessionState) FoundCount() int {
	n := 0
	for _, ok := range s.Found {
		if ok {
			n++
		}
	}
	return n
}
