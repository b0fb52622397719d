package service

import (
	"fmt"
	"sort"

	"github.com/Deratheone/Signal-Hunt/internal/models"
)

// BeaconRegistry is the fixed beacon catalog. Built once at startup from
// configuration and read-only afterwards, so lookups need no locking.
type BeaconRegistry struct {
	byID  map[uint32]models.BeaconRecord
	order []uint32 // ids sorted ascending; gives each beacon a stable ordinal
}

// NewBeaconRegistry validates the catalog and indexes it by identity.
func NewBeaconRegistry(records []models.BeaconRecord) (*BeaconRegistry, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("beacon registry is empty")
	}

	byID := make(map[uint32]models.BeaconRecord, len(records))
	for i, rec := range records {
		if rec.Name == "" {
			return nil, fmt.Errorf("beacon %d (index %d): name is required", rec.ID, i)
		}
		if rec.Points < 1 {
			return nil, fmt.Errorf("beacon %q: points must be >= 1, got %d", rec.Name, rec.Points)
		}
		if _, dup := byID[rec.ID]; dup {
			return nil, fmt.Errorf("beacon %q: duplicate id %d", rec.Name, rec.ID)
		}
		byID[rec.ID] = rec
	}

	order := make([]uint32, 0, len(byID))
	for id := range byID {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	return &BeaconRegistry{byID: byID, order: order}, nil
}

// Get returns the record for an identity, reporting whether it is known.
func (r *BeaconRegistry) Get(id uint32) (models.BeaconRecord, bool) {
	rec, ok := r.byID[id]
	return rec, ok
}

// Index returns the ordinal of an identity in id order, or -1 if unknown.
// Ordinals are what keeps radar placement stable across restarts.
func (r *BeaconRegistry) Index(id uint32) int {
	for i, other := range r.order {
		if other == id {
			return i
		}
	}
	return -1
}

// All returns every record in id order.
func (r *BeaconRegistry) All() []models.BeaconRecord {
	out := make([]models.BeaconRecord, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Size reports the number of catalog entries.
func (r *BeaconRegistry) Size() int { return len(r.order) }

// TotalPoints is the score ceiling: the sum over the whole catalog.
func (r *BeaconRegistry) TotalPoints() int {
	sum := 0
	for _, rec := range r.byID {
		sum += rec.Points
	}
	return sum
}
