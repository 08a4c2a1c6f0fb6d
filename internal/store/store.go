// Package store holds the last-known reading for every configured sector.
package store

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/urban-policy-engine/internal/domain"
)

// ErrSectorNotFound is returned for sector IDs outside the configured set.
var ErrSectorNotFound = errors.New("sector not found")

// DataSource labels where a snapshot's particulate values came from.
type DataSource string

const (
	SourceInitializing DataSource = "initializing"
	SourceLive         DataSource = "waqi_live"
	SourceCached       DataSource = "cached"
)

// TrafficSource labels how the traffic index was derived.
type TrafficSource string

const (
	TrafficFromPollutants TrafficSource = "no2_co"
	TrafficSimulated      TrafficSource = "simulated"
)

// Snapshot is the complete state of one sector. Snapshots are replaced whole
// and never modified after being stored, including the Measurement they
// point to.
type Snapshot struct {
	Sector        domain.SectorProfile
	Measurement   *domain.Measurement // nil until a trusted reading exists
	DataSource    DataSource
	TrafficSource TrafficSource
	Stations      int
	LastUpdate    time.Time
}

// Available reports whether the snapshot carries a reading that can be scored.
func (s Snapshot) Available() bool { return s.Measurement != nil }

// Store is a fixed set of per-sector slots. Each slot swaps atomically, so
// readers never block on writers and never see a half-updated sector.
type Store struct {
	order []int
	slots map[int]*atomic.Pointer[Snapshot]
}

// New creates a store for the given sectors, each starting in the
// initializing state with no reading.
func New(sectors []domain.SectorProfile) (*Store, error) {
	s := &Store{
		order: make([]int, 0, len(sectors)),
		slots: make(map[int]*atomic.Pointer[Snapshot], len(sectors)),
	}
	for _, sector := range sectors {
		if _, dup := s.slots[sector.ID]; dup {
			return nil, fmt.Errorf("duplicate sector id %d", sector.ID)
		}
		slot := &atomic.Pointer[Snapshot]{}
		slot.Store(&Snapshot{Sector: sector, DataSource: SourceInitializing})
		s.slots[sector.ID] = slot
		s.order = append(s.order, sector.ID)
	}
	return s, nil
}

// Get returns the current snapshot of a sector.
func (s *Store) Get(id int) (Snapshot, error) {
	slot, ok := s.slots[id]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrSectorNotFound, id)
	}
	return *slot.Load(), nil
}

// Put replaces a sector's snapshot. The stored sector profile is kept as
// configured regardless of the profile carried by snap.
func (s *Store) Put(snap Snapshot) error {
	slot, ok := s.slots[snap.Sector.ID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrSectorNotFound, snap.Sector.ID)
	}
	snap.Sector = slot.Load().Sector
	slot.Store(&snap)
	return nil
}

// All returns every snapshot in configuration order.
func (s *Store) All() []Snapshot {
	out := make([]Snapshot, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.slots[id].Load())
	}
	return out
}

// Sectors returns the configured sector profiles in configuration order.
func (s *Store) Sectors() []domain.SectorProfile {
	out := make([]domain.SectorProfile, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.slots[id].Load().Sector)
	}
	return out
}

// AnyAvailable reports whether at least one sector has a reading.
func (s *Store) AnyAvailable() bool {
	for _, id := range s.order {
		if s.slots[id].Load().Available() {
			return true
		}
	}
	return false
}
