package state

import (
	"sync"
	"time"

	"github.com/five82/salat/internal/prayer"
)

// Snapshot is the view model published to the UI and the HTTP API.
type Snapshot struct {
	Prayers     prayer.DayView
	CurrentDay  prayer.Date
	Loading     bool
	ErrorMsg    string
	Location    *prayer.Coordinate
	Generation  uint64
	LastUpdated time.Time
}

// Completed counts the checked prayers of the current view.
func (s Snapshot) Completed() int {
	return s.Prayers.Completed()
}

// HasError reports whether a message should be shown.
func (s Snapshot) HasError() bool {
	return s.ErrorMsg != ""
}

// Store coordinates concurrent updates to the snapshot. Every day load takes
// a generation from Begin; Apply only lands for the newest generation.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin starts a new generation for day and makes it current. Earlier
// generations can no longer Apply.
func (s *Store) Begin(day prayer.Date) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Generation++
	s.snapshot.CurrentDay = day
	s.snapshot.LastUpdated = time.Now()
	return s.snapshot.Generation
}

// Current reports whether gen is still the newest generation.
func (s *Store) Current(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Generation == gen
}

// Apply runs fn against the snapshot if gen is still current and reports
// whether it did. Fields fn leaves alone keep their previous values.
func (s *Store) Apply(gen uint64, fn func(*Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Generation != gen {
		return false
	}
	fn(&s.snapshot)
	s.snapshot.Prayers = s.snapshot.Prayers.Clone()
	s.snapshot.LastUpdated = time.Now()
	return true
}

// Update runs fn against the snapshot regardless of generation.
func (s *Store) Update(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.snapshot)
	s.snapshot.Prayers = s.snapshot.Prayers.Clone()
	s.snapshot.LastUpdated = time.Now()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Prayers = s.snapshot.Prayers.Clone()
	if s.snapshot.Location != nil {
		loc := *s.snapshot.Location
		snap.Location = &loc
	}
	return snap
}
