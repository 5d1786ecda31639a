package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/five82/salat/internal/kv"
	"github.com/five82/salat/internal/prayer"
)

// DefaultFreshness is how long a fetched day is reused without a network call.
const DefaultFreshness = 24 * time.Hour

// Entry is one cached day. Entries are stored unchecked.
type Entry struct {
	Entries   prayer.DayView `json:"entries"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

type blob struct {
	Entries       map[string]Entry `json:"entries"`
	LastFetchedAt time.Time        `json:"lastFetchedAt"`
}

// Manager reads and writes the cache blob held under kv.KeyPrayerTimes.
type Manager struct {
	store  kv.Store
	window time.Duration
	now    func() time.Time

	mu sync.Mutex
}

// Option customises a Manager.
type Option func(*Manager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// New returns a Manager. A non-positive window selects DefaultFreshness.
func New(store kv.Store, window time.Duration, opts ...Option) *Manager {
	if window <= 0 {
		window = DefaultFreshness
	}
	m := &Manager{store: store, window: window, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Key derives the cache key for one day at one coordinate. Coordinates are
// used verbatim, so positions a metre apart produce different keys.
func Key(date prayer.Date, coord prayer.Coordinate) string {
	return date.String() + "|" +
		strconv.FormatFloat(coord.Latitude, 'f', -1, 64) + "|" +
		strconv.FormatFloat(coord.Longitude, 'f', -1, 64)
}

// Get returns the entry for (date, coord) if it exists, is fresh and holds
// the five prayers of date in order.
func (m *Manager) Get(ctx context.Context, date prayer.Date, coord prayer.Coordinate) (Entry, bool, error) {
	b, err := m.load(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	key := Key(date, coord)
	entry, ok := b.Entries[key]
	if !ok || !m.fresh(entry) {
		return Entry{}, false, nil
	}
	if !usable(entry.Entries, date) {
		log.Warn().Str("key", key).Int("entries", len(entry.Entries)).Msg("cached day malformed, treating as miss")
		return Entry{}, false, nil
	}
	entry.Entries = entry.Entries.Clone()
	return entry, true, nil
}

// Put stores view for (date, coord), stamping it with the current time.
// The whole blob is rewritten.
func (m *Manager) Put(ctx context.Context, date prayer.Date, coord prayer.Coordinate, view prayer.DayView) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.load(ctx)
	if err != nil {
		return err
	}
	now := m.now()
	b.Entries[Key(date, coord)] = Entry{Entries: view.Unchecked(), FetchedAt: now}
	b.LastFetchedAt = now
	return m.save(ctx, b)
}

// Prune removes entries fetched more than olderThan ago and returns how many
// were dropped. Nothing else evicts entries.
func (m *Manager) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.load(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := m.now().Add(-olderThan)
	removed := 0
	for key, entry := range b.Entries {
		if entry.FetchedAt.Before(cutoff) {
			delete(b.Entries, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, m.save(ctx, b)
}

// Stats reports the number of entries and the last fetch time.
func (m *Manager) Stats(ctx context.Context) (int, time.Time, error) {
	b, err := m.load(ctx)
	if err != nil {
		return 0, time.Time{}, err
	}
	return len(b.Entries), b.LastFetchedAt, nil
}

func usable(view prayer.DayView, date prayer.Date) bool {
	if !view.Valid() {
		return false
	}
	for _, e := range view {
		if e.Date != date {
			return false
		}
	}
	return true
}

func (m *Manager) fresh(e Entry) bool {
	return m.now().Sub(e.FetchedAt) < m.window
}

func (m *Manager) load(ctx context.Context) (blob, error) {
	b := blob{Entries: make(map[string]Entry)}
	raw, ok, err := m.store.Get(ctx, kv.KeyPrayerTimes)
	if err != nil {
		return b, err
	}
	if !ok || raw == "" {
		return b, nil
	}
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		log.Warn().Err(err).Str("key", kv.KeyPrayerTimes).Msg("cache blob unreadable, starting empty")
		return blob{Entries: make(map[string]Entry)}, nil
	}
	if b.Entries == nil {
		b.Entries = make(map[string]Entry)
	}
	return b, nil
}

func (m *Manager) save(ctx context.Context, b blob) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode cache: %w", err)
	}
	return m.store.Set(ctx, kv.KeyPrayerTimes, string(data))
}
