package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/five82/salat/internal/kv"
	"github.com/five82/salat/internal/prayer"
)

// Scope decides whether a checkmark belongs to a prayer on every day or to
// one prayer on one date.
type Scope string

const (
	// ScopeGlobal keys marks by prayer id only: checking Fajr on one day shows
	// Fajr checked on every day.
	ScopeGlobal Scope = "global"
	// ScopeDaily keys marks by "YYYY-MM-DD:id".
	ScopeDaily Scope = "daily"
)

// ParseScope accepts "global" and "daily"; anything else is an error.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeGlobal:
		return ScopeGlobal, nil
	case ScopeDaily:
		return ScopeDaily, nil
	default:
		return "", fmt.Errorf("unknown completion scope %q", s)
	}
}

// Store persists checkmarks under kv.KeyCompletion. Every read-modify-write
// runs under one mutex.
type Store struct {
	kv    kv.Store
	scope Scope

	mu     sync.Mutex
	mirror map[string]bool
	// dirty is set while the mirror holds marks storage has not accepted.
	dirty bool
}

// New returns a Store using scope (ScopeGlobal when empty).
func New(store kv.Store, scope Scope) *Store {
	if scope == "" {
		scope = ScopeGlobal
	}
	return &Store{kv: store, scope: scope, mirror: make(map[string]bool)}
}

// Scope reports the configured scope.
func (s *Store) Scope() Scope { return s.scope }

// GetAll returns the checkmarks visible on date, keyed by prayer id. When
// storage cannot be read the last known marks are returned with the error.
func (s *Store) GetAll(ctx context.Context, date prayer.Date) (map[int]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read(ctx)
	return s.project(all, date), err
}

// SetChecked persists value for id on date and returns the marks for date.
// The write happens before the result is handed back for publishing. When
// the write fails the change is still kept in memory and the error wraps
// kv.ErrUnavailable.
func (s *Store) SetChecked(ctx context.Context, date prayer.Date, id int, value bool) (map[int]bool, error) {
	if !prayer.ValidID(id) {
		return nil, fmt.Errorf("invalid prayer id %d", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, date, id, func(bool) bool { return value })
}

// Toggle flips id on date (absent counts as unchecked).
func (s *Store) Toggle(ctx context.Context, date prayer.Date, id int) (map[int]bool, error) {
	if !prayer.ValidID(id) {
		return nil, fmt.Errorf("invalid prayer id %d", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, date, id, func(old bool) bool { return !old })
}

func (s *Store) write(ctx context.Context, date prayer.Date, id int, next func(bool) bool) (map[int]bool, error) {
	all, readErr := s.read(ctx)
	key := s.key(date, id)
	all[key] = next(all[key])
	if !all[key] {
		delete(all, key)
	}

	data, err := json.Marshal(all)
	if err != nil {
		return nil, fmt.Errorf("encode completion: %w", err)
	}
	writeErr := s.kv.Set(ctx, kv.KeyCompletion, string(data))
	s.mirror = all
	s.dirty = writeErr != nil
	if writeErr != nil {
		log.Warn().Err(writeErr).Int("id", id).Str("day", date.String()).Msg("completion not persisted, kept in memory")
		return s.project(all, date), writeErr
	}
	if readErr != nil {
		return s.project(all, date), readErr
	}
	return s.project(all, date), nil
}

// read returns a private copy of the persisted map, falling back to the
// in-memory mirror when storage fails, holds garbage or is behind.
func (s *Store) read(ctx context.Context) (map[string]bool, error) {
	if s.dirty {
		return cloneMap(s.mirror), nil
	}
	raw, ok, err := s.kv.Get(ctx, kv.KeyCompletion)
	if err != nil {
		return cloneMap(s.mirror), err
	}
	if !ok || raw == "" {
		return cloneMap(s.mirror), nil
	}
	decoded := make(map[string]bool)
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		log.Warn().Err(err).Str("key", kv.KeyCompletion).Msg("completion map unreadable, using memory")
		return cloneMap(s.mirror), nil
	}
	s.mirror = cloneMap(decoded)
	return decoded, nil
}

func (s *Store) key(date prayer.Date, id int) string {
	if s.scope == ScopeDaily {
		return date.String() + ":" + strconv.Itoa(id)
	}
	return strconv.Itoa(id)
}

func (s *Store) project(all map[string]bool, date prayer.Date) map[int]bool {
	out := make(map[int]bool, prayer.Count)
	for id := 1; id <= prayer.Count; id++ {
		if all[s.key(date, id)] {
			out[id] = true
		}
	}
	return out
}

func cloneMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
