package syncer

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/five82/salat/internal/location"
	"github.com/five82/salat/internal/navigator"
	"github.com/five82/salat/internal/prayer"
	"github.com/five82/salat/internal/state"
)

// Notifier is told about every successful toggle.
type Notifier interface {
	CompletionChanged(ctx context.Context, view prayer.DayView) error
}

// Session is the view model surface: it owns the day cursor and the
// resolved location and routes the two triggers, location resolved and day
// changed, into Engine.LoadDay.
type Session struct {
	ctx      context.Context
	engine   *Engine
	nav      *navigator.Navigator
	notifier Notifier

	mu       sync.Mutex
	resolved bool
	coord    *prayer.Coordinate
	locErr   error
	cancel   context.CancelFunc
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithNotifier registers n for completion changes.
func WithNotifier(n Notifier) SessionOption {
	return func(s *Session) { s.notifier = n }
}

// NewSession starts at day start. Loads run under ctx; the session waits for
// LocationResolved before loading anything.
func NewSession(ctx context.Context, engine *Engine, start prayer.Date, opts ...SessionOption) *Session {
	s := &Session{ctx: ctx, engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	s.nav = navigator.New(start, s.load)
	engine.Store().Update(func(snap *state.Snapshot) {
		snap.CurrentDay = start
		snap.Loading = true
	})
	return s
}

// ResolveLocation runs the one-shot location handshake and feeds the result
// to LocationResolved.
func (s *Session) ResolveLocation(ctx context.Context, p location.Provider) error {
	coord, err := location.Resolve(ctx, p)
	if err != nil {
		log.Warn().Err(err).Msg("location not resolved")
	} else {
		log.Info().Stringer("coordinate", coord).Msg("location resolved")
	}
	return s.LocationResolved(coord, err)
}

// LocationResolved records the outcome of location resolution and loads the
// current day. It is meant to be called once per session.
func (s *Session) LocationResolved(coord prayer.Coordinate, err error) error {
	s.mu.Lock()
	s.resolved = true
	s.locErr = err
	if err == nil {
		c := coord
		s.coord = &c
	} else {
		s.coord = nil
	}
	loc := s.coord
	s.mu.Unlock()

	s.engine.Store().Update(func(snap *state.Snapshot) {
		if loc != nil {
			c := *loc
			snap.Location = &c
		} else {
			snap.Location = nil
		}
	})
	return s.load(s.nav.Current())
}

// PreviousDay moves back one day and loads it.
func (s *Session) PreviousDay() error {
	_, err := s.nav.Previous()
	return err
}

// NextDay moves forward one day and loads it.
func (s *Session) NextDay() error {
	_, err := s.nav.Next()
	return err
}

// GoTo jumps to day and loads it.
func (s *Session) GoTo(day prayer.Date) error {
	_, err := s.nav.Set(day)
	return err
}

// Reload loads the current day again. This and navigation are the only ways
// a failed fetch is retried.
func (s *Session) Reload() error {
	return s.load(s.nav.Current())
}

// Toggle flips prayer id on the displayed day.
func (s *Session) Toggle(id int) error {
	return s.notify(s.engine.Toggle(s.ctx, id))
}

// SetChecked sets the mark of prayer id on the displayed day to value.
func (s *Session) SetChecked(id int, value bool) error {
	return s.notify(s.engine.SetChecked(s.ctx, id, value))
}

func (s *Session) notify(view prayer.DayView, err error) error {
	if err != nil && view == nil {
		return err
	}
	if s.notifier != nil && err == nil {
		if nerr := s.notifier.CompletionChanged(s.ctx, view); nerr != nil {
			log.Warn().Err(nerr).Msg("completion notification failed")
		}
	}
	return err
}

// CurrentDay returns the day under the cursor.
func (s *Session) CurrentDay() prayer.Date {
	return s.nav.Current()
}

// Snapshot returns the published view model.
func (s *Session) Snapshot() state.Snapshot {
	return s.engine.Store().Snapshot()
}

// load is the day-changed trigger. It cancels the previous in-flight load,
// then runs LoadDay for day.
func (s *Session) load(day prayer.Date) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancel = cancel
	resolved := s.resolved
	var coord *prayer.Coordinate
	if s.coord != nil {
		c := *s.coord
		coord = &c
	}
	locErr := s.locErr
	s.mu.Unlock()
	defer cancel()

	if !resolved {
		gen := s.engine.Store().Begin(day)
		s.engine.Store().Apply(gen, func(snap *state.Snapshot) { snap.Loading = true })
		return nil
	}

	_, err := s.engine.LoadDay(ctx, day, coord)
	if errors.Is(err, ErrSuperseded) || errors.Is(err, context.Canceled) {
		return nil
	}
	if coord == nil && errors.Is(locErr, location.ErrPermissionDenied) {
		return &Error{Kind: LocationPermissionDenied, Err: locErr}
	}
	return err
}
