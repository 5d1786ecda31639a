package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/five82/salat/internal/aladhan"
	"github.com/five82/salat/internal/cache"
	"github.com/five82/salat/internal/completion"
	"github.com/five82/salat/internal/metrics"
	"github.com/five82/salat/internal/prayer"
	"github.com/five82/salat/internal/state"
)

// DefaultFetchTimeout bounds one call to the prayer time service.
const DefaultFetchTimeout = 10 * time.Second

var errNoLocation = errors.New("no coordinate")

// Engine turns (day, coordinate) into a published DayView. It consults the
// cache, calls the service on a miss, overlays completion marks and
// publishes through the state store under a generation token.
type Engine struct {
	fetcher    aladhan.Fetcher
	cache      *cache.Manager
	completion *completion.Store
	store      *state.Store
	timeout    time.Duration

	group singleflight.Group
	// overlay serialises reading completion marks with publishing them.
	overlay sync.Mutex
}

// Deps are the collaborators of an Engine.
type Deps struct {
	Fetcher      aladhan.Fetcher
	Cache        *cache.Manager
	Completion   *completion.Store
	Store        *state.Store
	FetchTimeout time.Duration
}

// NewEngine wires an Engine. A zero FetchTimeout selects DefaultFetchTimeout.
func NewEngine(d Deps) *Engine {
	timeout := d.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	st := d.Store
	if st == nil {
		st = &state.Store{}
	}
	return &Engine{
		fetcher:    d.Fetcher,
		cache:      d.Cache,
		completion: d.Completion,
		store:      st,
		timeout:    timeout,
	}
}

// Store returns the state store the engine publishes to.
func (e *Engine) Store() *state.Store { return e.store }

// LoadDay loads day at coord and publishes the result if no newer load has
// started in the meantime. A nil coord publishes "location unavailable"
// without touching the network. On fetch failure the cache is left alone and
// the previously published prayers stay in place. There is no automatic
// retry.
func (e *Engine) LoadDay(ctx context.Context, day prayer.Date, coord *prayer.Coordinate) (prayer.DayView, error) {
	gen := e.store.Begin(day)
	logger := log.With().Str("day", day.String()).Uint64("generation", gen).Logger()

	if coord == nil {
		e.store.Apply(gen, func(s *state.Snapshot) {
			s.Prayers = nil
			s.Loading = false
			s.ErrorMsg = LocationUnavailable.Message()
		})
		metrics.Loads.WithLabelValues("no_location").Inc()
		logger.Debug().Msg("no location, skipping load")
		return nil, &Error{Kind: LocationUnavailable, Err: errNoLocation}
	}

	key := cache.Key(day, *coord)
	logger = logger.With().Str("key", key).Logger()

	base, source, err := e.lookup(ctx, gen, day, *coord)
	if err != nil && ctx.Err() != nil {
		// The caller gave up, normally because a newer load replaced this one.
		// If nothing replaced it the loading flag still has to come down.
		e.store.Apply(gen, func(s *state.Snapshot) {
			s.Loading = false
		})
		logger.Debug().Err(err).Msg("load cancelled")
		return nil, ctx.Err()
	}
	if err != nil {
		metrics.Loads.WithLabelValues("error").Inc()
		published := e.store.Apply(gen, func(s *state.Snapshot) {
			s.Loading = false
			s.ErrorMsg = FetchFailed.Message()
		})
		if !published {
			metrics.Superseded.Inc()
			logger.Debug().Err(err).Msg("failed load superseded")
			return nil, ErrSuperseded
		}
		logger.Warn().Err(err).Msg("prayer time fetch failed")
		return nil, &Error{Kind: FetchFailed, Err: err}
	}

	view, published, markErr := e.publish(ctx, gen, day, base)
	if !published {
		metrics.Superseded.Inc()
		logger.Debug().Str("source", source).Msg("discarding superseded result")
		return view, ErrSuperseded
	}
	metrics.Loads.WithLabelValues(source).Inc()
	logger.Info().Str("source", source).Int("completed", view.Completed()).Msg("day loaded")
	if markErr != nil {
		return view, &Error{Kind: StorageUnavailable, Err: markErr}
	}
	return view, nil
}

// lookup returns the unchecked entries for day from the cache or, on a miss,
// from the service.
func (e *Engine) lookup(ctx context.Context, gen uint64, day prayer.Date, coord prayer.Coordinate) (prayer.DayView, string, error) {
	entry, ok, err := e.cache.Get(ctx, day, coord)
	if err != nil {
		log.Warn().Err(err).Str("day", day.String()).Msg("cache read failed, fetching")
	}
	if ok {
		return entry.Entries, "cache", nil
	}

	e.store.Apply(gen, func(s *state.Snapshot) {
		s.Loading = true
		s.ErrorMsg = ""
	})
	view, err := e.fetch(ctx, day, coord)
	if err != nil {
		return nil, "", err
	}
	return view, "network", nil
}

// fetch calls the service once per cache key no matter how many loads are
// waiting on it. The shared call is not cancelled by any single caller, so
// a superseded fetch still lands in the cache.
func (e *Engine) fetch(ctx context.Context, day prayer.Date, coord prayer.Coordinate) (prayer.DayView, error) {
	key := cache.Key(day, coord)
	ch := e.group.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()

		timings, err := e.fetcher.FetchTimings(fctx, aladhan.Query{Date: day, Coordinate: coord})
		if err != nil {
			metrics.Fetches.WithLabelValues("error").Inc()
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(fctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("fetch timed out after %s: %w", e.timeout, err)
			}
			return nil, err
		}
		metrics.Fetches.WithLabelValues("ok").Inc()

		view := prayer.NewDayView(day, timings)
		pctx, pcancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer pcancel()
		if err := e.cache.Put(pctx, day, coord, view); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache write failed")
		}
		return view, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(prayer.DayView).Clone(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// publish overlays the completion marks for day onto base and applies the
// result if gen is still current.
func (e *Engine) publish(ctx context.Context, gen uint64, day prayer.Date, base prayer.DayView) (prayer.DayView, bool, error) {
	e.overlay.Lock()
	defer e.overlay.Unlock()

	if !e.store.Current(gen) {
		return base, false, nil
	}
	marks, markErr := e.completion.GetAll(ctx, day)
	if markErr != nil {
		log.Warn().Err(markErr).Str("day", day.String()).Msg("completion read failed, using memory")
	}
	view := base.WithCompletion(marks)
	published := e.store.Apply(gen, func(s *state.Snapshot) {
		s.Prayers = view
		s.Loading = false
		s.ErrorMsg = ""
		if markErr != nil {
			s.ErrorMsg = StorageUnavailable.Message()
		}
	})
	return view, published, markErr
}

// Toggle flips prayer id on the published day and overlays the new marks
// without re-fetching. A storage failure keeps the toggle on screen and
// publishes "storage unavailable".
func (e *Engine) Toggle(ctx context.Context, id int) (prayer.DayView, error) {
	return e.mark(ctx, id, e.completion.Toggle)
}

// SetChecked sets the mark of prayer id on the published day to value.
// Repeating the call with the same value changes nothing.
func (e *Engine) SetChecked(ctx context.Context, id int, value bool) (prayer.DayView, error) {
	return e.mark(ctx, id, func(ctx context.Context, day prayer.Date, id int) (map[int]bool, error) {
		return e.completion.SetChecked(ctx, day, id, value)
	})
}

type markFunc func(ctx context.Context, day prayer.Date, id int) (map[int]bool, error)

func (e *Engine) mark(ctx context.Context, id int, write markFunc) (prayer.DayView, error) {
	if !prayer.ValidID(id) {
		return nil, fmt.Errorf("invalid prayer id %d", id)
	}

	e.overlay.Lock()
	defer e.overlay.Unlock()

	snap := e.store.Snapshot()
	day, ok := snap.Prayers.Date()
	if !ok {
		return nil, errors.New("no prayers to toggle")
	}

	marks, err := write(ctx, day, id)
	if marks == nil {
		return nil, err
	}

	var view prayer.DayView
	e.store.Update(func(s *state.Snapshot) {
		if d, ok := s.Prayers.Date(); ok && d == day {
			s.Prayers = s.Prayers.WithCompletion(marks)
		}
		view = s.Prayers.Clone()
		switch {
		case err != nil:
			s.ErrorMsg = StorageUnavailable.Message()
		case s.ErrorMsg == StorageUnavailable.Message():
			s.ErrorMsg = ""
		}
	})

	if err != nil {
		metrics.Toggles.WithLabelValues("unpersisted").Inc()
		return view, &Error{Kind: StorageUnavailable, Err: err}
	}
	metrics.Toggles.WithLabelValues("ok").Inc()
	log.Debug().Str("day", day.String()).Int("id", id).Bool("checked", marks[id]).Msg("completion mark written")
	return view, nil
}
