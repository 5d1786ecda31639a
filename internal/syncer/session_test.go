package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/salat/internal/location"
	"github.com/five82/salat/internal/prayer"
)

type recordingNotifier struct {
	mu    sync.Mutex
	views []prayer.DayView
}

func (n *recordingNotifier) CompletionChanged(_ context.Context, view prayer.DayView) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.views = append(n.views, view.Clone())
	return nil
}

func TestSession_WaitsForLocation(t *testing.T) {
	h := newHarness(t)
	s := NewSession(context.Background(), h.engine, march1)

	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, march1, snap.CurrentDay)

	require.NoError(t, s.NextDay())
	assert.Zero(t, h.fetcher.count(), "nothing loads before the location is known")
	assert.Empty(t, s.Snapshot().ErrorMsg)

	require.NoError(t, s.LocationResolved(helsinki, nil))
	snap = s.Snapshot()
	assert.Equal(t, march1.AddDays(1), snap.CurrentDay)
	require.Len(t, snap.Prayers, prayer.Count)
	d, _ := snap.Prayers.Date()
	assert.Equal(t, march1.AddDays(1), d)
	require.NotNil(t, snap.Location)
	assert.Equal(t, helsinki, *snap.Location)
}

func TestSession_PermissionDenied(t *testing.T) {
	h := newHarness(t)
	s := NewSession(context.Background(), h.engine, march1)

	err := s.ResolveLocation(context.Background(), location.Static{Coordinate: &helsinki, Allow: false})
	assert.Equal(t, LocationPermissionDenied, KindOf(err))
	assert.Zero(t, h.fetcher.count())

	snap := s.Snapshot()
	assert.Equal(t, "location unavailable", snap.ErrorMsg)
	assert.Empty(t, snap.Prayers)
	assert.Nil(t, snap.Location)

	// Navigation does not re-prompt or fetch.
	err = s.NextDay()
	assert.Equal(t, LocationPermissionDenied, KindOf(err))
	assert.Zero(t, h.fetcher.count())
}

func TestSession_LocationUnavailable(t *testing.T) {
	h := newHarness(t)
	s := NewSession(context.Background(), h.engine, march1)

	err := s.ResolveLocation(context.Background(), location.Static{Allow: true})
	assert.Equal(t, LocationUnavailable, KindOf(err))
	assert.Equal(t, "location unavailable", s.Snapshot().ErrorMsg)
}

func TestSession_NavigationRoundTrip(t *testing.T) {
	h := newHarness(t)
	s := NewSession(context.Background(), h.engine, march1)
	require.NoError(t, s.LocationResolved(helsinki, nil))

	require.NoError(t, s.NextDay())
	require.NoError(t, s.PreviousDay())
	assert.Equal(t, march1, s.CurrentDay())

	snap := s.Snapshot()
	d, _ := snap.Prayers.Date()
	assert.Equal(t, march1, d)
	assert.Equal(t, 2, h.fetcher.count(), "returning to a cached day does not refetch")
}

func TestSession_RapidNavigationPublishesLastDay(t *testing.T) {
	h := newHarness(t)
	s := NewSession(context.Background(), h.engine, march1)
	require.NoError(t, s.LocationResolved(helsinki, nil))
	<-h.fetcher.started

	slow := march1.AddDays(-1)
	gate := h.fetcher.hold(slow)
	done := make(chan error, 1)
	go func() { done <- s.PreviousDay() }()
	require.Equal(t, slow, <-h.fetcher.started)

	// The slow day is superseded as soon as the cursor moves again.
	require.NoError(t, s.NextDay())
	require.NoError(t, <-done)
	close(gate)

	snap := s.Snapshot()
	assert.Equal(t, march1, snap.CurrentDay)
	d, _ := snap.Prayers.Date()
	assert.Equal(t, march1, d)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.ErrorMsg)

	// The shared fetch finishes in the background and fills the cache.
	require.Eventually(t, func() bool {
		_, ok, err := h.cache.Get(context.Background(), slow, helsinki)
		return err == nil && ok
	}, time.Second, 10*time.Millisecond)
}

func TestSession_ToggleNotifies(t *testing.T) {
	h := newHarness(t)
	n := &recordingNotifier{}
	s := NewSession(context.Background(), h.engine, march1, WithNotifier(n))
	require.NoError(t, s.LocationResolved(helsinki, nil))

	require.NoError(t, s.Toggle(5))
	assert.True(t, s.Snapshot().Prayers[4].Checked)
	require.Len(t, n.views, 1)
	assert.Equal(t, 1, n.views[0].Completed())

	h.kv.SetFailWrites(true)
	err := s.Toggle(4)
	assert.Equal(t, StorageUnavailable, KindOf(err))
	assert.Len(t, n.views, 1, "unpersisted toggles are not announced")
}

func TestSession_ReloadIsTheManualRetry(t *testing.T) {
	h := newHarness(t)
	h.fetcher.setErr(errors.New("boom"))
	s := NewSession(context.Background(), h.engine, march1)

	err := s.LocationResolved(helsinki, nil)
	assert.Equal(t, FetchFailed, KindOf(err))
	assert.Equal(t, "fetch failed", s.Snapshot().ErrorMsg)

	h.fetcher.setErr(nil)
	require.NoError(t, s.Reload())
	snap := s.Snapshot()
	assert.Empty(t, snap.ErrorMsg)
	assert.Len(t, snap.Prayers, prayer.Count)
	assert.Equal(t, 2, h.fetcher.count())
}

func TestSession_GoTo(t *testing.T) {
	h := newHarness(t)
	s := NewSession(context.Background(), h.engine, march1)
	require.NoError(t, s.LocationResolved(helsinki, nil))

	target := prayer.Date{Year: 2024, Month: time.December, Day: 25}
	require.NoError(t, s.GoTo(target))
	assert.Equal(t, target, s.Snapshot().CurrentDay)
}
