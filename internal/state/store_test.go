package state

import (
	"sync"
	"testing"
	"time"

	"github.com/five82/salat/internal/prayer"
)

var day = prayer.Date{Year: 2024, Month: time.March, Day: 1}

func view(d prayer.Date) prayer.DayView {
	return prayer.NewDayView(d, map[prayer.Name]string{prayer.Fajr: "05:12"})
}

func TestStore_ApplyAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	gen := s.Begin(day)
	if gen != 1 {
		t.Fatalf("first generation = %d, want 1", gen)
	}
	ok := s.Apply(gen, func(snap *Snapshot) {
		snap.Prayers = view(day)
		snap.Location = &prayer.Coordinate{Latitude: 1, Longitude: 2}
	})
	if !ok {
		t.Fatal("Apply for current generation returned false")
	}

	snap := s.Snapshot()
	if snap.CurrentDay != day || len(snap.Prayers) != prayer.Count {
		t.Fatalf("snapshot = %#v", snap)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Prayers[0].Time = "99:99"
	snap.Location.Latitude = 42
	snap2 := s.Snapshot()
	if snap2.Prayers[0].Time != "05:12" {
		t.Fatalf("Snapshot should clone prayers; got %q", snap2.Prayers[0].Time)
	}
	if snap2.Location.Latitude != 1 {
		t.Fatalf("Snapshot should clone location; got %v", snap2.Location.Latitude)
	}
}

func TestStore_StaleGenerationIsDiscarded(t *testing.T) {
	var s Store

	old := s.Begin(day)
	next := s.Begin(day.AddDays(1))
	if s.Current(old) || !s.Current(next) {
		t.Fatalf("Current(old)=%v Current(next)=%v", s.Current(old), s.Current(next))
	}

	if !s.Apply(next, func(snap *Snapshot) { snap.Prayers = view(day.AddDays(1)) }) {
		t.Fatal("Apply for newest generation returned false")
	}
	if s.Apply(old, func(snap *Snapshot) { snap.Prayers = view(day) }) {
		t.Fatal("Apply for stale generation returned true")
	}

	snap := s.Snapshot()
	if d, _ := snap.Prayers.Date(); d != day.AddDays(1) {
		t.Fatalf("published day = %s, want %s", d, day.AddDays(1))
	}
	if snap.CurrentDay != day.AddDays(1) {
		t.Fatalf("CurrentDay = %s", snap.CurrentDay)
	}
}

func TestStore_ErrorKeepsPreviousPrayers(t *testing.T) {
	var s Store
	gen := s.Begin(day)
	s.Apply(gen, func(snap *Snapshot) { snap.Prayers = view(day) })

	gen = s.Begin(day)
	s.Apply(gen, func(snap *Snapshot) {
		snap.ErrorMsg = "fetch failed"
		snap.Loading = false
	})

	snap := s.Snapshot()
	if !snap.HasError() || len(snap.Prayers) != prayer.Count {
		t.Fatalf("snapshot = %#v, want error with previous prayers", snap)
	}
}

func TestStore_UpdateIgnoresGeneration(t *testing.T) {
	var s Store
	s.Begin(day)
	s.Update(func(snap *Snapshot) { snap.ErrorMsg = "storage unavailable" })
	if got := s.Snapshot().ErrorMsg; got != "storage unavailable" {
		t.Fatalf("ErrorMsg = %q", got)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	var s Store
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			gen := s.Begin(day.AddDays(i))
			s.Apply(gen, func(snap *Snapshot) { snap.Prayers = view(day.AddDays(i)) })
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	if snap.Generation != 20 {
		t.Fatalf("Generation = %d, want 20", snap.Generation)
	}
	if d, ok := snap.Prayers.Date(); ok && d != snap.CurrentDay {
		t.Fatalf("published %s while current day is %s", d, snap.CurrentDay)
	}
}
