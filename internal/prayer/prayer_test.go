package prayer

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewDayView_CanonicalOrderAndIDs(t *testing.T) {
	date := Date{Year: 2024, Month: time.March, Day: 1}
	view := NewDayView(date, map[Name]string{
		Fajr:    "05:12",
		Dhuhr:   "12:30",
		Asr:     "15:45",
		Maghrib: "18:50",
		Isha:    "20:10",
	})

	if !view.Valid() {
		t.Fatalf("view = %#v, want canonical five entries", view)
	}
	want := []struct {
		name Name
		time string
	}{
		{Fajr, "05:12"}, {Dhuhr, "12:30"}, {Asr, "15:45"}, {Maghrib, "18:50"}, {Isha, "20:10"},
	}
	for i, w := range want {
		e := view[i]
		if e.ID != i+1 || e.Name != w.name || e.Time != w.time || e.Checked || e.Date != date {
			t.Fatalf("entry %d = %#v, want id=%d name=%s time=%s unchecked", i, e, i+1, w.name, w.time)
		}
	}
}

func TestNewDayView_MissingTimingsAreEmpty(t *testing.T) {
	view := NewDayView(Date{Year: 2024, Month: 1, Day: 1}, map[Name]string{Asr: "15:00"})
	if len(view) != Count {
		t.Fatalf("len = %d, want %d", len(view), Count)
	}
	for _, e := range view {
		if e.Name == Asr {
			if e.Time != "15:00" {
				t.Fatalf("Asr time = %q, want 15:00", e.Time)
			}
			continue
		}
		if e.Time != "" {
			t.Fatalf("%s time = %q, want empty", e.Name, e.Time)
		}
	}
}

func TestNameIDRoundTrip(t *testing.T) {
	for i, n := range Names() {
		if n.ID() != i+1 {
			t.Fatalf("%s.ID() = %d, want %d", n, n.ID(), i+1)
		}
		got, ok := NameForID(i + 1)
		if !ok || got != n {
			t.Fatalf("NameForID(%d) = %q,%v want %q", i+1, got, ok, n)
		}
	}
	if _, ok := NameForID(0); ok {
		t.Fatal("NameForID(0) ok = true, want false")
	}
	if _, ok := NameForID(6); ok {
		t.Fatal("NameForID(6) ok = true, want false")
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		in      string
		want    Name
		wantErr bool
	}{
		{"fajr", Fajr, false},
		{"  MAGHRIB ", Maghrib, false},
		{"Isha", Isha, false},
		{"sunrise", "", true},
	}
	for _, tt := range tests {
		got, err := ParseName(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseName(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWithCompletion_DoesNotMutateReceiver(t *testing.T) {
	view := NewDayView(Date{Year: 2024, Month: 1, Day: 1}, nil)
	checked := view.WithCompletion(map[int]bool{1: true, 5: true})

	if checked.Completed() != 2 || !checked[0].Checked || !checked[4].Checked {
		t.Fatalf("overlay = %#v, want Fajr and Isha checked", checked)
	}
	if view.Completed() != 0 {
		t.Fatalf("receiver mutated: %#v", view)
	}
	if checked.Unchecked().Completed() != 0 {
		t.Fatal("Unchecked kept checked entries")
	}
}

func TestDate_AddDaysAcrossBoundaries(t *testing.T) {
	tests := []struct {
		name string
		from Date
		n    int
		want Date
	}{
		{"month end", Date{2024, time.January, 31}, 1, Date{2024, time.February, 1}},
		{"leap day", Date{2024, time.February, 28}, 1, Date{2024, time.February, 29}},
		{"year end", Date{2023, time.December, 31}, 1, Date{2024, time.January, 1}},
		{"year start back", Date{2024, time.January, 1}, -1, Date{2023, time.December, 31}},
		{"eu dst start", Date{2024, time.March, 30}, 1, Date{2024, time.March, 31}},
		{"eu dst end", Date{2024, time.October, 27}, -1, Date{2024, time.October, 26}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.AddDays(tt.n)
			if got != tt.want {
				t.Fatalf("%s.AddDays(%d) = %s, want %s", tt.from, tt.n, got, tt.want)
			}
			if back := got.AddDays(-tt.n); back != tt.from {
				t.Fatalf("round trip = %s, want %s", back, tt.from)
			}
		})
	}
}

func TestDate_TodayIgnoresDSTInHelsinki(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// 00:30 local on the day clocks go forward.
	now := time.Date(2024, time.March, 31, 0, 30, 0, 0, loc)
	d := DateOf(now)
	if d.String() != "2024-03-31" {
		t.Fatalf("DateOf = %s, want 2024-03-31", d)
	}
	if next := d.AddDays(1).String(); next != "2024-04-01" {
		t.Fatalf("next = %s, want 2024-04-01", next)
	}
}

func TestDate_JSON(t *testing.T) {
	entry := Entry{ID: 1, Name: Fajr, Time: "05:00", Date: Date{2024, time.March, 1}}
	raw, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"id":1,"name":"Fajr","time":"05:00","checked":false,"date":"2024-03-01"}`
	if string(raw) != want {
		t.Fatalf("json = %s, want %s", raw, want)
	}

	var back Entry
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != entry {
		t.Fatalf("decoded = %#v, want %#v", back, entry)
	}

	if err := json.Unmarshal([]byte(`{"date":"03/01/2024"}`), &back); err == nil {
		t.Fatal("Unmarshal accepted a non-ISO date")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d != (Date{2024, time.February, 29}) {
		t.Fatalf("ParseDate = %#v", d)
	}
	if _, err := ParseDate("2023-02-29"); err == nil {
		t.Fatal("ParseDate accepted 2023-02-29")
	}
	if !(Date{2024, 1, 1}).Before(Date{2024, 1, 2}) {
		t.Fatal("Before ordering wrong")
	}
}
