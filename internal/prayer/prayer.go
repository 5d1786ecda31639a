package prayer

import (
	"fmt"
	"strings"
)

// Name identifies one of the five daily prayers.
type Name string

const (
	Fajr    Name = "Fajr"
	Dhuhr   Name = "Dhuhr"
	Asr     Name = "Asr"
	Maghrib Name = "Maghrib"
	Isha    Name = "Isha"
)

var names = []Name{Fajr, Dhuhr, Asr, Maghrib, Isha}

// Count is the number of prayers in a day.
const Count = 5

// Names returns the prayers in display order.
func Names() []Name {
	out := make([]Name, len(names))
	copy(out, names)
	return out
}

// ID returns the 1-based position of n, or 0 for an unknown name.
func (n Name) ID() int {
	for i, candidate := range names {
		if candidate == n {
			return i + 1
		}
	}
	return 0
}

// NameForID is the inverse of Name.ID.
func NameForID(id int) (Name, bool) {
	if id < 1 || id > len(names) {
		return "", false
	}
	return names[id-1], true
}

// ValidID reports whether id identifies a prayer.
func ValidID(id int) bool {
	_, ok := NameForID(id)
	return ok
}

// ParseName matches s against the prayer names ignoring case and whitespace.
func ParseName(s string) (Name, error) {
	trimmed := strings.TrimSpace(s)
	for _, n := range names {
		if strings.EqualFold(trimmed, string(n)) {
			return n, nil
		}
	}
	return "", fmt.Errorf("unknown prayer %q", s)
}

// Coordinate is a position in floating point degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f,%.4f", c.Latitude, c.Longitude)
}

// Entry is one prayer on one day.
type Entry struct {
	ID      int    `json:"id"`
	Name    Name   `json:"name"`
	Time    string `json:"time"`
	Checked bool   `json:"checked"`
	Date    Date   `json:"date"`
}

// DayView holds the five entries of a day in display order.
type DayView []Entry

// NewDayView builds the five entries for date. Prayers missing from timings
// get an empty time. Every entry starts unchecked.
func NewDayView(date Date, timings map[Name]string) DayView {
	view := make(DayView, 0, len(names))
	for i, n := range names {
		view = append(view, Entry{
			ID:   i + 1,
			Name: n,
			Time: timings[n],
			Date: date,
		})
	}
	return view
}

// WithCompletion returns a copy of v with Checked taken from completed.
func (v DayView) WithCompletion(completed map[int]bool) DayView {
	out := v.Clone()
	for i := range out {
		out[i].Checked = completed[out[i].ID]
	}
	return out
}

// Unchecked returns a copy of v with every entry cleared.
func (v DayView) Unchecked() DayView {
	return v.WithCompletion(nil)
}

// Completed counts the checked entries.
func (v DayView) Completed() int {
	n := 0
	for _, e := range v {
		if e.Checked {
			n++
		}
	}
	return n
}

// Date returns the day the entries belong to.
func (v DayView) Date() (Date, bool) {
	if len(v) == 0 {
		return Date{}, false
	}
	return v[0].Date, true
}

// Clone returns an independent copy of v.
func (v DayView) Clone() DayView {
	if v == nil {
		return nil
	}
	out := make(DayView, len(v))
	copy(out, v)
	return out
}

// Valid reports whether v has exactly one entry per prayer in display order.
func (v DayView) Valid() bool {
	if len(v) != len(names) {
		return false
	}
	for i, e := range v {
		if e.ID != i+1 || e.Name != names[i] {
			return false
		}
	}
	return true
}
