// Package navigator owns the currently viewed day.
package navigator

import (
	"sync"

	"github.com/five82/salat/internal/prayer"
)

// Navigator moves a day cursor one calendar day at a time and reports every
// move to onChange, whose error is handed back to the caller.
type Navigator struct {
	mu       sync.Mutex
	current  prayer.Date
	onChange func(prayer.Date) error
}

// New starts the cursor at start. onChange may be nil.
func New(start prayer.Date, onChange func(prayer.Date) error) *Navigator {
	return &Navigator{current: start, onChange: onChange}
}

// Current returns the selected day.
func (n *Navigator) Current() prayer.Date {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Previous moves one day back and returns the new day.
func (n *Navigator) Previous() (prayer.Date, error) {
	return n.update(func(d prayer.Date) prayer.Date { return d.AddDays(-1) })
}

// Next moves one day forward and returns the new day.
func (n *Navigator) Next() (prayer.Date, error) {
	return n.update(func(d prayer.Date) prayer.Date { return d.AddDays(1) })
}

// Set jumps straight to day.
func (n *Navigator) Set(day prayer.Date) (prayer.Date, error) {
	return n.update(func(prayer.Date) prayer.Date { return day })
}

func (n *Navigator) update(step func(prayer.Date) prayer.Date) (prayer.Date, error) {
	n.mu.Lock()
	n.current = step(n.current)
	day := n.current
	cb := n.onChange
	n.mu.Unlock()

	// onChange runs without the lock held.
	if cb == nil {
		return day, nil
	}
	return day, cb(day)
}
