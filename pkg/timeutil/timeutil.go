// Package timeutil provides the service clock and calendar-day helpers.
// Date constraints (release dates, birthdays) are checked against "today"
// in the configured service timezone, so every caller gets it from here.
package timeutil

import (
	"fmt"
	"sync"
	"time"
)

// Clock abstracts the wall clock so that "today" is controllable in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location (UTC when unset).
func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

// NewSystemClock resolves an IANA zone name ("" means UTC).
func NewSystemClock(zone string) (SystemClock, error) {
	if zone == "" {
		return SystemClock{Location: time.UTC}, nil
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return SystemClock{}, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return SystemClock{Location: loc}, nil
}

// FixedClock always returns the same instant. Safe for concurrent use.
type FixedClock struct {
	mu sync.RWMutex
	t  time.Time
}

// NewFixedClock creates a FixedClock pinned to t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

// Now implements Clock.
func (c *FixedClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.t
}

// Set moves the clock.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// StartOfDay returns 00:00:00 of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today returns the start of the current day according to the clock.
func Today(c Clock) time.Time {
	return StartOfDay(c.Now())
}
