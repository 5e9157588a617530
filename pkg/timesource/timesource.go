// Package timesource provides wall-clock sources for the formatter.
//
// A source reports valid=false until it has a trustworthy time. The
// formatter shows dashes in that case.
package timesource

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrReadOnly   = errors.New("time source cannot be set")
	ErrZeroTime   = errors.New("zero time")
	ErrRTCStopped = errors.New("rtc oscillator stopped")
)

// Setter is implemented by sources that accept a new wall-clock time.
type Setter interface {
	SetTime(t time.Time) error
}

// Manual holds a time handed to it over the serial protocol or the API and
// free-runs from the monotonic clock afterwards.
type Manual struct {
	mu    sync.Mutex
	base  time.Time
	start time.Time
	set   bool

	now func() time.Time
}

func NewManual() *Manual {
	return &Manual{now: time.Now}
}

// Now returns base plus the monotonic time elapsed since SetTime.
func (m *Manual) Now() (time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return time.Time{}, false
	}
	return m.base.Add(m.now().Sub(m.start)), true
}

func (m *Manual) SetTime(t time.Time) error {
	if t.IsZero() {
		return ErrZeroTime
	}
	m.mu.Lock()
	m.base = t.UTC()
	m.start = m.now()
	m.set = true
	m.mu.Unlock()
	return nil
}

// System trusts the operating system clock.
type System struct{}

func (System) Now() (time.Time, bool) { return time.Now(), true }

func (System) SetTime(time.Time) error { return ErrReadOnly }
