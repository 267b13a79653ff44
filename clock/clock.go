// Package clock provides the monotonic time source and duration formatting
// shared by timers and the call profiler.
package clock

import (
	"fmt"
	"sync"
	"time"
)

// Clock returns the current instant. Instants from the system clock carry a
// monotonic reading, so differences between them are unaffected by
// wall-clock adjustments.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the process clock.
var System Clock = systemClock{}

// Since returns the non-negative duration elapsed on c since t.
func Since(c Clock, t time.Time) time.Duration {
	return Between(t, c.Now())
}

// Between returns end-start, clamped at zero.
func Between(start, end time.Time) time.Duration {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return d
}

// Format renders d adaptively: milliseconds below one second ("12.345 ms"),
// seconds otherwise ("1.234 s"). Negative durations render as zero.
func Format(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return fmt.Sprintf("%.3f ms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.3f s", d.Seconds())
}

// Manual is a clock that only moves when told to. Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a Manual clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual instant.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d. Negative values are ignored so the
// clock never runs backwards.
func (m *Manual) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Set moves the clock to t if t is not before the current instant.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	if t.After(m.now) {
		m.now = t
	}
	m.mu.Unlock()
}
