// Package timer provides scoped timers for measuring regions of code.
//
// A Timer measures laps (time since the previous lap) and the total time
// since it was created:
//
//	t := timer.New("load", timer.WithSink(report.Stderr()))
//	readIndex()
//	t.Lap()    // load: 10.123 ms
//	readData()
//	t.Lap()    // load: 20.456 ms
//	t.Finish() // load: 30.601 ms
//
// Timers without an explicit sink report to the package default sink, which
// discards everything until SetDefaultSink is called.
package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/alexander-akhmetov/timekeeper/clock"
	"github.com/alexander-akhmetov/timekeeper/report"
)

// DefaultLabel replaces an empty timer label.
const DefaultLabel = "timer"

var defaults struct {
	mu       sync.RWMutex
	sink     report.Sink
	funcSink report.Sink // nil disables Func
}

// DefaultSink returns the sink used by timers created without WithSink.
func DefaultSink() report.Sink {
	defaults.mu.RLock()
	defer defaults.mu.RUnlock()
	return report.OrDiscard(defaults.sink)
}

// SetDefaultSink replaces the default sink and returns the previous one.
// A nil sink disables default reporting.
func SetDefaultSink(s report.Sink) report.Sink {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()
	prev := report.OrDiscard(defaults.sink)
	defaults.sink = s
	return prev
}

// Timer is one named timing session. A Timer belongs to the goroutine that
// created it; sharing it requires external synchronization.
type Timer struct {
	label   string
	info    string
	context string
	clock   clock.Clock
	sink    report.Sink
	start   time.Time
	lastLap time.Time
}

// Option configures a Timer.
type Option func(*Timer)

// WithSink sets where the timer reports. A nil sink discards reports.
func WithSink(s report.Sink) Option {
	return func(t *Timer) { t.sink = report.OrDiscard(s) }
}

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(t *Timer) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithInfo attaches extra text reported next to the label on every line.
func WithInfo(format string, args ...any) Option {
	return func(t *Timer) { t.info = fmt.Sprintf(format, args...) }
}

// WithContext attaches a host descriptor, such as a CPU model, to every line.
func WithContext(label string) Option {
	return func(t *Timer) { t.context = label }
}

// New starts a timer without reporting anything.
func New(label string, opts ...Option) *Timer {
	if label == "" {
		label = DefaultLabel
	}
	t := &Timer{label: label, clock: clock.System}
	for _, opt := range opts {
		opt(t)
	}
	if t.sink == nil {
		t.sink = DefaultSink()
	}
	t.start = t.clock.Now()
	t.lastLap = t.start
	return t
}

// Start starts a timer and reports a start line.
func Start(label string, opts ...Option) *Timer {
	t := New(label, opts...)
	t.emit(report.Start(t.label, t.info))
	return t
}

// Label returns the timer's label.
func (t *Timer) Label() string { return t.label }

// Started returns the instant the timer was created.
func (t *Timer) Started() time.Time { return t.start }

// Lap reports and returns the time since the previous lap, or since the
// timer started if there was none, and resets the lap reference point.
func (t *Timer) Lap() time.Duration {
	return t.lap("")
}

// Lapf is Lap with a note appended to the label.
func (t *Timer) Lapf(format string, args ...any) time.Duration {
	return t.lap(fmt.Sprintf(format, args...))
}

func (t *Timer) lap(note string) time.Duration {
	now := t.clock.Now()
	if now.Before(t.lastLap) {
		now = t.lastLap
	}
	d := now.Sub(t.lastLap)
	t.lastLap = now

	ev := report.Lap(t.label, t.info, d)
	ev.Note = note
	t.emit(ev)
	return d
}

// Finish reports and returns the total time since the timer started.
// It leaves the lap reference point alone and may be called repeatedly.
func (t *Timer) Finish() time.Duration {
	return t.finish("")
}

// Finishf is Finish with a note appended to the label.
func (t *Timer) Finishf(format string, args ...any) time.Duration {
	return t.finish(fmt.Sprintf(format, args...))
}

func (t *Timer) finish(note string) time.Duration {
	d := t.Elapsed()
	ev := report.Finish(t.label, t.info, d)
	ev.Note = note
	t.emit(ev)
	return d
}

// Elapsed returns the time since start without reporting.
func (t *Timer) Elapsed() time.Duration {
	return clock.Since(t.clock, t.start)
}

// SinceLap returns the time since the last lap without reporting or
// resetting the lap reference point.
func (t *Timer) SinceLap() time.Duration {
	return clock.Since(t.clock, t.lastLap)
}

func (t *Timer) emit(ev report.Event) {
	if ev.Context == "" {
		ev.Context = t.context
	}
	t.sink.Emit(ev)
}
