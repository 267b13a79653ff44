// Package report defines the events emitted by timers and the call profiler
// and the sinks that turn them into human-readable lines.
package report

import (
	"strings"
	"time"

	"github.com/alexander-akhmetov/timekeeper/clock"
)

// Kind identifies the type of event.
type Kind int

const (
	// KindStart is emitted when a timer is started with an announcement.
	KindStart Kind = iota
	// KindLap reports time since the previous lap.
	KindLap
	// KindFinish reports total time since a timer started.
	KindFinish
	// KindEnter is emitted when a profiled function is entered.
	KindEnter
	// KindExit reports the elapsed time of a profiled invocation.
	KindExit
	// KindMark reports time between intermediate marks inside a profiled invocation.
	KindMark
)

var kindNames = [...]string{
	KindStart:  "start",
	KindLap:    "lap",
	KindFinish: "finish",
	KindEnter:  "enter",
	KindExit:   "exit",
	KindMark:   "mark",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Profiled reports whether the kind belongs to the call profiler.
func (k Kind) Profiled() bool {
	return k == KindEnter || k == KindExit || k == KindMark
}

// Event is a single timing measurement ready to be reported.
type Event struct {
	Kind    Kind
	Label   string        // timer label or function name
	Info    string        // extra text fixed for the timer's lifetime
	Note    string        // per-event text (Lapf/Finishf arguments, mark notes)
	Context string        // host descriptor, appended in brackets
	Depth   int           // profiler nesting depth, 0 for the outermost call
	Elapsed time.Duration // zero for start and enter events

	Failed   bool // exit after the wrapped function returned an error
	Panicked bool // exit while the wrapped function was panicking
}

// IndentWidth is the number of spaces per profiler nesting level.
const IndentWidth = 2

// Line renders the event without color and without a trailing newline.
func (e Event) Line() string {
	return e.render(plain)
}

func (e Event) render(s styler) string {
	var b strings.Builder

	if e.Kind.Profiled() {
		depth := e.Depth
		if e.Kind == KindMark {
			depth++
		}
		b.WriteString(strings.Repeat(" ", depth*IndentWidth))
		b.WriteString(s.label(depth, e.Label))
		b.WriteString(": ")
		b.WriteString(s.status(depth, e.Kind.String()))
		if e.Kind != KindEnter {
			b.WriteByte(' ')
			b.WriteString(s.duration(e.Elapsed))
		}
		if e.Note != "" {
			b.WriteString(" (" + e.Note + ")")
		}
		switch {
		case e.Panicked:
			b.WriteString(" " + s.failure("(panic)"))
		case e.Failed:
			b.WriteString(" " + s.failure("(error)"))
		}
	} else {
		name := e.Label
		if e.Info != "" {
			name += ", " + e.Info
		}
		if e.Note != "" {
			name += ", " + e.Note
		}
		b.WriteString(s.label(0, name))
		b.WriteString(": ")
		if e.Kind == KindStart {
			b.WriteString(s.status(0, e.Kind.String()))
		} else {
			b.WriteString(s.duration(e.Elapsed))
		}
	}

	if e.Context != "" {
		b.WriteString(" [" + e.Context + "]")
	}
	return b.String()
}

// Start creates a KindStart event.
func Start(label, info string) Event {
	return Event{Kind: KindStart, Label: label, Info: info}
}

// Lap creates a KindLap event.
func Lap(label, info string, d time.Duration) Event {
	return Event{Kind: KindLap, Label: label, Info: info, Elapsed: d}
}

// Finish creates a KindFinish event.
func Finish(label, info string, d time.Duration) Event {
	return Event{Kind: KindFinish, Label: label, Info: info, Elapsed: d}
}

// Enter creates a KindEnter event.
func Enter(name string, depth int) Event {
	return Event{Kind: KindEnter, Label: name, Depth: depth}
}

// Exit creates a KindExit event.
func Exit(name string, depth int, d time.Duration) Event {
	return Event{Kind: KindExit, Label: name, Depth: depth, Elapsed: d}
}

// Mark creates a KindMark event.
func Mark(name string, depth int, d time.Duration, note string) Event {
	return Event{Kind: KindMark, Label: name, Depth: depth, Elapsed: d, Note: note}
}

// styler decorates the parts of a line. The plain styler leaves text as is.
type styler struct {
	label    func(depth int, s string) string
	status   func(depth int, s string) string
	duration func(d time.Duration) string
	failure  func(s string) string
}

var plain = styler{
	label:    func(_ int, s string) string { return s },
	status:   func(_ int, s string) string { return s },
	duration: clock.Format,
	failure:  func(s string) string { return s },
}
