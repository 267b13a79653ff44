// Package profiler times individual function invocations.
//
// Each instrumented call pushes a Frame onto the call chain carried by its
// context.Context and pops it on every exit path. Nesting depth is derived
// from that chain, so concurrent goroutines never see each other's frames:
// a goroutine sees only the frames of the context it was handed.
//
//	ctx, f := p.Enter(ctx, "load")
//	defer f.Exit()
//
// or, for a transparent decorator with the same signature:
//
//	load := profiler.Wrap(p, "load", loadFn)
package profiler

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexander-akhmetov/timekeeper/clock"
	"github.com/alexander-akhmetov/timekeeper/internal/funcname"
	"github.com/alexander-akhmetov/timekeeper/report"
)

// Mode selects which events a profiler reports.
type Mode uint8

const (
	// ReportEntry reports a line when an instrumented function is entered.
	ReportEntry Mode = 1 << iota
	// ReportExit reports a line with the elapsed time when it returns.
	ReportExit

	// ReportNone reports nothing; measurements still reach the aggregate.
	ReportNone Mode = 0
	// ReportBoth reports entry and exit.
	ReportBoth = ReportEntry | ReportExit
)

func (m Mode) String() string {
	switch m {
	case ReportNone:
		return "none"
	case ReportEntry:
		return "entry"
	case ReportExit:
		return "exit"
	case ReportBoth:
		return "both"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses "both", "entry", "exit" or "none". Empty means both.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return ReportBoth, nil
	case "entry":
		return ReportEntry, nil
	case "exit":
		return ReportExit, nil
	case "none":
		return ReportNone, nil
	default:
		return ReportNone, fmt.Errorf("unknown profiler mode %q", s)
	}
}

// Profiler measures instrumented calls and reports them to a sink.
// A Profiler is safe for concurrent use.
type Profiler struct {
	sink     report.Sink
	clock    clock.Clock
	mode     Mode
	agg      *Aggregate
	context  string
	disabled bool

	active atomic.Int64
}

// Option configures a Profiler.
type Option func(*Profiler)

// WithSink sets where reports go. A nil sink discards them.
func WithSink(s report.Sink) Option {
	return func(p *Profiler) { p.sink = report.OrDiscard(s) }
}

// WithClock sets the time source.
func WithClock(c clock.Clock) Option {
	return func(p *Profiler) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithMode sets which events are reported.
func WithMode(m Mode) Option {
	return func(p *Profiler) { p.mode = m }
}

// WithAggregate records every completed call in agg.
func WithAggregate(agg *Aggregate) Option {
	return func(p *Profiler) { p.agg = agg }
}

// WithContext attaches a host descriptor to every reported line.
func WithContext(label string) Option {
	return func(p *Profiler) { p.context = label }
}

// Disabled makes the profiler a pass-through: wrapped functions run
// untouched and nothing is measured.
func Disabled() Option {
	return func(p *Profiler) { p.disabled = true }
}

// New returns a profiler reporting entry and exit to stderr.
func New(opts ...Option) *Profiler {
	p := &Profiler{clock: clock.System, mode: ReportBoth}
	for _, opt := range opts {
		opt(p)
	}
	if p.sink == nil {
		p.sink = report.Stderr()
	}
	return p
}

var defaultProfiler atomic.Pointer[Profiler]

func init() {
	defaultProfiler.Store(New(Disabled(), WithSink(report.Discard)))
}

// Default returns the profiler used when a nil *Profiler is passed to the
// package helpers. It is disabled until SetDefault installs another one.
func Default() *Profiler {
	return defaultProfiler.Load()
}

// SetDefault installs p as the default profiler and returns the previous
// one. A nil p restores a disabled profiler.
func SetDefault(p *Profiler) *Profiler {
	if p == nil {
		p = New(Disabled(), WithSink(report.Discard))
	}
	return defaultProfiler.Swap(p)
}

func resolve(p *Profiler) *Profiler {
	if p == nil {
		return Default()
	}
	return p
}

// Enabled reports whether the profiler measures calls.
func (p *Profiler) Enabled() bool { return !p.disabled }

// Mode returns the reporting mode.
func (p *Profiler) Mode() Mode { return p.mode }

// Aggregate returns the attached aggregate, or nil.
func (p *Profiler) Aggregate() *Aggregate { return p.agg }

// Active returns the number of frames entered and not yet exited.
func (p *Profiler) Active() int64 { return p.active.Load() }

// Enter pushes a frame for name onto the call chain in ctx and returns the
// derived context to pass to nested calls. An empty name is resolved from
// the calling function. The frame must be exited exactly once, normally
// with defer. A nil p uses Default(). A disabled profiler returns ctx and
// a nil frame, whose methods are no-ops.
func (p *Profiler) Enter(ctx context.Context, name string) (context.Context, *Frame) {
	if ctx == nil {
		ctx = context.Background()
	}
	p = resolve(p)
	if p.disabled {
		return ctx, nil
	}
	if name == "" {
		name = funcname.Caller(1)
	}
	return p.enter(ctx, name)
}

func (p *Profiler) enter(ctx context.Context, name string) (context.Context, *Frame) {
	parent := FrameFromContext(ctx)
	f := &Frame{
		Name:    name,
		Depth:   depthBelow(parent),
		Entered: p.clock.Now(),
		p:       p,
		parent:  parent,
	}
	f.lastMark = f.Entered
	p.active.Add(1)

	if p.mode&ReportEntry != 0 {
		p.emit(report.Enter(f.Name, f.Depth))
	}
	return context.WithValue(ctx, frameKey{}, f), f
}

func (p *Profiler) emit(ev report.Event) {
	if ev.Context == "" {
		ev.Context = p.context
	}
	p.sink.Emit(ev)
}
