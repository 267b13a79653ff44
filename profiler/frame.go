package profiler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/alexander-akhmetov/timekeeper/clock"
	"github.com/alexander-akhmetov/timekeeper/report"
)

type frameKey struct{}

// Frame is one active instrumented invocation.
type Frame struct {
	Name    string
	Depth   int // number of enclosing instrumented calls
	Entered time.Time

	p        *Profiler
	parent   *Frame
	lastMark time.Time
	failed   bool

	// children may exit on other goroutines
	childTime atomic.Int64
	exited    atomic.Bool
}

// FrameFromContext returns the innermost active frame in ctx, or nil.
func FrameFromContext(ctx context.Context) *Frame {
	if ctx == nil {
		return nil
	}
	f, _ := ctx.Value(frameKey{}).(*Frame)
	return f
}

// Depth returns the number of instrumented calls enclosing ctx.
func Depth(ctx context.Context) int {
	return depthBelow(FrameFromContext(ctx))
}

func depthBelow(parent *Frame) int {
	if parent == nil {
		return 0
	}
	return parent.Depth + 1
}

// Detach returns a context that keeps ctx's values and deadline but starts
// a fresh call chain, so calls made from it are reported at depth 0.
func Detach(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, frameKey{}, (*Frame)(nil))
}

// Parent returns the enclosing frame, or nil for an outermost call.
func (f *Frame) Parent() *Frame {
	if f == nil {
		return nil
	}
	return f.parent
}

// Fail marks the invocation as failed when err is non-nil, so its exit
// line and aggregate entry record an error.
func (f *Frame) Fail(err error) {
	if f == nil || err == nil {
		return
	}
	f.failed = true
}

// Mark reports the time since the previous mark, or since entry, with a
// note describing the step just completed. Nothing is reported in
// ReportNone mode.
func (f *Frame) Mark(note string) time.Duration {
	if f == nil {
		return 0
	}
	now := f.p.clock.Now()
	d := clock.Between(f.lastMark, now)
	if now.After(f.lastMark) {
		f.lastMark = now
	}
	if f.p.mode != ReportNone {
		f.p.emit(report.Mark(f.Name, f.Depth, d, note))
	}
	return d
}

// Exit pops the frame and reports the elapsed time since entry. Calls after
// the first return zero and report nothing.
func (f *Frame) Exit() time.Duration {
	return f.exit(false)
}

func (f *Frame) exit(panicked bool) time.Duration {
	if f == nil || !f.exited.CompareAndSwap(false, true) {
		return 0
	}
	p := f.p
	d := clock.Since(p.clock, f.Entered)
	p.active.Add(-1)

	if f.parent != nil {
		f.parent.childTime.Add(int64(d))
	}
	if p.agg != nil {
		self := d - time.Duration(f.childTime.Load())
		p.agg.Record(f.Name, d, max(self, 0), f.failed || panicked)
	}
	if p.mode&ReportExit != 0 {
		ev := report.Exit(f.Name, f.Depth, d)
		ev.Failed = f.failed
		ev.Panicked = panicked
		p.emit(ev)
	}
	return d
}
