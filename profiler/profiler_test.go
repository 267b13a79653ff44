package profiler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/timekeeper/clock"
	"github.com/alexander-akhmetov/timekeeper/report"
)

func newTestProfiler(opts ...Option) (*Profiler, *clock.Manual, *report.Recorder) {
	clk := clock.NewManual(time.Unix(1_700_000_000, 0))
	rec := &report.Recorder{}
	base := []Option{WithClock(clk), WithSink(rec)}
	return New(append(base, opts...)...), clk, rec
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ReportBoth},
		{in: "both", want: ReportBoth},
		{in: "Entry", want: ReportEntry},
		{in: "exit", want: ReportExit},
		{in: "none", want: ReportNone},
		{in: "sometimes", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseMode(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, must(ParseMode(got.String())))
		})
	}
}

func must(m Mode, err error) Mode {
	if err != nil {
		panic(err)
	}
	return m
}

func TestRecursionDepthThree(t *testing.T) {
	p, clk, rec := newTestProfiler()

	var recurse func(context.Context, int) (int, error)
	recurse = Wrap1(p, "recurse", func(ctx context.Context, n int) (int, error) {
		clk.Advance(time.Millisecond)
		if n == 1 {
			return 1, nil
		}
		v, err := recurse(ctx, n-1)
		return v + 1, err
	})

	v, err := recurse(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	assert.Equal(t, []string{
		"recurse: enter",
		"  recurse: enter",
		"    recurse: enter",
		"    recurse: exit 1.000 ms",
		"  recurse: exit 2.000 ms",
		"recurse: exit 3.000 ms",
	}, rec.Lines())
	assert.Equal(t, int64(0), p.Active())
}

func TestDepthMatchesActiveEnclosingCalls(t *testing.T) {
	p, _, _ := newTestProfiler(WithMode(ReportNone))

	var seen []int
	var nest func(context.Context, int) error
	nest = func(ctx context.Context, n int) error {
		return Call(ctx, p, "nest", func(ctx context.Context) error {
			seen = append(seen, Depth(ctx)-1)
			assert.Equal(t, int64(len(seen)), p.Active())
			if n == 0 {
				return nil
			}
			return nest(ctx, n-1)
		})
	}

	require.NoError(t, nest(context.Background(), 4))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, seen)
	assert.Equal(t, int64(0), p.Active())
}

func TestModes(t *testing.T) {
	tests := []struct {
		mode  Mode
		kinds []report.Kind
	}{
		{mode: ReportBoth, kinds: []report.Kind{report.KindEnter, report.KindExit}},
		{mode: ReportEntry, kinds: []report.Kind{report.KindEnter}},
		{mode: ReportExit, kinds: []report.Kind{report.KindExit}},
		{mode: ReportNone, kinds: nil},
	}

	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			p, _, rec := newTestProfiler(WithMode(tc.mode))
			require.NoError(t, Call(context.Background(), p, "f", func(context.Context) error { return nil }))

			var kinds []report.Kind
			for _, e := range rec.Events() {
				kinds = append(kinds, e.Kind)
			}
			assert.Equal(t, tc.kinds, kinds)
		})
	}
}

var errBoom = errors.New("boom")

func TestErrorPassesThroughUnchanged(t *testing.T) {
	p, _, rec := newTestProfiler()

	load := Wrap(p, "load", func(context.Context) (string, error) {
		return "partial", errBoom
	})

	v, err := load(context.Background())
	assert.Equal(t, "partial", v)
	assert.True(t, err == errBoom, "error identity must be preserved")
	assert.Equal(t, int64(0), p.Active())

	events := rec.Events()
	require.Len(t, events, 2)
	assert.True(t, events[1].Failed)
	assert.False(t, events[1].Panicked)
}

func TestPanicPropagatesAndStackBalances(t *testing.T) {
	p, _, rec := newTestProfiler()

	outer := WrapErr(p, "outer", func(ctx context.Context) error {
		return Call(ctx, p, "inner", func(context.Context) error {
			panic("kaboom")
		})
	})

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = outer(context.Background())
	})
	assert.Equal(t, int64(0), p.Active())

	assert.Equal(t, []string{
		"outer: enter",
		"  inner: enter",
		"  inner: exit 0.000 ms (panic)",
		"outer: exit 0.000 ms (panic)",
	}, rec.Lines())
}

func TestSuccessIsNotTurnedIntoFailure(t *testing.T) {
	p, _, rec := newTestProfiler()

	err := Call(context.Background(), p, "ok", func(context.Context) error { return nil })
	require.NoError(t, err)
	for _, e := range rec.Events() {
		assert.False(t, e.Failed)
	}
}

func TestManualEnterExit(t *testing.T) {
	p, clk, rec := newTestProfiler()

	ctx, f := p.Enter(context.Background(), "step")
	require.NotNil(t, f)
	assert.Same(t, f, FrameFromContext(ctx))
	assert.Equal(t, 0, f.Depth)

	clk.Advance(2 * time.Millisecond)
	assert.Equal(t, 2*time.Millisecond, f.Mark("parsed"))
	clk.Advance(3 * time.Millisecond)
	assert.Equal(t, 3*time.Millisecond, f.Mark("validated"))

	assert.Equal(t, 5*time.Millisecond, f.Exit())
	assert.Equal(t, time.Duration(0), f.Exit(), "second exit is a no-op")

	assert.Equal(t, []string{
		"step: enter",
		"  step: mark 2.000 ms (parsed)",
		"  step: mark 3.000 ms (validated)",
		"step: exit 5.000 ms",
	}, rec.Lines())
	assert.Equal(t, int64(0), p.Active())
}

func TestMarkSilentWithoutReporting(t *testing.T) {
	p, clk, rec := newTestProfiler(WithMode(ReportNone))

	_, f := p.Enter(context.Background(), "step")
	clk.Advance(time.Millisecond)
	assert.Equal(t, time.Millisecond, f.Mark("parsed"))
	f.Exit()

	assert.Empty(t, rec.Events())
}

//go:noinline
func namedStep(p *Profiler) *Frame {
	_, f := p.Enter(context.Background(), "")
	return f
}

func TestEnterResolvesCallerName(t *testing.T) {
	p, _, _ := newTestProfiler(WithMode(ReportNone))
	f := namedStep(p)
	defer f.Exit()
	assert.Equal(t, "namedStep", f.Name)
}

func fetch[T any](_ context.Context) (T, error) {
	var zero T
	return zero, nil
}

func TestGenericInstantiationsShareName(t *testing.T) {
	p, _, rec := newTestProfiler(WithMode(ReportExit))

	_, _ = Wrap(p, "", fetch[int])(context.Background())
	_, _ = Wrap(p, "", fetch[string])(context.Background())

	events := rec.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "fetch", events[0].Label)
	assert.Equal(t, events[0].Label, events[1].Label)
}

func TestGoroutinesHaveIndependentStacks(t *testing.T) {
	p, _, _ := newTestProfiler(WithMode(ReportNone))

	var nest func(context.Context, int, *[]int) error
	nest = func(ctx context.Context, n int, depths *[]int) error {
		return Call(ctx, p, "nest", func(ctx context.Context) error {
			*depths = append(*depths, FrameFromContext(ctx).Depth)
			if n == 0 {
				return nil
			}
			time.Sleep(time.Microsecond)
			return nest(ctx, n-1, depths)
		})
	}

	const workers = 8
	results := make([][]int, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = nest(context.Background(), 3, &results[i])
		}()
	}
	wg.Wait()

	for _, depths := range results {
		assert.Equal(t, []int{0, 1, 2, 3}, depths)
	}
	assert.Equal(t, int64(0), p.Active())
}

func TestDetachStartsFreshChain(t *testing.T) {
	p, _, rec := newTestProfiler(WithMode(ReportEntry))

	ctx, f := p.Enter(context.Background(), "parent")
	defer f.Exit()

	_, child := p.Enter(ctx, "child")
	_, detached := p.Enter(Detach(ctx), "background")
	child.Exit()
	detached.Exit()

	assert.Equal(t, 1, child.Depth)
	assert.Same(t, f, child.Parent())
	assert.Equal(t, 0, detached.Depth)
	assert.Nil(t, detached.Parent())
	assert.Equal(t, 0, Depth(Detach(ctx)))
	assert.Len(t, rec.Events(), 3)
}

func TestDisabledProfilerIsPassThrough(t *testing.T) {
	rec := &report.Recorder{}
	p := New(Disabled(), WithSink(rec))

	ctx := context.Background()
	got, f := p.Enter(ctx, "x")
	assert.Nil(t, f)
	assert.Equal(t, ctx, got)
	assert.NotPanics(t, func() {
		f.Mark("nothing")
		f.Fail(errBoom)
		f.Exit()
	})

	v, err := Do(ctx, p, "x", func(context.Context) (int, error) { return 7, errBoom })
	assert.Equal(t, 7, v)
	assert.ErrorIs(t, err, errBoom)
	assert.Empty(t, rec.Events())
	assert.False(t, p.Enabled())
}

func TestDefaultProfilerDisabledUntilSet(t *testing.T) {
	assert.False(t, Default().Enabled())

	rec := &report.Recorder{}
	prev := SetDefault(New(WithSink(rec)))
	t.Cleanup(func() { SetDefault(prev) })

	require.NoError(t, Call(context.Background(), nil, "viaDefault", func(context.Context) error { return nil }))
	assert.Len(t, rec.Events(), 2)

	SetDefault(nil)
	assert.False(t, Default().Enabled())
}

func TestContextLabel(t *testing.T) {
	p, _, rec := newTestProfiler(WithMode(ReportExit), WithContext("AMD Ryzen"))
	require.NoError(t, Call(context.Background(), p, "f", func(context.Context) error { return nil }))
	assert.Equal(t, []string{"f: exit 0.000 ms [AMD Ryzen]"}, rec.Lines())
}
