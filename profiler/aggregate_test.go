package profiler

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/timekeeper/clock"
)

func TestAggregateRecursion(t *testing.T) {
	agg := NewAggregate()
	p, clk, rec := newTestProfiler(WithMode(ReportNone), WithAggregate(agg))

	var recurse func(context.Context, int) (int, error)
	recurse = Wrap1(p, "recurse", func(ctx context.Context, n int) (int, error) {
		clk.Advance(time.Millisecond)
		if n == 1 {
			return 1, nil
		}
		return recurse(ctx, n-1)
	})
	_, err := recurse(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, rec.Events())

	s, ok := agg.Lookup("recurse")
	require.True(t, ok)
	assert.Equal(t, int64(3), s.Calls)
	assert.Equal(t, int64(0), s.Errors)
	assert.Equal(t, 6*time.Millisecond, s.Total) // 1 + 2 + 3
	assert.Equal(t, 3*time.Millisecond, s.Self)
	assert.Equal(t, time.Millisecond, s.Min)
	assert.Equal(t, 3*time.Millisecond, s.Max)
	assert.Equal(t, 2*time.Millisecond, s.Mean())
}

func TestAggregateCountsErrorsAndPanics(t *testing.T) {
	agg := NewAggregate()
	p, _, _ := newTestProfiler(WithMode(ReportNone), WithAggregate(agg))

	_ = Call(context.Background(), p, "flaky", func(context.Context) error { return errBoom })
	_ = Call(context.Background(), p, "flaky", func(context.Context) error { return nil })
	assert.Panics(t, func() {
		_ = Call(context.Background(), p, "flaky", func(context.Context) error { panic("x") })
	})

	s, ok := agg.Lookup("flaky")
	require.True(t, ok)
	assert.Equal(t, int64(3), s.Calls)
	assert.Equal(t, int64(2), s.Errors)
}

func TestAggregateSnapshotOrder(t *testing.T) {
	agg := NewAggregate()
	agg.Record("fast", time.Millisecond, time.Millisecond, false)
	agg.Record("slow", time.Second, time.Second, false)
	agg.Record("alpha", time.Millisecond, time.Millisecond, false)

	snap := agg.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "slow", snap[0].Name)
	assert.Equal(t, "alpha", snap[1].Name)
	assert.Equal(t, "fast", snap[2].Name)

	agg.Reset()
	assert.Empty(t, agg.Snapshot())
	_, ok := agg.Lookup("slow")
	assert.False(t, ok)
}

func TestAggregateSelfNeverExceedsTotal(t *testing.T) {
	agg := NewAggregate()
	p, _, _ := newTestProfiler(WithMode(ReportNone), WithAggregate(agg))

	// children run concurrently on a real clock, so their summed time can
	// exceed the parent's wall time
	p.clock = clock.System
	_ = Call(context.Background(), p, "parent", func(ctx context.Context) error {
		var wg sync.WaitGroup
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = Call(ctx, p, "child", func(context.Context) error {
					time.Sleep(2 * time.Millisecond)
					return nil
				})
			}()
		}
		wg.Wait()
		return nil
	})

	parent, ok := agg.Lookup("parent")
	require.True(t, ok)
	assert.GreaterOrEqual(t, parent.Self, time.Duration(0))
	assert.LessOrEqual(t, parent.Self, parent.Total)

	child, ok := agg.Lookup("child")
	require.True(t, ok)
	assert.Equal(t, int64(4), child.Calls)
}

func TestWriteTable(t *testing.T) {
	agg := NewAggregate()
	agg.Record("load", 1500*time.Millisecond, 500*time.Millisecond, true)
	agg.Record("load", 500*time.Millisecond, 500*time.Millisecond, false)

	var buf bytes.Buffer
	require.NoError(t, agg.WriteTable(&buf))

	out := strings.ToLower(buf.String())
	for _, want := range []string{"function", "calls", "load", "2.000 s", "1.000 s", "1.500 s", "500.000 ms"} {
		assert.Contains(t, out, want)
	}
}

func TestStatMeanWithoutCalls(t *testing.T) {
	assert.Equal(t, time.Duration(0), Stat{}.Mean())
}
