package promexport

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/timekeeper/profiler"
)

func TestCollector(t *testing.T) {
	agg := profiler.NewAggregate()
	agg.Record("load", 1500*time.Millisecond, 500*time.Millisecond, true)
	agg.Record("load", 500*time.Millisecond, 500*time.Millisecond, false)
	agg.Record("parse", 250*time.Millisecond, 250*time.Millisecond, false)

	c := NewCollector(agg, "timekeeper")

	assert.Equal(t, 8, testutil.CollectAndCount(c))
	assert.Equal(t, 2, testutil.CollectAndCount(c, "timekeeper_profiled_calls_total"))

	expected := `
# HELP timekeeper_profiled_calls_total Completed instrumented calls.
# TYPE timekeeper_profiled_calls_total counter
timekeeper_profiled_calls_total{function="load"} 2
timekeeper_profiled_calls_total{function="parse"} 1
# HELP timekeeper_profiled_seconds_total Total time spent in instrumented calls.
# TYPE timekeeper_profiled_seconds_total counter
timekeeper_profiled_seconds_total{function="load"} 2
timekeeper_profiled_seconds_total{function="parse"} 0.25
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"timekeeper_profiled_calls_total", "timekeeper_profiled_seconds_total"))
}

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(NewCollector(profiler.NewAggregate(), "")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Empty(t, families, "no series before any call completes")
}
