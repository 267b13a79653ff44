package profiler

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alexander-akhmetov/timekeeper/clock"
)

// Stat summarizes all completed calls of one function.
type Stat struct {
	Name   string
	Calls  int64
	Errors int64
	Total  time.Duration
	Self   time.Duration // Total minus time spent in instrumented callees
	Min    time.Duration
	Max    time.Duration
}

// Mean returns the average duration per call.
func (s Stat) Mean() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// Aggregate accumulates per-function totals across calls. It keeps sums
// and extremes only. Safe for concurrent use.
type Aggregate struct {
	mu    sync.Mutex
	stats map[string]*Stat
}

// NewAggregate returns an empty aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{stats: make(map[string]*Stat)}
}

// Record adds one completed call.
func (a *Aggregate) Record(name string, total, self time.Duration, failed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.stats[name]
	if !ok {
		s = &Stat{Name: name, Min: total, Max: total}
		a.stats[name] = s
	}
	s.Calls++
	if failed {
		s.Errors++
	}
	s.Total += total
	s.Self += self
	s.Min = min(s.Min, total)
	s.Max = max(s.Max, total)
}

// Lookup returns the stat for name.
func (a *Aggregate) Lookup(name string) (Stat, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.stats[name]
	if !ok {
		return Stat{}, false
	}
	return *s, true
}

// Snapshot returns all stats ordered by total time, longest first.
func (a *Aggregate) Snapshot() []Stat {
	a.mu.Lock()
	out := make([]Stat, 0, len(a.stats))
	for _, s := range a.stats {
		out = append(out, *s)
	}
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Reset discards all recorded calls.
func (a *Aggregate) Reset() {
	a.mu.Lock()
	a.stats = make(map[string]*Stat)
	a.mu.Unlock()
}

// WriteTable renders the snapshot as a table.
func (a *Aggregate) WriteTable(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("Function", "Calls", "Errors", "Total", "Self", "Mean", "Min", "Max")
	for _, s := range a.Snapshot() {
		table.Append([]string{
			s.Name,
			strconv.FormatInt(s.Calls, 10),
			strconv.FormatInt(s.Errors, 10),
			clock.Format(s.Total),
			clock.Format(s.Self),
			clock.Format(s.Mean()),
			clock.Format(s.Min),
			clock.Format(s.Max),
		})
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render profile table: %w", err)
	}
	return nil
}
