// Package timekeeper wires the timing packages together according to a set
// of feature flags.
//
// Every feature is off until Init is called, so instrumented code costs
// a no-op until an application opts in:
//
//	h, err := timekeeper.Init(timekeeper.Options{
//		Features: timekeeper.Features{Timer: true, Timed: true},
//	})
//	if err != nil {
//		return err
//	}
//	defer h.Close()
package timekeeper

import (
	"errors"
	"fmt"
	"sync"

	"github.com/alexander-akhmetov/timekeeper/cpu"
	"github.com/alexander-akhmetov/timekeeper/internal/debug"
	"github.com/alexander-akhmetov/timekeeper/profiler"
	"github.com/alexander-akhmetov/timekeeper/report"
	"github.com/alexander-akhmetov/timekeeper/storage"
	"github.com/alexander-akhmetov/timekeeper/timer"
)

// ErrFeatureDisabled is returned when using a subsystem whose feature is off.
var ErrFeatureDisabled = errors.New("feature disabled")

// Options configures Init.
type Options struct {
	Features Features

	// Sink receives every report line. Nil means report.Stderr().
	Sink report.Sink

	// ProfilerMode is "both", "entry", "exit" or "none". Empty means both.
	ProfilerMode string

	// HostLabel appends the CPU model to every report line when the cpu
	// feature is on.
	HostLabel bool
}

// Handle holds the state installed by Init.
type Handle struct {
	features Features
	host     string
	prof     *profiler.Profiler
	agg      *profiler.Aggregate

	closeOnce    sync.Once
	prevSink     report.Sink
	prevFuncSink report.Sink
	prevProfiler *profiler.Profiler
}

// Init installs package defaults for the enabled features. Each feature
// touches only its own subsystem. Close restores the previous defaults.
func Init(opts Options) (*Handle, error) {
	mode, err := profiler.ParseMode(opts.ProfilerMode)
	if err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}

	f := opts.Features
	sink := opts.Sink
	if sink == nil {
		sink = report.Stderr()
	}

	h := &Handle{features: f}
	if f.CPU && opts.HostLabel {
		h.host = cpu.Label()
		sink = report.WithContext(sink, h.host)
	}

	h.prevSink = timer.DefaultSink()
	h.prevFuncSink = timer.SetFuncSink(nil)
	h.prevProfiler = profiler.Default()

	if f.Timer {
		timer.SetDefaultSink(sink)
	} else {
		timer.SetDefaultSink(nil)
	}
	if f.Time {
		timer.SetFuncSink(sink)
	}

	if f.Timed || f.Profiler {
		popts := []profiler.Option{profiler.WithSink(sink), profiler.WithMode(mode)}
		if !f.Timed {
			popts = append(popts, profiler.WithMode(profiler.ReportNone))
		}
		if f.Profiler {
			h.agg = profiler.NewAggregate()
			popts = append(popts, profiler.WithAggregate(h.agg))
		}
		h.prof = profiler.New(popts...)
		profiler.SetDefault(h.prof)
	} else {
		profiler.SetDefault(nil)
	}

	debug.Logf("timekeeper: features=%s profiler_mode=%s host=%q", f, mode, h.host)
	return h, nil
}

// Features returns the features Init was called with.
func (h *Handle) Features() Features { return h.features }

// Profiler returns the installed default profiler, or nil when neither
// timed nor profiler is enabled.
func (h *Handle) Profiler() *profiler.Profiler { return h.prof }

// Aggregate returns the aggregate statistics, or nil unless the profiler
// feature is on.
func (h *Handle) Aggregate() *profiler.Aggregate { return h.agg }

// HostLabel returns the host descriptor attached to report lines, if any.
func (h *Handle) HostLabel() string { return h.host }

// CPU returns the host processor description.
func (h *Handle) CPU() (cpu.Info, error) {
	if !h.features.CPU {
		return cpu.Info{}, fmt.Errorf("cpu: %w", ErrFeatureDisabled)
	}
	return cpu.Detect()
}

// StorageDir returns the storage base directory.
func (h *Handle) StorageDir() (string, error) {
	if !h.features.Storage {
		return "", fmt.Errorf("storage: %w", ErrFeatureDisabled)
	}
	return storage.Dir(), nil
}

// StorageLayout returns every role directory for network.
func (h *Handle) StorageLayout(network uint16, worker uint32, mode storage.Mode) ([]storage.Entry, error) {
	if !h.features.Storage {
		return nil, fmt.Errorf("storage: %w", ErrFeatureDisabled)
	}
	return storage.Layout(network, worker, mode), nil
}

// Close restores the defaults that were in place before Init.
func (h *Handle) Close() {
	h.closeOnce.Do(func() {
		timer.SetDefaultSink(h.prevSink)
		timer.SetFuncSink(h.prevFuncSink)
		profiler.SetDefault(h.prevProfiler)
	})
}
