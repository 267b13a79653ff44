package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alexander-akhmetov/timekeeper"
	"github.com/alexander-akhmetov/timekeeper/profiler"
	"github.com/alexander-akhmetov/timekeeper/report"
)

// Validate checks that every enumerated value is recognized.
func (c *Config) Validate() error {
	if _, err := timekeeper.FeaturesFromList(c.Features); err != nil {
		return fmt.Errorf("features: %w", err)
	}
	switch strings.ToLower(c.Output.Sink) {
	case "", SinkStderr, SinkStdout, SinkDiscard, SinkLog:
	default:
		return fmt.Errorf("output.sink: unknown sink %q", c.Output.Sink)
	}
	switch strings.ToLower(c.Output.Color) {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("output.color: unknown color policy %q", c.Output.Color)
	}
	if _, _, err := report.ParseLevel(c.Output.LogLevel); err != nil {
		return fmt.Errorf("output.log_level: %w", err)
	}
	if _, err := profiler.ParseMode(c.Profiler.Mode); err != nil {
		return fmt.Errorf("profiler.mode: %w", err)
	}
	return nil
}

// ToOptions converts the config to timekeeper.Init options. Report lines
// go to stdout or stderr depending on output.sink; the log sink writes
// text records to stderr.
func (c *Config) ToOptions(stdout, stderr io.Writer) (timekeeper.Options, error) {
	if err := c.Validate(); err != nil {
		return timekeeper.Options{}, err
	}

	features, _ := timekeeper.FeaturesFromList(c.Features)
	opts := timekeeper.Options{
		Features:     features,
		ProfilerMode: c.Profiler.Mode,
		HostLabel:    c.HostLabel,
	}

	switch strings.ToLower(c.Output.Sink) {
	case SinkStdout:
		opts.Sink = c.writerSink(stdout)
	case SinkDiscard:
		opts.Sink = report.Discard
	case SinkLog:
		logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: report.LevelTrace}))
		sink, err := report.LogSinkForLevel(logger, c.Output.LogLevel)
		if err != nil {
			return timekeeper.Options{}, err
		}
		opts.Sink = sink
	default:
		opts.Sink = c.writerSink(stderr)
	}
	return opts, nil
}

func (c *Config) writerSink(w io.Writer) *report.WriterSink {
	var color bool
	switch strings.ToLower(c.Output.Color) {
	case ColorAlways:
		color = true
	case ColorNever:
		color = false
	default:
		color = report.IsTerminal(w)
	}
	return report.NewWriterSink(w, report.WithColor(color))
}
