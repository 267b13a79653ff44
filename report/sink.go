package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/alexander-akhmetov/timekeeper/clock"
)

// Sink receives report events. Implementations must be safe for concurrent
// use, since profiled calls may run on many goroutines.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit calls f(e).
func (f SinkFunc) Emit(e Event) { f(e) }

type discard struct{}

func (discard) Emit(Event) {}

// Discard drops every event.
var Discard Sink = discard{}

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// WriterSink writes one line per event to an io.Writer.
// Write errors are ignored: reporting never fails the measured code.
type WriterSink struct {
	mu     sync.Mutex
	out    io.Writer
	styles styler
}

// WriterOption configures a WriterSink.
type WriterOption func(*WriterSink)

// WithColor enables or disables ANSI colors.
func WithColor(enabled bool) WriterOption {
	return func(w *WriterSink) {
		if enabled {
			w.styles = colored(w.out)
		} else {
			w.styles = plain
		}
	}
}

// NewWriterSink returns a sink writing plain lines to out.
func NewWriterSink(out io.Writer, opts ...WriterOption) *WriterSink {
	w := &WriterSink{out: out, styles: plain}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Stderr returns a sink on os.Stderr, colored when stderr is a terminal.
func Stderr() *WriterSink {
	return NewWriterSink(os.Stderr, WithColor(IsTerminal(os.Stderr)))
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Emit writes the rendered event followed by a newline.
func (w *WriterSink) Emit(e Event) {
	line := e.render(w.styles)
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, line)
}

// Status colors cycle with depth so sibling levels stay distinguishable.
var depthColors = []lipgloss.Color{
	lipgloss.Color("42"),  // green
	lipgloss.Color("117"), // cyan
	lipgloss.Color("220"), // yellow
	lipgloss.Color("205"), // magenta
	lipgloss.Color("196"), // red
}

func colored(out io.Writer) styler {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(termenv.ANSI256)

	status := make([]lipgloss.Style, len(depthColors))
	for i, c := range depthColors {
		status[i] = r.NewStyle().Foreground(c).Bold(true)
	}
	labelStyle := r.NewStyle().Bold(true)
	msStyle := r.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	secStyle := r.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	failStyle := r.NewStyle().Foreground(lipgloss.Color("196"))

	return styler{
		label: func(_ int, s string) string { return labelStyle.Render(s) },
		status: func(depth int, s string) string {
			return status[depth%len(status)].Render(s)
		},
		duration: func(d time.Duration) string {
			if d >= time.Second {
				return secStyle.Render(clock.Format(d))
			}
			return msStyle.Render(clock.Format(d))
		},
		failure: func(s string) string { return failStyle.Render(s) },
	}
}

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel parses error, warn, info, debug, trace or never.
// The second result is false for "never", meaning reporting is disabled.
func ParseLevel(s string) (slog.Level, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return slog.LevelError, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "", "debug":
		return slog.LevelDebug, true, nil
	case "trace":
		return LevelTrace, true, nil
	case "never":
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("unknown log level %q", s)
	}
}

// LogSink forwards each line to a structured logger.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink returns a sink logging at level. A nil logger uses slog.Default().
func NewLogSink(logger *slog.Logger, level slog.Level) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger, level: level}
}

// LogSinkForLevel parses level and returns a LogSink, or Discard for "never".
func LogSinkForLevel(logger *slog.Logger, level string) (Sink, error) {
	lvl, enabled, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return Discard, nil
	}
	return NewLogSink(logger, lvl), nil
}

// Emit logs the rendered line with the event kind and elapsed time as attributes.
func (s *LogSink) Emit(e Event) {
	s.logger.LogAttrs(context.Background(), s.level, strings.TrimLeft(e.Line(), " "),
		slog.String("event", e.Kind.String()),
		slog.Int("depth", e.Depth),
		slog.Duration("elapsed", e.Elapsed),
	)
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends e.
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Lines returns the recorded events rendered without color.
func (r *Recorder) Lines() []string {
	events := r.Events()
	lines := make([]string, len(events))
	for i, e := range events {
		lines[i] = e.Line()
	}
	return lines
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

type multi []Sink

func (m multi) Emit(e Event) {
	for _, s := range m {
		s.Emit(e)
	}
}

// Multi returns a sink that emits to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	if len(m) == 0 {
		return Discard
	}
	return m
}

// WithContext returns a sink that stamps ctx onto events lacking a context label.
func WithContext(s Sink, ctx string) Sink {
	if ctx == "" {
		return s
	}
	return SinkFunc(func(e Event) {
		if e.Context == "" {
			e.Context = ctx
		}
		s.Emit(e)
	})
}
