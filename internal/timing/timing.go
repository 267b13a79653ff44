// Package timing reports CLI startup checkpoints when
// TIMEKEEPER_DEBUG_TIMING=1.
package timing

import (
	"os"
	"sync"

	"github.com/alexander-akhmetov/timekeeper/report"
	"github.com/alexander-akhmetov/timekeeper/timer"
)

var (
	mu      sync.Mutex
	startup *timer.Timer // nil while disabled
)

func init() {
	if os.Getenv("TIMEKEEPER_DEBUG_TIMING") == "1" {
		Enable(report.NewWriterSink(os.Stderr))
	}
}

// Enable restarts the startup timer, reporting checkpoints to sink.
func Enable(sink report.Sink, opts ...timer.Option) {
	opts = append([]timer.Option{timer.WithSink(sink)}, opts...)
	mu.Lock()
	startup = timer.New("startup", opts...)
	mu.Unlock()
}

// Disable stops reporting checkpoints.
func Disable() {
	mu.Lock()
	startup = nil
	mu.Unlock()
}

// Log reports the time since the previous checkpoint.
func Log(label string) {
	mu.Lock()
	defer mu.Unlock()
	if startup != nil {
		startup.Lapf("%s", label)
	}
}

// Done reports the time since Enable.
func Done() {
	mu.Lock()
	defer mu.Unlock()
	if startup != nil {
		startup.Finishf("total")
	}
}
