// Package debug writes diagnostics about timekeeper's own behavior
// (configuration sources, host detection fallbacks). It is silent unless
// TIMEKEEPER_DEBUG=1 or SetEnabled(true).
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.Mutex
	enabled = os.Getenv("TIMEKEEPER_DEBUG") == "1"
	out     io.Writer = os.Stderr
)

// Logf writes a timestamped debug message if debugging is enabled.
func Logf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(out, "[DEBUG %s] %s\n", timestamp, fmt.Sprintf(format, args...))
}

// Enabled returns true if debug logging is enabled
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// SetEnabled turns debug logging on or off and returns the previous state.
func SetEnabled(on bool) bool {
	mu.Lock()
	defer mu.Unlock()
	prev := enabled
	enabled = on
	return prev
}

// SetOutput redirects debug output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}
