package timer

import (
	"strings"
	"time"

	"github.com/alexander-akhmetov/timekeeper/internal/funcname"
	"github.com/alexander-akhmetov/timekeeper/report"
)

// NamePlaceholder is replaced by the function name in Func patterns.
const NamePlaceholder = "{}"

// SetFuncSink enables function-level timers reporting to s and returns the
// previous sink. A nil s disables them, which is the default.
func SetFuncSink(s report.Sink) report.Sink {
	defaults.mu.Lock()
	defer defaults.mu.Unlock()
	prev := defaults.funcSink
	defaults.funcSink = s
	return prev
}

// FuncEnabled reports whether Func creates timers.
func FuncEnabled() bool {
	defaults.mu.RLock()
	defer defaults.mu.RUnlock()
	return defaults.funcSink != nil
}

func funcSink() report.Sink {
	defaults.mu.RLock()
	defer defaults.mu.RUnlock()
	return defaults.funcSink
}

// Func times the calling function. It starts a timer labeled with pattern,
// where the first "{}" becomes "<name>()", and returns the function that
// finishes it:
//
//	func (s *Store) Load() {
//		defer timer.Func("ledger::{}")()
//		...
//	}
//
// Func reports to the sink installed with SetFuncSink unless opts override
// it. When function timers are disabled Func returns a no-op.
func Func(pattern string, opts ...Option) func() time.Duration {
	sink := funcSink()
	if sink == nil {
		return func() time.Duration { return 0 }
	}
	opts = append([]Option{WithSink(sink)}, opts...)
	t := Start(FuncLabel(pattern, funcname.Caller(1)), opts...)
	return t.Finish
}

// FuncLabel substitutes name into pattern. An empty pattern yields "name()".
func FuncLabel(pattern, name string) string {
	if pattern == "" {
		pattern = NamePlaceholder
	}
	return strings.Replace(pattern, NamePlaceholder, name+"()", 1)
}
