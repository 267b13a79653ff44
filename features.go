package timekeeper

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFeature is returned for a feature name that does not exist.
var ErrUnknownFeature = errors.New("unknown feature")

// Feature names, in canonical order.
const (
	FeatureTime     = "time"
	FeatureTimer    = "timer"
	FeatureTimed    = "timed"
	FeatureProfiler = "profiler"
	FeatureStorage  = "storage"
	FeatureCPU      = "cpu"
)

// FeatureNames lists every recognized feature.
var FeatureNames = []string{FeatureTime, FeatureTimer, FeatureTimed, FeatureProfiler, FeatureStorage, FeatureCPU}

// Features switches subsystems on independently. The zero value has
// everything off.
type Features struct {
	Time     bool // function-level timers (timer.Func)
	Timer    bool // default sink for scoped timers
	Timed    bool // call profiler reporting
	Profiler bool // aggregate statistics for profiled calls
	Storage  bool // storage path helpers
	CPU      bool // host descriptor lookup
}

func (f *Features) field(name string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FeatureTime:
		return &f.Time, nil
	case FeatureTimer:
		return &f.Timer, nil
	case FeatureTimed:
		return &f.Timed, nil
	case FeatureProfiler:
		return &f.Profiler, nil
	case FeatureStorage:
		return &f.Storage, nil
	case FeatureCPU:
		return &f.CPU, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
}

// Set turns the named feature on or off.
func (f *Features) Set(name string, on bool) error {
	p, err := f.field(name)
	if err != nil {
		return err
	}
	*p = on
	return nil
}

// Enabled reports whether the named feature is on. Unknown names are off.
func (f Features) Enabled(name string) bool {
	p, err := f.field(name)
	return err == nil && *p
}

// List returns the enabled feature names in canonical order.
func (f Features) List() []string {
	var out []string
	for _, name := range FeatureNames {
		if f.Enabled(name) {
			out = append(out, name)
		}
	}
	return out
}

func (f Features) String() string {
	list := f.List()
	if len(list) == 0 {
		return "none"
	}
	return strings.Join(list, ",")
}

// FeaturesFromList enables each listed feature. "all" enables everything
// and "none" is ignored.
func FeaturesFromList(names []string) (Features, error) {
	var f Features
	for _, name := range names {
		name = strings.TrimSpace(name)
		switch strings.ToLower(name) {
		case "", "none":
			continue
		case "all":
			for _, n := range FeatureNames {
				_ = f.Set(n, true)
			}
			continue
		}
		if err := f.Set(name, true); err != nil {
			return Features{}, err
		}
	}
	return f, nil
}

// ParseFeatures parses a comma separated feature list such as "timer,timed".
func ParseFeatures(s string) (Features, error) {
	return FeaturesFromList(strings.Split(s, ","))
}
