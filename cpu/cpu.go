// Package cpu describes the host processor for inclusion in report lines.
package cpu

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	psutilcpu "github.com/shirou/gopsutil/v3/cpu"

	"github.com/alexander-akhmetov/timekeeper/internal/debug"
)

// Vendor is the processor manufacturer.
type Vendor int

const (
	Unknown Vendor = iota
	AMD
	Intel
)

func (v Vendor) String() string {
	switch v {
	case AMD:
		return "AMD"
	case Intel:
		return "Intel"
	default:
		return "Unknown"
	}
}

// ParseVendor maps a CPUID vendor string such as "GenuineIntel" to a Vendor.
func ParseVendor(id string) Vendor {
	switch strings.TrimSpace(id) {
	case "AuthenticAMD":
		return AMD
	case "GenuineIntel":
		return Intel
	default:
		return Unknown
	}
}

// ErrNoInfo is returned when the platform reports no processors.
var ErrNoInfo = errors.New("no cpu information available")

// Info describes the host processor.
type Info struct {
	Vendor   Vendor
	VendorID string
	Model    string
	Cores    int
}

var detect = sync.OnceValues(func() (Info, error) {
	return detectFrom(psutilcpu.Info)
})

// Detect returns the host processor description. The lookup runs once per
// process; later calls return the cached result.
func Detect() (Info, error) {
	return detect()
}

func detectFrom(read func() ([]psutilcpu.InfoStat, error)) (Info, error) {
	stats, err := read()
	if err != nil {
		return Info{}, fmt.Errorf("read cpu info: %w", err)
	}
	if len(stats) == 0 {
		return Info{}, ErrNoInfo
	}

	first := stats[0]
	info := Info{
		Vendor:   ParseVendor(first.VendorID),
		VendorID: first.VendorID,
		Model:    strings.TrimSpace(first.ModelName),
	}
	for _, s := range stats {
		info.Cores += int(s.Cores)
	}
	return info, nil
}

// Get returns the host vendor, or Unknown when detection fails.
func Get() Vendor {
	info, err := Detect()
	if err != nil {
		debug.Logf("cpu vendor detection failed: %v", err)
		return Unknown
	}
	return info.Vendor
}

// Label returns a short host descriptor: the model name when known,
// otherwise the architecture.
func Label() string {
	info, err := Detect()
	if err != nil {
		debug.Logf("cpu model detection failed: %v", err)
	}
	return labelFor(info)
}

func labelFor(info Info) string {
	if info.Model != "" {
		return info.Model
	}
	if info.Vendor != Unknown {
		return info.Vendor.String() + " " + runtime.GOARCH
	}
	return runtime.GOARCH
}
