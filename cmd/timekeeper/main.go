// Package main provides the CLI entry point for timekeeper.
package main

import (
	"os"
	"runtime/debug"

	"github.com/alexander-akhmetov/timekeeper/internal/cli"
)

// Version information set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if info, ok := debug.ReadBuildInfo(); ok && version == "dev" {
		version, commit, date = versionFromBuildInfo(info)
	}
	cli.SetVersionInfo(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionFromBuildInfo fills in what ldflags did not: the module version
// for `go install pkg@version` builds, and VCS stamps for local builds.
func versionFromBuildInfo(info *debug.BuildInfo) (v, c, d string) {
	v = "dev"
	if mv := info.Main.Version; mv != "" && mv != "(devel)" {
		v = mv
	}

	c, d = "unknown", "unknown"
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) >= 7 {
				c = s.Value[:7]
			}
		case "vcs.time":
			if s.Value != "" {
				d = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && c != "unknown" {
		c += "-dirty"
	}
	return v, c, d
}
