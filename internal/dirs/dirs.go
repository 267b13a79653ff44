// Package dirs provides XDG Base Directory Specification compliant paths
// for the timekeeper CLI's own files.
package dirs

import (
	"os"
	"path/filepath"
)

const appName = "timekeeper"

// ConfigDir returns the timekeeper configuration directory.
// Resolution order: XDG_CONFIG_HOME/timekeeper > ~/.config/timekeeper.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	return filepath.Join(homeOrDot(), ".config", appName)
}

// StateDir returns the timekeeper state directory.
// Resolution order: TIMEKEEPER_STATE_DIR > XDG_STATE_HOME/timekeeper > ~/.local/state/timekeeper.
func StateDir() string {
	if dir := os.Getenv("TIMEKEEPER_STATE_DIR"); dir != "" {
		return dir
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	return filepath.Join(homeOrDot(), ".local", "state", appName)
}

// ReportsDir returns where saved profile reports go (StateDir/reports).
func ReportsDir() string {
	return filepath.Join(StateDir(), "reports")
}

func homeOrDot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
