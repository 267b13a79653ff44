// Package config provides unified configuration management for timekeeper.
// Configuration is loaded from multiple sources with the following precedence:
// embedded defaults → global file → env vars → local file → CLI flags
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/timekeeper/internal/debug"
	"github.com/alexander-akhmetov/timekeeper/internal/dirs"
)

//go:embed defaults/config.yaml
var defaultsFS embed.FS

// Sink names accepted by output.sink.
const (
	SinkStderr  = "stderr"
	SinkStdout  = "stdout"
	SinkDiscard = "discard"
	SinkLog     = "log"
)

// Color policies accepted by output.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// OutputConfig selects where report lines go and how they look.
type OutputConfig struct {
	Sink     string `yaml:"sink"`
	Color    string `yaml:"color"`
	LogLevel string `yaml:"log_level"`
}

// ProfilerConfig holds call profiler settings.
type ProfilerConfig struct {
	Mode string `yaml:"mode"`
}

// Config holds all configuration settings for timekeeper.
// Fields ending in *Set track whether that field was explicitly set, so a
// later layer can override an earlier one with an empty list or false.
type Config struct {
	Features  []string       `yaml:"features"`
	HostLabel bool           `yaml:"host_label"`
	Output    OutputConfig   `yaml:"output"`
	Profiler  ProfilerConfig `yaml:"profiler"`

	// Set tracking for merge behavior
	FeaturesSet  bool `yaml:"-"`
	HostLabelSet bool `yaml:"-"`

	// Private: track where config was loaded from
	configDir string
	localDir  string
	sources   []string // ordered list of sources that contributed to this config
}

// Sources returns the ordered list of sources that contributed to this config.
func (c *Config) Sources() []string {
	return c.sources
}

// LocalDir returns the local project config directory if one was detected.
func (c *Config) LocalDir() string {
	return c.localDir
}

// ConfigDir returns the global config directory.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// Load loads all configuration from the default locations.
// It auto-detects .timekeeper/ in the current working directory for local overrides.
func Load() (*Config, error) {
	globalDir := DefaultConfigDir()

	var localDir string
	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, ".timekeeper")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			localDir = candidate
		}
	}

	return LoadWithDirs(globalDir, localDir)
}

// LoadWithDirs loads configuration with explicit global and local directories.
// If localDir is empty, only global config is used.
func LoadWithDirs(globalDir, localDir string) (*Config, error) {
	if err := InstallDefaults(globalDir); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	// 1. Start with embedded defaults
	cfg, err := loadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded defaults: %w", err)
	}
	cfg.sources = append(cfg.sources, "embedded")

	// 2. Merge global config
	globalPath := filepath.Join(globalDir, "config.yaml")
	if globalCfg, err := loadFile(globalPath); err == nil {
		cfg.mergeFrom(globalCfg)
		cfg.sources = append(cfg.sources, globalPath)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("load global config: %w", err)
	}

	// 3. Environment sits between global and local
	cfg.applyEnv()

	// 4. Merge local config (highest file precedence)
	if localDir != "" {
		localPath := filepath.Join(localDir, "config.yaml")
		if localCfg, err := loadFile(localPath); err == nil {
			cfg.mergeFrom(localCfg)
			cfg.sources = append(cfg.sources, localPath)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load local config: %w", err)
		}
	}

	cfg.configDir = globalDir
	cfg.localDir = localDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	debug.Logf("config: sources=%s", strings.Join(cfg.sources, ", "))
	return cfg, nil
}

// DefaultConfigDir returns the default global configuration directory path.
func DefaultConfigDir() string {
	return dirs.ConfigDir()
}

// InstallDefaults creates the config directory and installs the default
// config file if it does not exist yet.
func InstallDefaults(configDir string) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		data, err := defaultsFS.ReadFile("defaults/config.yaml")
		if err != nil {
			return fmt.Errorf("read embedded config: %w", err)
		}
		if err := os.WriteFile(configPath, data, 0o600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
	}

	return nil
}

func loadEmbedded() (*Config, error) {
	data, err := defaultsFS.ReadFile("defaults/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded defaults: %w", err)
	}
	return parseConfig(data)
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user's config file
	if err != nil {
		return nil, err
	}
	cfg, err := parseConfigWithTracking(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// parseConfigWithTracking parses YAML config and tracks which fields were set.
func parseConfigWithTracking(data []byte) (*Config, error) {
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if _, ok := raw["features"]; ok {
		cfg.FeaturesSet = true
	}
	if _, ok := raw["host_label"]; ok {
		cfg.HostLabelSet = true
	}

	return cfg, nil
}

// applyEnv applies TIMEKEEPER_* environment variables. Values that do not
// parse are ignored.
func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv("TIMEKEEPER_FEATURES"); ok {
		c.Features = splitList(v)
		c.FeaturesSet = true
		c.sources = append(c.sources, "env:TIMEKEEPER_FEATURES")
	}

	if v := os.Getenv("TIMEKEEPER_OUTPUT"); v != "" {
		c.Output.Sink = v
		c.sources = append(c.sources, "env:TIMEKEEPER_OUTPUT")
	}

	if v := os.Getenv("TIMEKEEPER_COLOR"); v != "" {
		c.Output.Color = v
		c.sources = append(c.sources, "env:TIMEKEEPER_COLOR")
	}

	if v := os.Getenv("TIMEKEEPER_LOG_LEVEL"); v != "" {
		c.Output.LogLevel = v
		c.sources = append(c.sources, "env:TIMEKEEPER_LOG_LEVEL")
	}

	if v := os.Getenv("TIMEKEEPER_PROFILER_MODE"); v != "" {
		c.Profiler.Mode = v
		c.sources = append(c.sources, "env:TIMEKEEPER_PROFILER_MODE")
	}

	if v := os.Getenv("TIMEKEEPER_HOST_LABEL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.HostLabel = b
			c.HostLabelSet = true
			c.sources = append(c.sources, "env:TIMEKEEPER_HOST_LABEL")
		} else {
			debug.Logf("config: ignoring TIMEKEEPER_HOST_LABEL=%q: %v", v, err)
		}
	}
}

// mergeFrom merges non-empty/set values from src into c.
func (c *Config) mergeFrom(src *Config) {
	if src.FeaturesSet {
		c.Features = src.Features
		c.FeaturesSet = true
	}
	if src.HostLabelSet {
		c.HostLabel = src.HostLabel
		c.HostLabelSet = true
	}
	if src.Output.Sink != "" {
		c.Output.Sink = src.Output.Sink
	}
	if src.Output.Color != "" {
		c.Output.Color = src.Output.Color
	}
	if src.Output.LogLevel != "" {
		c.Output.LogLevel = src.Output.LogLevel
	}
	if src.Profiler.Mode != "" {
		c.Profiler.Mode = src.Profiler.Mode
	}
}

// ApplyCLIFlags applies CLI flag overrides to the config.
// CLI flags have the highest precedence; empty strings leave values alone.
func (c *Config) ApplyCLIFlags(features, output, profilerMode string) {
	if features != "" {
		c.Features = splitList(features)
		c.FeaturesSet = true
		c.sources = append(c.sources, "cli:features")
	}
	if output != "" {
		c.Output.Sink = output
		c.sources = append(c.sources, "cli:output")
	}
	if profilerMode != "" {
		c.Profiler.Mode = profilerMode
		c.sources = append(c.sources, "cli:profiler-mode")
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
