// Package cli implements the command-line interface for timekeeper.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/timekeeper"
	"github.com/alexander-akhmetov/timekeeper/internal/config"
	"github.com/alexander-akhmetov/timekeeper/internal/debug"
	"github.com/alexander-akhmetov/timekeeper/internal/timing"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

func versionString() string {
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	features     string
	output       string
	profilerMode string
	debug        bool
}

// NewRootCmd builds the timekeeper command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "timekeeper",
		Short: "Scoped timers and a call profiler",
		Long: `Timekeeper exercises the timing library: scoped timers with laps,
a nested call profiler, host CPU lookup and storage path layout.

Every feature is off unless enabled through --features, the
TIMEKEEPER_FEATURES environment variable or the config file.`,
		Version:      versionString(),
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if g.debug {
				debug.SetEnabled(true)
			}
			timing.Log("flags parsed")
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.features, "features", "", "comma separated features to enable (time,timer,timed,profiler,storage,cpu or all)")
	pf.StringVar(&g.output, "output", "", "report sink: stderr, stdout, discard or log")
	pf.StringVar(&g.profilerMode, "profiler-mode", "", "profiler events to report: both, entry, exit or none")
	pf.BoolVar(&g.debug, "debug", false, "print diagnostic messages to stderr")

	cmd.AddCommand(newDemoCmd(g))
	cmd.AddCommand(newCPUCmd(g))
	cmd.AddCommand(newDirsCmd(g))
	cmd.AddCommand(newConfigCmd(g))
	cmd.AddCommand(newMetricsCmd(g))
	return cmd
}

// Execute runs the root command.
func Execute() error {
	defer timing.Done()
	return NewRootCmd().ExecuteContext(context.Background())
}

func (g *globalFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyCLIFlags(g.features, g.output, g.profilerMode)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timing.Log("config loaded")
	return cfg, nil
}

// start loads configuration and installs the timekeeper defaults for one
// command run. Callers must Close the returned handle.
func (g *globalFlags) start(cmd *cobra.Command) (*timekeeper.Handle, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.ToOptions(cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	h, err := timekeeper.Init(opts)
	if err != nil {
		return nil, err
	}
	timing.Log("features installed")
	return h, nil
}

func featureRequired(name string) error {
	return fmt.Errorf("%s: %w (enable it with --features %s)", name, timekeeper.ErrFeatureDisabled, name)
}
