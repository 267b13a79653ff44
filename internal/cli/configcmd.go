package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/timekeeper"
	"github.com/alexander-akhmetov/timekeeper/internal/config"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage timekeeper configuration",
		Long:  `View and manage timekeeper configuration.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show resolved configuration with source annotations",
		Long: `Show the fully resolved configuration with annotations indicating
where each value came from.

Configuration is loaded from multiple sources with the following precedence:
  1. Embedded defaults (built into binary)
  2. Global config (~/.config/timekeeper/config.yaml)
  3. Environment variables (TIMEKEEPER_*)
  4. Local config (.timekeeper/config.yaml)
  5. CLI flags (highest precedence)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			return showConfig(cmd, cfg)
		},
	})
	return cmd
}

func showConfig(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	st := newStyles(out)

	features, err := timekeeper.FeaturesFromList(cfg.Features)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, st.heading.Render("# Timekeeper Configuration"))
	fmt.Fprintln(out)
	fmt.Fprintln(out, st.heading.Render("## Sources (in order of precedence)"))
	for _, src := range cfg.Sources() {
		fmt.Fprintf(out, "  - %s\n", src)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, st.heading.Render("## Directories"))
	fmt.Fprintln(out, "  "+st.field("Global config", cfg.ConfigDir(), 13))
	local := cfg.LocalDir()
	if local == "" {
		local = "(none detected)"
	}
	fmt.Fprintln(out, "  "+st.field("Local config", local, 13))
	fmt.Fprintln(out)

	fmt.Fprintln(out, st.heading.Render("## Features"))
	fmt.Fprintln(out, "  "+st.field("enabled", features.String(), 10))
	fmt.Fprintln(out, "  "+st.field("host_label", fmt.Sprintf("%t", cfg.HostLabel), 10))
	fmt.Fprintln(out)

	fmt.Fprintln(out, st.heading.Render("## Output"))
	fmt.Fprintln(out, "  "+st.field("sink", orDefault(cfg.Output.Sink, config.SinkStderr), 9))
	fmt.Fprintln(out, "  "+st.field("color", orDefault(cfg.Output.Color, config.ColorAuto), 9))
	fmt.Fprintln(out, "  "+st.field("log_level", orDefault(cfg.Output.LogLevel, "debug"), 9))
	fmt.Fprintln(out)

	fmt.Fprintln(out, st.heading.Render("## Profiler"))
	fmt.Fprintln(out, "  "+st.field("mode", orDefault(cfg.Profiler.Mode, "both"), 4))
	return nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
