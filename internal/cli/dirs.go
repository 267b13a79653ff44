package cli

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/timekeeper/storage"
)

func newDirsCmd(g *globalFlags) *cobra.Command {
	var (
		network uint16
		dev     uint16
		worker  uint32
	)

	cmd := &cobra.Command{
		Use:   "dirs",
		Short: "Show storage directories for a network",
		Long: `Show the base storage directory and the ledger, BFT and prover
directories for a network. --dev selects the development layout for the
given node id. Requires the storage feature.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := g.start(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			if !h.Features().Storage {
				return featureRequired("storage")
			}

			mode := storage.Production()
			if cmd.Flags().Changed("dev") {
				mode = storage.Development(dev)
			}

			base, err := h.StorageDir()
			if err != nil {
				return err
			}
			entries, err := h.StorageLayout(network, worker, mode)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			st := newStyles(out)
			fmt.Fprintln(out, st.heading.Render("Storage"))
			fmt.Fprintln(out, "  "+st.field("base", base, 4))
			fmt.Fprintln(out, "  "+st.field("mode", mode.String(), 4))
			return writeLayout(cmd, entries)
		},
	}

	cmd.Flags().Uint16Var(&network, "network", 0, "network id")
	cmd.Flags().Uint16Var(&dev, "dev", 0, "development node id (selects the development layout)")
	cmd.Flags().Uint32Var(&worker, "worker", 0, "BFT worker id")
	return cmd
}

func writeLayout(cmd *cobra.Command, entries []storage.Entry) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("Role", "Path")
	for _, e := range entries {
		table.Append([]string{e.Role, e.Path})
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render layout: %w", err)
	}
	return nil
}
