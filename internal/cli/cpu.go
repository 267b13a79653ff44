package cli

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/timekeeper/cpu"
)

func newCPUCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cpu",
		Short: "Show the host processor",
		Long:  `Show the processor vendor and model. Requires the cpu feature.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := g.start(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			if !h.Features().CPU {
				return featureRequired("cpu")
			}
			info, err := h.CPU()
			if err != nil {
				return fmt.Errorf("detect cpu: %w", err)
			}
			printCPU(cmd, info)
			return nil
		},
	}
}

func printCPU(cmd *cobra.Command, info cpu.Info) {
	out := cmd.OutOrStdout()
	st := newStyles(out)

	model := info.Model
	if model == "" {
		model = "(unknown)"
	}

	fmt.Fprintln(out, st.heading.Render("CPU"))
	fmt.Fprintln(out, "  "+st.field("vendor", info.Vendor.String(), 9))
	if info.VendorID != "" {
		fmt.Fprintln(out, "  "+st.field("vendor_id", info.VendorID, 9))
	}
	fmt.Fprintln(out, "  "+st.field("model", model, 9))
	fmt.Fprintln(out, "  "+st.field("cores", strconv.Itoa(info.Cores), 9))
	fmt.Fprintln(out, "  "+st.field("arch", runtime.GOARCH, 9))
}
