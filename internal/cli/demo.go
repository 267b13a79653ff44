package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/timekeeper/clock"
	"github.com/alexander-akhmetov/timekeeper/internal/dirs"
	"github.com/alexander-akhmetov/timekeeper/profiler"
	"github.com/alexander-akhmetov/timekeeper/timer"
)

var errDemoFailure = errors.New("descend: requested failure at the deepest level")

func newDemoCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run instrumented sample workloads",
	}
	cmd.AddCommand(newDemoTimerCmd(g))
	cmd.AddCommand(newDemoProfileCmd(g))
	return cmd
}

func newDemoTimerCmd(g *globalFlags) *cobra.Command {
	var (
		laps int
		step time.Duration
	)

	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Time a workload with laps",
		Long: `Run a scoped timer over a workload that sleeps a little longer on each
lap, reporting every lap and the total. Requires the timer feature; the
time feature additionally times the whole demo function.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := g.start(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			if !h.Features().Timer && !h.Features().Time {
				st := newStyles(cmd.ErrOrStderr())
				fmt.Fprintln(cmd.ErrOrStderr(), st.hint.Render("timer feature is off; nothing will be reported (try --features timer)"))
			}
			runTimerDemo(laps, step, clock.System, time.Sleep)
			return nil
		},
	}

	cmd.Flags().IntVar(&laps, "laps", 3, "number of laps")
	cmd.Flags().DurationVar(&step, "step", 10*time.Millisecond, "lap n sleeps n*step")
	return cmd
}

// runTimerDemo runs laps steps of growing length and returns the total.
func runTimerDemo(laps int, step time.Duration, c clock.Clock, wait func(time.Duration)) time.Duration {
	defer timer.Func("demo::{}", timer.WithClock(c))()

	t := timer.Start("work", timer.WithClock(c), timer.WithInfo("%d laps", laps))
	for i := 1; i <= laps; i++ {
		wait(step * time.Duration(i))
		t.Lapf("lap %d", i)
	}
	return t.Finish()
}

func newDemoProfileCmd(g *globalFlags) *cobra.Command {
	var (
		depth int
		step  time.Duration
		fail  bool
		save  bool
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Profile a recursive workload",
		Long: `Run a recursive function under the call profiler. Each level reports
entry and exit lines indented by depth. With --fail the deepest call
returns an error that travels back out unchanged.

With the profiler feature on, an aggregate table follows the run;
--save also writes it under the reports directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := g.start(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			st := newStyles(out)
			if !h.Features().Timed && !h.Features().Profiler {
				fmt.Fprintln(cmd.ErrOrStderr(), newStyles(cmd.ErrOrStderr()).hint.Render(
					"timed and profiler features are off; nothing will be reported (try --features timed,profiler)"))
			}

			runErr := runProfileDemo(cmd.Context(), depth, fail, func() { time.Sleep(step) })
			if runErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), runErr)
			}

			agg := h.Aggregate()
			if agg == nil {
				if save {
					return featureRequired("profiler")
				}
				return nil
			}

			fmt.Fprintln(out, st.heading.Render("Profile"))
			if err := agg.WriteTable(out); err != nil {
				return err
			}
			if save {
				path, err := saveReport(dirs.ReportsDir(), agg, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, st.field("saved", path, 5))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 3, "recursion depth")
	cmd.Flags().DurationVar(&step, "step", time.Millisecond, "work done at each level")
	cmd.Flags().BoolVar(&fail, "fail", false, "fail at the deepest level")
	cmd.Flags().BoolVar(&save, "save", false, "write the aggregate table to the reports directory")
	return cmd
}

// runProfileDemo descends depth levels through the default profiler.
func runProfileDemo(ctx context.Context, depth int, fail bool, work func()) error {
	if depth < 1 {
		depth = 1
	}
	return descend(ctx, 1, depth, fail, work)
}

func descend(ctx context.Context, level, depth int, fail bool, work func()) error {
	return profiler.Call(ctx, nil, "descend", func(ctx context.Context) error {
		work()
		if level < depth {
			return descend(ctx, level+1, depth, fail, work)
		}
		profiler.FrameFromContext(ctx).Mark("bottom")
		if fail {
			return errDemoFailure
		}
		_, err := profiler.Do(ctx, nil, "checksum", func(context.Context) (int, error) {
			work()
			return level * depth, nil
		})
		return err
	})
}

func saveReport(dir string, agg *profiler.Aggregate, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(dir, "profile-"+now.Format("20060102-150405")+".txt")
	f, err := os.Create(path) //nolint:gosec // path is built from the reports dir
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	if err := agg.WriteTable(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report: %w", err)
	}
	return path, nil
}
