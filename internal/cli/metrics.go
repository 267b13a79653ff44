package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/alexander-akhmetov/timekeeper/internal/debug"
	"github.com/alexander-akhmetov/timekeeper/profiler"
	"github.com/alexander-akhmetov/timekeeper/profiler/promexport"
)

const metricsNamespace = "timekeeper"

func newMetricsCmd(g *globalFlags) *cobra.Command {
	var (
		addr     string
		interval time.Duration
		depth    int
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Serve profiler statistics over Prometheus",
		Long: `Run the profile demo every --interval and serve the aggregate
statistics at /metrics until interrupted. Requires the profiler feature.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := g.start(cmd)
			if err != nil {
				return err
			}
			defer h.Close()

			agg := h.Aggregate()
			if agg == nil {
				return featureRequired("profiler")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			go runWorkload(ctx, interval, depth)

			srv := &http.Server{
				Addr:              addr,
				Handler:           metricsHandler(agg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			fmt.Fprintln(cmd.ErrOrStderr(), newStyles(cmd.ErrOrStderr()).field("serving", "http://"+addr+"/metrics", 7))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve metrics: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9464", "listen address")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "time between workload runs")
	cmd.Flags().IntVar(&depth, "depth", 3, "recursion depth of each workload run")
	return cmd
}

// metricsHandler exposes agg on /metrics with its own registry.
func metricsHandler(agg *profiler.Aggregate) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(promexport.NewCollector(agg, metricsNamespace))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

func runWorkload(ctx context.Context, interval time.Duration, depth int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := runProfileDemo(ctx, depth, false, func() { time.Sleep(time.Millisecond) }); err != nil {
			debug.Logf("metrics workload: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
