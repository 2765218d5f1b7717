package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-netgraph/pkg/events"
	"github.com/dd0wney/cluso-netgraph/pkg/health"
	"github.com/dd0wney/cluso-netgraph/pkg/logging"
)

func newViewCmd(a *app) *cobra.Command {
	var (
		selected    []string
		metricsAddr string
		eventsAddr  string
	)

	cmd := &cobra.Command{
		Use:   "view DATASET",
		Short: "Explore the graph interactively in the terminal",
		Long: `Opens a full-screen view of the graph. Click a node to toggle its
selection, drag nodes or the background, and scroll to zoom.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("metrics-addr") {
				a.cfg.Metrics.Addr = metricsAddr
			}
			if cmd.Flags().Changed("events-addr") {
				a.cfg.Events.Addr = eventsAddr
			}

			ds, g, err := a.loadGraph(args[0])
			if err != nil {
				return err
			}
			ids, err := resolveSelection(ds, g, selected)
			if err != nil {
				return err
			}
			c, err := a.newController(cmd.Context(), g, ids)
			if err != nil {
				return err
			}

			if addr := a.cfg.Metrics.Addr; addr != "" {
				tracker := &health.LayoutTracker{}
				tracker.Record(c.LastStats(), time.Now())
				c.Subscribe(tracker.Observe)
				stop := a.serveMetrics(addr, tracker)
				defer stop()
			}
			if addr := a.cfg.Events.Addr; addr != "" {
				pub, err := events.NewPublisher(addr, a.logger)
				if err != nil {
					return err
				}
				defer pub.Close()
				pub.Attach(c)
			}

			m := newViewModel(c, a.cfg.RenderOptions(), a.metrics, a.logger)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("run view: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&selected, "select", nil, "entity ids or aliases to select")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9108")
	cmd.Flags().StringVar(&eventsAddr, "events-addr", "", "publish selection events on this mangos URL, e.g. tcp://127.0.0.1:40899")
	return cmd
}

// serveMetrics exposes the registry and the health report until the
// returned stop function runs.
func (a *app) serveMetrics(addr string, tracker *health.LayoutTracker) func() {
	checker := health.NewChecker()
	checker.Register("layout", tracker.Check)
	checker.Register("memory", health.MemoryCheck(func() (uint64, uint64) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return ms.Alloc, ms.Sys
	}))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	mux.Handle("/healthz", checker.HTTPHandler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", logging.Error(err))
		}
	}()
	a.logger.Info("metrics server started", logging.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
