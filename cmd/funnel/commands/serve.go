package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/dealfunnel/internal/api"
	"github.com/wonny/dealfunnel/internal/api/handlers"
	"github.com/wonny/dealfunnel/internal/api/live"
	"github.com/wonny/dealfunnel/internal/scheduler"
	"github.com/wonny/dealfunnel/internal/scheduler/jobs"
	"github.com/wonny/dealfunnel/internal/view"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard server",
	Long: `Starts the HTML dashboard and its JSON API.

Endpoints:
  GET  /                              - Redirect to today's dashboard
  GET  /dashboard?date=               - Funnel page with calendar
  GET  /dashboard/deals/{stage}?date= - Deals page
  GET  /api/funnel?date=              - Funnel view JSON
  POST /api/funnel/refresh?date=      - Drop cached stats and reload
  GET  /api/funnel/deals/{stage}?date=- Deals JSON
  GET  /api/funnel/dates              - Dates with data
  GET  /api/jobs                      - Background job runs
  GET  /ws/live?date=                 - Live funnel updates
  GET  /health                        - Health check
  GET  /metrics                       - Prometheus metrics

Example:
  go run ./cmd/funnel serve
  go run ./cmd/funnel serve --port 8090 --no-live`,
	RunE: runServe,
}

var (
	servePort   string
	serveNoLive bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "server port (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveNoLive, "no-live", false, "disable the websocket hub and refresh job")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Deal Funnel Dashboard ===")

	// 1. Wire config, logger, backend and repositories
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	// Override port if flag is set
	if servePort != "" {
		a.cfg.Port = servePort
	}

	log := a.log
	liveEnabled := !serveNoLive && a.cfg.Funnel.RefreshSchedule != ""

	log.WithFields(map[string]interface{}{
		"port":    a.cfg.Port,
		"env":     a.cfg.Env,
		"backend": a.cfg.Backend.BaseURL,
		"live":    liveEnabled,
	}).Info("Initializing dashboard server")

	// 2. Create renderer and live hub
	renderer, err := view.NewHTML(time.Local, time.Now, liveEnabled)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	var hub *live.Hub
	var broadcaster handlers.Broadcaster
	routes := api.Routes{Metrics: a.metrics}
	if liveEnabled {
		hub = live.NewHub(log, time.Now)
		broadcaster = hub
		routes.Live = hub
	}

	// 3. Schedule the live refresh job
	var sched *scheduler.Scheduler
	if liveEnabled {
		sched = scheduler.New(log,
			scheduler.WithJobTimeout(a.cfg.Backend.Timeout*2),
			scheduler.WithRetries(a.cfg.Funnel.RefreshRetries, 5*time.Second),
		)
		job := jobs.NewLiveRefreshJob(a.funnel, hub, a.cfg.Funnel.RefreshSchedule, time.Now, log)
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("schedule live refresh: %w", err)
		}
		routes.Jobs = handlers.NewJobsHandler(sched)
	}

	// 4. Create handlers
	catalog := a.funnel.Catalog()
	routes.Funnel = handlers.NewFunnelHandler(a.funnel, a.deals, broadcaster, catalog, time.Now, log)
	routes.Dashboard = handlers.NewDashboardHandler(a.funnel, a.deals, broadcaster, catalog, renderer, time.Now, log)

	// 5. Create router and server, then start the scheduler with a warm-up run
	router := api.NewRouter(routes, log)
	server := api.New(a.cfg, log, router)

	if sched != nil {
		sched.Start()
		if err := sched.RunJob(jobs.LiveRefreshJobName); err != nil {
			log.WithError(err).Warn("Initial live refresh failed to start")
		}
	}

	// 6. Start server with graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	log.Info("Dashboard server started successfully")
	fmt.Printf("\n✅ Dashboard running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal or a listen failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}
	if hub != nil {
		hub.Close()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
