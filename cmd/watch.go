package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/steamwatch/internal/metrics"
	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/server"
	"github.com/desertthunder/steamwatch/internal/session"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/urfave/cli/v3"
)

// Watch keeps the session open so scheduled refreshes run, printing notices as they arrive.
// It returns once the poller stops, e.g. after the last tracked item is gone.
//
// When a metrics address is configured (or given with --metrics-addr) the Prometheus registry is
// served at /metrics for as long as the watch runs.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	r.notifiers = append(r.notifiers, session.NotifierFunc(func(n *models.Notification) {
		r.writePlain("[%s] %s\n", n.Kind(), n.Message())
	}))

	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	if value := cmd.String("interval"); value != "" {
		interval, err := models.ParseInterval(value)
		if err != nil {
			return err
		}
		if err := ctl.SetInterval(interval); err != nil {
			return err
		}
	}

	select {
	case <-ctl.PollerStopped():
	default:
	}

	switch {
	case !ctl.Interval().Enabled():
		return fmt.Errorf("%w: refresh interval is off, run 'steamwatch settings interval 5' or pass --interval", shared.ErrInvalidConfig)
	case !ctl.Polling():
		return fmt.Errorf("%w: nothing to watch, add an item with 'steamwatch tracks add'", shared.ErrTrackNotFound)
	}

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	serverErrors := make(chan error, 1)
	addr := cmd.String("metrics-addr")
	if addr == "" {
		addr = r.config.Server.MetricsAddr
	}
	if addr != "" {
		router := server.NewBasicRouter()
		router.Use(server.RequestLogger(r.logger))
		router.Handle(http.MethodGet, "/metrics", metrics.Handler())

		go func() {
			r.logger.Info("serving metrics", "addr", addr)
			serverErrors <- server.Serve(ctx, addr, router)
		}()
	}

	r.writePlain("→ Watching %d items, refreshing every %s (ctrl+c to stop)\n", len(ctl.Tracks()), ctl.Interval())

	if cmd.Bool("now") {
		if _, err := ctl.RefreshPrices(ctx); err != nil {
			r.logger.Warn("initial refresh failed", "err", err)
		}
	}

	select {
	case <-ctx.Done():
		r.writePlain("\n✓ Stopped watching\n")
		return nil
	case <-ctl.PollerStopped():
		r.logger.Warn("poller stopped", "tracks", len(ctl.Tracks()), "interval", ctl.Interval())
		r.writePlain("✓ Nothing left to watch, stopping\n")
		return nil
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	}
}
