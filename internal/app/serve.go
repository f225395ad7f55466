package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"portfolio-dashboard/internal/dashboard"
	"portfolio-dashboard/internal/scheduler"
	"portfolio-dashboard/internal/web"
)

// Serve runs the long-lived dashboard: a periodic refresh loop plus the page
// server, until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	view := a.initialView()
	if !dashboard.ValidPeriod(view.Period) {
		return fmt.Errorf("dashboard.period %q is not one of %v", view.Period, dashboard.Periods)
	}

	registry := prometheus.NewRegistry()
	svc := a.newService(registry, view)

	loop := scheduler.New(scheduler.Options{
		Interval:     a.Config.Refresh.Interval,
		Immediate:    a.Config.Refresh.Immediate,
		StartupDelay: a.Config.Refresh.StartupDelay,
	}, a.Logger)

	server := web.New(web.Options{
		Host:            a.Config.Server.Host,
		Port:            a.Config.Server.Port,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		WriteTimeout:    a.Config.Server.WriteTimeout,
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
	}, svc, registry, a.Logger)

	loopErr := make(chan error, 1)
	go func() {
		loopErr <- loop.Run(ctx, func(ctx context.Context) error {
			_, err := svc.Refresh(ctx)
			if errors.Is(err, dashboard.ErrRefreshInFlight) {
				return nil
			}
			return err
		})
	}()

	a.Logger.Info().Msg("starting dashboard")
	err := server.Start(ctx)
	cancel()
	<-loopErr

	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("dashboard terminated with error")
		return err
	}
	a.Logger.Info().Msg("dashboard stopped")
	return nil
}
