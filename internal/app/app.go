package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"portfolio-dashboard/internal/api"
	"portfolio-dashboard/internal/chart"
	"portfolio-dashboard/internal/config"
	"portfolio-dashboard/internal/dashboard"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newClient() *api.Client {
	return api.New(api.Options{
		BaseURL:   a.Config.API.BaseURL,
		Timeout:   a.Config.API.RequestTimeout,
		UserAgent: a.Config.API.UserAgent,
	}, a.Logger)
}

func (a *App) renderOptions() chart.RenderOptions {
	return chart.RenderOptions{
		Width:  a.Config.Charts.Width,
		Height: a.Config.Charts.Height,
	}
}

func (a *App) newService(registry *prometheus.Registry, view dashboard.View) *dashboard.Service {
	var metrics *dashboard.Metrics
	if registry != nil {
		metrics = dashboard.NewMetrics(registry)
	}
	return dashboard.New(a.newClient(), chart.NewRegistry(), metrics, view, a.renderOptions(), a.Logger)
}

func (a *App) initialView() dashboard.View {
	return dashboard.View{
		Period:    a.Config.Dashboard.Period,
		Benchmark: a.Config.Dashboard.Benchmark,
	}
}

// SnapshotOptions configure the one-shot snapshot command.
type SnapshotOptions struct {
	Dir       string
	Period    string
	Benchmark string
}
