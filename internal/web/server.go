// Package web serves the rendered dashboard as a browser page. It carries no
// portfolio logic of its own; everything it shows comes from the dashboard
// service's latest snapshot and the chart registry.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"portfolio-dashboard/internal/dashboard"
)

// Options configure the page server.
type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server wraps the echo HTTP server around the dashboard service.
type Server struct {
	echo   *echo.Echo
	svc    *dashboard.Service
	opts   Options
	logger zerolog.Logger
}

// New constructs the server and registers its routes. The metrics gatherer
// may be nil, in which case /metrics is not exposed.
func New(opts Options, svc *dashboard.Service, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:   e,
		svc:    svc,
		opts:   opts,
		logger: logger.With().Str("component", "web").Logger(),
	}

	e.GET("/", s.handlePage)
	e.GET("/charts/:name", s.handleChart)
	e.GET("/healthz", s.handleHealth)
	if gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start begins serving and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	s.echo.Server.ReadTimeout = s.opts.ReadTimeout
	s.echo.Server.WriteTimeout = s.opts.WriteTimeout

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("dashboard page server listening")
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// handlePage renders the dashboard. A period/benchmark query that differs
// from the current view triggers a refresh for the new selection before
// rendering; a refresh already in flight is not raced.
func (s *Server) handlePage(c echo.Context) error {
	view := s.svc.View()
	requested := view
	if p := c.QueryParam("period"); p != "" {
		if !dashboard.ValidPeriod(p) {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown period "+p)
		}
		requested.Period = p
	}
	if c.QueryParams().Has("benchmark") {
		requested.Benchmark = c.QueryParam("benchmark")
	}

	if requested != view {
		if _, err := s.svc.RefreshView(c.Request().Context(), requested); err != nil && !errors.Is(err, dashboard.ErrRefreshInFlight) {
			s.logger.Error().Err(err).Msg("view change refresh failed")
		}
	}

	html, err := renderPage(s.svc.Latest(), s.svc.View(), s.svc.Charts().Names())
	if err != nil {
		return err
	}
	return c.HTML(http.StatusOK, html)
}

func (s *Server) handleChart(c echo.Context) error {
	render, ok := s.svc.Charts().Get(c.Param("name"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no such chart")
	}
	png := render.PNG()
	if png == nil {
		return echo.NewHTTPError(http.StatusNotFound, "chart disposed")
	}
	return c.Blob(http.StatusOK, "image/png", png)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
