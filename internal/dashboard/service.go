// Package dashboard drives the refresh cycle: it polls the backend, runs
// benchmark alignment and derivation, and swaps rendered charts into the
// registry.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"portfolio-dashboard/internal/api"
	"portfolio-dashboard/internal/chart"
	"portfolio-dashboard/internal/series"
)

// Periods is the fixed selector set accepted by the backend.
var Periods = []string{"1D", "1W", "1M", "3M", "1Y", "all"}

// ValidPeriod reports whether p is a known period selector.
func ValidPeriod(p string) bool {
	for _, known := range Periods {
		if p == known {
			return true
		}
	}
	return false
}

// Chart target names within the registry.
const (
	ChartEquity     = "equity"
	ChartPnL        = "pnl"
	ChartPnLPct     = "pnl-pct"
	ChartDayPnL     = "day-pnl"
	ChartAllocation = "allocation"
)

// Data section names used in snapshot error maps and metrics labels.
const (
	SectionSummary = "summary"
	SectionHistory = "history"
	SectionRisk    = "risk"
)

// ErrRefreshInFlight is returned when a refresh is skipped because the
// previous one has not settled yet. Overlapping cycles are serialized by
// skipping, never by racing renders.
var ErrRefreshInFlight = errors.New("dashboard: refresh already in flight")

// View is the user-selected state carried across refresh cycles.
type View struct {
	Period    string
	Benchmark string
}

// Snapshot is the settled result of one refresh cycle. Sections that failed
// carry an entry in Errors and nil data; the others are rendered regardless.
type Snapshot struct {
	View      View
	FetchedAt time.Time
	Summaries []api.AccountSummary
	Histories []api.AccountHistory
	Benchmark *api.BenchmarkSeries
	Risk      *api.RiskMetrics
	Errors    map[string]string
}

// SectionError returns the fetch failure message for a section, if any.
func (s *Snapshot) SectionError(section string) string {
	if s == nil {
		return ""
	}
	return s.Errors[section]
}

// Client is the read surface of the backend the service needs.
type Client interface {
	AccountSummaries(ctx context.Context) ([]api.AccountSummary, error)
	PortfolioHistory(ctx context.Context, period, benchmark string) (*api.HistoryResponse, error)
	RiskMetrics(ctx context.Context) (*api.RiskMetrics, error)
}

// Service owns the refresh cycle and the latest settled snapshot.
type Service struct {
	client  Client
	charts  *chart.Registry
	metrics *Metrics
	logger  zerolog.Logger
	render  chart.RenderOptions

	busy atomic.Bool

	mu   sync.RWMutex
	view View
	last *Snapshot
}

// New constructs the dashboard service with an initial view.
func New(client Client, charts *chart.Registry, metrics *Metrics, view View, render chart.RenderOptions, logger zerolog.Logger) *Service {
	if view.Period == "" {
		view.Period = "1M"
	}
	return &Service{
		client:  client,
		charts:  charts,
		metrics: metrics,
		logger:  logger.With().Str("component", "dashboard").Logger(),
		render:  render,
		view:    view,
	}
}

// View returns the currently selected period and benchmark.
func (s *Service) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// Latest returns the most recent settled snapshot, or nil before the first
// cycle completes.
func (s *Service) Latest() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Charts exposes the render registry.
func (s *Service) Charts() *chart.Registry {
	return s.charts
}

// Refresh runs one full cycle for the current view.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	return s.RefreshView(ctx, s.View())
}

// RefreshView selects a new view and runs one full cycle for it: all three
// fetches settle before anything renders, and a cycle that finds another one
// in flight is skipped rather than raced.
func (s *Service) RefreshView(ctx context.Context, view View) (*Snapshot, error) {
	if !ValidPeriod(view.Period) {
		return nil, errors.New("dashboard: unknown period " + view.Period)
	}
	if !s.busy.CompareAndSwap(false, true) {
		s.metrics.recordSkip()
		return nil, ErrRefreshInFlight
	}
	defer s.busy.Store(false)

	snap := s.fetch(ctx, view)
	s.renderAll(snap)

	s.mu.Lock()
	s.view = view
	s.last = snap
	s.mu.Unlock()

	s.metrics.recordRefresh()
	s.logger.Info().
		Str("period", view.Period).
		Str("benchmark", view.Benchmark).
		Int("accounts", len(snap.Histories)).
		Int("section_errors", len(snap.Errors)).
		Msg("refresh cycle settled")
	return snap, nil
}

// fetch issues the three backend reads concurrently and waits for all of
// them to settle. A failed section records its error and leaves the rest
// untouched.
func (s *Service) fetch(ctx context.Context, view View) *Snapshot {
	snap := &Snapshot{
		View:   view,
		Errors: make(map[string]string),
	}

	var (
		wg         sync.WaitGroup
		summaries  []api.AccountSummary
		history    *api.HistoryResponse
		risk       *api.RiskMetrics
		summaryErr error
		historyErr error
		riskErr    error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		summaries, summaryErr = s.client.AccountSummaries(ctx)
	}()
	go func() {
		defer wg.Done()
		history, historyErr = s.client.PortfolioHistory(ctx, view.Period, view.Benchmark)
	}()
	go func() {
		defer wg.Done()
		risk, riskErr = s.client.RiskMetrics(ctx)
	}()
	wg.Wait()

	snap.FetchedAt = time.Now().UTC()

	if summaryErr != nil {
		s.sectionFailed(snap, SectionSummary, summaryErr)
	} else {
		snap.Summaries = summaries
	}
	if historyErr != nil {
		s.sectionFailed(snap, SectionHistory, historyErr)
	} else if history != nil {
		snap.Histories = history.Accounts
		snap.Benchmark = history.Benchmark
	}
	if riskErr != nil {
		s.sectionFailed(snap, SectionRisk, riskErr)
	} else {
		snap.Risk = risk
	}

	return snap
}

func (s *Service) sectionFailed(snap *Snapshot, section string, err error) {
	snap.Errors[section] = err.Error()
	s.metrics.recordSectionError(section)
	s.logger.Error().Err(err).Str("section", section).Msg("fetch failed")
}

// renderAll assembles datasets and swaps charts into the registry. Empty or
// errored sections produce reduced charts or drop their target, never a
// cycle failure.
func (s *Service) renderAll(snap *Snapshot) {
	started := time.Now()
	defer func() {
		s.metrics.recordRenderSeconds(time.Since(started).Seconds())
	}()

	equityBench, pctBench := s.deriveBenchmarks(snap)

	s.putLine(ChartEquity, "Equity by Account", "Equity ($)", chart.LineDatasets(snap.Histories, chart.MetricEquity, equityBench))
	s.putLine(ChartPnL, "Profit / Loss", "P/L ($)", chart.LineDatasets(snap.Histories, chart.MetricPnL, nil))
	s.putLine(ChartPnLPct, "Return", "Return (%)", chart.LineDatasets(snap.Histories, chart.MetricPnLPct, pctBench))

	if len(snap.Summaries) > 0 {
		png, err := chart.RenderBars("Day P/L by Account", chart.DayPnLBars(snap.Summaries), s.render)
		if err != nil {
			s.dropChart(ChartDayPnL, err)
		} else {
			s.charts.Put(ChartDayPnL, png)
		}
	} else {
		s.charts.Drop(ChartDayPnL)
	}

	if snap.Risk != nil && len(snap.Risk.Allocation) > 0 {
		png, err := chart.RenderAllocation("Asset Allocation", chart.AllocationSlices(snap.Risk.Allocation), s.render)
		if err != nil {
			s.dropChart(ChartAllocation, err)
		} else {
			s.charts.Put(ChartAllocation, png)
		}
	} else {
		s.charts.Drop(ChartAllocation)
	}
}

// deriveBenchmarks aligns the benchmark onto the chart timeline and builds
// both derivation modes. The timeline is the first renderable account's own
// sample timestamps.
func (s *Service) deriveBenchmarks(snap *Snapshot) (equity, pct *chart.BenchmarkOverlay) {
	bench := snap.Benchmark
	if bench == nil || len(bench.Timestamps) == 0 || len(bench.Close) == 0 {
		return nil, nil
	}

	timeline := chartTimeline(snap.Histories)
	if len(timeline) == 0 {
		return nil, nil
	}

	aligned := series.Align(timeline, bench.Times(), bench.Close)
	if len(aligned) == 0 || series.AllNil(aligned) {
		return nil, nil
	}

	starting := series.StartingEquity(equitySets(snap.Histories)...)

	equity = &chart.BenchmarkOverlay{
		Label:  bench.Symbol,
		Times:  timeline,
		Values: series.NormalizedEquity(aligned, starting),
	}
	pct = &chart.BenchmarkOverlay{
		Label:  bench.Symbol,
		Times:  timeline,
		Values: series.PercentReturn(aligned),
	}
	return equity, pct
}

func (s *Service) putLine(name, title, yAxis string, datasets []chart.LineDataset) {
	if len(datasets) == 0 {
		s.charts.Drop(name)
		return
	}
	png, err := chart.RenderLine(title, yAxis, datasets, s.render)
	if err != nil {
		s.dropChart(name, err)
		return
	}
	s.charts.Put(name, png)
}

func (s *Service) dropChart(name string, err error) {
	if !errors.Is(err, chart.ErrNoData) {
		s.logger.Error().Err(err).Str("chart", name).Msg("render failed")
	}
	s.charts.Drop(name)
}

func chartTimeline(histories []api.AccountHistory) []time.Time {
	for _, h := range histories {
		if !h.HasError() && len(h.Timestamps) > 0 {
			return h.Times()
		}
	}
	return nil
}

func equitySets(histories []api.AccountHistory) [][]float64 {
	sets := make([][]float64, 0, len(histories))
	for _, h := range histories {
		if !h.HasError() {
			sets = append(sets, h.Equity)
		}
	}
	return sets
}
