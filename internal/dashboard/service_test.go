package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"portfolio-dashboard/internal/api"
	"portfolio-dashboard/internal/chart"
)

type fakeClient struct {
	summaries func(ctx context.Context) ([]api.AccountSummary, error)
	history   func(ctx context.Context, period, benchmark string) (*api.HistoryResponse, error)
	risk      func(ctx context.Context) (*api.RiskMetrics, error)
}

func (f *fakeClient) AccountSummaries(ctx context.Context) ([]api.AccountSummary, error) {
	return f.summaries(ctx)
}

func (f *fakeClient) PortfolioHistory(ctx context.Context, period, benchmark string) (*api.HistoryResponse, error) {
	return f.history(ctx, period, benchmark)
}

func (f *fakeClient) RiskMetrics(ctx context.Context) (*api.RiskMetrics, error) {
	return f.risk(ctx)
}

func ptr(v float64) *float64 { return &v }

func stamps(times ...time.Time) []api.Timestamp {
	out := make([]api.Timestamp, len(times))
	for i, t := range times {
		out[i] = api.Timestamp{Time: t}
	}
	return out
}

func healthyClient() *fakeClient {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts := stamps(t0, t0.Add(24*time.Hour), t0.Add(48*time.Hour))
	return &fakeClient{
		summaries: func(ctx context.Context) ([]api.AccountSummary, error) {
			return []api.AccountSummary{
				{Name: "Alpha", Equity: ptr(50_000), Cash: ptr(1_000), DayProfitLoss: ptr(120)},
				{Name: "Beta", Equity: ptr(25_000), DayProfitLoss: ptr(-30)},
			}, nil
		},
		history: func(ctx context.Context, period, benchmark string) (*api.HistoryResponse, error) {
			return &api.HistoryResponse{
				Accounts: []api.AccountHistory{
					{Name: "Alpha", Timestamps: ts, Equity: []float64{50_000, 50_500, 51_000}, PnL: []float64{0, 500, 1000}, PnLPct: []float64{0, 1, 2}},
					{Name: "Beta", Timestamps: ts, Equity: []float64{25_000, 24_800, 25_100}, PnL: []float64{0, -200, 100}, PnLPct: []float64{0, -0.8, 0.4}},
				},
				Benchmark: &api.BenchmarkSeries{
					Symbol:     "SPY",
					Timestamps: ts,
					Close:      []float64{500, 505, 510},
				},
			}, nil
		},
		risk: func(ctx context.Context) (*api.RiskMetrics, error) {
			return &api.RiskMetrics{Allocation: map[string]float64{"Stocks": 60_000, "Bonds": 15_000}}, nil
		},
	}
}

func newTestService(client Client) *Service {
	view := View{Period: "1M", Benchmark: "SPY"}
	return New(client, chart.NewRegistry(), nil, view, chart.RenderOptions{Width: 400, Height: 300}, zerolog.Nop())
}

func TestRefreshRendersAllCharts(t *testing.T) {
	svc := newTestService(healthyClient())

	snap, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(snap.Errors) != 0 {
		t.Fatalf("healthy refresh should record no section errors, got %v", snap.Errors)
	}
	if svc.Latest() != snap {
		t.Fatal("Latest should return the settled snapshot")
	}

	for _, name := range []string{ChartEquity, ChartPnL, ChartPnLPct, ChartDayPnL, ChartAllocation} {
		render, ok := svc.Charts().Get(name)
		if !ok {
			t.Fatalf("chart %q should have been rendered", name)
		}
		if len(render.PNG()) == 0 {
			t.Fatalf("chart %q should carry PNG bytes", name)
		}
	}
}

func TestRefreshDisposesPreviousRenders(t *testing.T) {
	svc := newTestService(healthyClient())
	ctx := context.Background()

	if _, err := svc.Refresh(ctx); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	first, _ := svc.Charts().Get(ChartEquity)

	if _, err := svc.Refresh(ctx); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if !first.Disposed() {
		t.Fatal("second refresh must dispose the first equity render")
	}
	if svc.Charts().Len() != 5 {
		t.Fatalf("registry should hold one live render per target, got %d", svc.Charts().Len())
	}
}

func TestRefreshSectionErrorsAreIndependent(t *testing.T) {
	client := healthyClient()
	client.summaries = func(ctx context.Context) ([]api.AccountSummary, error) {
		return nil, errors.New("backend error (500)")
	}
	svc := newTestService(client)

	snap, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh should settle despite a failed section: %v", err)
	}
	if snap.SectionError(SectionSummary) == "" {
		t.Fatal("summary failure should be recorded")
	}
	if snap.SectionError(SectionHistory) != "" || snap.SectionError(SectionRisk) != "" {
		t.Fatalf("other sections should be unaffected, got %v", snap.Errors)
	}
	if len(snap.Histories) == 0 {
		t.Fatal("history data should survive a summary failure")
	}
	if _, ok := svc.Charts().Get(ChartEquity); !ok {
		t.Fatal("line charts should render without summaries")
	}
	if _, ok := svc.Charts().Get(ChartDayPnL); ok {
		t.Fatal("day P/L bars need summaries and should be absent")
	}
}

func TestRefreshSkipsWhenInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := healthyClient()
	slow := client.summaries
	client.summaries = func(ctx context.Context) ([]api.AccountSummary, error) {
		close(started)
		<-release
		return slow(ctx)
	}
	svc := newTestService(client)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(context.Background())
		done <- err
	}()

	<-started
	if _, err := svc.Refresh(context.Background()); !errors.Is(err, ErrRefreshInFlight) {
		t.Fatalf("overlapping refresh should be skipped, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first refresh should settle: %v", err)
	}
}

func TestRefreshRejectsUnknownPeriod(t *testing.T) {
	svc := newTestService(healthyClient())
	if _, err := svc.RefreshView(context.Background(), View{Period: "2W"}); err == nil {
		t.Fatal("unknown period should be rejected")
	}
}

func TestDeriveBenchmarks(t *testing.T) {
	svc := newTestService(healthyClient())
	snap := svc.fetch(context.Background(), View{Period: "1M", Benchmark: "SPY"})

	equity, pct := svc.deriveBenchmarks(snap)
	if equity == nil || pct == nil {
		t.Fatal("benchmark overlays should be derived")
	}
	if equity.Label != "SPY" {
		t.Fatalf("overlay label = %q", equity.Label)
	}
	if len(pct.Values) != 3 {
		t.Fatalf("derived length = %d, want target timeline length 3", len(pct.Values))
	}
	if *pct.Values[0] != 0 {
		t.Fatalf("base position should map to 0%%, got %v", *pct.Values[0])
	}
	// Starting equity comes from the first account's first equity sample.
	if *equity.Values[0] != 50_000 {
		t.Fatalf("normalized base = %v, want 50000", *equity.Values[0])
	}
	if *equity.Values[2] != 51_000 {
		t.Fatalf("normalized position 2 = %v, want 51000 (510/500*50000)", *equity.Values[2])
	}
}

func TestDeriveBenchmarksAbsent(t *testing.T) {
	client := healthyClient()
	base := client.history
	client.history = func(ctx context.Context, period, benchmark string) (*api.HistoryResponse, error) {
		resp, err := base(ctx, period, benchmark)
		if err != nil {
			return nil, err
		}
		resp.Benchmark = nil
		return resp, nil
	}
	svc := newTestService(client)

	snap := svc.fetch(context.Background(), View{Period: "1M"})
	if equity, pct := svc.deriveBenchmarks(snap); equity != nil || pct != nil {
		t.Fatal("no benchmark block means no overlays")
	}
}

func TestValidPeriod(t *testing.T) {
	for _, p := range Periods {
		if !ValidPeriod(p) {
			t.Fatalf("%q should be a valid period", p)
		}
	}
	if ValidPeriod("2W") {
		t.Fatal("2W is not a valid period")
	}
}
