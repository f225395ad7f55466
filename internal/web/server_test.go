package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"portfolio-dashboard/internal/api"
	"portfolio-dashboard/internal/chart"
	"portfolio-dashboard/internal/dashboard"
)

type staticClient struct{}

func (staticClient) AccountSummaries(ctx context.Context) ([]api.AccountSummary, error) {
	equity := 50_000.0
	pnl := 120.0
	pct := 0.24
	return []api.AccountSummary{
		{Name: "Alpha", Equity: &equity, DayProfitLoss: &pnl, DayProfitLossPct: &pct},
		{Name: "Broken", Error: "credentials rejected"},
	}, nil
}

func (staticClient) PortfolioHistory(ctx context.Context, period, benchmark string) (*api.HistoryResponse, error) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &api.HistoryResponse{
		Accounts: []api.AccountHistory{{
			Name:       "Alpha",
			Timestamps: []api.Timestamp{{Time: t0}, {Time: t0.Add(24 * time.Hour)}},
			Equity:     []float64{50_000, 50_500},
			PnL:        []float64{0, 500},
			PnLPct:     []float64{0, 1},
		}},
	}, nil
}

func (staticClient) RiskMetrics(ctx context.Context) (*api.RiskMetrics, error) {
	return &api.RiskMetrics{Allocation: map[string]float64{"Stocks": 1000}}, nil
}

func newTestServer(t *testing.T, refreshed bool) *Server {
	t.Helper()
	svc := dashboard.New(staticClient{}, chart.NewRegistry(), nil, dashboard.View{Period: "1M"}, chart.RenderOptions{Width: 400, Height: 300}, zerolog.Nop())
	if refreshed {
		if _, err := svc.Refresh(context.Background()); err != nil {
			t.Fatalf("refresh: %v", err)
		}
	}
	return New(Options{}, svc, nil, zerolog.Nop())
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestPageBeforeFirstRefresh(t *testing.T) {
	rec := get(t, newTestServer(t, false), "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("page status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Waiting for the first refresh") {
		t.Fatal("page should show the waiting notice before the first cycle")
	}
}

func TestPageRendersCardsAndCharts(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/")
	body := rec.Body.String()

	if !strings.Contains(body, "Alpha") {
		t.Fatal("page should render the account card")
	}
	if !strings.Contains(body, "credentials rejected") {
		t.Fatal("page should render the error card inline")
	}
	if !strings.Contains(body, "/charts/equity") {
		t.Fatal("page should reference the rendered equity chart")
	}
	if !strings.Contains(body, "+0.24%") {
		t.Fatal("page should render the signed day P/L percentage")
	}
}

func TestPageRejectsUnknownPeriod(t *testing.T) {
	rec := get(t, newTestServer(t, true), "/?period=2W")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown period status = %d, want 400", rec.Code)
	}
}

func TestChartEndpoint(t *testing.T) {
	srv := newTestServer(t, true)

	rec := get(t, srv, "/charts/equity")
	if rec.Code != http.StatusOK {
		t.Fatalf("chart status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/png") {
		t.Fatalf("chart content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("chart body should carry PNG bytes")
	}

	if rec := get(t, srv, "/charts/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown chart status = %d, want 404", rec.Code)
	}
}
