package chart

import (
	"testing"
	"time"

	"portfolio-dashboard/internal/api"
)

func stamps(times ...time.Time) []api.Timestamp {
	out := make([]api.Timestamp, len(times))
	for i, t := range times {
		out[i] = api.Timestamp{Time: t}
	}
	return out
}

func ptr(v float64) *float64 { return &v }

func testHistories() []api.AccountHistory {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts := stamps(t0, t0.Add(24*time.Hour))
	return []api.AccountHistory{
		{Name: "Alpha", Timestamps: ts, Equity: []float64{100, 110}, PnL: []float64{0, 10}, PnLPct: []float64{0, 10}},
		{Name: "Broken", Error: "auth failed"},
		{Name: "Empty", Timestamps: ts},
		{Name: "Beta", Timestamps: ts, Equity: []float64{200, 190}, PnL: []float64{0, -10}, PnLPct: []float64{0, -5}},
	}
}

func TestLineDatasetsSkipsErroredAndEmptyAccounts(t *testing.T) {
	datasets := LineDatasets(testHistories(), MetricEquity, nil)
	if len(datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(datasets))
	}
	if datasets[0].Label != "Alpha" || datasets[1].Label != "Beta" {
		t.Fatalf("unexpected dataset labels: %q, %q", datasets[0].Label, datasets[1].Label)
	}
}

func TestLineDatasetsAppendsBenchmarkLast(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bench := &BenchmarkOverlay{
		Label:  "SPY",
		Times:  []time.Time{t0, t0.Add(24 * time.Hour)},
		Values: []*float64{ptr(0), ptr(1.5)},
	}

	datasets := LineDatasets(testHistories(), MetricPnLPct, bench)
	last := datasets[len(datasets)-1]
	if last.Label != "SPY" {
		t.Fatalf("benchmark should be appended last, got %q", last.Label)
	}
	if !last.Dashed {
		t.Fatal("benchmark series should be dashed")
	}
}

func TestLineDatasetsBenchmarkDefaultLabel(t *testing.T) {
	bench := &BenchmarkOverlay{Values: []*float64{ptr(1)}, Times: []time.Time{time.Now()}}
	datasets := LineDatasets(nil, MetricPnLPct, bench)
	if len(datasets) != 1 || datasets[0].Label != DefaultBenchmarkLabel {
		t.Fatalf("missing symbol should use the default label, got %+v", datasets)
	}
}

func TestLineDatasetsOmitsAllNilBenchmark(t *testing.T) {
	bench := &BenchmarkOverlay{Label: "SPY", Values: []*float64{nil, nil}}
	datasets := LineDatasets(testHistories(), MetricEquity, bench)
	for _, ds := range datasets {
		if ds.Label == "SPY" {
			t.Fatal("an all-nil benchmark series should be omitted")
		}
	}
}

func TestDayPnLBarsNeverSkipsAccounts(t *testing.T) {
	summaries := []api.AccountSummary{
		{Name: "Alpha", DayProfitLoss: ptr(120.5)},
		{Name: "Broken", Error: "auth failed"},
		{Name: "NoMetric"},
	}

	bars := DayPnLBars(summaries)
	if len(bars) != len(summaries) {
		t.Fatalf("bar count = %d, want one bar per account (%d)", len(bars), len(summaries))
	}
	if bars[0].Value != 120.5 {
		t.Fatalf("bars[0] = %v, want 120.5", bars[0].Value)
	}
	if bars[1].Value != 0 || bars[2].Value != 0 {
		t.Fatalf("errored/missing accounts should occupy zero bars, got %v, %v", bars[1].Value, bars[2].Value)
	}
}

func TestPaletteColorCycles(t *testing.T) {
	if PaletteColor(3) != PaletteColor(0) {
		t.Fatal("a fourth account should reuse the first palette color")
	}
	if PaletteColor(0) == PaletteColor(1) {
		t.Fatal("adjacent accounts should not share a color")
	}
}

func TestAllocationSlicesOrdering(t *testing.T) {
	slices := AllocationSlices(map[string]float64{
		"Bonds":  30_000,
		"Stocks": 60_000,
		"Cash":   10_000,
	})
	if len(slices) != 3 {
		t.Fatalf("slice count = %d, want 3", len(slices))
	}
	if slices[0].Label != "Stocks" || slices[2].Label != "Cash" {
		t.Fatalf("slices should sort by descending amount, got %+v", slices)
	}
}
