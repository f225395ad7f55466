// Package chart assembles display-ready datasets from account and benchmark
// series and renders them to PNG with go-chart.
package chart

import (
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"portfolio-dashboard/internal/api"
	"portfolio-dashboard/internal/series"
)

// Metric selects which per-account sequence a line chart plots.
type Metric string

const (
	MetricEquity Metric = "equity"
	MetricPnL    Metric = "pnl"
	MetricPnLPct Metric = "pnl_pct"
)

// DefaultBenchmarkLabel is used when the benchmark block carries no symbol.
const DefaultBenchmarkLabel = "Benchmark"

var palette = []drawing.Color{
	{R: 0x4e, G: 0x79, B: 0xa7, A: 255},
	{R: 0xf2, G: 0x8e, B: 0x2b, A: 255},
	{R: 0x59, G: 0xa1, B: 0x4f, A: 255},
}

var benchmarkColor = drawing.Color{R: 0x8c, G: 0x8c, B: 0x8c, A: 255}

// PaletteColor assigns account colors by index modulo the palette size;
// a fourth account reuses the first color.
func PaletteColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// LineDataset is one drawable line series. Nil values are gaps, not zeros.
type LineDataset struct {
	Label  string
	Times  []time.Time
	Values []*float64
	Color  drawing.Color
	Dashed bool
}

// BenchmarkOverlay is a derived benchmark series on the timeline it was
// aligned against.
type BenchmarkOverlay struct {
	Label  string
	Times  []time.Time
	Values []*float64
}

// LineDatasets builds one dataset per account, skipping accounts that carry
// an error or whose requested metric sequence is empty. When the overlay is
// present and has at least one value, it is appended last as a dashed,
// unfilled series.
func LineDatasets(accounts []api.AccountHistory, metric Metric, bench *BenchmarkOverlay) []LineDataset {
	datasets := make([]LineDataset, 0, len(accounts)+1)
	for i, acct := range accounts {
		values := metricValues(acct, metric)
		if acct.HasError() || len(values) == 0 {
			continue
		}
		datasets = append(datasets, LineDataset{
			Label:  acct.Name,
			Times:  acct.Times(),
			Values: toNullable(values),
			Color:  PaletteColor(i),
		})
	}

	if bench != nil && len(bench.Values) > 0 && !series.AllNil(bench.Values) {
		label := bench.Label
		if label == "" {
			label = DefaultBenchmarkLabel
		}
		datasets = append(datasets, LineDataset{
			Label:  label,
			Times:  bench.Times,
			Values: bench.Values,
			Color:  benchmarkColor,
			Dashed: true,
		})
	}

	return datasets
}

// BarPoint is one account's bar in a bar chart.
type BarPoint struct {
	Label string
	Value float64
	Color drawing.Color
}

// DayPnLBars builds one bar per summary row. Accounts are never skipped:
// an errored account or a missing metric still occupies its slot with a
// zero bar.
func DayPnLBars(summaries []api.AccountSummary) []BarPoint {
	points := make([]BarPoint, len(summaries))
	for i, s := range summaries {
		var value float64
		if s.DayProfitLoss != nil {
			value = *s.DayProfitLoss
		}
		points[i] = BarPoint{Label: s.Name, Value: value, Color: PaletteColor(i)}
	}
	return points
}

// AllocationSlice is one category of the allocation breakdown.
type AllocationSlice struct {
	Label  string
	Amount float64
}

// AllocationSlices flattens the allocation map into slices ordered by
// descending amount (ties by label) so the rendering is deterministic.
func AllocationSlices(allocation map[string]float64) []AllocationSlice {
	slices := make([]AllocationSlice, 0, len(allocation))
	for label, amount := range allocation {
		slices = append(slices, AllocationSlice{Label: label, Amount: amount})
	}
	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Amount != slices[j].Amount {
			return slices[i].Amount > slices[j].Amount
		}
		return slices[i].Label < slices[j].Label
	})
	return slices
}

func metricValues(acct api.AccountHistory, metric Metric) []float64 {
	switch metric {
	case MetricEquity:
		return acct.Equity
	case MetricPnL:
		return acct.PnL
	case MetricPnLPct:
		return acct.PnLPct
	default:
		return nil
	}
}

func toNullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}
	return out
}
