package web

import (
	"html/template"
	"strconv"
	"strings"

	"portfolio-dashboard/internal/api"
	"portfolio-dashboard/internal/dashboard"
	"portfolio-dashboard/internal/format"
)

// pageModel is the fully formatted input to the page template; all number
// formatting happens here, not in the template.
type pageModel struct {
	Period        string
	Benchmark     string
	Periods       []string
	FetchedAt     string
	Cards         []cardModel
	ChartTargets  []chartTarget
	SectionErrors []string
	HasSnapshot   bool
}

type cardModel struct {
	Name        string
	Kind        string // "account", "total", "market", "error"
	Error       string
	Equity      string
	Cash        string
	Positions   string
	DayPnL      string
	DayPnLPct   string
	DayPnLClass string
	ShowDetails bool
	Metrics     []metricModel
}

type metricModel struct {
	Label string
	Value string
}

type chartTarget struct {
	Name  string
	Title string
}

var chartOrder = []chartTarget{
	{dashboard.ChartEquity, "Equity by Account"},
	{dashboard.ChartPnL, "Profit / Loss"},
	{dashboard.ChartPnLPct, "Return"},
	{dashboard.ChartDayPnL, "Day P/L by Account"},
	{dashboard.ChartAllocation, "Asset Allocation"},
}

func renderPage(snap *dashboard.Snapshot, view dashboard.View, available []string) (string, error) {
	model := buildPageModel(snap, view, available)
	var b strings.Builder
	if err := pageTemplate.Execute(&b, model); err != nil {
		return "", err
	}
	return b.String(), nil
}

func buildPageModel(snap *dashboard.Snapshot, view dashboard.View, available []string) pageModel {
	model := pageModel{
		Period:    view.Period,
		Benchmark: view.Benchmark,
		Periods:   dashboard.Periods,
	}
	if snap == nil {
		return model
	}

	model.HasSnapshot = true
	model.FetchedAt = snap.FetchedAt.Format("2006-01-02 15:04:05 UTC")

	// Detailed fetch errors are logged at fetch time; the page shows a
	// generic per-section notice.
	for _, section := range []string{dashboard.SectionSummary, dashboard.SectionHistory, dashboard.SectionRisk} {
		if snap.SectionError(section) != "" {
			model.SectionErrors = append(model.SectionErrors, sectionNotice(section))
		}
	}

	for _, s := range snap.Summaries {
		model.Cards = append(model.Cards, buildCard(s, snap.Histories))
	}

	live := make(map[string]bool, len(available))
	for _, name := range available {
		live[name] = true
	}
	for _, target := range chartOrder {
		if live[target.Name] {
			model.ChartTargets = append(model.ChartTargets, target)
		}
	}

	return model
}

func buildCard(s api.AccountSummary, histories []api.AccountHistory) cardModel {
	card := cardModel{Name: s.Name, Kind: "account"}

	if s.HasError() {
		card.Kind = "error"
		card.Error = s.Error
		return card
	}

	switch {
	case s.IsTotal:
		card.Kind = "total"
	case s.IsMarket:
		card.Kind = "market"
	}

	card.Equity = format.Money(s.Equity)
	// Market reference rows have no cash/positions block.
	card.ShowDetails = !s.IsMarket
	if card.ShowDetails {
		card.Cash = format.Money(s.Cash)
		card.Positions = "0"
		if s.PositionsCount != nil {
			card.Positions = strconv.Itoa(*s.PositionsCount)
		}
	}

	var pct float64
	if s.DayProfitLossPct != nil {
		pct = *s.DayProfitLossPct
	}
	card.DayPnL = format.Money(s.DayProfitLoss)
	card.DayPnLPct = format.SignedPercent(pct)
	if pct >= 0 {
		card.DayPnLClass = "up"
	} else {
		card.DayPnLClass = "down"
	}

	for _, h := range histories {
		if h.Name != s.Name || h.HasError() {
			continue
		}
		card.Metrics = []metricModel{
			{Label: "Volatility", Value: format.Percent(h.Volatility)},
			{Label: "Sharpe", Value: format.Float(h.SharpeRatio)},
			{Label: "Max Drawdown", Value: format.Percent(h.MaxDrawdown)},
		}
		break
	}

	return card
}

func sectionNotice(section string) string {
	switch section {
	case dashboard.SectionSummary:
		return "Account summaries are currently unavailable."
	case dashboard.SectionHistory:
		return "Portfolio history is currently unavailable."
	case dashboard.SectionRisk:
		return "Risk metrics are currently unavailable."
	default:
		return "Some data is currently unavailable."
	}
}

var pageTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="60">
<title>Portfolio Dashboard</title>
<style>
body { font-family: -apple-system, Segoe UI, sans-serif; margin: 2rem; background: #f5f6f8; color: #1f2430; }
h1 { font-size: 1.4rem; }
.selector a { margin-right: .5rem; text-decoration: none; color: #4e79a7; }
.selector a.active { font-weight: bold; text-decoration: underline; }
.cards { display: flex; flex-wrap: wrap; gap: 1rem; margin: 1rem 0; }
.card { background: #fff; border-radius: 8px; padding: 1rem; min-width: 220px; box-shadow: 0 1px 3px rgba(0,0,0,.1); }
.card.total { border: 2px solid #4e79a7; }
.card.market { border: 2px dashed #8c8c8c; }
.card.error { border: 2px solid #c0392b; color: #c0392b; }
.card h2 { margin: 0 0 .5rem; font-size: 1rem; }
.up { color: #1e8449; }
.down { color: #c0392b; }
.notice { background: #fdecea; color: #c0392b; padding: .5rem 1rem; border-radius: 6px; margin: .5rem 0; }
.chart { background: #fff; border-radius: 8px; padding: 1rem; margin: 1rem 0; }
.chart img { max-width: 100%; }
.meta { color: #6b7280; font-size: .8rem; }
</style>
</head>
<body>
<h1>Portfolio Dashboard</h1>
<div class="selector">
{{- $current := .Period }}
{{- range .Periods }}
<a href="/?period={{ . }}" {{ if eq . $current }}class="active"{{ end }}>{{ . }}</a>
{{- end }}
</div>
{{- if not .HasSnapshot }}
<p>Waiting for the first refresh cycle…</p>
{{- else }}
<p class="meta">Period {{ .Period }}{{ if .Benchmark }} · Benchmark {{ .Benchmark }}{{ end }} · Updated {{ .FetchedAt }}</p>
{{- range .SectionErrors }}
<div class="notice">{{ . }}</div>
{{- end }}
<div class="cards">
{{- range .Cards }}
<div class="card {{ .Kind }}">
<h2>{{ .Name }}</h2>
{{- if .Error }}
<p>{{ .Error }}</p>
{{- else }}
<p>Equity: {{ .Equity }}</p>
{{- if .ShowDetails }}
<p>Cash: {{ .Cash }} · Positions: {{ .Positions }}</p>
{{- end }}
<p class="{{ .DayPnLClass }}">Day P/L: {{ .DayPnL }} ({{ .DayPnLPct }})</p>
{{- range .Metrics }}
<p class="meta">{{ .Label }}: {{ .Value }}</p>
{{- end }}
{{- end }}
</div>
{{- end }}
</div>
{{- range .ChartTargets }}
<div class="chart">
<h2>{{ .Title }}</h2>
<img src="/charts/{{ .Name }}" alt="{{ .Title }}">
</div>
{{- end }}
{{- end }}
</body>
</html>
`))
