package dashboard

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records refresh-cycle health for Prometheus scraping.
type Metrics struct {
	refreshTotal  prometheus.Counter
	refreshSkips  prometheus.Counter
	sectionErrors *prometheus.CounterVec
	renderSeconds prometheus.Histogram
}

// NewMetrics registers the dashboard collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		refreshTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfdash_refresh_cycles_total",
			Help: "Total number of completed refresh cycles",
		}),
		refreshSkips: factory.NewCounter(prometheus.CounterOpts{
			Name: "pfdash_refresh_skipped_total",
			Help: "Refresh cycles skipped because one was already in flight",
		}),
		sectionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pfdash_fetch_errors_total",
			Help: "Fetch failures per data section",
		}, []string{"section"}),
		renderSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "pfdash_render_duration_seconds",
			Help:    "Duration of chart assembly and rendering",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) recordRefresh() {
	if m != nil {
		m.refreshTotal.Inc()
	}
}

func (m *Metrics) recordSkip() {
	if m != nil {
		m.refreshSkips.Inc()
	}
}

func (m *Metrics) recordSectionError(section string) {
	if m != nil {
		m.sectionErrors.WithLabelValues(section).Inc()
	}
}

func (m *Metrics) recordRenderSeconds(seconds float64) {
	if m != nil {
		m.renderSeconds.Observe(seconds)
	}
}
