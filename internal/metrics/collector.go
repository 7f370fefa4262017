package ptridmetrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// -------------------------------------------------------------------------
// Prometheus Metric Constants
// -------------------------------------------------------------------------

const (
	namespace = "ptrid"
	subsystem = "classifier"
)

// Label names for classifier metrics.
const (
	labelTypeName = "type_name"
	labelMetric   = "metric"
)

// -------------------------------------------------------------------------
// Collector — Prometheus Classifier Metrics
// -------------------------------------------------------------------------

// Collector holds all ptrid Prometheus metrics.
//
//   - Sessions tracks currently active HTTP sessions being accumulated.
//   - Packet counters track frames the online capture loop saw, dropped at
//     parse time, and skipped at scoring time.
//   - Verdicts counts classification outcomes per winning type and metric,
//     so a dashboard can show the type-name distribution over time.
type Collector struct {
	// SessionsActive tracks the number of HTTP sessions currently being
	// accumulated by the classifier.
	SessionsActive prometheus.Gauge

	// SessionsCreated counts sessions created on an observed GET request.
	SessionsCreated prometheus.Counter

	// SessionsRetired counts sessions retired on FIN or RST.
	SessionsRetired prometheus.Counter

	// PacketsProcessed counts captured frames successfully parsed as
	// Ethernet/IPv4/TCP.
	PacketsProcessed prometheus.Counter

	// PacketsDropped counts captured frames that failed to parse (bad
	// EtherType, non-TCP, or truncated headers).
	PacketsDropped prometheus.Counter

	// PacketsSkipped counts frames on a known session that were too short
	// to score.
	PacketsSkipped prometheus.Counter

	// Verdicts counts classification verdicts by winning type name and
	// active metric.
	Verdicts *prometheus.CounterVec
}

// NewCollector creates a Collector with all classifier metrics registered
// against the provided prometheus.Registerer. If reg is nil,
// prometheus.DefaultRegisterer is used.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := newMetrics()

	reg.MustRegister(
		c.SessionsActive,
		c.SessionsCreated,
		c.SessionsRetired,
		c.PacketsProcessed,
		c.PacketsDropped,
		c.PacketsSkipped,
		c.Verdicts,
	)

	return c
}

// newMetrics creates all Prometheus metric vectors without registering them.
func newMetrics() *Collector {
	return &Collector{
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_active",
			Help:      "Number of HTTP sessions currently being accumulated.",
		}),

		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_created_total",
			Help:      "Total HTTP sessions created on an observed GET request.",
		}),

		SessionsRetired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_retired_total",
			Help:      "Total HTTP sessions retired on FIN or RST.",
		}),

		PacketsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_processed_total",
			Help:      "Total captured frames successfully parsed as Ethernet/IPv4/TCP.",
		}),

		PacketsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_dropped_total",
			Help:      "Total captured frames dropped at parse time.",
		}),

		PacketsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "packets_skipped_total",
			Help:      "Total frames on a known session too short to score.",
		}),

		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "verdicts_total",
			Help:      "Total classification verdicts by winning type and metric.",
		}, []string{labelTypeName, labelMetric}),
	}
}

// -------------------------------------------------------------------------
// Session Lifecycle
// -------------------------------------------------------------------------

// SetSessionsActive sets the active-sessions gauge to n.
func (c *Collector) SetSessionsActive(n int) {
	c.SessionsActive.Set(float64(n))
}

// IncSessionsCreated increments the sessions-created counter.
func (c *Collector) IncSessionsCreated() {
	c.SessionsCreated.Inc()
}

// IncSessionsRetired increments the sessions-retired counter.
func (c *Collector) IncSessionsRetired() {
	c.SessionsRetired.Inc()
}

// -------------------------------------------------------------------------
// Packet Counters
// -------------------------------------------------------------------------

// IncPacketsProcessed increments the processed-frames counter.
func (c *Collector) IncPacketsProcessed() {
	c.PacketsProcessed.Inc()
}

// IncPacketsDropped increments the dropped-frames counter.
func (c *Collector) IncPacketsDropped() {
	c.PacketsDropped.Inc()
}

// IncPacketsSkipped increments the skipped-scoring counter.
func (c *Collector) IncPacketsSkipped() {
	c.PacketsSkipped.Inc()
}

// -------------------------------------------------------------------------
// Verdicts
// -------------------------------------------------------------------------

// RecordVerdict increments the verdict counter for the winning type under
// the given metric tag.
func (c *Collector) RecordVerdict(typeName, metric string) {
	c.Verdicts.WithLabelValues(typeName, metric).Inc()
}
