package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder counts session activity. A nil *Recorder records nothing.
type Recorder struct {
	cascades  prometheus.Counter
	skipped   prometheus.Counter
	overrides *prometheus.CounterVec
	resets    prometheus.Counter
	expired   prometheus.Counter
	sessions  prometheus.Gauge
	quote     prometheus.Histogram
}

func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		cascades: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aquaquote",
			Name:      "cascade_runs_total",
			Help:      "Sizing cascades committed.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aquaquote",
			Name:      "cascade_skipped_total",
			Help:      "Specification changes with no positive capacity.",
		}),
		overrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aquaquote",
			Name:      "quantity_overrides_total",
			Help:      "Quantity override requests by outcome.",
		}, []string{"outcome"}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aquaquote",
			Name:      "resets_total",
			Help:      "Session resets.",
		}),
		expired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aquaquote",
			Name:      "sessions_expired_total",
			Help:      "Sessions dropped after sitting idle.",
		}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aquaquote",
			Name:      "sessions",
			Help:      "Open quoting sessions.",
		}),
		quote: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aquaquote",
			Name:      "quote_total_cost",
			Help:      "Total cost of committed quotes.",
			Buckets:   prometheus.ExponentialBuckets(100000, 2, 12),
		}),
	}
	reg.MustRegister(r.cascades, r.skipped, r.overrides, r.resets, r.expired, r.sessions, r.quote)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (r *Recorder) Cascade(ran bool, total float64) {
	if r == nil {
		return
	}
	if !ran {
		r.skipped.Inc()
		return
	}
	r.cascades.Inc()
	r.quote.Observe(total)
}

// Override outcome is one of "applied", "fixed" or "unknown".
func (r *Recorder) Override(outcome string) {
	if r == nil {
		return
	}
	r.overrides.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Reset() {
	if r == nil {
		return
	}
	r.resets.Inc()
}

func (r *Recorder) SessionOpened() {
	if r == nil {
		return
	}
	r.sessions.Inc()
}

func (r *Recorder) SessionClosed() {
	if r == nil {
		return
	}
	r.sessions.Dec()
}

func (r *Recorder) SessionsExpired(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.expired.Add(float64(n))
	r.sessions.Sub(float64(n))
}
