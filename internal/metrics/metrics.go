// Package metrics exposes Prometheus collectors for inclusion runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Inclusion outcomes used as label values.
const (
	OutcomeResolved = "resolved"
	OutcomeFailed   = "failed"
)

// Recorder records pipeline activity. A nil *Recorder discards everything.
type Recorder struct {
	passes        prometheus.Counter
	inclusions    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	unresolved    prometheus.Counter
	inflight      prometheus.Gauge
}

// New creates a Recorder and registers its collectors with reg.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "include_passes_total",
			Help: "Total number of inclusion passes run",
		}),
		inclusions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "include_inclusions_total",
				Help: "Total number of inclusion points settled, by outcome and format",
			},
			[]string{"outcome", "format"},
		),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "include_fetch_duration_seconds",
				Help:    "Duration of source fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"scheme", "outcome"},
		),
		unresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "include_unresolved_total",
			Help: "Inclusion points left unresolved when the depth bound was reached",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "include_inflight",
			Help: "Inclusion points currently being resolved",
		}),
	}

	for _, c := range []prometheus.Collector{r.passes, r.inclusions, r.fetchDuration, r.unresolved, r.inflight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Pass records one completed pass.
func (r *Recorder) Pass() {
	if r == nil {
		return
	}
	r.passes.Inc()
}

// Inclusion records a settled inclusion point.
func (r *Recorder) Inclusion(outcome, format string) {
	if r == nil {
		return
	}
	r.inclusions.WithLabelValues(outcome, format).Inc()
}

// Fetch records the duration of one fetch.
func (r *Recorder) Fetch(scheme string, d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeResolved
	if err != nil {
		outcome = OutcomeFailed
	}
	r.fetchDuration.WithLabelValues(scheme, outcome).Observe(d.Seconds())
}

// Unresolved records inclusion points left behind by truncation.
func (r *Recorder) Unresolved(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.unresolved.Add(float64(n))
}

// Begin marks an inclusion point as in flight.
func (r *Recorder) Begin() {
	if r == nil {
		return
	}
	r.inflight.Inc()
}

// End marks an in-flight inclusion point as settled.
func (r *Recorder) End() {
	if r == nil {
		return
	}
	r.inflight.Dec()
}
