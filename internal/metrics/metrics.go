package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frontinsight/loginpage/internal/form"
)

const namespace = "loginpage"

// Metrics records form activity in its own Prometheus registry. It
// implements form.Observer.
type Metrics struct {
	registry           *prometheus.Registry
	validationFailures *prometheus.CounterVec
	submissions        *prometheus.CounterVec
	submitDuration     prometheus.Histogram
	submitting         prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Field validations that failed, by field.",
		}, []string{"field"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Finished submissions, by result.",
		}, []string{"result"}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_duration_seconds",
			Help:      "Time spent in the authenticator.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 1.5, 2, 5, 10},
		}),
		submitting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forms_submitting",
			Help:      "Forms currently waiting on the authenticator.",
		}),
	}
	m.registry.MustRegister(
		m.validationFailures,
		m.submissions,
		m.submitDuration,
		m.submitting,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Transition(from, to form.State) {
	switch {
	case to == form.StateSubmitting:
		m.submitting.Inc()
	case from == form.StateSubmitting:
		m.submitting.Dec()
	}
}

func (m *Metrics) ValidationFailed(field string) {
	m.validationFailures.WithLabelValues(field).Inc()
}

func (m *Metrics) SubmissionFinished(result string, elapsed time.Duration) {
	m.submissions.WithLabelValues(result).Inc()
	m.submitDuration.Observe(elapsed.Seconds())
}
