// Package metrics exposes Prometheus collectors for key derivations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Recorder counts derivations. A nil *Recorder records nothing.
type Recorder struct {
	submitted prometheus.Counter
	completed *prometheus.CounterVec
	inFlight  prometheus.Gauge
	duration  *prometheus.HistogramVec
}

// NewRecorder creates the collectors under namespace and registers them
// with reg.
func NewRecorder(reg prometheus.Registerer, namespace string) (*Recorder, error) {
	r := &Recorder{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivations_submitted_total",
			Help:      "Derivation requests accepted for dispatch.",
		}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derivations_completed_total",
			Help:      "Derivation outcomes delivered, by result and error kind.",
		}, []string{"result", "kind"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "derivations_in_flight",
			Help:      "Derivations submitted but not yet completed.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "derivation_duration_seconds",
			Help:      "Time from submission to outcome delivery.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{r.submitted, r.completed, r.inFlight, r.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Submitted records an accepted request.
func (r *Recorder) Submitted() {
	if r == nil {
		return
	}
	r.submitted.Inc()
	r.inFlight.Inc()
}

// Completed records a delivered outcome. kind is empty for successes.
func (r *Recorder) Completed(ok bool, kind string, elapsed time.Duration) {
	if r == nil {
		return
	}

	result := ResultSuccess
	if !ok {
		result = ResultFailure
	}

	r.inFlight.Dec()
	r.completed.WithLabelValues(result, kind).Inc()
	r.duration.WithLabelValues(result).Observe(elapsed.Seconds())
}
