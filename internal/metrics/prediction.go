package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction counts and times model calls per route.
type Prediction struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrediction registers the prediction collectors on reg.
func NewPrediction(reg prometheus.Registerer) *Prediction {
	factory := promauto.With(reg)
	return &Prediction{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prediction_requests_total",
				Help: "Total number of prediction requests by route and outcome",
			},
			[]string{"route", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prediction_duration_seconds",
				Help:    "Model inference duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

func (p *Prediction) ObservePrediction(route, outcome string, elapsed time.Duration) {
	p.requests.WithLabelValues(route, outcome).Inc()
	p.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}
