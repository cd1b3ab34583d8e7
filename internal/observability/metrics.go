package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the inference service.
type Metrics struct {
	Predictions        *prometheus.CounterVec // labels: label={0,1}
	ValidationFailures prometheus.Counter
	InferenceErrors    prometheus.Counter
	PredictionDuration prometheus.Histogram

	HTTPRequests        *prometheus.CounterVec   // labels: route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: route

	EventsPublished    prometheus.Counter
	EventPublishErrors prometheus.Counter
	ModelInfo          *prometheus.GaugeVec // labels: name, kind, probability
}

func newMetrics() *Metrics {
	return &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_inference",
			Name:      "predictions_total",
			Help:      "Successful predictions by predicted label.",
		}, []string{"label"}),
		ValidationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_inference",
			Name:      "validation_failures_total",
			Help:      "Scoring requests rejected before reaching the model.",
		}),
		InferenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_inference",
			Name:      "inference_errors_total",
			Help:      "Scoring requests where the model returned an error.",
		}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storm_inference",
			Name:      "prediction_duration_seconds",
			Help:      "Time spent inside the model for one prediction.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storm_inference",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storm_inference",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"route"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_inference",
			Name:      "events_published_total",
			Help:      "Prediction events handed to the Kafka writer.",
		}),
		EventPublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storm_inference",
			Name:      "event_publish_errors_total",
			Help:      "Prediction events that failed to serialize or deliver.",
		}),
		ModelInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "storm_inference",
			Name:      "model_info",
			Help:      "Set to 1 for the loaded model.",
		}, []string{"name", "kind", "probability"}),
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Predictions,
		m.ValidationFailures,
		m.InferenceErrors,
		m.PredictionDuration,
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.EventsPublished,
		m.EventPublishErrors,
		m.ModelInfo,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
