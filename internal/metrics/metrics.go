package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	Predictions       *prometheus.CounterVec
	PredictionLatency prometheus.Histogram
	SprinklersOn      prometheus.Histogram
	SensorUpdates     prometheus.Counter
	PageViews         *prometheus.CounterVec
	ActiveSessions    prometheus.GaugeFunc
	PublishFailures   prometheus.Counter
}

// New registers all collectors. sessions reports the live session count.
func New(sessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "irrigation",
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		PredictionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "irrigation",
			Name:      "prediction_duration_seconds",
			Help:      "Model inference latency.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		SprinklersOn: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "irrigation",
			Name:      "sprinklers_on",
			Help:      "Sprinklers predicted ON per successful prediction.",
			Buckets:   prometheus.LinearBuckets(0, 4, 6),
		}),
		SensorUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "irrigation",
			Name:      "sensor_updates_total",
			Help:      "Slider updates received.",
		}),
		PageViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "irrigation",
			Name:      "page_views_total",
			Help:      "Dashboard page renders by page.",
		}, []string{"page"}),
		ActiveSessions: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "irrigation",
			Name:      "active_sessions",
			Help:      "Live dashboard sessions.",
		}, func() float64 { return float64(sessions()) }),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "irrigation",
			Name:      "publish_failures_total",
			Help:      "Prediction events that could not be published.",
		}),
	}

	reg.MustRegister(
		m.Predictions,
		m.PredictionLatency,
		m.SprinklersOn,
		m.SensorUpdates,
		m.PageViews,
		m.ActiveSessions,
		m.PublishFailures,
		collectors.NewGoCollector(),
	)
	return m
}

// ObservePrediction records one prediction attempt
func (m *Metrics) ObservePrediction(elapsed time.Duration, onCount int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Predictions.WithLabelValues("error").Inc()
		return
	}
	m.Predictions.WithLabelValues("ok").Inc()
	m.PredictionLatency.Observe(elapsed.Seconds())
	m.SprinklersOn.Observe(float64(onCount))
}

// ObservePage counts a page render
func (m *Metrics) ObservePage(page string) {
	if m == nil {
		return
	}
	m.PageViews.WithLabelValues(page).Inc()
}

// ObserveSensorUpdate counts a slider update
func (m *Metrics) ObserveSensorUpdate() {
	if m == nil {
		return
	}
	m.SensorUpdates.Inc()
}

// ObservePublishFailure counts a dropped or failed publish
func (m *Metrics) ObservePublishFailure() {
	if m == nil {
		return
	}
	m.PublishFailures.Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
