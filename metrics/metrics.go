// Package metrics defines the Prometheus collectors exported by the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "paxcast"

// Metrics groups every collector the dashboard updates.
type Metrics struct {
	// FitDuration measures dataset load plus model estimation.
	FitDuration prometheus.Histogram
	// TrainerCache counts trainer calls by result ("hit", "miss", "error").
	TrainerCache *prometheus.CounterVec
	// Forecasts counts generated forecasts by channel ("page", "api", "ws").
	Forecasts *prometheus.CounterVec
	// ForecastHorizon observes the number of forecast steps per request.
	ForecastHorizon prometheus.Histogram
	// InvalidRanges counts rejected date ranges by channel.
	InvalidRanges *prometheus.CounterVec
	// Requests counts HTTP requests by route and status code.
	Requests *prometheus.CounterVec
	// RequestDuration measures HTTP handler latency by route.
	RequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is handy in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "trainer",
			Name:      "fit_duration_seconds",
			Help:      "Time spent loading the dataset and fitting the model",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
		}),
		TrainerCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trainer",
			Name:      "calls_total",
			Help:      "Trainer invocations by cache result",
		}, []string{"result"}),
		Forecasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "generated_total",
			Help:      "Forecasts generated by request channel",
		}, []string{"channel"}),
		ForecastHorizon: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "horizon_steps",
			Help:      "Number of forecast steps per request",
			Buckets:   []float64{0, 1, 3, 6, 12, 24, 36, 60, 120},
		}),
		InvalidRanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "forecast",
			Name:      "invalid_range_total",
			Help:      "Forecast requests rejected because the end date does not follow the start date",
		}, []string{"channel"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP handler latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.FitDuration,
			m.TrainerCache,
			m.Forecasts,
			m.ForecastHorizon,
			m.InvalidRanges,
			m.Requests,
			m.RequestDuration,
		)
	}
	return m
}
