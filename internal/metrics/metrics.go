// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "chatfusion"

type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	RateLimitRejections prometheus.Counter
	RateLimitErrors     prometheus.Counter
	Scrapes             *prometheus.CounterVec
	CompletionDuration  *prometheus.HistogramVec
	CompletionErrors    *prometheus.CounterVec
}

// New registers every collector on reg, or the default registerer when
// reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RateLimitRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ratelimit",
			Name:      "rejections_total",
			Help:      "Requests rejected with 429.",
		}),
		RateLimitErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "ratelimit",
			Name:      "errors_total",
			Help:      "Requests failed because the counter store was unavailable.",
		}),
		Scrapes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "scraper",
			Name:      "scrapes_total",
			Help:      "Scrape attempts by outcome (ok, cached, error, denied).",
		}, []string{"outcome"}),
		CompletionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "llm",
			Name:      "completion_duration_seconds",
			Help:      "Completion API latency by pipeline stage.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"stage"}),
		CompletionErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "llm",
			Name:      "completion_errors_total",
			Help:      "Failed completion calls by pipeline stage.",
		}, []string{"stage"}),
	}
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveScrape matches the scraper's observer signature.
func (m *Metrics) ObserveScrape(outcome string) {
	m.Scrapes.WithLabelValues(outcome).Inc()
}

// ObserveCompletion matches the chat pipeline's observer signature.
func (m *Metrics) ObserveCompletion(stage string, elapsed time.Duration, err error) {
	m.CompletionDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	if err != nil {
		m.CompletionErrors.WithLabelValues(stage).Inc()
	}
}
