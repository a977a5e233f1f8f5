package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compound_registry",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method, and status code.",
	}, []string{"route", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "compound_registry",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"route"})

	compoundsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "compound_registry",
		Name:      "compounds_loaded",
		Help:      "Number of compounds in the live catalog.",
	})

	interactionsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "compound_registry",
		Name:      "interactions_loaded",
		Help:      "Number of interaction records in the live catalog.",
	})

	catalogReloads = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "compound_registry",
		Name:      "catalog_reloads_total",
		Help:      "Catalog reloads since startup.",
	})
)

// MetricsHandler serves the prometheus scrape endpoint.
func MetricsHandler() http.Handler { return promhttp.Handler() }

// ObserveCatalog updates the dataset gauges after a load or reload.
func ObserveCatalog(compounds, interactions int) {
	compoundsLoaded.Set(float64(compounds))
	interactionsLoaded.Set(float64(interactions))
	catalogReloads.Inc()
}

// statusRecorder captures the status code a handler writes.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument wraps a route handler with request counting and latency
// observation. The route label is the registered pattern, never the raw
// URL, to keep cardinality bounded.
func instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		requestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
