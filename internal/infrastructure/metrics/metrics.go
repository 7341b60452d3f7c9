// Package metrics exposes Prometheus instrumentation for the HTTP API and the
// recipe catalog.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavorfusion_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flavorfusion_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flavorfusion_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavorfusion_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Catalog Metrics
	SearchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flavorfusion_searches_total",
			Help: "Total number of pantry searches",
		},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flavorfusion_search_results",
			Help:    "Number of ranked recipes returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	RatingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavorfusion_ratings_total",
			Help: "Total number of rating submissions by outcome",
		},
		[]string{"outcome"}, // "accepted", "rejected"
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flavorfusion_catalog_recipes",
			Help: "Number of recipes in the loaded catalog",
		},
	)

	// Ingredient Detection Metrics
	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flavorfusion_ingredient_detections_total",
			Help: "Total number of image ingredient detections",
		},
		[]string{"source"}, // "vision", "fallback"
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a request rejected by the rate limiter
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordSearch records one completed search
func RecordSearch(returned int) {
	SearchesTotal.Inc()
	SearchResults.Observe(float64(returned))
}

// RecordRating records a rating submission
func RecordRating(accepted bool) {
	if accepted {
		RatingsTotal.WithLabelValues("accepted").Inc()
	} else {
		RatingsTotal.WithLabelValues("rejected").Inc()
	}
}

// RecordDetection records an ingredient detection and whether it fell back
func RecordDetection(fallback bool) {
	if fallback {
		DetectionsTotal.WithLabelValues("fallback").Inc()
	} else {
		DetectionsTotal.WithLabelValues("vision").Inc()
	}
}

// SetCatalogSize updates the loaded catalog gauge
func SetCatalogSize(n int) {
	CatalogSize.Set(float64(n))
}
