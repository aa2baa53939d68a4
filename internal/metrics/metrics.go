// Package metrics exposes the Prometheus collectors for the recommender.
//
// Collectors register with the default registry on package init and are
// served by promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for RecommendRequests
const (
	OutcomeSuccess      = "success"
	OutcomeEmpty        = "empty"
	OutcomeInvalidInput = "invalid_input"
	OutcomeError        = "error"
)

// Reason label values for CollaborativeFallback
const (
	ReasonRandomSeeds  = "random_seeds"
	ReasonNoRatings    = "no_ratings"
	ReasonDegenerate   = "degenerate_matrix"
)

var (
	// Recommendation metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelrec_recommend_requests_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"outcome"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "travelrec_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelrec_recommendations_total",
			Help: "Total number of recommended places by source",
		},
		[]string{"source"}, // "system", "collaborative", "gnn"
	)

	CollaborativeFallback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelrec_collaborative_fallback_total",
			Help: "Collaborative passes that fell back or returned nothing, by reason",
		},
		[]string{"reason"},
	)

	// Review metrics
	ReviewsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelrec_reviews_submitted_total",
			Help: "Total number of reviews submitted by sentiment label",
		},
		[]string{"label"},
	)

	// Sentiment cache metrics
	SentimentCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelrec_sentiment_cache_hits_total",
			Help: "Total number of sentiment analyzer cache hits",
		},
	)

	SentimentCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "travelrec_sentiment_cache_misses_total",
			Help: "Total number of sentiment analyzer cache misses",
		},
	)
)
