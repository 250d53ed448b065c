package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SuggestionsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_suggestions_served_total",
			Help: "Outfit suggestions returned to users",
		},
		[]string{"source"}, // engine, ai, fallback
	)

	EngineCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wardrobe_engine_candidates",
			Help:    "Candidate outfits generated per ranking call",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)

	EngineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wardrobe_engine_duration_seconds",
			Help:    "Time spent ranking outfits",
			Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
		},
	)

	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_ai_requests_total",
			Help: "Requests made to the generative model",
		},
		[]string{"kind", "status"}, // analyze|outfits, ok|error
	)

	AITokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_ai_tokens_total",
			Help: "Tokens consumed by the generative model",
		},
		[]string{"kind"},
	)

	WeatherLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_weather_lookups_total",
			Help: "Weather lookups by result",
		},
		[]string{"result"}, // ok, not_found, error
	)

	TaskOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wardrobe_task_outcomes_total",
			Help: "Background task results",
		},
		[]string{"task_type", "status"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "wardrobe_task_duration_seconds",
			Help: "Duration of background task processing in seconds",
		},
		[]string{"task_type"},
	)
)
