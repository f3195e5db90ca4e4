package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "career_ai_requests_total",
			Help: "Total number of generative AI calls",
		},
		[]string{"operation", "status"},
	)

	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "career_ai_request_duration_seconds",
			Help:    "Duration of generative AI calls",
			Buckets: []float64{.25, .5, 1, 2, 5, 10, 20, 40, 90},
		},
		[]string{"operation"},
	)
)
