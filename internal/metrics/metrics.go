// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

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
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Engine Training Metrics
	TrainingRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_training_runs_total",
			Help: "Total number of model training runs",
		},
	)

	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_training_duration_seconds",
			Help:    "Duration of full model retraining in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Feedback Metrics
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_feedback_total",
			Help: "Total number of feedback submissions",
		},
		[]string{"status"}, // "accepted", "rejected"
	)

	// Recommendation Serving Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_recommendations_served_total",
			Help: "Total number of recommendation lists served, by mode",
		},
		[]string{"mode"},
	)

	// Agent Metrics
	AgentToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tool_calls_total",
			Help: "Total number of agent tool invocations",
		},
		[]string{"tool", "router"}, // router: "llm", "keyword"
	)

	AgentLLMErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_llm_errors_total",
			Help: "Total number of LLM routing failures that fell back to keywords",
		},
	)
)

// RecordAPIRequest records an API request with its duration.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordTraining records one completed training run.
func RecordTraining(duration time.Duration) {
	TrainingRunsTotal.Inc()
	TrainingDuration.Observe(duration.Seconds())
}

// RecordFeedback records one feedback submission outcome.
func RecordFeedback(accepted bool) {
	status := "accepted"
	if !accepted {
		status = "rejected"
	}
	FeedbackTotal.WithLabelValues(status).Inc()
}

// RecordRecommendation records one served recommendation list.
func RecordRecommendation(mode string) {
	RecommendationsServed.WithLabelValues(mode).Inc()
}
