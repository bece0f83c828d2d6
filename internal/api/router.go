// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package api provides the HTTP surface of the service: recommendation,
// search, feedback, stats, evaluation, and agent chat endpoints, all
// returning a common JSON envelope.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reelrank/reelrank/internal/middleware"
)

// NewRouter builds the chi router with the full middleware stack. limiter
// may be nil to disable rate limiting.
func NewRouter(h *Handler, limiter *middleware.RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Use(middleware.PrometheusMetrics)

		r.Get("/recommendations/user/{userID}", h.UserRecommendations)
		r.Get("/recommendations/popular", h.PopularRecommendations)
		r.Get("/search", h.Search)
		r.Post("/feedback", h.Feedback)
		r.Get("/stats", h.Stats)
		r.Get("/evaluation", h.Evaluation)
		r.Post("/agent/chat", h.AgentChat)
	})

	return r
}
