// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/reelrank/reelrank/internal/agent"
	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
)

// Handler holds the dependencies shared by all endpoints. One engine and one
// evaluator live for the whole process; handlers never construct either.
type Handler struct {
	engine    *recommend.Engine
	evaluator *recommend.Evaluator
	agent     *agent.Agent

	defaultWeightContent float64
	defaultWeightCollab  float64
	startedAt            time.Time
}

// NewHandler creates the API handler set.
func NewHandler(engine *recommend.Engine, evaluator *recommend.Evaluator, ag *agent.Agent, weightContent, weightCollab float64) *Handler {
	return &Handler{
		engine:               engine,
		evaluator:            evaluator,
		agent:                ag,
		defaultWeightContent: weightContent,
		defaultWeightCollab:  weightCollab,
		startedAt:            time.Now(),
	}
}

// recommendationsResponse is the payload of the user recommendations
// endpoint.
type recommendationsResponse struct {
	UserID          int                        `json:"user_id"`
	Mode            recommend.Mode             `json:"mode"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// UserRecommendations handles GET /api/v1/recommendations/user/{userID}.
//
// Query parameters: k (result count), wc and wcf (fusion weight overrides).
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userID must be an integer", err)
		return
	}

	k := queryInt(r, "k", 0)
	wc := queryFloat(r, "wc", h.defaultWeightContent)
	wcf := queryFloat(r, "wcf", h.defaultWeightCollab)

	recs, mode, err := h.engine.Recommend(userID, k, wc, wcf)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidWeight) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "ENGINE_ERROR", "recommendation failed", err)
		return
	}

	metrics.RecordRecommendation(string(mode))
	respondOK(w, recommendationsResponse{
		UserID:          userID,
		Mode:            mode,
		Recommendations: recs,
	}, h.engine.ModelVersion())
}

// PopularRecommendations handles GET /api/v1/recommendations/popular.
func (h *Handler) PopularRecommendations(w http.ResponseWriter, r *http.Request) {
	k := queryInt(r, "k", 0)
	recs := h.engine.GetPopularItems(k)

	metrics.RecordRecommendation(string(recommend.ModeColdStart))
	respondOK(w, recommendationsResponse{
		Mode:            recommend.ModeColdStart,
		Recommendations: recs,
	}, h.engine.ModelVersion())
}

// Search handles GET /api/v1/search?q=...&n=...
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "q must not be empty", nil)
		return
	}

	n := queryInt(r, "n", 0)
	respondOK(w, h.engine.SearchItems(query, n), h.engine.ModelVersion())
}

// feedbackRequest is the POST /api/v1/feedback body.
type feedbackRequest struct {
	UserID int     `json:"user_id"`
	ItemID int     `json:"item_id"`
	Rating float64 `json:"rating"`
}

// Feedback handles POST /api/v1/feedback. The call blocks until the models
// are fully retrained, so the next read already reflects the new rating.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}

	if err := h.engine.AddFeedback(req.UserID, req.ItemID, req.Rating); err != nil {
		metrics.RecordFeedback(false)
		switch {
		case errors.Is(err, recommend.ErrInvalidRating):
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		case errors.Is(err, recommend.ErrUnknownItem):
			respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		default:
			respondError(w, http.StatusInternalServerError, "ENGINE_ERROR", "feedback ingestion failed", err)
		}
		return
	}

	metrics.RecordFeedback(true)
	respondOK(w, map[string]interface{}{
		"user_id": req.UserID,
		"item_id": req.ItemID,
		"rating":  req.Rating,
	}, h.engine.ModelVersion())
}

// statsResponse is the payload of the stats endpoint.
type statsResponse struct {
	CatalogSize      int       `json:"catalog_size"`
	UserCount        int       `json:"user_count"`
	InteractionCount int       `json:"interaction_count"`
	ModelVersion     int64     `json:"model_version"`
	LastTrainedAt    time.Time `json:"last_trained_at"`
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, statsResponse{
		CatalogSize:      h.engine.CatalogSize(),
		UserCount:        h.engine.UserCount(),
		InteractionCount: h.engine.InteractionCount(),
		ModelVersion:     h.engine.ModelVersion(),
		LastTrainedAt:    h.engine.LastTrainedAt(),
	}, h.engine.ModelVersion())
}

// evaluationResponse is the payload of the evaluation endpoint. RMSE is null
// when the collaborative model never trained.
type evaluationResponse struct {
	RMSE     *float64 `json:"rmse"`
	Coverage float64  `json:"coverage"`
	K        int      `json:"k"`
}

// Evaluation handles GET /api/v1/evaluation?k=...
func (h *Handler) Evaluation(w http.ResponseWriter, r *http.Request) {
	k := queryInt(r, "k", 10)

	resp := evaluationResponse{
		Coverage: h.evaluator.Coverage(k),
		K:        k,
	}
	if rmse, ok := h.evaluator.RMSE(); ok {
		resp.RMSE = &rmse
	}
	respondOK(w, resp, h.engine.ModelVersion())
}

// chatRequest is the POST /api/v1/agent/chat body.
type chatRequest struct {
	Message string `json:"message"`
	UserID  int    `json:"user_id"`
}

// AgentChat handles POST /api/v1/agent/chat.
func (h *Handler) AgentChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid JSON body", err)
		return
	}
	if req.Message == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "message must not be empty", nil)
		return
	}
	if req.UserID == 0 {
		req.UserID = 1
	}

	reply, err := h.agent.Chat(r.Context(), req.Message, req.UserID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "AGENT_ERROR", "chat failed", err)
		return
	}
	respondOK(w, reply, h.engine.ModelVersion())
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	}, h.engine.ModelVersion())
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(r *http.Request, name string, fallback float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
