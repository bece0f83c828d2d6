// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/agent"
	"github.com/reelrank/reelrank/internal/recommend"
)

type staticDataSource struct {
	items        []recommend.Item
	interactions []recommend.Interaction
}

func (s *staticDataSource) LoadItems() ([]recommend.Item, error) {
	return s.items, nil
}

func (s *staticDataSource) LoadInteractions() ([]recommend.Interaction, error) {
	return s.interactions, nil
}

func (s *staticDataSource) AppendInteraction(in recommend.Interaction) error {
	s.interactions = append(s.interactions, in)
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	source := &staticDataSource{
		items: []recommend.Item{
			{ID: 1, Title: "Alpha", Genres: "Action", Description: "A heroic space adventure."},
			{ID: 2, Title: "Beta", Genres: "Comedy", Description: "A quiet village romance."},
			{ID: 3, Title: "Gamma", Genres: "Sci-Fi", Description: "A space fleet at war."},
		},
		interactions: []recommend.Interaction{
			{UserID: 1, ItemID: 1, Rating: 5.0, Timestamp: 1},
			{UserID: 2, ItemID: 2, Rating: 4.0, Timestamp: 2},
			{UserID: 2, ItemID: 3, Rating: 3.0, Timestamp: 3},
		},
	}

	engine, err := recommend.NewEngine(*recommend.DefaultConfig(), source, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	evaluator := recommend.NewEvaluator(engine, 42)
	ag := agent.New(engine, nil, 0.5, 0.5, zerolog.Nop())

	h := NewHandler(engine, evaluator, ag, 0.5, 0.5)
	srv := httptest.NewServer(NewRouter(h, nil))
	t.Cleanup(srv.Close)
	return srv
}

func decodeEnvelope(t *testing.T, resp *http.Response) APIResponse {
	t.Helper()
	defer resp.Body.Close()

	var env APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestUserRecommendations(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/recommendations/user/1?k=2")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if env.Status != "success" {
		t.Errorf("status = %q", env.Status)
	}
	if env.Metadata.ModelVersion < 1 {
		t.Errorf("model_version = %d, want >= 1", env.Metadata.ModelVersion)
	}

	data, ok := env.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data has type %T", env.Data)
	}
	if data["mode"] != string(recommend.ModeHybrid) {
		t.Errorf("mode = %v, want %q", data["mode"], recommend.ModeHybrid)
	}
	recs, ok := data["recommendations"].([]interface{})
	if !ok || len(recs) == 0 {
		t.Fatalf("recommendations = %v", data["recommendations"])
	}
	if len(recs) > 2 {
		t.Errorf("got %d recommendations, want at most 2", len(recs))
	}
}

func TestUserRecommendations_ColdStart(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/recommendations/user/99")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	env := decodeEnvelope(t, resp)

	data := env.Data.(map[string]interface{})
	if data["mode"] != string(recommend.ModeColdStart) {
		t.Errorf("mode = %v, want %q", data["mode"], recommend.ModeColdStart)
	}
}

func TestUserRecommendations_BadInput(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	tests := []struct {
		name string
		path string
		code string
	}{
		{"non-integer user", "/api/v1/recommendations/user/abc", "VALIDATION_ERROR"},
		{"negative weight", "/api/v1/recommendations/user/1?wc=-1", "VALIDATION_ERROR"},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			env := decodeEnvelope(t, resp)
			if env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %q", env.Error, tt.code)
			}
		})
	}
}

func TestPopularRecommendations(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/recommendations/popular?k=2")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	env := decodeEnvelope(t, resp)

	data := env.Data.(map[string]interface{})
	if data["mode"] != string(recommend.ModeColdStart) {
		t.Errorf("mode = %v", data["mode"])
	}
	recs := data["recommendations"].([]interface{})
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	first := recs[0].(map[string]interface{})
	if first["reason"] != recommend.ReasonPopular {
		t.Errorf("reason = %v", first["reason"])
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/search?q=space")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	env := decodeEnvelope(t, resp)

	results, ok := env.Data.([]interface{})
	if !ok {
		t.Fatalf("data has type %T", env.Data)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	first := results[0].(map[string]interface{})
	if first["score"] != 1.0 {
		t.Errorf("score = %v, want 1", first["score"])
	}
	if !strings.Contains(first["reason"].(string), "space") {
		t.Errorf("reason = %v", first["reason"])
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/search")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestFeedback(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	body := bytes.NewBufferString(`{"user_id": 1, "item_id": 2, "rating": 4.5}`)
	resp, err := http.Post(srv.URL+"/api/v1/feedback", "application/json", body)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Status != "success" {
		t.Errorf("status = %q", env.Status)
	}
	// Retraining is synchronous, so the new version is already visible.
	if env.Metadata.ModelVersion < 2 {
		t.Errorf("model_version = %d, want >= 2", env.Metadata.ModelVersion)
	}
}

func TestFeedback_Errors(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"rating too high", `{"user_id": 1, "item_id": 1, "rating": 6}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"rating too low", `{"user_id": 1, "item_id": 1, "rating": 0.5}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown item", `{"user_id": 1, "item_id": 999, "rating": 4}`, http.StatusNotFound, "NOT_FOUND"},
		{"malformed body", `{"user_id": `, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp, err := http.Post(srv.URL+"/api/v1/feedback", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			env := decodeEnvelope(t, resp)
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %q", env.Error, tt.wantCode)
			}
		})
	}
}

func TestStats(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/stats")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	env := decodeEnvelope(t, resp)

	data := env.Data.(map[string]interface{})
	if data["catalog_size"] != 3.0 {
		t.Errorf("catalog_size = %v, want 3", data["catalog_size"])
	}
	if data["user_count"] != 2.0 {
		t.Errorf("user_count = %v, want 2", data["user_count"])
	}
	if data["interaction_count"] != 3.0 {
		t.Errorf("interaction_count = %v, want 3", data["interaction_count"])
	}
}

func TestEvaluation(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/evaluation?k=3")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)

	data := env.Data.(map[string]interface{})
	if data["k"] != 3.0 {
		t.Errorf("k = %v, want 3", data["k"])
	}
	cov, ok := data["coverage"].(float64)
	if !ok || cov < 0 || cov > 1 {
		t.Errorf("coverage = %v, want in [0, 1]", data["coverage"])
	}
}

func TestAgentChat(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	body := strings.NewReader(`{"message": "search space", "user_id": 1}`)
	resp, err := http.Post(srv.URL+"/api/v1/agent/chat", "application/json", body)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)

	data := env.Data.(map[string]interface{})
	if data["router"] != agent.RouterKeyword {
		t.Errorf("router = %v", data["router"])
	}
	if !strings.Contains(data["text"].(string), "Alpha") {
		t.Errorf("text = %v", data["text"])
	}
}

func TestAgentChat_EmptyMessage(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/agent/chat", "application/json", strings.NewReader(`{"message": ""}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	data := env.Data.(map[string]interface{})
	if data["status"] != "ok" {
		t.Errorf("health status = %v", data["status"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
