// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package agent

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const routerSystemPrompt = `You route movie chat messages to one of two tools.
Reply with a single JSON object and nothing else:
{"tool": "search_movies", "query": "<search terms>"} when the user asks for a
specific kind of movie, or {"tool": "recommend_movies"} when the user wants
personal suggestions.`

// toolChoice is the routing decision returned by the LLM.
type toolChoice struct {
	Tool  string `json:"tool"`
	Query string `json:"query,omitempty"`
}

// OllamaClient routes chat messages through an Ollama-compatible chat API.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaClient creates a client for the given base URL (for example
// http://localhost:11434) and model name.
func NewOllamaClient(baseURL, model string, httpClient *http.Client) *OllamaClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OllamaClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
	}
}

// Route asks the model which tool should handle the message.
func (c *OllamaClient) Route(ctx context.Context, message string) (toolChoice, error) {
	payload := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": routerSystemPrompt},
			{"role": "user", "content": message},
		},
		"stream": false,
		"format": "json",
	}

	body, err := c.post(ctx, "/api/chat", payload)
	if err != nil {
		return toolChoice{}, fmt.Errorf("ollama chat: %w", err)
	}

	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return toolChoice{}, fmt.Errorf("ollama chat decode: %w", err)
	}

	var choice toolChoice
	if err := json.Unmarshal([]byte(resp.Message.Content), &choice); err != nil {
		return toolChoice{}, fmt.Errorf("ollama tool decode: %w", err)
	}
	if choice.Tool != ToolSearch && choice.Tool != ToolRecommend {
		return toolChoice{}, fmt.Errorf("ollama returned unknown tool %q", choice.Tool)
	}
	return choice, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
