// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package agent provides the conversational layer over the recommendation
// engine. A chat message is routed to one of two tools, either by an
// Ollama-backed LLM behind a circuit breaker or by a deterministic keyword
// router when no LLM is configured or the call fails. The engine itself
// never depends on the network; only routing does.
package agent

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/reelrank/reelrank/internal/metrics"
	"github.com/reelrank/reelrank/internal/recommend"
)

// Routers identify which path produced a reply.
const (
	RouterLLM     = "llm"
	RouterKeyword = "keyword"
)

const defaultResultCount = 5

// Reply is the agent's answer to one chat message.
type Reply struct {
	Text   string `json:"text"`
	Tool   string `json:"tool"`
	Router string `json:"router"`
}

// Agent routes chat messages to engine tools.
type Agent struct {
	engine  *recommend.Engine
	client  *OllamaClient
	breaker *gobreaker.CircuitBreaker[toolChoice]
	logger  zerolog.Logger

	weightContent float64
	weightCollab  float64
}

// New creates an agent over the given engine. client may be nil, in which
// case every message goes through the keyword router. The fusion weights are
// forwarded to the recommend tool.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(engine *recommend.Engine, client *OllamaClient, weightContent, weightCollab float64, logger zerolog.Logger) *Agent {
	a := &Agent{
		engine:        engine,
		client:        client,
		logger:        logger.With().Str("component", "agent").Logger(),
		weightContent: weightContent,
		weightCollab:  weightCollab,
	}

	if client != nil {
		a.breaker = gobreaker.NewCircuitBreaker[toolChoice](gobreaker.Settings{
			Name:        "ollama-router",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				a.logger.Info().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state change")
			},
		})
	}
	return a
}

// Chat answers one message for the given user. LLM routing failures of any
// kind, including an open circuit, fall back to the keyword router, so a
// reply is always produced unless the engine itself rejects the call.
func (a *Agent) Chat(ctx context.Context, message string, userID int) (Reply, error) {
	if a.client != nil {
		choice, err := a.breaker.Execute(func() (toolChoice, error) {
			return a.client.Route(ctx, message)
		})
		if err == nil {
			return a.runTool(choice, userID, RouterLLM)
		}
		metrics.AgentLLMErrors.Inc()
		a.logger.Warn().Err(err).Msg("llm routing failed, using keyword router")
	}

	return a.runTool(a.keywordRoute(message), userID, RouterKeyword)
}

// keywordRoute is the deterministic fallback: suggestion-flavored messages
// go to the recommend tool, everything else becomes a search query with the
// word "search" stripped.
func (a *Agent) keywordRoute(message string) toolChoice {
	lower := strings.ToLower(message)
	if strings.Contains(lower, "recommend") ||
		strings.Contains(lower, "watch") ||
		strings.Contains(lower, "suggest") {
		return toolChoice{Tool: ToolRecommend}
	}

	query := strings.TrimSpace(strings.ReplaceAll(lower, "search", ""))
	if query == "" {
		query = "action"
	}
	return toolChoice{Tool: ToolSearch, Query: query}
}

func (a *Agent) runTool(choice toolChoice, userID int, router string) (Reply, error) {
	metrics.AgentToolCalls.WithLabelValues(choice.Tool, router).Inc()

	switch choice.Tool {
	case ToolRecommend:
		text, err := recommendMovies(a.engine, userID, defaultResultCount, a.weightContent, a.weightCollab)
		if err != nil {
			return Reply{}, err
		}
		return Reply{Text: text, Tool: ToolRecommend, Router: router}, nil
	default:
		text := searchMovies(a.engine, choice.Query, defaultResultCount)
		return Reply{Text: text, Tool: ToolSearch, Router: router}, nil
	}
}
