// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package agent

import (
	"fmt"
	"strings"

	"github.com/reelrank/reelrank/internal/recommend"
)

// Tool names exposed to the routing layer.
const (
	ToolSearch    = "search_movies"
	ToolRecommend = "recommend_movies"
)

// searchMovies runs a free-text catalog search and formats the hits as a
// text block for the chat response.
func searchMovies(engine *recommend.Engine, query string, n int) string {
	results := engine.SearchItems(query, n)
	if len(results) == 0 {
		return "No movies found matching that query."
	}

	var b strings.Builder
	b.WriteString("Here are some movies I found:\n")
	for _, m := range results {
		fmt.Fprintf(&b, "- %s (%s)\n", m.Title, m.Genres)
	}
	return b.String()
}

// recommendMovies fetches personalized recommendations for the user and
// formats them, including the serving mode and per-item reason.
func recommendMovies(engine *recommend.Engine, userID, n int, wc, wcf float64) (string, error) {
	recs, mode, err := engine.Recommend(userID, n, wc, wcf)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Here are your personalized recommendations (%s):\n", mode)
	for _, m := range recs {
		fmt.Fprintf(&b, "- %s (%.2f): %s\n", m.Title, m.Score, m.Reason)
	}
	return b.String(), nil
}
