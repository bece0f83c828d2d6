// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"math"
	"math/rand"
)

// Evaluator computes quality metrics over a trained engine. It holds the
// engine read-only and derives nothing persistent.
type Evaluator struct {
	engine *Engine
	rng    *rand.Rand
}

// NewEvaluator creates an evaluator over the given engine. The seed drives
// user sampling in Coverage; reuse a seed for reproducible runs.
func NewEvaluator(engine *Engine, seed int64) *Evaluator {
	return &Evaluator{
		engine: engine,
		//nolint:gosec // math/rand is fine for evaluation sampling
		rng: rand.New(rand.NewSource(seed)),
	}
}

// RMSE returns the root-mean-squared error of the collaborative model's
// reconstruction against every logged rating whose user and item are both
// axes of the trained matrix. Every log row counts, re-ratings included.
//
// This measures training fit, not generalization: there is no held-out set.
// ok is false when the collaborative model never trained or no rating could
// be compared.
func (ev *Evaluator) RMSE() (float64, bool) {
	e := ev.engine
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.collab.trained {
		return 0, false
	}

	var sumSq float64
	var count int
	for _, in := range e.interactions {
		pred, ok := e.collab.score(in.UserID, in.ItemID)
		if !ok {
			continue
		}
		diff := in.Rating - pred
		sumSq += diff * diff
		count++
	}
	if count == 0 {
		return 0, false
	}
	return math.Sqrt(sumSq / float64(count)), true
}

// Coverage returns the fraction of the catalog that appears in at least one
// sampled user's top-k list. Up to the configured sample size of users with
// recorded interactions are drawn at random; with fewer users, all are used
// and the result is deterministic.
func (ev *Evaluator) Coverage(k int) float64 {
	e := ev.engine

	e.mu.RLock()
	users := e.userIDsLocked()
	catalogSize := len(e.items)
	sampleSize := e.config.EvalSampleUsers
	wc, wcf := e.config.WeightContent, e.config.WeightCollab
	e.mu.RUnlock()

	if catalogSize == 0 {
		return 0
	}
	if len(users) > sampleSize {
		ev.rng.Shuffle(len(users), func(i, j int) {
			users[i], users[j] = users[j], users[i]
		})
		users = users[:sampleSize]
	}

	recommended := make(map[int]struct{})
	for _, userID := range users {
		recs, _, err := e.Recommend(userID, k, wc, wcf)
		if err != nil {
			continue
		}
		for _, r := range recs {
			recommended[r.ItemID] = struct{}{}
		}
	}
	return float64(len(recommended)) / float64(catalogSize)
}
