// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import "sort"

// collabModel holds the trained collaborative-filtering model: a low-rank
// factorization of the dense user-item rating matrix.
//
// Zero cells are "no signal" sentinels, not ratings. The factorization is an
// unconstrained least-squares fit over the whole matrix including those
// zeros, so reconstructed scores can exceed the rating range or go negative.
// That is the predictive signal, not an error.
type collabModel struct {
	// userFactors is users x k; itemFactors is k x items.
	userFactors [][]float64
	itemFactors [][]float64

	// userIndex and itemIndex map IDs to matrix axes. Axes are sorted by
	// ID so the layout is deterministic for a given interaction set.
	userIndex map[int]int
	itemIndex map[int]int

	trained bool
}

// dedupeLatest collapses interactions to one rating per (user, item) pair,
// keeping the most recent by timestamp. Later log rows win timestamp ties.
func dedupeLatest(interactions []Interaction) map[[2]int]Interaction {
	latest := make(map[[2]int]Interaction, len(interactions))
	for _, in := range interactions {
		key := [2]int{in.UserID, in.ItemID}
		if prev, ok := latest[key]; ok && prev.Timestamp > in.Timestamp {
			continue
		}
		latest[key] = in
	}
	return latest
}

// trainCollabModel pivots the interaction log into a dense user-item matrix
// and factorizes it with truncated SVD at rank min(targetRank,
// min(users, items)-1). If that rank falls below 1 (fewer than two users or
// two items) the model is left untrained and downstream scoring treats it as
// producing no signal.
func trainCollabModel(interactions []Interaction, targetRank int) *collabModel {
	m := &collabModel{
		userIndex: make(map[int]int),
		itemIndex: make(map[int]int),
	}

	latest := dedupeLatest(interactions)
	if len(latest) == 0 {
		return m
	}

	userSet := make(map[int]struct{})
	itemSet := make(map[int]struct{})
	for key := range latest {
		userSet[key[0]] = struct{}{}
		itemSet[key[1]] = struct{}{}
	}

	users := sortedKeys(userSet)
	items := sortedKeys(itemSet)
	for i, u := range users {
		m.userIndex[u] = i
	}
	for j, it := range items {
		m.itemIndex[it] = j
	}

	rank := targetRank
	if minDim := min(len(users), len(items)); rank > minDim-1 {
		rank = minDim - 1
	}
	if rank < 1 {
		return m
	}

	matrix := make([][]float64, len(users))
	for i := range matrix {
		matrix[i] = make([]float64, len(items))
	}
	for key, in := range latest {
		matrix[m.userIndex[key[0]]][m.itemIndex[key[1]]] = in.Rating
	}

	userFactors, itemFactors, err := truncatedSVD(matrix, rank)
	if err != nil {
		return m
	}

	m.userFactors = userFactors
	m.itemFactors = itemFactors
	m.trained = true
	return m
}

// score reconstructs the rating estimate for (userID, itemID) as the dot
// product of the user's embedding row and the item's embedding column.
// Returns ok=false when the model is untrained or either axis is absent.
func (m *collabModel) score(userID, itemID int) (float64, bool) {
	if !m.trained {
		return 0, false
	}
	ui, ok := m.userIndex[userID]
	if !ok {
		return 0, false
	}
	ii, ok := m.itemIndex[itemID]
	if !ok {
		return 0, false
	}
	return m.scoreIndex(ui, ii), true
}

// scoreIndex reconstructs the cell at matrix coordinates (ui, ii).
func (m *collabModel) scoreIndex(ui, ii int) float64 {
	var s float64
	for f := range m.userFactors[ui] {
		s += m.userFactors[ui][f] * m.itemFactors[f][ii]
	}
	return s
}

// scoresForUser reconstructs estimates for every item axis of the matrix.
// Returns nil when the model is untrained or the user is absent.
func (m *collabModel) scoresForUser(userID int) map[int]float64 {
	if !m.trained {
		return nil
	}
	ui, ok := m.userIndex[userID]
	if !ok {
		return nil
	}

	scores := make(map[int]float64, len(m.itemIndex))
	for itemID, ii := range m.itemIndex {
		scores[itemID] = m.scoreIndex(ui, ii)
	}
	return scores
}

func sortedKeys(set map[int]struct{}) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
