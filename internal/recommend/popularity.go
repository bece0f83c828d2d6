// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"math"
	"sort"
)

// popularityEntry is one item's aggregate rating signal.
type popularityEntry struct {
	itemID int
	score  float64
}

// popularityModel ranks the catalog by mean rating damped by a log of the
// rating count, so a 5.0 average from one rating does not outrank a 4.5
// average from two hundred.
type popularityModel struct {
	ranked []popularityEntry
}

// trainPopularityModel aggregates the full interaction log per item and
// scores each as mean(rating) * ln(count+1). Every historical row counts,
// including re-ratings of the same pair. Items with no interactions are
// excluded. Score ties break by ascending item ID.
func trainPopularityModel(interactions []Interaction) *popularityModel {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, in := range interactions {
		sums[in.ItemID] += in.Rating
		counts[in.ItemID]++
	}

	ranked := make([]popularityEntry, 0, len(sums))
	for itemID, sum := range sums {
		n := counts[itemID]
		mean := sum / float64(n)
		ranked = append(ranked, popularityEntry{
			itemID: itemID,
			score:  mean * math.Log(float64(n)+1),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].itemID < ranked[j].itemID
	})

	return &popularityModel{ranked: ranked}
}

// top returns the k highest-scored items, fewer if the model ranks fewer.
func (m *popularityModel) top(k int) []popularityEntry {
	if k > len(m.ranked) {
		k = len(m.ranked)
	}
	if k < 0 {
		k = 0
	}
	return m.ranked[:k]
}
