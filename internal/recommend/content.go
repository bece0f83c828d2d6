// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

// contentModel holds the trained content-based similarity model: a dense,
// symmetric item-by-item cosine similarity matrix over latent text
// embeddings. Positions follow catalog order; the engine's itemIndex maps
// item IDs to positions.
//
// The model is rebuilt from scratch on every retrain and never updated
// incrementally. All access is mediated by the engine's lock.
type contentModel struct {
	// sim[i][j] is the cosine similarity between the latent
	// representations of items at catalog positions i and j.
	// The diagonal is ~1.0 and the matrix is symmetric up to
	// floating-point noise.
	sim [][]float64

	trained bool
}

// trainContentModel builds the item similarity matrix from catalog
// descriptions: TF-IDF over the catalog vocabulary, reduced to
// min(targetRank, vocabulary-1) latent dimensions via truncated SVD, then
// pairwise cosine similarity over the reduced vectors.
//
// If the catalog vocabulary is empty the model is left untrained and
// contributes zero signal downstream. A vocabulary of one term degenerates
// the reduction target to zero; the rank is clamped to 1 in that case.
func trainContentModel(items []Item, targetRank int) *contentModel {
	m := &contentModel{}
	if len(items) == 0 {
		return m
	}

	docs := make([]string, len(items))
	for i, it := range items {
		docs[i] = it.Description
	}

	tfidf, vocab := tfidfMatrix(docs)
	if len(vocab) == 0 {
		return m
	}

	rank := targetRank
	if rank > len(vocab)-1 {
		rank = len(vocab) - 1
	}
	if rank < 1 {
		rank = 1
	}
	if rank > len(items) {
		rank = len(items)
	}

	latent, _, err := truncatedSVD(tfidf, rank)
	if err != nil {
		// Degenerate corpus: fall back to raw TF-IDF rows so the
		// similarity matrix still exists.
		latent = tfidf
	}

	n := len(items)
	m.sim = make([][]float64, n)
	for i := 0; i < n; i++ {
		m.sim[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		m.sim[i][i] = cosineSimilarity(latent[i], latent[i])
		for j := i + 1; j < n; j++ {
			s := cosineSimilarity(latent[i], latent[j])
			m.sim[i][j] = s
			m.sim[j][i] = s
		}
	}

	m.trained = true
	return m
}

// row returns the similarity row for the item at the given catalog
// position, or nil if the model is untrained.
func (m *contentModel) row(pos int) []float64 {
	if !m.trained || pos < 0 || pos >= len(m.sim) {
		return nil
	}
	return m.sim[pos]
}

// size returns the number of items covered by the similarity matrix.
func (m *contentModel) size() int {
	return len(m.sim)
}
