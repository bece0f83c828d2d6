// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// truncatedSVD factorizes a (rows x cols) matrix and keeps the k strongest
// singular components. It returns
//
//	latent     (rows x k): U_k * diag(s_k), the row embeddings
//	components (k x cols): V_k^T, the column embeddings
//
// so that latent * components reconstructs the input in the least-squares
// sense. k must satisfy 1 <= k <= min(rows, cols).
func truncatedSVD(data [][]float64, k int) (latent, components [][]float64, err error) {
	rows := len(data)
	if rows == 0 {
		return nil, nil, fmt.Errorf("truncated svd: empty matrix")
	}
	cols := len(data[0])
	if cols == 0 {
		return nil, nil, fmt.Errorf("truncated svd: zero-width matrix")
	}

	minDim := rows
	if cols < minDim {
		minDim = cols
	}
	if k < 1 || k > minDim {
		return nil, nil, fmt.Errorf("truncated svd: rank %d out of range [1, %d]", k, minDim)
	}

	a := mat.NewDense(rows, cols, nil)
	for i, row := range data {
		a.SetRow(i, row)
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, nil, fmt.Errorf("truncated svd: factorization failed")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	latent = make([][]float64, rows)
	for i := 0; i < rows; i++ {
		lr := make([]float64, k)
		for f := 0; f < k; f++ {
			lr[f] = u.At(i, f) * s[f]
		}
		latent[i] = lr
	}

	components = make([][]float64, k)
	for f := 0; f < k; f++ {
		cr := make([]float64, cols)
		for j := 0; j < cols; j++ {
			cr[j] = v.At(j, f)
		}
		components[f] = cr
	}

	return latent, components, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 when either vector has zero norm.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
