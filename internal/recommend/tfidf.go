// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// englishStopWords is the stop-word list applied by the TF-IDF vectorizer.
// Stop words carry no topical signal and would otherwise dominate the
// document-frequency statistics of short descriptions.
var englishStopWords = map[string]struct{}{}

//nolint:gochecknoinits // builds the stop-word set once at startup
func init() {
	for _, w := range strings.Fields(`
		a about above across after afterwards again against all almost
		alone along already also although always am among amongst an and
		another any anyhow anyone anything anyway anywhere are around as
		at back be became because become becomes becoming been before
		beforehand behind being below beside besides between beyond both
		bottom but by call can cannot could did do does doing done down
		during each either else elsewhere enough etc even ever every
		everyone everything everywhere except few first for former
		formerly from front full further had has have he hence her here
		hereafter hereby herein hereupon hers herself him himself his
		how however i if in indeed into is it its itself last latter
		latterly least less many may me meanwhile might mine more
		moreover most mostly much must my myself namely neither never
		nevertheless next no nobody none nor not nothing now nowhere of
		off often on once one only onto or other others otherwise our
		ours ourselves out over own per perhaps please rather re same
		see seem seemed seeming seems several she should since so some
		somehow someone something sometime sometimes somewhere still
		such than that the their them themselves then thence there
		thereafter thereby therefore therein thereupon these they this
		those though through throughout thru thus to together too toward
		towards under until up upon us very via was we well were what
		whatever when whence whenever where whereafter whereas whereby
		wherein whereupon wherever whether which while whither who whoever
		whole whom whose why will with within without would yet you your
		yours yourself yourselves
	`) {
		englishStopWords[w] = struct{}{}
	}
}

// tokenize lowercases the text and splits it into alphanumeric tokens of at
// least two characters, excluding English stop words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := englishStopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// tfidfMatrix computes a dense, L2 row-normalized TF-IDF matrix over the
// given documents. Returns the matrix as row slices plus the vocabulary in
// column order. Vocabulary columns are sorted lexicographically so the
// layout is deterministic.
//
// Uses smoothed inverse document frequency: idf(t) = ln((1+n)/(1+df(t))) + 1.
func tfidfMatrix(docs []string) ([][]float64, []string) {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)

	for i, doc := range docs {
		tf := make(map[string]int)
		for _, tok := range tokenize(doc) {
			tf[tok]++
		}
		counts[i] = tf
		for tok := range tf {
			df[tok]++
		}
	}

	vocab := make([]string, 0, len(df))
	for tok := range df {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	col := make(map[string]int, len(vocab))
	for j, tok := range vocab {
		col[tok] = j
	}

	n := float64(len(docs))
	idf := make([]float64, len(vocab))
	for j, tok := range vocab {
		idf[j] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}

	rows := make([][]float64, len(docs))
	for i, tf := range counts {
		row := make([]float64, len(vocab))
		var norm float64
		for tok, c := range tf {
			j := col[tok]
			v := float64(c) * idf[j]
			row[j] = v
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j] /= norm
			}
		}
		rows[i] = row
	}

	return rows, vocab
}
