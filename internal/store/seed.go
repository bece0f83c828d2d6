// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/reelrank/reelrank/internal/recommend"
)

var seedGenres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime", "Documentary",
	"Drama", "Fantasy", "Horror", "Sci-Fi", "Thriller",
}

// SeedOptions controls synthetic dataset generation.
type SeedOptions struct {
	Items        int
	Users        int
	Interactions int
	Seed         int64
}

// DefaultSeedOptions returns the standard demo dataset shape.
func DefaultSeedOptions() SeedOptions {
	return SeedOptions{
		Items:        100,
		Users:        20,
		Interactions: 500,
		Seed:         42,
	}
}

// Seed generates a synthetic MovieLens-shaped dataset and writes both CSV
// files, creating parent directories as needed. Output is deterministic for
// a given SeedOptions. Duplicate (user, item) draws are dropped, keeping the
// first, so the interaction count in the file may be below
// opts.Interactions.
func (s *CSVStore) Seed(opts SeedOptions) error {
	//nolint:gosec // math/rand keeps the dataset reproducible
	rng := rand.New(rand.NewSource(opts.Seed))

	items := generateItems(rng, opts.Items)
	interactions := generateInteractions(rng, opts, items)

	if err := os.MkdirAll(filepath.Dir(s.catalogPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	if err := writeCatalog(s.catalogPath, items); err != nil {
		return err
	}
	return writeInteractions(s.interactionsPath, interactions)
}

func generateItems(rng *rand.Rand, n int) []recommend.Item {
	items := make([]recommend.Item, 0, n)
	for i := 1; i <= n; i++ {
		genres := pickGenres(rng)

		tone := "complex"
		if contains(genres, "Action") {
			tone = "heroic"
		}
		setting := "modern"
		if contains(genres, "Sci-Fi") {
			setting = "futuristic"
		}

		items = append(items, recommend.Item{
			ID:     i,
			Title:  fmt.Sprintf("Movie %d (%d)", i, 2000+i%23),
			Genres: strings.Join(genres, "|"),
			Description: fmt.Sprintf("A %s movie about %s characters in a %s world.",
				strings.ToLower(genres[0]), tone, setting),
		})
	}
	return items
}

func pickGenres(rng *rand.Rand) []string {
	count := 1 + rng.Intn(3)
	perm := rng.Perm(len(seedGenres))
	genres := make([]string, count)
	for i := 0; i < count; i++ {
		genres[i] = seedGenres[perm[i]]
	}
	return genres
}

func generateInteractions(rng *rand.Rand, opts SeedOptions, items []recommend.Item) []recommend.Interaction {
	// Skewed towards positive ratings.
	ratings := []float64{1.0, 2.0, 3.0, 4.0, 5.0}
	weights := []float64{0.05, 0.10, 0.25, 0.35, 0.25}

	seen := make(map[[2]int]struct{})
	interactions := make([]recommend.Interaction, 0, opts.Interactions)
	for i := 0; i < opts.Interactions; i++ {
		u := 1 + rng.Intn(opts.Users)
		m := items[rng.Intn(len(items))].ID

		key := [2]int{u, m}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		interactions = append(interactions, recommend.Interaction{
			UserID:    u,
			ItemID:    m,
			Rating:    weightedChoice(rng, ratings, weights),
			Timestamp: 1609459200 + rng.Int63n(31536000), // random time in 2021
		})
	}
	return interactions
}

func weightedChoice(rng *rand.Rand, values, weights []float64) float64 {
	r := rng.Float64()
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return values[i]
		}
	}
	return values[len(values)-1]
}

func contains(genres []string, g string) bool {
	for _, have := range genres {
		if have == g {
			return true
		}
	}
	return false
}

func writeCatalog(path string, items []recommend.Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create catalog: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(catalogHeader); err != nil {
		return err
	}
	for _, it := range items {
		row := []string{strconv.Itoa(it.ID), it.Title, it.Genres, it.Description}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeInteractions(path string, interactions []recommend.Interaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create interaction log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(interactionHeader); err != nil {
		return err
	}
	for _, in := range interactions {
		if err := w.Write(formatInteraction(in)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
