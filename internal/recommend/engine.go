// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/reelrank/reelrank/internal/metrics"
)

// Common engine errors.
var (
	ErrUnknownItem   = errors.New("unknown item")
	ErrInvalidRating = errors.New("rating must be in [1.0, 5.0]")
	ErrInvalidWeight = errors.New("fusion weights must be non-negative")
)

// Engine is the hybrid recommendation engine. It owns the catalog, the
// interaction log, and all derived models exclusively; nothing outside the
// engine holds a mutable reference to any of them.
//
// One instance is constructed at startup and shared process-wide. All reads
// take the read lock; AddFeedback takes the write lock for the duration of
// the append plus the full retrain, so readers never observe a partially
// rebuilt model.
type Engine struct {
	config Config
	logger zerolog.Logger
	source DataSource

	mu           sync.RWMutex
	items        []Item
	itemByID     map[int]Item
	itemPos      map[int]int
	interactions []Interaction

	content    *contentModel
	collab     *collabModel
	popularity *popularityModel

	modelVersion  int64
	lastTrainedAt time.Time
}

// NewEngine loads the catalog and interaction log from the data source and
// trains all models before returning. Construction cost is the full training
// cost; callers must reuse the returned instance rather than rebuilding it
// per request.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, source DataSource, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	items, err := source.LoadItems()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	interactions, err := source.LoadInteractions()
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}

	e := &Engine{
		config:       cfg,
		logger:       logger.With().Str("component", "recommend").Logger(),
		source:       source,
		items:        items,
		itemByID:     make(map[int]Item, len(items)),
		itemPos:      make(map[int]int, len(items)),
		interactions: interactions,
	}
	for i, it := range items {
		e.itemByID[it.ID] = it
		e.itemPos[it.ID] = i
	}

	e.trainLocked()

	e.logger.Info().
		Int("catalog_size", len(items)).
		Int("interactions", len(interactions)).
		Msg("engine ready")
	return e, nil
}

// trainLocked rebuilds every derived model from the current catalog and
// interaction log. Caller must hold the write lock (or be the constructor,
// before the engine escapes).
func (e *Engine) trainLocked() {
	start := time.Now()

	e.content = trainContentModel(e.items, e.config.ContentRank)
	e.collab = trainCollabModel(e.interactions, e.config.CollabRank)
	e.popularity = trainPopularityModel(e.interactions)

	e.modelVersion++
	e.lastTrainedAt = time.Now()

	metrics.RecordTraining(time.Since(start))

	e.logger.Info().
		Int64("model_version", e.modelVersion).
		Bool("collab_trained", e.collab.trained).
		Dur("duration", time.Since(start)).
		Msg("models trained")
}

// Recommend produces up to n ranked suggestions for userID, fusing content
// and collaborative scores with the given non-negative weights. Users with
// no recorded interactions get the popularity ranking instead, tagged with
// ModeColdStart. The result never contains an item the user has already
// rated.
func (e *Engine) Recommend(userID, n int, weightContent, weightCollab float64) ([]Recommendation, Mode, error) {
	if weightContent < 0 || weightCollab < 0 {
		return nil, "", ErrInvalidWeight
	}
	if n < 1 {
		n = e.config.DefaultK
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	seen := e.seenByUserLocked(userID)
	if len(seen) == 0 {
		return e.popularLocked(n), ModeColdStart, nil
	}

	collabScores := e.collab.scoresForUser(userID)
	contentScores, sources := e.contentScoresLocked(userID)

	// Each family is scaled by its own maximum over every scored item,
	// seen included, so the two land in comparable ranges before fusion.
	maxContent := maxValue(contentScores)
	maxCollab := maxValue(collabScores)

	recs := make([]Recommendation, 0, len(e.items))
	for _, it := range e.items {
		if _, ok := seen[it.ID]; ok {
			continue
		}

		var sContent, sCollab float64
		if maxContent > 0 {
			sContent = contentScores[it.ID] / maxContent
		}
		if maxCollab > 0 {
			sCollab = collabScores[it.ID] / maxCollab
		}

		reason := ReasonCollaborative
		if sContent > sCollab {
			reason = reasonLikedFallback
			if srcID, ok := sources[it.ID]; ok {
				if src, ok := e.itemByID[srcID]; ok {
					reason = fmt.Sprintf("Because you liked %s", src.Title)
				}
			}
		}

		recs = append(recs, Recommendation{
			ItemID: it.ID,
			Title:  it.Title,
			Genres: it.Genres,
			Score:  weightContent*sContent + weightCollab*sCollab,
			Reason: reason,
		})
	}

	// Stable sort keeps catalog order on score ties.
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if n < len(recs) {
		recs = recs[:n]
	}
	return recs, ModeHybrid, nil
}

// contentScoresLocked accumulates, per catalog item, similarity contributions
// from every item the user rated at or above the liked threshold, walking the
// interaction log in order. Alongside the accumulator it records which liked
// item to attribute each target's score to: the first contributor, replaced
// by any later contributor whose single share exceeds everything accumulated
// before it. The attribution is a deliberately approximate heuristic, not an
// exact arg-max.
func (e *Engine) contentScoresLocked(userID int) (map[int]float64, map[int]int) {
	scores := make(map[int]float64)
	sources := make(map[int]int)

	for _, in := range e.interactions {
		if in.UserID != userID || in.Rating < e.config.LikedThreshold {
			continue
		}
		pos, ok := e.itemPos[in.ItemID]
		if !ok {
			continue
		}

		row := e.content.row(pos)
		for targetPos, score := range row {
			targetID := e.items[targetPos].ID
			if _, ok := scores[targetID]; !ok {
				sources[targetID] = in.ItemID
			}
			scores[targetID] += score
			if score > 0 && scores[targetID]-score < score {
				sources[targetID] = in.ItemID
			}
		}
	}
	return scores, sources
}

// seenByUserLocked returns the set of item IDs the user has rated, at any
// rating value.
func (e *Engine) seenByUserLocked(userID int) map[int]struct{} {
	seen := make(map[int]struct{})
	for _, in := range e.interactions {
		if in.UserID == userID {
			seen[in.ItemID] = struct{}{}
		}
	}
	return seen
}

// GetPopularItems returns the top n items by the popularity heuristic. The
// ranking is user-independent.
func (e *Engine) GetPopularItems(n int) []Recommendation {
	if n < 1 {
		n = e.config.DefaultK
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.popularLocked(n)
}

func (e *Engine) popularLocked(n int) []Recommendation {
	entries := e.popularity.top(n)
	recs := make([]Recommendation, 0, len(entries))
	for _, entry := range entries {
		it, ok := e.itemByID[entry.itemID]
		if !ok {
			continue
		}
		recs = append(recs, Recommendation{
			ItemID: it.ID,
			Title:  it.Title,
			Genres: it.Genres,
			Score:  entry.score,
			Reason: ReasonPopular,
		})
	}
	return recs
}

// SearchItems does a case-insensitive substring match of query against each
// item's title, genres, and description, returning up to n matches in
// catalog order. This is a first-match filter, not relevance ranking; every
// hit carries the same placeholder score.
func (e *Engine) SearchItems(query string, n int) []Recommendation {
	if n < 1 {
		n = e.config.DefaultK
	}
	q := strings.ToLower(query)

	e.mu.RLock()
	defer e.mu.RUnlock()

	reason := fmt.Sprintf("Matched search query: '%s'", query)
	recs := make([]Recommendation, 0, n)
	for _, it := range e.items {
		if len(recs) == n {
			break
		}
		if strings.Contains(strings.ToLower(it.Title), q) ||
			strings.Contains(strings.ToLower(it.Genres), q) ||
			strings.Contains(strings.ToLower(it.Description), q) {
			recs = append(recs, Recommendation{
				ItemID: it.ID,
				Title:  it.Title,
				Genres: it.Genres,
				Score:  1.0,
				Reason: reason,
			})
		}
	}
	return recs
}

// AddFeedback appends one interaction with the current timestamp to the
// persisted log and the in-memory table, then synchronously retrains every
// model from scratch. The call blocks all reads until the rebuild completes;
// its cost is the full training cost, not one row's.
func (e *Engine) AddFeedback(userID, itemID int, rating float64) error {
	if rating < 1.0 || rating > 5.0 {
		return ErrInvalidRating
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.itemByID[itemID]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownItem, itemID)
	}

	in := Interaction{
		UserID:    userID,
		ItemID:    itemID,
		Rating:    rating,
		Timestamp: time.Now().Unix(),
	}
	if err := e.source.AppendInteraction(in); err != nil {
		return fmt.Errorf("persist feedback: %w", err)
	}
	e.interactions = append(e.interactions, in)

	e.logger.Info().
		Int("user_id", userID).
		Int("item_id", itemID).
		Float64("rating", rating).
		Msg("feedback added")

	e.trainLocked()
	return nil
}

// CatalogSize returns the number of items in the catalog.
func (e *Engine) CatalogSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.items)
}

// UserCount returns the number of distinct users with recorded interactions.
func (e *Engine) UserCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	users := make(map[int]struct{})
	for _, in := range e.interactions {
		users[in.UserID] = struct{}{}
	}
	return len(users)
}

// InteractionCount returns the number of rows in the interaction log.
func (e *Engine) InteractionCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.interactions)
}

// ModelVersion returns the number of completed training runs.
func (e *Engine) ModelVersion() int64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.modelVersion
}

// LastTrainedAt returns when the models were last rebuilt.
func (e *Engine) LastTrainedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastTrainedAt
}

// userIDsLocked returns the distinct user IDs present in the interaction
// log, in ascending order.
func (e *Engine) userIDsLocked() []int {
	users := make(map[int]struct{})
	for _, in := range e.interactions {
		users[in.UserID] = struct{}{}
	}
	return sortedKeys(users)
}

func maxValue(scores map[int]float64) float64 {
	var max float64
	first := true
	for _, v := range scores {
		if first || v > max {
			max = v
			first = false
		}
	}
	return max
}
