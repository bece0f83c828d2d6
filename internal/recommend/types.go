// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

// Mode identifies which ranking path produced a recommendation list.
type Mode string

const (
	// ModeHybrid is the warm path: weighted fusion of content and
	// collaborative scores.
	ModeHybrid Mode = "Hybrid"

	// ModeColdStart is returned for users with no recorded interactions.
	ModeColdStart Mode = "Popularity (New User)"
)

// Reason strings attached to recommendations.
const (
	// ReasonPopular marks items surfaced by the popularity ranking.
	ReasonPopular = "Popular Outcome"

	// ReasonCollaborative marks items whose collaborative score dominated.
	ReasonCollaborative = "Users like you also enjoyed this"

	// reasonLikedFallback is used when the content score dominated but no
	// liked item could be attributed.
	reasonLikedFallback = "Because you liked movies you liked"
)

// Item is a recommendable catalog entry. The catalog is loaded once at
// startup and immutable thereafter.
type Item struct {
	// ID is the unique, stable item identifier.
	ID int `json:"item_id"`

	// Title is the display title.
	Title string `json:"title"`

	// Genres is a pipe-delimited genre tag string (order-insignificant).
	Genres string `json:"genres"`

	// Description is the free text used by the content model.
	Description string `json:"description"`
}

// Interaction is one user-item rating event. Interactions are append-only:
// the same (user, item) pair may appear multiple times historically, and the
// collaborative model keeps only the most recent rating per pair.
type Interaction struct {
	// UserID is the rating user.
	UserID int `json:"user_id"`

	// ItemID is the rated item.
	ItemID int `json:"item_id"`

	// Rating is the rating value in [1.0, 5.0].
	Rating float64 `json:"rating"`

	// Timestamp is the event time in epoch seconds.
	Timestamp int64 `json:"timestamp"`
}

// Recommendation is one entry of a ranked result list.
type Recommendation struct {
	// ItemID identifies the recommended item.
	ItemID int `json:"item_id"`

	// Title is the catalog title.
	Title string `json:"title"`

	// Genres is the catalog genre string.
	Genres string `json:"genres"`

	// Score is the ranking score. Its scale depends on the producing
	// ranking: fused scores are bounded by the sum of the fusion weights,
	// popularity scores are mean*log(count+1), search scores are fixed.
	Score float64 `json:"score"`

	// Reason is a human-readable justification.
	Reason string `json:"reason"`
}

// DataSource supplies the persisted catalog and interaction log, and accepts
// appended feedback rows. Implemented by the store package; defined here so
// the engine has no dependency on persistence mechanics.
type DataSource interface {
	// LoadItems returns the full item catalog.
	LoadItems() ([]Item, error)

	// LoadInteractions returns all persisted interactions in log order.
	LoadInteractions() ([]Interaction, error)

	// AppendInteraction durably appends one interaction to the log
	// without rewriting existing rows.
	AppendInteraction(Interaction) error
}
