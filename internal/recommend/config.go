// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package recommend

import "fmt"

// Config contains all tunables for the recommendation engine.
type Config struct {
	// WeightContent is the default fusion weight for content scores.
	// Weights are independent non-negative multipliers; they need not sum
	// to 1. Default: 0.5.
	WeightContent float64 `json:"weight_content"`

	// WeightCollab is the default fusion weight for collaborative scores.
	// Default: 0.5.
	WeightCollab float64 `json:"weight_collab"`

	// ContentRank is the target latent dimension for the content model.
	// The effective rank is min(ContentRank, vocabulary-1), clamped to at
	// least 1. Default: 20.
	ContentRank int `json:"content_rank"`

	// CollabRank is the target latent dimension for the collaborative
	// model. The effective rank is min(CollabRank, min(users, items)-1);
	// if that is below 1 the model is left untrained. Default: 10.
	CollabRank int `json:"collab_rank"`

	// LikedThreshold is the minimum rating for an item to count toward a
	// user's liked set in content scoring. Default: 4.0.
	LikedThreshold float64 `json:"liked_threshold"`

	// EvalSampleUsers caps how many users the coverage evaluation samples.
	// Default: 50.
	EvalSampleUsers int `json:"eval_sample_users"`

	// DefaultK is the result count used when a request passes zero.
	// Default: 10.
	DefaultK int `json:"default_k"`

	// Seed drives the evaluator's user sampling. The SVD factorizations
	// are exact and need no randomness. Default: 42.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		WeightContent:   0.5,
		WeightCollab:    0.5,
		ContentRank:     20,
		CollabRank:      10,
		LikedThreshold:  4.0,
		EvalSampleUsers: 50,
		DefaultK:        10,
		Seed:            42,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.WeightContent < 0 {
		return fmt.Errorf("weight_content must be non-negative, got %f", c.WeightContent)
	}
	if c.WeightCollab < 0 {
		return fmt.Errorf("weight_collab must be non-negative, got %f", c.WeightCollab)
	}
	if c.ContentRank < 1 {
		return fmt.Errorf("content_rank must be positive, got %d", c.ContentRank)
	}
	if c.CollabRank < 1 {
		return fmt.Errorf("collab_rank must be positive, got %d", c.CollabRank)
	}
	if c.LikedThreshold < 1.0 || c.LikedThreshold > 5.0 {
		return fmt.Errorf("liked_threshold must be in [1, 5], got %f", c.LikedThreshold)
	}
	if c.EvalSampleUsers < 1 {
		return fmt.Errorf("eval_sample_users must be positive, got %d", c.EvalSampleUsers)
	}
	if c.DefaultK < 1 {
		return fmt.Errorf("default_k must be positive, got %d", c.DefaultK)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
