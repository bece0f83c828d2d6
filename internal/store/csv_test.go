// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/reelrank/reelrank/internal/recommend"
)

func newTempStore(t *testing.T) *CSVStore {
	t.Helper()

	dir := t.TempDir()
	return NewCSVStore(
		filepath.Join(dir, "movies.csv"),
		filepath.Join(dir, "ratings.csv"),
	)
}

func TestCSVStore_RoundTrip(t *testing.T) {
	t.Parallel()

	s := newTempStore(t)

	items := []recommend.Item{
		{ID: 1, Title: "Alpha", Genres: "Action|Sci-Fi", Description: "A heroic space adventure."},
		{ID: 2, Title: "Beta, The Sequel", Genres: "Comedy", Description: `Said: "funny"`},
	}
	interactions := []recommend.Interaction{
		{UserID: 1, ItemID: 1, Rating: 4.5, Timestamp: 1609459200},
		{UserID: 2, ItemID: 2, Rating: 3.0, Timestamp: 1609459201},
	}

	if err := writeCatalog(s.catalogPath, items); err != nil {
		t.Fatalf("writeCatalog: %v", err)
	}
	if err := writeInteractions(s.interactionsPath, interactions); err != nil {
		t.Fatalf("writeInteractions: %v", err)
	}

	gotItems, err := s.LoadItems()
	if err != nil {
		t.Fatalf("LoadItems: %v", err)
	}
	if !reflect.DeepEqual(gotItems, items) {
		t.Errorf("items = %+v, want %+v", gotItems, items)
	}

	gotInteractions, err := s.LoadInteractions()
	if err != nil {
		t.Fatalf("LoadInteractions: %v", err)
	}
	if !reflect.DeepEqual(gotInteractions, interactions) {
		t.Errorf("interactions = %+v, want %+v", gotInteractions, interactions)
	}
}

func TestCSVStore_AppendInteraction(t *testing.T) {
	t.Parallel()

	s := newTempStore(t)
	if err := writeCatalog(s.catalogPath, nil); err != nil {
		t.Fatalf("writeCatalog: %v", err)
	}
	if err := writeInteractions(s.interactionsPath, []recommend.Interaction{
		{UserID: 1, ItemID: 1, Rating: 5.0, Timestamp: 100},
	}); err != nil {
		t.Fatalf("writeInteractions: %v", err)
	}

	appended := recommend.Interaction{UserID: 2, ItemID: 3, Rating: 2.5, Timestamp: 200}
	if err := s.AppendInteraction(appended); err != nil {
		t.Fatalf("AppendInteraction: %v", err)
	}

	got, err := s.LoadInteractions()
	if err != nil {
		t.Fatalf("LoadInteractions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d interactions, want 2", len(got))
	}
	if got[1] != appended {
		t.Errorf("appended row = %+v, want %+v", got[1], appended)
	}
}

func TestCSVStore_AppendPreservesExistingRows(t *testing.T) {
	t.Parallel()

	s := newTempStore(t)
	original := []recommend.Interaction{
		{UserID: 1, ItemID: 1, Rating: 5.0, Timestamp: 100},
		{UserID: 1, ItemID: 2, Rating: 3.0, Timestamp: 101},
	}
	if err := writeInteractions(s.interactionsPath, original); err != nil {
		t.Fatalf("writeInteractions: %v", err)
	}

	if err := s.AppendInteraction(recommend.Interaction{
		UserID: 9, ItemID: 9, Rating: 1.0, Timestamp: 999,
	}); err != nil {
		t.Fatalf("AppendInteraction: %v", err)
	}

	got, err := s.LoadInteractions()
	if err != nil {
		t.Fatalf("LoadInteractions: %v", err)
	}
	if !reflect.DeepEqual(got[:2], original) {
		t.Error("append must not rewrite existing rows")
	}
}

func TestCSVStore_LoadErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing files", func(t *testing.T) {
		t.Parallel()

		s := newTempStore(t)
		if _, err := s.LoadItems(); err == nil {
			t.Error("expected error for missing catalog")
		}
		if _, err := s.LoadInteractions(); err == nil {
			t.Error("expected error for missing interaction log")
		}
	})

	t.Run("malformed item id", func(t *testing.T) {
		t.Parallel()

		s := newTempStore(t)
		bad := "item_id,title,genres,description\nnot-a-number,Alpha,Action,desc\n"
		if err := os.WriteFile(s.catalogPath, []byte(bad), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := s.LoadItems(); err == nil {
			t.Error("expected error for malformed item_id")
		}
	})

	t.Run("wrong column count", func(t *testing.T) {
		t.Parallel()

		s := newTempStore(t)
		bad := "user_id,item_id,rating\n1,2,3\n"
		if err := os.WriteFile(s.interactionsPath, []byte(bad), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := s.LoadInteractions(); err == nil {
			t.Error("expected error for wrong column count")
		}
	})
}

func TestCSVStore_Exists(t *testing.T) {
	t.Parallel()

	s := newTempStore(t)
	if s.Exists() {
		t.Error("Exists should be false before files are written")
	}

	if err := s.Seed(DefaultSeedOptions()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !s.Exists() {
		t.Error("Exists should be true after seeding")
	}
}
