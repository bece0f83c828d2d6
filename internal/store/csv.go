// ReelRank - Hybrid Movie Recommendation Service
// Copyright 2026 ReelRank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

// Package store persists the item catalog and interaction log as CSV files
// with header rows. The catalog is read-only at runtime; the interaction log
// supports appending single rows without rewriting the file.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/reelrank/reelrank/internal/recommend"
)

var (
	catalogHeader     = []string{"item_id", "title", "genres", "description"}
	interactionHeader = []string{"user_id", "item_id", "rating", "timestamp"}
)

// CSVStore implements recommend.DataSource over two CSV files.
type CSVStore struct {
	catalogPath      string
	interactionsPath string

	// Guards appends so concurrent writers cannot interleave partial rows.
	appendMu sync.Mutex
}

// NewCSVStore creates a store reading the catalog from catalogPath and the
// interaction log from interactionsPath. Neither file is opened until the
// first load or append.
func NewCSVStore(catalogPath, interactionsPath string) *CSVStore {
	return &CSVStore{
		catalogPath:      catalogPath,
		interactionsPath: interactionsPath,
	}
}

// LoadItems reads the full catalog.
func (s *CSVStore) LoadItems() ([]recommend.Item, error) {
	rows, err := readCSV(s.catalogPath, len(catalogHeader))
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	items := make([]recommend.Item, 0, len(rows))
	for i, row := range rows {
		id, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("catalog row %d: bad item_id %q: %w", i+2, row[0], err)
		}
		items = append(items, recommend.Item{
			ID:          id,
			Title:       row[1],
			Genres:      row[2],
			Description: row[3],
		})
	}
	return items, nil
}

// LoadInteractions reads the full interaction log in file order.
func (s *CSVStore) LoadInteractions() ([]recommend.Interaction, error) {
	rows, err := readCSV(s.interactionsPath, len(interactionHeader))
	if err != nil {
		return nil, fmt.Errorf("read interactions: %w", err)
	}

	interactions := make([]recommend.Interaction, 0, len(rows))
	for i, row := range rows {
		in, err := parseInteraction(row)
		if err != nil {
			return nil, fmt.Errorf("interaction row %d: %w", i+2, err)
		}
		interactions = append(interactions, in)
	}
	return interactions, nil
}

// AppendInteraction appends one row to the interaction log without touching
// existing rows. The write is flushed before returning.
func (s *CSVStore) AppendInteraction(in recommend.Interaction) error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	f, err := os.OpenFile(s.interactionsPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open interaction log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(formatInteraction(in)); err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush interaction: %w", err)
	}
	return f.Sync()
}

func parseInteraction(row []string) (recommend.Interaction, error) {
	userID, err := strconv.Atoi(row[0])
	if err != nil {
		return recommend.Interaction{}, fmt.Errorf("bad user_id %q: %w", row[0], err)
	}
	itemID, err := strconv.Atoi(row[1])
	if err != nil {
		return recommend.Interaction{}, fmt.Errorf("bad item_id %q: %w", row[1], err)
	}
	rating, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return recommend.Interaction{}, fmt.Errorf("bad rating %q: %w", row[2], err)
	}
	ts, err := strconv.ParseInt(row[3], 10, 64)
	if err != nil {
		return recommend.Interaction{}, fmt.Errorf("bad timestamp %q: %w", row[3], err)
	}
	return recommend.Interaction{
		UserID:    userID,
		ItemID:    itemID,
		Rating:    rating,
		Timestamp: ts,
	}, nil
}

func formatInteraction(in recommend.Interaction) []string {
	return []string{
		strconv.Itoa(in.UserID),
		strconv.Itoa(in.ItemID),
		strconv.FormatFloat(in.Rating, 'f', -1, 64),
		strconv.FormatInt(in.Timestamp, 10),
	}
}

// readCSV reads all data rows from path, skipping the header and validating
// its width.
func readCSV(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: missing header row", path)
	}
	return records[1:], nil
}

// Exists reports whether both backing files are present.
func (s *CSVStore) Exists() bool {
	if _, err := os.Stat(s.catalogPath); err != nil {
		return false
	}
	_, err := os.Stat(s.interactionsPath)
	return err == nil
}
