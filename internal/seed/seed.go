// Package seed loads catalog, preference, and relation records from a JSON
// document into the store before the service starts serving.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mpetrov/reelfeed/internal/store"
	"github.com/mpetrov/reelfeed/pkg/catalog"
)

// File is the shape of a seed document.
type File struct {
	Movies       []catalog.Item       `json:"movies"`
	Preferences  []catalog.Preference `json:"preferences"`
	RelatedUsers []catalog.Relation   `json:"related_users"`
}

// Summary reports how many records a seed run wrote.
type Summary struct {
	Movies       int
	Preferences  int
	RelatedUsers int
}

// Load reads a seed file and bulk-inserts its records. Items upsert by id;
// preferences and relations are replaced wholesale, so running the same
// file twice leaves the store in the same state.
func Load(ctx context.Context, st store.Store, path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}

	if err := st.UpsertItems(ctx, f.Movies); err != nil {
		return nil, fmt.Errorf("seed movies: %w", err)
	}
	if err := st.ReplacePreferences(ctx, f.Preferences); err != nil {
		return nil, fmt.Errorf("seed preferences: %w", err)
	}
	if err := st.ReplaceRelations(ctx, f.RelatedUsers); err != nil {
		return nil, fmt.Errorf("seed related users: %w", err)
	}

	return &Summary{
		Movies:       len(f.Movies),
		Preferences:  len(f.Preferences),
		RelatedUsers: len(f.RelatedUsers),
	}, nil
}
