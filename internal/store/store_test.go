package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/reelfeed/pkg/catalog"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndGetItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	released := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	item := catalog.Item{
		ID:         "m1",
		Title:      "Heat",
		Genres:     []string{"Action", "Crime"},
		ReleasedAt: released,
	}
	require.NoError(t, s.UpsertItem(ctx, &item))
	assert.False(t, item.AddedAt.IsZero())

	got, err := s.GetItem(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Heat", got.Title)
	assert.Equal(t, []string{"Action", "Crime"}, got.Genres)
	assert.True(t, got.ReleasedAt.Equal(released))

	// Upsert with the same id updates in place.
	item.Title = "Heat (remastered)"
	require.NoError(t, s.UpsertItem(ctx, &item))

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Heat (remastered)", items[0].Title)
}

func TestUpsertItemValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.UpsertItem(ctx, &catalog.Item{ReleasedAt: time.Now()})
	assert.ErrorContains(t, err, "missing id")

	err = s.UpsertItem(ctx, &catalog.Item{ID: "m1"})
	assert.ErrorContains(t, err, "missing release date")
}

func TestGetItemMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetItem(context.Background(), "nope")
	assert.Error(t, err)
}

func TestReplaceAndListPreferences(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prefs := []catalog.Preference{
		{UserID: "u1", Genre: "Action", Score: 5},
		{UserID: "u1", Genre: "Action", Score: 2}, // duplicates are kept
		{UserID: "u2", Genre: "Drama", Score: 3},
	}
	require.NoError(t, s.ReplacePreferences(ctx, prefs))

	got, err := s.ListPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Unknown user degrades to an empty set, not an error.
	got, err = s.ListPreferences(ctx, "stranger")
	require.NoError(t, err)
	assert.Empty(t, got)

	// Replacing again is idempotent, not additive.
	require.NoError(t, s.ReplacePreferences(ctx, prefs))
	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Preferences)
}

func TestReplacePreferencesValidation(t *testing.T) {
	s := newTestStore(t)
	err := s.ReplacePreferences(context.Background(), []catalog.Preference{{Genre: "Action"}})
	assert.Error(t, err)
}

func TestReplaceAndListRelations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rels := []catalog.Relation{
		{UserID: "u1", RelatedID: "u2"},
		{UserID: "u1", RelatedID: "u1"}, // self-loops are allowed
		{UserID: "u2", RelatedID: "u3"},
	}
	require.NoError(t, s.ReplaceRelations(ctx, rels))

	got, err := s.ListRelations(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.ListRelations(ctx, "stranger")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertItems(ctx, []catalog.Item{
		{ID: "m1", ReleasedAt: time.Now()},
		{ID: "m2", ReleasedAt: time.Now()},
	}))
	require.NoError(t, s.ReplacePreferences(ctx, []catalog.Preference{
		{UserID: "u1", Genre: "Action", Score: 1},
	}))
	require.NoError(t, s.ReplaceRelations(ctx, []catalog.Relation{
		{UserID: "u1", RelatedID: "u2"},
	}))

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{Items: 2, Preferences: 1, Relations: 1}, stats)
}

func TestListItemsOrderedByRelease(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertItems(ctx, []catalog.Item{
		{ID: "old", ReleasedAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "new", ReleasedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}))

	items, err := s.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "new", items[0].ID)
}
