package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpetrov/reelfeed/internal/store"
)

const seedJSON = `{
  "movies": [
    {"id": "m1", "title": "Heat", "genres": ["Action", "Crime"], "released_at": "1995-12-15T00:00:00Z"},
    {"id": "m2", "title": "Magnolia", "genres": ["Drama"], "released_at": "1999-12-17T00:00:00Z"}
  ],
  "preferences": [
    {"user_id": "u1", "genre": "Action", "score": 5.0},
    {"user_id": "u2", "genre": "Drama", "score": 3.0}
  ],
  "related_users": [
    {"user_id": "u1", "related_id": "u2"}
  ]
}`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(seedJSON), 0o644))

	st, err := store.New(filepath.Join(dir, "seed.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	summary, err := Load(ctx, st, path)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Movies: 2, Preferences: 2, RelatedUsers: 1}, summary)

	items, err := st.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	prefs, err := st.ListPreferences(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, prefs, 1)
	assert.Equal(t, 5.0, prefs[0].Score)

	// Reseeding the same file changes nothing.
	_, err = Load(ctx, st, path)
	require.NoError(t, err)

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &store.Stats{Items: 2, Preferences: 2, Relations: 1}, stats)
}

func TestLoadMissingFile(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "seed.db"))
	require.NoError(t, err)
	defer st.Close()

	_, err = Load(context.Background(), st, "does-not-exist.json")
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	st, err := store.New(filepath.Join(dir, "seed.db"))
	require.NoError(t, err)
	defer st.Close()

	_, err = Load(context.Background(), st, path)
	assert.Error(t, err)
}
