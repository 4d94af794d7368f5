package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mpetrov/reelfeed/pkg/catalog"
)

// Stats holds row counts per table, for the stats endpoint.
type Stats struct {
	Items       int `json:"items"`
	Preferences int `json:"preferences"`
	Relations   int `json:"relations"`
}

// Store is the persistence interface.
type Store interface {
	UpsertItem(ctx context.Context, item *catalog.Item) error
	UpsertItems(ctx context.Context, items []catalog.Item) error
	GetItem(ctx context.Context, id string) (*catalog.Item, error)
	ListItems(ctx context.Context) ([]catalog.Item, error)

	ReplacePreferences(ctx context.Context, prefs []catalog.Preference) error
	ListPreferences(ctx context.Context, userID string) ([]catalog.Preference, error)

	ReplaceRelations(ctx context.Context, rels []catalog.Relation) error
	ListRelations(ctx context.Context, userID string) ([]catalog.Relation, error)

	Stats(ctx context.Context) (*Stats, error)

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertItem(ctx context.Context, item *catalog.Item) error {
	if item.ID == "" {
		return fmt.Errorf("upsert item: missing id")
	}
	if item.ReleasedAt.IsZero() {
		return fmt.Errorf("upsert item %s: missing release date", item.ID)
	}
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	genresJSON, _ := json.Marshal(item.Genres)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, title, genres, released_at, added_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			genres = excluded.genres,
			released_at = excluded.released_at
	`, item.ID, item.Title, string(genresJSON), item.ReleasedAt, item.AddedAt)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}
	return nil
}

func (s *SQLiteStore) UpsertItems(ctx context.Context, items []catalog.Item) error {
	for i := range items {
		if err := s.UpsertItem(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) GetItem(ctx context.Context, id string) (*catalog.Item, error) {
	var item catalog.Item
	err := s.db.GetContext(ctx, &item, "SELECT * FROM items WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	json.Unmarshal([]byte(item.GenresJSON), &item.Genres)
	return &item, nil
}

func (s *SQLiteStore) ListItems(ctx context.Context) ([]catalog.Item, error) {
	var items []catalog.Item
	if err := s.db.SelectContext(ctx, &items, "SELECT * FROM items ORDER BY released_at DESC"); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	for i := range items {
		json.Unmarshal([]byte(items[i].GenresJSON), &items[i].Genres)
	}
	return items, nil
}

// ReplacePreferences swaps the full preference set inside one transaction,
// so reseeding from the same file leaves the store unchanged. Duplicate
// (user, genre) rows are kept as-is; the scorer sums them.
func (s *SQLiteStore) ReplacePreferences(ctx context.Context, prefs []catalog.Preference) error {
	for _, p := range prefs {
		if p.UserID == "" || p.Genre == "" {
			return fmt.Errorf("replace preferences: missing user id or genre")
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM preferences"); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}
	for _, p := range prefs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO preferences (user_id, genre, score) VALUES (?, ?, ?)",
			p.UserID, p.Genre, p.Score)
		if err != nil {
			return fmt.Errorf("insert preference %s/%s: %w", p.UserID, p.Genre, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListPreferences(ctx context.Context, userID string) ([]catalog.Preference, error) {
	var prefs []catalog.Preference
	err := s.db.SelectContext(ctx, &prefs,
		"SELECT user_id, genre, score FROM preferences WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences %s: %w", userID, err)
	}
	return prefs, nil
}

// ReplaceRelations swaps the full relation set inside one transaction.
func (s *SQLiteStore) ReplaceRelations(ctx context.Context, rels []catalog.Relation) error {
	for _, r := range rels {
		if r.UserID == "" || r.RelatedID == "" {
			return fmt.Errorf("replace relations: missing user id")
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace relations: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM related_users"); err != nil {
		return fmt.Errorf("clear relations: %w", err)
	}
	for _, r := range rels {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO related_users (user_id, related_id) VALUES (?, ?)",
			r.UserID, r.RelatedID)
		if err != nil {
			return fmt.Errorf("insert relation %s->%s: %w", r.UserID, r.RelatedID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) ListRelations(ctx context.Context, userID string) ([]catalog.Relation, error) {
	var rels []catalog.Relation
	err := s.db.SelectContext(ctx, &rels,
		"SELECT user_id, related_id FROM related_users WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("list relations %s: %w", userID, err)
	}
	return rels, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM items),
			(SELECT COUNT(*) FROM preferences),
			(SELECT COUNT(*) FROM related_users)
	`)
	if err := row.Scan(&st.Items, &st.Preferences, &st.Relations); err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return &st, nil
}
