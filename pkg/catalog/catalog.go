package catalog

import "time"

// Item is a catalog entry: a movie with genre tags and a release date.
// Genres are matched as a set during scoring; the slice order is whatever
// the seed data or import feed carried.
type Item struct {
	ID         string    `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Genres     []string  `json:"genres" db:"-"`
	ReleasedAt time.Time `json:"released_at" db:"released_at"`
	AddedAt    time.Time `json:"added_at" db:"added_at"`
	GenresJSON string    `json:"-" db:"genres"`
}

// Preference is a user's affinity score for one genre. Multiple rows for
// the same (user, genre) are legal and their scores sum.
type Preference struct {
	UserID string  `json:"user_id" db:"user_id"`
	Genre  string  `json:"genre" db:"genre"`
	Score  float64 `json:"score" db:"score"`
}

// Relation is a directed edge between users: RelatedID's preferences feed
// into UserID's ranking. Not symmetric, self-loops allowed.
type Relation struct {
	UserID    string `json:"user_id" db:"user_id"`
	RelatedID string `json:"related_id" db:"related_id"`
}
