package ingest

import "strings"

// DefaultGenres is the canonical genre vocabulary recognized on import.
var DefaultGenres = []string{
	"Action", "Adventure", "Animation", "Comedy", "Crime",
	"Documentary", "Drama", "Family", "Fantasy", "History",
	"Horror", "Music", "Mystery", "Romance", "Science Fiction",
	"Sci-Fi", "Thriller", "War", "Western",
}

// GenreFilter maps free-form feed categories onto the genre vocabulary and
// rejects entries matching exclude keywords.
type GenreFilter struct {
	genres  map[string]string // lowercased -> canonical
	exclude []string
}

// NewGenreFilter creates a filter over the default vocabulary plus extras.
func NewGenreFilter(extraGenres, excludeKeywords []string) *GenreFilter {
	genres := make(map[string]string, len(DefaultGenres)+len(extraGenres))
	for _, g := range DefaultGenres {
		genres[strings.ToLower(g)] = g
	}
	for _, g := range extraGenres {
		genres[strings.ToLower(g)] = g
	}

	exclude := make([]string, len(excludeKeywords))
	for i, kw := range excludeKeywords {
		exclude[i] = strings.ToLower(kw)
	}

	return &GenreFilter{genres: genres, exclude: exclude}
}

// Genres returns the canonical genre tags found among the categories,
// preserving first-seen order.
func (f *GenreFilter) Genres(categories []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range categories {
		canonical, ok := f.genres[strings.ToLower(strings.TrimSpace(c))]
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}

// Excluded returns true if text contains any exclude keyword.
func (f *GenreFilter) Excluded(text string) bool {
	lower := strings.ToLower(text)
	for _, ex := range f.exclude {
		if strings.Contains(lower, ex) {
			return true
		}
	}
	return false
}
