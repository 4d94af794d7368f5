package feed

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mpetrov/reelfeed/pkg/catalog"
)

// DefaultLimit is the feed window size.
const DefaultLimit = 10

const hoursPerYear = 24 * 365.25

// Lookup is the read-only storage view the scorer needs.
type Lookup interface {
	ListItems(ctx context.Context) ([]catalog.Item, error)
	ListPreferences(ctx context.Context, userID string) ([]catalog.Preference, error)
	ListRelations(ctx context.Context, userID string) ([]catalog.Relation, error)
}

// Scorer ranks catalog items for a user by combining release recency with
// the genre preferences of the user and of their related users.
type Scorer struct {
	store Lookup
	limit int
	now   func() time.Time
}

// NewScorer creates a Scorer. A limit <= 0 falls back to DefaultLimit.
func NewScorer(store Lookup, limit int) *Scorer {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Scorer{
		store: store,
		limit: limit,
		now:   time.Now,
	}
}

// Rank returns at most limit catalog items for userID, highest score first.
//
// An unknown user id is not an error: it simply has no preferences and no
// relations, so items rank purely by recency. Any storage failure aborts
// the whole call; no partial ranking is returned.
func (s *Scorer) Rank(ctx context.Context, userID string) ([]catalog.Item, error) {
	prefs, err := s.store.ListPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences %s: %w", userID, err)
	}

	rels, err := s.store.ListRelations(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list relations %s: %w", userID, err)
	}

	// Fetch every related user's preferences concurrently. All lookups must
	// land before scoring starts, otherwise their contributions are lost.
	related := make([][]catalog.Preference, len(rels))
	g, gctx := errgroup.WithContext(ctx)
	for i, rel := range rels {
		i, rel := i, rel
		g.Go(func() error {
			p, err := s.store.ListPreferences(gctx, rel.RelatedID)
			if err != nil {
				return fmt.Errorf("list related preferences %s: %w", rel.RelatedID, err)
			}
			related[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Fold own and related preferences into one weight per genre. Duplicate
	// rows sum; related users count the same as the user's own rows.
	weights := make(map[string]float64, len(prefs))
	for _, p := range prefs {
		weights[p.Genre] += p.Score
	}
	for _, rp := range related {
		for _, p := range rp {
			weights[p.Genre] += p.Score
		}
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	now := s.now()
	type scored struct {
		item  catalog.Item
		score float64
	}
	ranked := make([]scored, len(items))
	for i, item := range items {
		ranked[i] = scored{item: item, score: scoreItem(item, weights, now)}
	}

	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > s.limit {
		ranked = ranked[:s.limit]
	}

	out := make([]catalog.Item, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out, nil
}

// scoreItem computes one item's total: a Gaussian recency score in (0, 1]
// plus the summed weight of every distinct genre tag on the item. A future
// release date gives a negative age and decays the same as a past one.
func scoreItem(item catalog.Item, weights map[string]float64, now time.Time) float64 {
	ageYears := now.Sub(item.ReleasedAt).Hours() / hoursPerYear
	total := math.Exp(-(ageYears * ageYears) / 2)

	seen := make(map[string]bool, len(item.Genres))
	for _, genre := range item.Genres {
		if seen[genre] {
			continue
		}
		seen[genre] = true
		total += weights[genre]
	}
	return total
}
