// Package ingest imports catalog items from external release feeds.
package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/mpetrov/reelfeed/pkg/catalog"
)

// Feed is a named RSS/Atom release feed URL.
type Feed struct {
	Name string
	URL  string
}

// Importer produces catalog items from an external source.
type Importer interface {
	Name() string
	Import(ctx context.Context) ([]catalog.Item, error)
}

// RSS imports catalog items from RSS/Atom release feeds. Feed categories
// become genre tags; entries with no recognizable genre are skipped.
type RSS struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []Feed
	filter *GenreFilter
}

// NewRSS creates a new RSS importer.
func NewRSS(feeds []Feed, filter *GenreFilter) *RSS {
	return &RSS{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
		filter: filter,
	}
}

func (r *RSS) Name() string { return "rss" }

func (r *RSS) Import(ctx context.Context) ([]catalog.Item, error) {
	var all []catalog.Item
	var errs []string

	for _, feed := range r.feeds {
		items, err := r.importFeed(ctx, feed)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", feed.Name, err))
			continue
		}
		all = append(all, items...)
	}

	if len(all) == 0 && len(errs) > 0 {
		return nil, fmt.Errorf("rss import: %s", errs[0])
	}
	return all, nil
}

func (r *RSS) importFeed(ctx context.Context, feed Feed) ([]catalog.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "reelfeed/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feed.Name, err)
	}

	now := time.Now().UTC()
	var items []catalog.Item

	for _, entry := range parsed.Items {
		if r.filter != nil && r.filter.Excluded(entry.Title) {
			continue
		}

		genres := entry.Categories
		if r.filter != nil {
			genres = r.filter.Genres(entry.Categories)
		}
		if len(genres) == 0 {
			continue
		}

		released := now
		if entry.PublishedParsed != nil {
			released = entry.PublishedParsed.UTC()
		} else if entry.UpdatedParsed != nil {
			released = entry.UpdatedParsed.UTC()
		}

		id := entry.GUID
		if id == "" {
			id = uuid.NewString()
		}

		items = append(items, catalog.Item{
			ID:         fmt.Sprintf("rss:%s:%s", feed.Name, id),
			Title:      entry.Title,
			Genres:     genres,
			ReleasedAt: released,
			AddedAt:    now,
		})
	}

	return items, nil
}
