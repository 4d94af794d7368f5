package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasesXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>New Releases</title>
    <item>
      <title>Heat</title>
      <guid>rel-heat</guid>
      <category>action</category>
      <category>Crime</category>
      <pubDate>Fri, 15 Dec 1995 00:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Making-of Featurette</title>
      <guid>rel-featurette</guid>
      <pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Press Junket Recap</title>
      <guid>rel-junket</guid>
      <category>Drama</category>
      <pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestRSSImport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(releasesXML))
	}))
	defer ts.Close()

	filter := NewGenreFilter(nil, []string{"press junket"})
	rss := NewRSS([]Feed{{Name: "releases", URL: ts.URL}}, filter)

	items, err := rss.Import(context.Background())
	require.NoError(t, err)

	// The uncategorized entry and the excluded title are both skipped.
	require.Len(t, items, 1)
	assert.Equal(t, "rss:releases:rel-heat", items[0].ID)
	assert.Equal(t, "Heat", items[0].Title)
	assert.Equal(t, []string{"Action", "Crime"}, items[0].Genres)
	assert.Equal(t, 1995, items[0].ReleasedAt.Year())
	assert.False(t, items[0].AddedAt.IsZero())
}

func TestRSSImportBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	rss := NewRSS([]Feed{{Name: "releases", URL: ts.URL}}, NewGenreFilter(nil, nil))
	_, err := rss.Import(context.Background())
	assert.Error(t, err)
}

func TestRSSImportContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rss := NewRSS([]Feed{{Name: "releases", URL: ts.URL}}, nil)
	_, err := rss.Import(ctx)
	assert.Error(t, err)
}

func TestGenreFilter(t *testing.T) {
	f := NewGenreFilter([]string{"Film Noir"}, nil)

	genres := f.Genres([]string{"ACTION", " drama ", "action", "film noir", "gossip"})
	assert.Equal(t, []string{"Action", "Drama", "Film Noir"}, genres)

	assert.Empty(t, f.Genres([]string{"gossip", "awards"}))
	assert.Empty(t, f.Genres(nil))
}

func TestGenreFilterExclude(t *testing.T) {
	f := NewGenreFilter(nil, []string{"trailer"})
	assert.True(t, f.Excluded("Official Trailer: Heat 2"))
	assert.False(t, f.Excluded("Heat 2"))
}
