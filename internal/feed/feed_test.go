package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example News</title>
    <link>https://news.example.com</link>
    <item>
      <title>Scientists confirm water is wet</title>
      <link>https://news.example.com/water</link>
      <description>A &lt;b&gt;big&lt;/b&gt; finding.</description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Title only headline</title>
    </item>
    <item>
      <title>   </title>
    </item>
    <item>
      <title>Third story</title>
      <link>https://news.example.com/third</link>
    </item>
  </channel>
</rss>`

func TestParse(t *testing.T) {
	parsed, err := Parse(strings.NewReader(sampleRSS), 0)
	require.NoError(t, err)

	assert.Equal(t, "Example News", parsed.Title)
	require.Len(t, parsed.Items, 3, "items without title or link are skipped")

	first := parsed.Items[0]
	assert.Equal(t, "Scientists confirm water is wet", first.Title)
	assert.Equal(t, "https://news.example.com/water", first.Claim())
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, 2026, first.PublishedAt.Year())

	assert.Equal(t, "Title only headline", parsed.Items[1].Claim())
}

func TestParseLimit(t *testing.T) {
	parsed, err := Parse(strings.NewReader(sampleRSS), 2)
	require.NoError(t, err)
	require.Len(t, parsed.Items, 2)
}

func TestParseInvalid(t *testing.T) {
	_, err := Parse(strings.NewReader("not a feed"), 0)
	require.Error(t, err)
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "claimlens", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	parsed, err := NewFetcher(0).Fetch(context.Background(), srv.URL, 1)
	require.NoError(t, err)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "https://news.example.com/water", parsed.Items[0].Claim())
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewFetcher(0).Fetch(context.Background(), srv.URL, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = NewFetcher(0).Fetch(context.Background(), "  ", 0)
	require.Error(t, err)
}

func TestItemClaim(t *testing.T) {
	assert.Equal(t, "https://a.example", Item{Title: "t", Link: " https://a.example "}.Claim())
	assert.Equal(t, "t", Item{Title: " t "}.Claim())
	assert.Empty(t, Item{}.Claim())
}
