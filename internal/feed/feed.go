// Package feed pulls RSS, Atom and JSON feeds and turns their entries into
// claims to analyze.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// DefaultTimeout bounds a feed download when the caller supplies no client.
const DefaultTimeout = 30 * time.Second

// Item is one feed entry.
type Item struct {
	Title       string     `json:"title"`
	Link        string     `json:"link,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// Claim returns what should be fact-checked for the item: the article link
// when present, otherwise its title.
func (i Item) Claim() string {
	if link := strings.TrimSpace(i.Link); link != "" {
		return link
	}
	return strings.TrimSpace(i.Title)
}

// Feed is a parsed feed.
type Feed struct {
	Title string `json:"title"`
	Link  string `json:"link,omitempty"`
	Items []Item `json:"items"`
}

// Fetcher downloads and parses feeds.
type Fetcher struct {
	Client    *http.Client
	UserAgent string
}

// NewFetcher returns a Fetcher whose client times out after timeout.
// A non-positive timeout uses DefaultTimeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{Client: &http.Client{Timeout: timeout}, UserAgent: "claimlens"}
}

// Fetch downloads url and returns at most limit items that carry a claim.
// A non-positive limit returns every item.
func (f *Fetcher) Fetch(ctx context.Context, url string, limit int) (*Feed, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("feed url is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}
	return Parse(resp.Body, limit)
}

// Parse reads a feed document and returns at most limit items.
func Parse(r io.Reader, limit int) (*Feed, error) {
	parsed, err := gofeed.NewParser().Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	out := &Feed{
		Title: strings.TrimSpace(parsed.Title),
		Link:  strings.TrimSpace(parsed.Link),
		Items: make([]Item, 0, len(parsed.Items)),
	}
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		if limit > 0 && len(out.Items) >= limit {
			break
		}
		item := Item{
			Title:   strings.TrimSpace(it.Title),
			Link:    strings.TrimSpace(it.Link),
			Summary: strings.TrimSpace(it.Description),
		}
		if item.Claim() == "" {
			continue
		}
		switch {
		case it.PublishedParsed != nil:
			item.PublishedAt = it.PublishedParsed
		case it.UpdatedParsed != nil:
			item.PublishedAt = it.UpdatedParsed
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}
