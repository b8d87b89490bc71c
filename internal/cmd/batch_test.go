package cmd

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimlens/claimlens/internal/core"
	"github.com/claimlens/claimlens/internal/core/analyzer"
	"github.com/claimlens/claimlens/internal/core/engine"
	"github.com/claimlens/claimlens/internal/feed"
	"github.com/claimlens/claimlens/internal/observability"
)

type stubAnalyzer struct {
	mu    sync.Mutex
	calls []engine.Request
	fail  map[string]error
}

func (s *stubAnalyzer) Analyze(_ context.Context, req engine.Request) (*engine.Outcome, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if err := s.fail[req.Claim]; err != nil {
		return nil, err
	}
	return &engine.Outcome{Claim: req.Claim, Result: core.AnalysisResult{Score: 70}}, nil
}

func TestParseClaimLines(t *testing.T) {
	claims, err := parseClaimLines(strings.NewReader("# header\n\nfirst claim\n  https://example.com/a  \n#skip\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first claim", "https://example.com/a"}, claims)

	_, err = parseClaimLines(strings.NewReader("# only comments\n\n"))
	assert.Error(t, err)
}

func TestRunBatchAnalysesKeepsOrderAndItemErrors(t *testing.T) {
	stub := &stubAnalyzer{fail: map[string]error{
		"b": &analyzer.UpstreamError{Provider: "gemini", Err: errors.New("quota exceeded")},
	}}

	entries, err := runBatchAnalyses(context.Background(), stub, []string{"a", "b", "c"}, engine.Request{NoCache: true}, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a", entries[0].Item.Title)
	require.NotNil(t, entries[0].Outcome)
	assert.Equal(t, 70, entries[0].Outcome.Result.Score)

	assert.Nil(t, entries[1].Outcome)
	assert.Equal(t, "quota exceeded", entries[1].Error)

	assert.Equal(t, "c", entries[2].Item.Title)
	for _, call := range stub.calls {
		assert.True(t, call.NoCache)
	}
}

func TestRunBatchAnalysesStopsOnConfigurationError(t *testing.T) {
	stub := &stubAnalyzer{fail: map[string]error{
		"a": &analyzer.ConfigurationError{Message: analyzer.MissingCredentialMessage},
	}}

	_, err := runBatchAnalyses(context.Background(), stub, []string{"a"}, engine.Request{}, 1)
	require.Error(t, err)
	assert.True(t, analyzer.IsConfigurationError(err))
}

func TestAnalyzeFeedUsesItemClaims(t *testing.T) {
	observability.InitCLILogger("test", false)

	stub := &stubAnalyzer{fail: map[string]error{
		"Untitled rumor": errors.New("parse failure"),
	}}
	fetched := &feed.Feed{
		Title: "News",
		Items: []feed.Item{
			{Title: "Headline", Link: "https://example.com/story"},
			{Title: "Untitled rumor"},
		},
	}

	report, err := analyzeFeed(context.Background(), stub, "https://example.com/rss", fetched, engine.Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "News", report.Title)
	assert.Equal(t, "https://example.com/rss", report.URL)
	require.Len(t, report.Entries, 2)

	require.Len(t, stub.calls, 2)
	assert.Equal(t, "https://example.com/story", stub.calls[0].Claim)
	assert.Equal(t, "m", stub.calls[0].Model)
	require.NotNil(t, report.Entries[0].Outcome)
	assert.Equal(t, "parse failure", report.Entries[1].Error)
}

func TestAnalyzeFeedStopsOnConfigurationError(t *testing.T) {
	observability.InitCLILogger("test", false)

	stub := &stubAnalyzer{fail: map[string]error{
		"first": &analyzer.ConfigurationError{Message: "no key"},
	}}
	fetched := &feed.Feed{Items: []feed.Item{{Title: "first"}, {Title: "second"}}}

	_, err := analyzeFeed(context.Background(), stub, "u", fetched, engine.Request{})
	require.Error(t, err)
	assert.Len(t, stub.calls, 1)
}
