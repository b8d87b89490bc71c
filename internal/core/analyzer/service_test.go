package analyzer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimlens/claimlens/internal/ailink"
	"github.com/claimlens/claimlens/internal/ailink/prompt"
)

func newGeminiAnalyzer(t *testing.T, baseURL, apiKey string) *Analyzer {
	t.Helper()

	prompts, err := prompt.DefaultRegistry()
	require.NoError(t, err)

	providers := ailink.NewRegistry(ailink.Config{
		DefaultProvider: "gemini",
		Providers: map[string]ailink.ProviderInstanceConfig{
			"gemini": {
				Enabled:     true,
				AIProvider:  "gemini",
				BaseURL:     baseURL,
				Models:      map[string]string{"default": "gemini-2.5-flash"},
				Credentials: []ailink.CredentialConfig{{APIKey: apiKey}},
			},
		},
	})
	return New(&ailink.Service{Providers: providers, Prompts: prompts}, Options{})
}

func TestAnalyzeWithoutCredentialMakesNoNetworkCalls(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	_, err := newGeminiAnalyzer(t, server.URL, "").Analyze(context.Background(), "The Eiffel Tower is in Rome")

	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
	assert.Equal(t, int32(0), hits.Load())
}

func TestAnalyzeEndToEndAgainstGeminiAPI(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"SCORE: 3\nVERDICT: False\nANALYSIS: It is in Paris."}]},
			"groundingMetadata":{"groundingChunks":[{"web":{"uri":"https://toureiffel.example","title":"Official site"}}]}}]}`))
	}))
	defer server.Close()

	result, err := newGeminiAnalyzer(t, server.URL, "key").Analyze(context.Background(), "The Eiffel Tower is in Rome")
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, 3, result.Score)
	assert.Equal(t, "False", result.Verdict)
	assert.Equal(t, "It is in Paris.", result.Analysis)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "Official site", result.Sources[0].Title)
}

func TestAnalyzeSurfacesProviderFailureAsUpstreamError(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer server.Close()

	_, err := newGeminiAnalyzer(t, server.URL, "key").Analyze(context.Background(), "claim")

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, "gemini", upErr.Provider)
	assert.Contains(t, err.Error(), "model overloaded")
	assert.Equal(t, int32(1), hits.Load())
}
