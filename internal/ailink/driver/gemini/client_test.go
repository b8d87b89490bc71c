package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimlens/claimlens/internal/ailink/content"
	"github.com/claimlens/claimlens/internal/ailink/driver"
)

func searchRequest(text string) *driver.Request {
	temp := 0.1
	return &driver.Request{
		Model:    "gemini-2.5-flash",
		Messages: []content.Message{content.UserText(text)},
		SearchParameters: &driver.SearchParameters{
			Mode:            "on",
			ReturnCitations: true,
			Sources:         []driver.Source{{Type: "web"}},
		},
		Temperature: &temp,
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient("", "")
	_, err := client.Complete(context.Background(), searchRequest("hi"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "api key")
}

func TestClientSendsGroundedRequestAndParsesCitations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/models/gemini-2.5-flash:generateContent", r.URL.Path)
		require.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.Empty(t, r.URL.Query().Get("key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))

		contents := payload["contents"].([]any)
		require.Len(t, contents, 1)
		first := contents[0].(map[string]any)
		assert.Equal(t, "user", first["role"])
		parts := first["parts"].([]any)
		assert.Equal(t, "Is the sky green?", parts[0].(map[string]any)["text"])

		tools := payload["tools"].([]any)
		require.Len(t, tools, 1)
		_, hasSearch := tools[0].(map[string]any)["google_search"]
		assert.True(t, hasSearch)

		genCfg := payload["generationConfig"].(map[string]any)
		assert.InDelta(t, 0.1, genCfg["temperature"], 1e-9)
		_, hasMime := genCfg["responseMimeType"]
		assert.False(t, hasMime)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "SCORE: 5\n"}, {"text": "VERDICT: False"}]},
				"finishReason": "STOP",
				"groundingMetadata": {
					"groundingChunks": [
						{"web": {"uri": "https://a.example", "title": "A"}},
						{"retrievedContext": {}},
						{"web": {"uri": "https://b.example"}}
					]
				}
			}],
			"usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 5, "totalTokenCount": 15}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	client.HTTPClient = server.Client()

	resp, err := client.Complete(context.Background(), searchRequest("Is the sky green?"))
	require.NoError(t, err)
	require.Len(t, resp.Content, 1)
	assert.Equal(t, "SCORE: 5\nVERDICT: False", resp.Content[0].Text)
	assert.Equal(t, "stop", resp.FinishReason)
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, []driver.Citation{
		{Title: "A", URI: "https://a.example"},
		{URI: "https://b.example"},
	}, resp.Citations)
}

func TestClientMapsSystemMessagesToInstruction(t *testing.T) {
	req := searchRequest("claim")
	req.Messages = append([]content.Message{{Role: "system", Content: []content.ContentBlock{{Type: content.ContentTypeText, Text: "be terse"}}}}, req.Messages...)

	payload, err := buildRequest(req)
	require.NoError(t, err)
	require.NotNil(t, payload.SystemInstruction)
	assert.Equal(t, "be terse", payload.SystemInstruction.Parts[0].Text)
	require.Len(t, payload.Contents, 1)
}

func TestClientRejectsJSONModeWithSearch(t *testing.T) {
	req := searchRequest("claim")
	req.ResponseFormat = &driver.ResponseFormat{Type: "json_object"}

	_, err := buildRequest(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json response format")
}

func TestClientErrorsOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key")
	client.HTTPClient = server.Client()

	_, err := client.Complete(context.Background(), searchRequest("x"))
	require.Error(t, err)

	var perr *driver.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, http.StatusForbidden, perr.StatusCode)
	assert.Equal(t, "API key not valid", perr.Message)
}

func TestClientReportsBlockedPrompt(t *testing.T) {
	_, err := toDriverResponse(&generateContentResponse{PromptFeedback: &promptFeedback{BlockReason: "SAFETY"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}
