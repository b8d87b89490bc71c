package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestNewProviderErrorExtractsMessage(t *testing.T) {
	cases := map[string]string{
		`{"error":{"message":"quota exceeded"}}`: "quota exceeded",
		`{"error":"bad key"}`:                    "bad key",
		"plain failure\n":                        "plain failure",
	}
	for body, want := range cases {
		perr := NewProviderError("gemini", 429, []byte(body))
		assert.Equal(t, want, perr.Message)
		assert.Equal(t, 429, perr.StatusCode)
	}
}

func TestProviderErrorString(t *testing.T) {
	assert.Equal(t, "xai request failed: status 500: boom", (&ProviderError{Provider: "xai", StatusCode: 500, Message: "boom"}).Error())
	assert.Equal(t, "xai request failed: boom", (&ProviderError{Provider: "xai", Message: "boom"}).Error())
}

func TestPostJSONTracesExchange(t *testing.T) {
	buf := &bytes.Buffer{}
	disable := EnableTracingTo(nopCloser{buf})
	defer disable()
	require.True(t, IsTracingEnabled())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-test-key"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	body, err := PostJSON(context.Background(), HTTPCall{
		Driver:  "gemini",
		Client:  server.Client(),
		URL:     server.URL + "/models/m:generateContent",
		Model:   "m",
		Headers: map[string]string{"x-test-key": "secret"},
		Payload: map[string]string{"hello": "world"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	var entry TraceEntry
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "gemini", entry.Driver)
	assert.Equal(t, http.StatusOK, entry.StatusCode)
	assert.JSONEq(t, `{"hello":"world"}`, string(entry.RequestBody))
	assert.NotContains(t, buf.String(), "secret")

	disable()
	assert.False(t, IsTracingEnabled())
}

func TestPostJSONReturnsProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer server.Close()

	_, err := PostJSON(context.Background(), HTTPCall{Driver: "openai", Client: server.Client(), URL: server.URL, Payload: struct{}{}})
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "overloaded", perr.Message)
}

func TestRequestWantsSearch(t *testing.T) {
	var nilReq *Request
	assert.False(t, nilReq.WantsSearch())
	assert.False(t, (&Request{SearchParameters: &SearchParameters{Mode: "on"}}).WantsSearch())
	assert.True(t, (&Request{SearchParameters: &SearchParameters{Sources: []Source{{Type: "web"}}}}).WantsSearch())
}
