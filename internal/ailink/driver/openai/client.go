package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/claimlens/claimlens/internal/ailink/driver"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	driverName     = "openai"
)

// Client implements the OpenAI chat completions driver via direct HTTP.
//
// Note: This is distinct from the xAI driver, which speaks an OpenAI-compatible
// API shape but targets x.ai.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL, apiKey string) *Client {
	url := strings.TrimSpace(baseURL)
	if url == "" {
		url = defaultBaseURL
	}

	return &Client{
		BaseURL: url,
		APIKey:  strings.TrimSpace(apiKey),
	}
}

// Name returns the driver identifier.
func (c *Client) Name() string {
	return driverName
}

// Capabilities describes supported features.
func (c *Client) Capabilities() driver.Capabilities {
	return driver.Capabilities{
		SupportsSearch:    true,
		SupportsJSONMode:  true,
		SupportsStreaming: false,
	}
}

// Complete sends a chat completion request. Search grounding requires a
// search-capable model (e.g. gpt-4o-search-preview).
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("openai client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	payload, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := driver.WithTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	body, err := driver.PostJSON(ctx, driver.HTTPCall{
		Driver:  driverName,
		Client:  c.HTTPClient,
		URL:     strings.TrimRight(c.BaseURL, "/") + "/chat/completions",
		Model:   payload.Model,
		Headers: map[string]string{"Authorization": "Bearer " + c.APIKey},
		Payload: payload,
	})
	if err != nil {
		return nil, err
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return toDriverResponse(&parsed)
}
