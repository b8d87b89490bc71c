package xai

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
	defaultBaseURL = "https://api.x.ai/v1"
	driverName     = "xai"
)

// Client implements the OpenAI-compatible xAI API via direct HTTP.
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

// Complete sends a completion request.
// Routes to /responses for search-grounded requests, /chat/completions otherwise.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("xai client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	ctx, cancel := driver.WithTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	if req.WantsSearch() {
		return c.completeWithResponses(ctx, req)
	}
	return c.completeWithChat(ctx, req)
}

func (c *Client) completeWithResponses(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	payload, err := buildResponsesRequest(req)
	if err != nil {
		return nil, err
	}

	body, err := c.post(ctx, "/responses", payload.Model, payload)
	if err != nil {
		return nil, err
	}

	var parsed responsesAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return toDriverResponseFromResponses(&parsed)
}

func (c *Client) completeWithChat(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	payload, err := buildChatRequest(req)
	if err != nil {
		return nil, err
	}

	body, err := c.post(ctx, "/chat/completions", payload.Model, payload)
	if err != nil {
		return nil, err
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return toDriverResponse(&parsed)
}

func (c *Client) post(ctx context.Context, path, model string, payload any) ([]byte, error) {
	return driver.PostJSON(ctx, driver.HTTPCall{
		Driver:  driverName,
		Client:  c.HTTPClient,
		URL:     strings.TrimRight(c.BaseURL, "/") + path,
		Model:   model,
		Headers: map[string]string{"Authorization": "Bearer " + c.APIKey},
		Payload: payload,
	})
}
