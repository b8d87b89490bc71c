package gemini

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
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	driverName     = "gemini"
)

// Client implements the Gemini generateContent API via direct HTTP.
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
		SupportsSearch:         true,
		SupportsJSONMode:       true,
		SupportsStreaming:      false,
		SearchExcludesJSONMode: true,
	}
}

// Complete sends a generateContent request. The API key travels in the
// x-goog-api-key header so it never appears in traced endpoints.
func (c *Client) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	if c == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}

	payload, err := buildRequest(req)
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
		URL:     c.endpoint(req.Model),
		Model:   req.Model,
		Headers: map[string]string{"x-goog-api-key": c.APIKey},
		Payload: payload,
	})
	if err != nil {
		return nil, err
	}

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return toDriverResponse(&parsed)
}

func (c *Client) endpoint(model string) string {
	model = strings.TrimPrefix(strings.TrimSpace(model), "models/")
	return strings.TrimRight(c.BaseURL, "/") + "/models/" + model + ":generateContent"
}
