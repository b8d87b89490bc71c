package driver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPCall describes a single JSON POST to a provider endpoint.
type HTTPCall struct {
	Driver  string
	Client  *http.Client
	URL     string
	Model   string
	Headers map[string]string
	Payload any
}

// PostJSON encodes the payload, sends it, traces the exchange and returns the
// response body. Non-2xx statuses are returned as *ProviderError.
func PostJSON(ctx context.Context, call HTTPCall) ([]byte, error) {
	body, err := json.Marshal(call.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, call.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for key, value := range call.Headers {
		httpReq.Header.Set(key, value)
	}

	client := call.Client
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		Trace(TraceEntry{
			Driver:      call.Driver,
			Endpoint:    call.URL,
			Method:      http.MethodPost,
			Model:       call.Model,
			RequestBody: body,
			Error:       err.Error(),
			DurationMs:  duration.Milliseconds(),
		})
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	Trace(TraceEntry{
		Driver:      call.Driver,
		Endpoint:    call.URL,
		Method:      http.MethodPost,
		Model:       call.Model,
		RequestBody: body,
		StatusCode:  resp.StatusCode,
		Response:    respBody,
		DurationMs:  duration.Milliseconds(),
	})

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, NewProviderError(call.Driver, resp.StatusCode, respBody)
	}
	return respBody, nil
}

// WithTimeout applies timeout to ctx when positive. The returned cancel func
// is nil when no deadline was added.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
