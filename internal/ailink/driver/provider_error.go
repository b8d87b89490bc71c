package driver

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ProviderError is returned when a provider responds with a non-2xx status.
//
// Drivers should populate RawResponse with the provider response body bytes.
// RawResponse must never include API keys.
type ProviderError struct {
	Provider    string
	StatusCode  int
	Message     string
	RawResponse []byte
}

func (e *ProviderError) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s request failed: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Message)
}

// NewProviderError builds a ProviderError from a failed response body,
// preferring the provider's own error message when the body is a JSON error
// envelope ({"error":{"message":...}} or {"error":"..."}).
func NewProviderError(provider string, status int, body []byte) *ProviderError {
	return &ProviderError{
		Provider:    provider,
		StatusCode:  status,
		Message:     errorMessage(body),
		RawResponse: body,
	}
}

func errorMessage(body []byte) string {
	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(envelope.Error, &nested); err == nil && strings.TrimSpace(nested.Message) != "" {
			return strings.TrimSpace(nested.Message)
		}
		var flat string
		if err := json.Unmarshal(envelope.Error, &flat); err == nil && strings.TrimSpace(flat) != "" {
			return strings.TrimSpace(flat)
		}
	}
	return strings.TrimSpace(string(body))
}
