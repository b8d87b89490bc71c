package ailink

import (
	"context"
	"errors"
	"strings"

	"github.com/claimlens/claimlens/internal/ailink/driver"
)

// ProviderFailure is a classified provider error suitable for logs and API
// error details.
type ProviderFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MapProviderError classifies a provider call failure. It returns nil for a
// nil error.
func MapProviderError(err error) *ProviderFailure {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderFailure{Code: "AILINK_PROVIDER_TIMEOUT", Message: "provider request timed out"}
	}

	var credErr *CredentialError
	if errors.As(err, &credErr) {
		return &ProviderFailure{Code: "AILINK_PROVIDER_CREDENTIALS", Message: "provider credentials missing", Details: credErr.Reason}
	}

	var perr *driver.ProviderError
	if errors.As(err, &perr) && perr != nil {
		status := perr.StatusCode
		details := strings.TrimSpace(perr.Message)
		switch {
		case status == 401 || status == 403:
			return &ProviderFailure{Code: "AILINK_PROVIDER_AUTH", Message: "provider authentication failed", Details: details}
		case status == 429:
			return &ProviderFailure{Code: "AILINK_PROVIDER_RATE_LIMIT", Message: "provider rate limited", Details: details}
		case status >= 500 && status <= 599:
			return &ProviderFailure{Code: "AILINK_PROVIDER_UNAVAILABLE", Message: "provider unavailable", Details: details}
		case status >= 400 && status <= 499:
			return &ProviderFailure{Code: "AILINK_PROVIDER_BAD_REQUEST", Message: "provider rejected request", Details: details}
		default:
			return &ProviderFailure{Code: "AILINK_PROVIDER_ERROR", Message: "provider request failed", Details: details}
		}
	}

	return &ProviderFailure{Code: "AILINK_PROVIDER_ERROR", Message: "provider request failed", Details: err.Error()}
}
