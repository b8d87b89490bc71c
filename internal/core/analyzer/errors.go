package analyzer

import (
	"context"
	"errors"
	"strings"
)

// GenericUpstreamMessage is reported when an upstream failure carries no
// message of its own.
const GenericUpstreamMessage = "claim analysis request failed"

// MissingCredentialMessage tells the operator how to supply a credential.
const MissingCredentialMessage = "API key is missing. Set CLAIMLENS_API_KEY (or API_KEY) or configure a provider credential."

// ConfigurationError reports that analysis cannot start because required
// configuration, usually the provider credential, is absent. No network
// request has been made when it is returned.
type ConfigurationError struct {
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return "configuration error"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "configuration error"
}

func (e *ConfigurationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// UpstreamError wraps a failure of the generative model call: transport,
// authentication, quota, timeout or an unreadable response.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e == nil || e.Err == nil {
		return GenericUpstreamMessage
	}
	msg := strings.TrimSpace(e.Err.Error())
	if msg == "" {
		return GenericUpstreamMessage
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Timeout reports whether the upstream call ended because a deadline passed.
func (e *UpstreamError) Timeout() bool {
	return e != nil && errors.Is(e.Err, context.DeadlineExceeded)
}

// IsConfigurationError reports whether err is or wraps a *ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}

// IsUpstreamError reports whether err is or wraps an *UpstreamError.
func IsUpstreamError(err error) bool {
	var upErr *UpstreamError
	return errors.As(err, &upErr)
}
