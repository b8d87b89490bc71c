package ailink

import (
	"errors"
	"fmt"
)

// CredentialError reports that the selected provider has no usable API key.
// It is raised before any driver is contacted.
type CredentialError struct {
	ProviderID string
	Reason     string
}

func (e *CredentialError) Error() string {
	if e == nil {
		return "credential error"
	}
	if e.ProviderID == "" {
		return fmt.Sprintf("ailink credential error: %s", e.Reason)
	}
	return fmt.Sprintf("ailink provider %q: %s", e.ProviderID, e.Reason)
}

// SetupError reports a problem with provider routing or prompt selection
// found before any request was sent.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string {
	if e == nil || e.Err == nil {
		return "ailink setup error"
	}
	return e.Err.Error()
}

func (e *SetupError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// CallError is a failed driver call, tagged with the provider instance and
// model that routing selected. Error returns the driver's message unchanged.
type CallError struct {
	ProviderID string
	Model      string
	Err        error
}

func (e *CallError) Error() string {
	if e == nil || e.Err == nil {
		return "ailink call failed"
	}
	return e.Err.Error()
}

func (e *CallError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func setupError(err error) error {
	if err == nil {
		return nil
	}
	var credErr *CredentialError
	if errors.As(err, &credErr) {
		return err
	}
	var setupErr *SetupError
	if errors.As(err, &setupErr) {
		return err
	}
	return &SetupError{Err: err}
}
