package analyzer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimlens/claimlens/internal/ailink"
	"github.com/claimlens/claimlens/internal/ailink/driver"
	"github.com/claimlens/claimlens/internal/ailink/prompt"
	"github.com/claimlens/claimlens/internal/core"
)

type fakeGrounder struct {
	calls int
	req   ailink.GroundRequest
	resp  *ailink.GroundResponse
	err   error
}

func (f *fakeGrounder) Ground(ctx context.Context, req ailink.GroundRequest) (*ailink.GroundResponse, error) {
	f.calls++
	f.req = req
	return f.resp, f.err
}

type blankError struct{}

func (blankError) Error() string { return "  " }

func TestAnalyzeParsesGroundedAnswer(t *testing.T) {
	grounder := &fakeGrounder{resp: &ailink.GroundResponse{
		Text: "SCORE: 12\nVERDICT: False\nANALYSIS: No outlet reports this.",
		Citations: []core.Citation{
			{URI: "https://a.com", Title: "A"},
			{URI: "https://a.com", Title: "A-dup"},
			{URI: "https://b.com"},
		},
		Provider: "gemini",
		Model:    "gemini-2.5-flash",
	}}

	result, err := New(grounder, Options{}).Analyze(context.Background(), "Aliens landed in Paris")
	require.NoError(t, err)

	assert.Equal(t, 1, grounder.calls)
	assert.Equal(t, "Aliens landed in Paris", grounder.req.Claim)
	assert.InDelta(t, 0.1, grounder.req.Temperature, 1e-9)
	assert.True(t, grounder.req.Search)
	assert.Equal(t, prompt.ClaimVerificationSlug, grounder.req.PromptSlug)

	assert.Equal(t, core.AnalysisResult{
		Score:    12,
		Verdict:  "False",
		Analysis: "No outlet reports this.",
		Sources: []core.Source{
			{Title: "A", URI: "https://a.com"},
			{Title: "Web Source", URI: "https://b.com"},
		},
	}, result)
}

func TestAnalyzeRejectsBlankClaimWithoutCalling(t *testing.T) {
	grounder := &fakeGrounder{}
	_, err := New(grounder, Options{}).Analyze(context.Background(), " \n ")
	assert.ErrorIs(t, err, core.ErrEmptyClaim)
	assert.Equal(t, 0, grounder.calls)
}

func TestAnalyzeMapsCredentialErrorToConfigurationError(t *testing.T) {
	grounder := &fakeGrounder{err: &ailink.CredentialError{ProviderID: "gemini", Reason: "api key is not set"}}

	_, err := New(grounder, Options{}).Analyze(context.Background(), "claim")

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, MissingCredentialMessage, err.Error())
	assert.True(t, IsConfigurationError(err))
	assert.False(t, IsUpstreamError(err))
}

func TestAnalyzeMapsSetupErrorToConfigurationError(t *testing.T) {
	grounder := &fakeGrounder{err: &ailink.SetupError{Err: errors.New(`prompt "nope" not found`)}}

	_, err := New(grounder, Options{PromptSlug: "nope"}).Analyze(context.Background(), "claim")
	require.True(t, IsConfigurationError(err))
	assert.Contains(t, err.Error(), "not found")
}

func TestAnalyzeWrapsUpstreamFailures(t *testing.T) {
	cause := &driver.ProviderError{Provider: "gemini", StatusCode: 429, Message: "quota exceeded"}
	grounder := &fakeGrounder{err: fmt.Errorf("call: %w", cause)}

	_, err := New(grounder, Options{}).Analyze(context.Background(), "claim")

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "call: gemini request failed: status 429: quota exceeded", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, grounder.calls, "no retry")
	assert.False(t, upErr.Timeout())
}

func TestUpstreamErrorNamesRoutedProvider(t *testing.T) {
	cause := &driver.ProviderError{Provider: "gemini", StatusCode: 503, Message: "overloaded"}

	t.Run("routed instance", func(t *testing.T) {
		grounder := &fakeGrounder{err: &ailink.CallError{ProviderID: "gemini-prod", Model: "gemini-2.5-flash", Err: cause}}
		_, err := New(grounder, Options{}).Analyze(context.Background(), "claim")

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "gemini-prod", upErr.Provider)
	})

	t.Run("driver only", func(t *testing.T) {
		grounder := &fakeGrounder{err: cause}
		_, err := New(grounder, Options{}).Analyze(context.Background(), "claim")

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "gemini", upErr.Provider)
	})

	t.Run("override without detail", func(t *testing.T) {
		grounder := &fakeGrounder{err: errors.New("connection reset")}
		_, err := New(grounder, Options{}).AnalyzeWithOptions(context.Background(), "claim", Options{Provider: "xai"})

		var upErr *UpstreamError
		require.ErrorAs(t, err, &upErr)
		assert.Equal(t, "xai", upErr.Provider)
	})
}

func TestUpstreamErrorFallsBackToGenericMessage(t *testing.T) {
	assert.Equal(t, GenericUpstreamMessage, (&UpstreamError{}).Error())
	assert.Equal(t, GenericUpstreamMessage, (&UpstreamError{Err: blankError{}}).Error())

	grounder := &fakeGrounder{}
	_, err := New(grounder, Options{}).Analyze(context.Background(), "claim")
	require.True(t, IsUpstreamError(err))
	assert.Equal(t, GenericUpstreamMessage, err.Error())
}

func TestUpstreamErrorDetectsTimeout(t *testing.T) {
	err := &UpstreamError{Err: fmt.Errorf("request failed: %w", context.DeadlineExceeded)}
	assert.True(t, err.Timeout())
}

func TestAnalyzeWithOptionsLayersOverrides(t *testing.T) {
	grounder := &fakeGrounder{resp: &ailink.GroundResponse{Text: "no markers", Provider: "xai", Model: "grok-4"}}
	a := New(grounder, Options{Provider: "gemini", Model: "gemini-2.5-flash"})

	report, err := a.AnalyzeWithOptions(context.Background(), "claim", Options{Provider: "xai", Model: "grok-4"})
	require.NoError(t, err)

	assert.Equal(t, "xai", grounder.req.Provider)
	assert.Equal(t, "grok-4", grounder.req.Model)
	assert.Equal(t, "xai", report.Provider)
	assert.Equal(t, "no markers", report.Raw)
	assert.Equal(t, 50, report.Result.Score)
	assert.Equal(t, "Unverified", report.Result.Verdict)
	assert.Equal(t, "no markers", report.Result.Analysis)
	assert.NotNil(t, report.Result.Sources)
}

func TestAnalyzerWithoutGrounderIsConfigurationError(t *testing.T) {
	_, err := New(nil, Options{}).Analyze(context.Background(), "claim")
	assert.True(t, IsConfigurationError(err))
}
