// Package analyzer runs a single grounded fact-check of a claim or URL and
// returns the parsed verdict.
package analyzer

import (
	"context"
	"errors"
	"strings"

	"github.com/claimlens/claimlens/internal/ailink"
	"github.com/claimlens/claimlens/internal/ailink/driver"
	"github.com/claimlens/claimlens/internal/ailink/prompt"
	"github.com/claimlens/claimlens/internal/core"
	"github.com/claimlens/claimlens/internal/core/parser"
)

// Temperature is the fixed sampling temperature for fact-check requests.
const Temperature = 0.1

// Grounder issues one search-grounded model request.
type Grounder interface {
	Ground(ctx context.Context, req ailink.GroundRequest) (*ailink.GroundResponse, error)
}

// Options tune which prompt and provider an Analyzer uses. Zero values select
// the built-in claim-verification prompt and default routing.
type Options struct {
	PromptSlug string
	Provider   string
	Model      string
}

// Report is the parsed result plus metadata about the upstream call.
type Report struct {
	Result   core.AnalysisResult
	Provider string
	Model    string
	Raw      string
}

// Analyzer turns a claim into an AnalysisResult with one grounded request.
// It holds no mutable state and is safe for concurrent use when its Grounder
// is.
type Analyzer struct {
	grounder Grounder
	opts     Options
}

// New returns an Analyzer bound to grounder.
func New(grounder Grounder, opts Options) *Analyzer {
	return &Analyzer{grounder: grounder, opts: opts}
}

// Analyze fact-checks claim. It fails with core.ErrEmptyClaim for blank
// input, *ConfigurationError when no credential is configured (before any
// network activity) and *UpstreamError for any failure of the model call.
// There is no retry.
func (a *Analyzer) Analyze(ctx context.Context, claim string) (core.AnalysisResult, error) {
	report, err := a.AnalyzeWithOptions(ctx, claim, Options{})
	if err != nil {
		return core.AnalysisResult{}, err
	}
	return report.Result, nil
}

// AnalyzeWithOptions is Analyze with per-call overrides layered over the
// Analyzer's own options. It also reports which provider and model answered.
func (a *Analyzer) AnalyzeWithOptions(ctx context.Context, claim string, override Options) (*Report, error) {
	if strings.TrimSpace(claim) == "" {
		return nil, core.ErrEmptyClaim
	}
	if a == nil || a.grounder == nil {
		return nil, &ConfigurationError{Message: "claim analyzer is not configured"}
	}

	opts := a.merge(override)
	resp, err := a.grounder.Ground(ctx, ailink.GroundRequest{
		Claim:       claim,
		PromptSlug:  opts.PromptSlug,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Temperature: Temperature,
		Search:      true,
	})
	if err != nil {
		return nil, classify(err, opts.Provider)
	}
	if resp == nil {
		return nil, &UpstreamError{Provider: opts.Provider}
	}

	return &Report{
		Result:   parser.Parse(resp.Text, resp.Citations),
		Provider: resp.Provider,
		Model:    resp.Model,
		Raw:      resp.Text,
	}, nil
}

func (a *Analyzer) merge(override Options) Options {
	out := a.opts
	if out.PromptSlug == "" {
		out.PromptSlug = prompt.ClaimVerificationSlug
	}
	if strings.TrimSpace(override.PromptSlug) != "" {
		out.PromptSlug = override.PromptSlug
	}
	if strings.TrimSpace(override.Provider) != "" {
		out.Provider = override.Provider
	}
	if strings.TrimSpace(override.Model) != "" {
		out.Model = override.Model
	}
	return out
}

func classify(err error, provider string) error {
	var credErr *ailink.CredentialError
	if errors.As(err, &credErr) {
		return &ConfigurationError{Message: MissingCredentialMessage, Err: err}
	}
	if errors.Is(err, core.ErrEmptyClaim) {
		return err
	}
	var setupErr *ailink.SetupError
	if errors.As(err, &setupErr) {
		return &ConfigurationError{Message: err.Error(), Err: err}
	}
	return &UpstreamError{Provider: answeringProvider(err, provider), Err: err}
}

// answeringProvider names the provider that failed: the routed instance when
// the call got that far, else the driver, else the requested override.
func answeringProvider(err error, requested string) string {
	var callErr *ailink.CallError
	if errors.As(err, &callErr) && callErr.ProviderID != "" {
		return callErr.ProviderID
	}
	var provErr *driver.ProviderError
	if errors.As(err, &provErr) && provErr.Provider != "" {
		return provErr.Provider
	}
	return requested
}
