package ailink

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claimlens/claimlens/internal/ailink/content"
	"github.com/claimlens/claimlens/internal/ailink/driver"
	"github.com/claimlens/claimlens/internal/ailink/prompt"
	"github.com/claimlens/claimlens/internal/core"
)

const maxTimeout = 10 * time.Minute

// Service coordinates prompt loading, provider selection, and driver execution.
type Service struct {
	Providers *Registry
	Prompts   prompt.Registry
}

// Ground renders the prompt for the claim, resolves a provider and issues
// exactly one completion request. The rendered prompt is sent as the only
// message. No JSON response format is requested.
func (s *Service) Ground(ctx context.Context, req GroundRequest) (*GroundResponse, error) {
	if s == nil || s.Providers == nil {
		return nil, setupError(errors.New("ailink provider registry not configured"))
	}
	if s.Prompts == nil {
		return nil, setupError(errors.New("ailink prompt registry not configured"))
	}

	if strings.TrimSpace(req.Claim) == "" {
		return nil, core.ErrEmptyClaim
	}

	slug := strings.TrimSpace(req.PromptSlug)
	if slug == "" {
		slug = prompt.ClaimVerificationSlug
	}

	promptDef, err := s.Prompts.Get(slug)
	if err != nil {
		return nil, setupError(err)
	}

	text, err := renderPrompt(promptDef, map[string]string{"claim": req.Claim})
	if err != nil {
		return nil, setupError(err)
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = slug
	}

	var resolved *ResolvedProvider
	if id := strings.TrimSpace(req.Provider); id != "" {
		resolved, err = s.Providers.ResolveByID(id, promptDef, req.Model)
	} else {
		resolved, err = s.Providers.Resolve(role, promptDef, req.Model)
	}
	if err != nil {
		return nil, setupError(err)
	}

	temperature := req.Temperature
	driverReq := &driver.Request{
		Model:       resolved.Model,
		Messages:    []content.Message{content.UserText(text)},
		Temperature: &temperature,
		PromptSlug:  promptDef.Config.Slug,
	}
	if req.Search {
		if !resolved.Driver.Capabilities().SupportsSearch {
			return nil, setupError(fmt.Errorf("provider %q does not support search grounding", resolved.ProviderID))
		}
		driverReq.SearchParameters = buildSearchParams(promptDef)
	}

	if timeout := s.timeout(req.Timeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := resolved.Driver.Complete(ctx, driverReq)
	if err != nil {
		return nil, &CallError{ProviderID: resolved.ProviderID, Model: resolved.Model, Err: err}
	}

	out := &GroundResponse{
		Provider: resolved.ProviderID,
		Model:    resolved.Model,
		Duration: time.Since(start),
	}
	if resp != nil {
		out.Text = content.JoinText(resp.Content)
		out.Usage = resp.Usage
		out.Citations = make([]core.Citation, 0, len(resp.Citations))
		for _, c := range resp.Citations {
			out.Citations = append(out.Citations, core.Citation{Title: c.Title, URI: c.URI})
		}
	}
	return out, nil
}

func (s *Service) timeout(requested time.Duration) time.Duration {
	duration := s.Providers.cfg.DefaultTimeout
	if requested > 0 {
		duration = requested
	}
	if duration > maxTimeout {
		duration = maxTimeout
	}
	return duration
}

// buildSearchParams maps prompt-declared search tools to search sources.
// Prompts that declare no search tool still get plain web search.
func buildSearchParams(def *prompt.Prompt) *driver.SearchParameters {
	params := &driver.SearchParameters{
		Mode:            "on",
		ReturnCitations: true,
	}
	sourceMap := map[string]string{
		"web_search": "web",
		"news":       "news",
		"x_search":   "x",
	}
	if def != nil {
		for _, tool := range def.Config.Tools {
			if srcType, ok := sourceMap[tool.Type]; ok {
				params.Sources = append(params.Sources, driver.Source{Type: srcType})
			}
		}
	}
	if len(params.Sources) == 0 {
		params.Sources = []driver.Source{{Type: "web"}}
	}
	return params
}

func renderPrompt(def *prompt.Prompt, vars map[string]string) (string, error) {
	if def == nil {
		return "", errors.New("prompt is required")
	}
	text := applyVars(def.Config.Template, vars)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("rendered prompt is empty")
	}
	return text, nil
}

// applyVars substitutes {{key}} placeholders in a single pass, so values
// containing placeholder syntax are inserted verbatim.
func applyVars(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
