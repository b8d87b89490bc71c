package ailink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimlens/claimlens/internal/ailink/content"
	"github.com/claimlens/claimlens/internal/ailink/driver"
	"github.com/claimlens/claimlens/internal/ailink/prompt"
	"github.com/claimlens/claimlens/internal/core"
)

type recordingDriver struct {
	name     string
	search   bool
	calls    int
	req      *driver.Request
	deadline bool
	resp     *driver.Response
	err      error
}

func (d *recordingDriver) Complete(ctx context.Context, req *driver.Request) (*driver.Response, error) {
	d.calls++
	d.req = req
	_, d.deadline = ctx.Deadline()
	if d.err != nil {
		return nil, d.err
	}
	return d.resp, nil
}

func (d *recordingDriver) Name() string { return d.name }

func (d *recordingDriver) Capabilities() driver.Capabilities {
	return driver.Capabilities{SupportsSearch: d.search}
}

type stubPromptRegistry struct {
	prompt *prompt.Prompt
}

func (s stubPromptRegistry) Get(slug string) (*prompt.Prompt, error) { return s.prompt, nil }
func (s stubPromptRegistry) List() []*prompt.Prompt                  { return []*prompt.Prompt{s.prompt} }

func newTestService(t *testing.T, drv *recordingDriver, apiKey string) *Service {
	t.Helper()

	providers := NewRegistry(Config{
		DefaultProvider: "p",
		Providers: map[string]ProviderInstanceConfig{
			"p": {
				Enabled:     true,
				AIProvider:  "gemini",
				Models:      map[string]string{"default": "m"},
				Credentials: []CredentialConfig{{APIKey: apiKey}},
			},
		},
	})
	// Drivers are cached by providerID:credKey; an unlabeled priority-0
	// credential uses "p0-0".
	providers.drivers = map[string]driver.Driver{"p:p0-0": drv}

	prompts, err := prompt.DefaultRegistry()
	require.NoError(t, err)
	return &Service{Providers: providers, Prompts: prompts}
}

func TestGroundSendsSingleGroundedMessage(t *testing.T) {
	drv := &recordingDriver{
		name:   "gemini",
		search: true,
		resp: &driver.Response{
			Content:   []content.ContentBlock{{Type: content.ContentTypeText, Text: "SCORE: 10"}},
			Citations: []driver.Citation{{Title: "A", URI: "https://a.example"}},
		},
	}
	svc := newTestService(t, drv, "key")

	claim := "Water boils at 50C at sea level"
	resp, err := svc.Ground(context.Background(), GroundRequest{Claim: claim, Temperature: 0.1, Search: true})
	require.NoError(t, err)

	require.Equal(t, 1, drv.calls)
	req := drv.req
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content[0].Text, `"`+claim+`"`)
	assert.Contains(t, req.Messages[0].Content[0].Text, "SCORE:")
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.1, *req.Temperature, 1e-9)
	assert.Nil(t, req.ResponseFormat)
	require.True(t, req.WantsSearch())
	assert.Equal(t, "web", req.SearchParameters.Sources[0].Type)
	assert.Equal(t, "m", req.Model)
	assert.False(t, drv.deadline, "no deadline by default")

	assert.Equal(t, "SCORE: 10", resp.Text)
	assert.Equal(t, []core.Citation{{Title: "A", URI: "https://a.example"}}, resp.Citations)
	assert.Equal(t, "p", resp.Provider)
	assert.Equal(t, "m", resp.Model)
}

func TestGroundFailsWithoutCredentialBeforeDriverCall(t *testing.T) {
	drv := &recordingDriver{name: "gemini", search: true}
	svc := newTestService(t, drv, "")

	_, err := svc.Ground(context.Background(), GroundRequest{Claim: "x", Temperature: 0.1, Search: true})

	var credErr *CredentialError
	require.True(t, errors.As(err, &credErr))
	assert.Equal(t, 0, drv.calls)
}

func TestGroundRejectsEmptyClaim(t *testing.T) {
	drv := &recordingDriver{name: "gemini", search: true}
	svc := newTestService(t, drv, "key")

	_, err := svc.Ground(context.Background(), GroundRequest{Claim: "   "})
	assert.ErrorIs(t, err, core.ErrEmptyClaim)
	assert.Equal(t, 0, drv.calls)
}

func TestGroundRequiresSearchCapableDriver(t *testing.T) {
	drv := &recordingDriver{name: "plain"}
	svc := newTestService(t, drv, "key")

	_, err := svc.Ground(context.Background(), GroundRequest{Claim: "x", Search: true})
	require.Error(t, err)
	assert.Equal(t, 0, drv.calls)
}

func TestGroundAppliesConfiguredTimeout(t *testing.T) {
	drv := &recordingDriver{name: "gemini", search: true, resp: &driver.Response{}}
	svc := newTestService(t, drv, "key")

	_, err := svc.Ground(context.Background(), GroundRequest{Claim: "x", Search: true, Timeout: time.Second})
	require.NoError(t, err)
	assert.True(t, drv.deadline)
}

func TestGroundPropagatesDriverErrorOnce(t *testing.T) {
	boom := &driver.ProviderError{Provider: "gemini", StatusCode: 500, Message: "boom"}
	drv := &recordingDriver{name: "gemini", search: true, err: boom}
	svc := newTestService(t, drv, "key")

	_, err := svc.Ground(context.Background(), GroundRequest{Claim: "x", Search: true})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, drv.calls)

	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "p", callErr.ProviderID)
	assert.Equal(t, "m", callErr.Model)
	assert.Equal(t, boom.Error(), err.Error())
}

func TestGroundUsesPromptOverride(t *testing.T) {
	drv := &recordingDriver{name: "gemini", search: true, resp: &driver.Response{}}
	svc := newTestService(t, drv, "key")
	svc.Prompts = stubPromptRegistry{prompt: &prompt.Prompt{Config: prompt.Config{Slug: "custom", Template: "Check: {{claim}}", Tools: []prompt.ToolConfig{{Type: "news"}}}}}

	_, err := svc.Ground(context.Background(), GroundRequest{Claim: "{{claim}} literal", PromptSlug: "custom", Search: true})
	require.NoError(t, err)
	assert.Equal(t, "Check: {{claim}} literal", drv.req.Messages[0].Content[0].Text)
	assert.Equal(t, "news", drv.req.SearchParameters.Sources[0].Type)
}
