package ailink

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimlens/claimlens/internal/ailink/driver/gemini"
	"github.com/claimlens/claimlens/internal/ailink/driver/xai"
	"github.com/claimlens/claimlens/internal/ailink/prompt"
)

func TestResolveModelUsesOverrideFirst(t *testing.T) {
	providerCfg := ProviderInstanceConfig{Models: map[string]string{"default": "m-default"}}

	model, err := resolveModel(providerCfg, nil, "override-model")
	require.NoError(t, err)
	require.Equal(t, "override-model", model)
}

func TestResolveModelPrefersProviderDefaultOverPromptHint(t *testing.T) {
	providerCfg := ProviderInstanceConfig{Models: map[string]string{"default": "m-default"}}
	promptDef := &prompt.Prompt{Config: prompt.Config{ProviderHints: map[string]any{"preferred_models": []string{"prompt-model"}}}}

	model, err := resolveModel(providerCfg, promptDef, "")
	require.NoError(t, err)
	require.Equal(t, "m-default", model)
}

func TestResolveModelFallsBackToPromptPreferredModels(t *testing.T) {
	promptDef := &prompt.Prompt{Config: prompt.Config{ProviderHints: map[string]any{"preferred_models": []any{"prompt-model"}}}}

	model, err := resolveModel(ProviderInstanceConfig{}, promptDef, "")
	require.NoError(t, err)
	require.Equal(t, "prompt-model", model)

	_, err = resolveModel(ProviderInstanceConfig{}, nil, "")
	require.Error(t, err)
}

func TestResolveReturnsCredentialErrorWithoutKey(t *testing.T) {
	cases := map[string][]CredentialConfig{
		"no credentials": nil,
		"blank key":      {{Label: "main", Enabled: true, APIKey: "  "}},
	}
	for name, creds := range cases {
		t.Run(name, func(t *testing.T) {
			reg := NewRegistry(Config{
				DefaultProvider: "gemini",
				Providers: map[string]ProviderInstanceConfig{
					"gemini": {Enabled: true, AIProvider: "gemini", Models: map[string]string{"default": "gemini-2.5-flash"}, Credentials: creds},
				},
			})

			_, err := reg.Resolve("claim-verification", nil, "")
			var credErr *CredentialError
			require.True(t, errors.As(err, &credErr), "got %v", err)
			assert.Equal(t, "gemini", credErr.ProviderID)
			assert.Empty(t, reg.drivers, "no driver may be built without a key")
		})
	}
}

func TestResolveBuildsDriverPerProviderType(t *testing.T) {
	reg := NewRegistry(Config{
		DefaultProvider: "primary",
		Providers: map[string]ProviderInstanceConfig{
			"primary": {Enabled: true, AIProvider: "gemini", Models: map[string]string{"default": "gemini-2.5-flash"}, Credentials: []CredentialConfig{{APIKey: "g"}}},
			"grok":    {Enabled: true, AIProvider: "xai", Roles: []string{"deep-check"}, Models: map[string]string{"default": "grok-4"}, Credentials: []CredentialConfig{{APIKey: "x"}}},
		},
	})

	resolved, err := reg.Resolve("claim-verification", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "primary", resolved.ProviderID)
	assert.Equal(t, "gemini-2.5-flash", resolved.Model)
	_, ok := resolved.Driver.(*gemini.Client)
	assert.True(t, ok)

	resolved, err = reg.Resolve("deep-check", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "grok", resolved.ProviderID)
	_, ok = resolved.Driver.(*xai.Client)
	assert.True(t, ok)

	resolved, err = reg.ResolveByID("grok", nil, "grok-3")
	require.NoError(t, err)
	assert.Equal(t, "grok-3", resolved.Model)

	_, err = reg.ResolveByID("missing", nil, "")
	require.Error(t, err)
}

func TestResolveRejectsUnknownProviderType(t *testing.T) {
	reg := NewRegistry(Config{
		DefaultProvider: "p",
		Providers: map[string]ProviderInstanceConfig{
			"p": {Enabled: true, AIProvider: "llama", Models: map[string]string{"default": "m"}, Credentials: []CredentialConfig{{APIKey: "k"}}},
		},
	})
	_, err := reg.Resolve("", nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported ai_provider")
}

func TestSelectCredentialRoundRobin(t *testing.T) {
	cfg := ProviderInstanceConfig{
		SelectionPolicy: "round_robin",
		Credentials: []CredentialConfig{
			{Label: "a", Enabled: true, APIKey: "ka", Priority: 1},
			{Label: "b", Enabled: true, APIKey: "kb", Priority: 1},
			{Label: "low", Enabled: true, APIKey: "kl", Priority: 0},
		},
	}
	reg := NewRegistry(Config{})
	next := func(group string, n int) int { return reg.rrIndex("p:"+group, n) }

	first, _, err := selectCredential(cfg, next)
	require.NoError(t, err)
	second, _, err := selectCredential(cfg, next)
	require.NoError(t, err)
	third, _, err := selectCredential(cfg, next)
	require.NoError(t, err)

	assert.Equal(t, "a", first.Label)
	assert.Equal(t, "b", second.Label)
	assert.Equal(t, "a", third.Label)
}

func TestSelectCredentialHonorsDefaultLabel(t *testing.T) {
	cfg := ProviderInstanceConfig{
		DefaultCredential: "backup",
		Credentials: []CredentialConfig{
			{Label: "main", Enabled: true, APIKey: "k1", Priority: 5},
			{Label: "backup", Enabled: true, APIKey: "k2"},
		},
	}
	cred, key, err := selectCredential(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "backup", cred.Label)
	assert.Equal(t, "backup", key)
}

func TestStatusHidesKeys(t *testing.T) {
	reg := NewRegistry(Config{
		DefaultProvider: "gemini",
		Providers: map[string]ProviderInstanceConfig{
			"gemini": {Enabled: true, AIProvider: "gemini", Models: map[string]string{"default": "gemini-2.5-flash"}, Credentials: []CredentialConfig{{APIKey: "secret"}}},
			"openai": {AIProvider: "openai"},
		},
	})

	status := reg.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "gemini", status[0].ID)
	assert.True(t, status[0].Default)
	assert.True(t, status[0].HasCredential)
	assert.Equal(t, "openai", status[1].ID)
	assert.False(t, status[1].HasCredential)
	assert.NotContains(t, status[0].Model, "secret")
}
