package config

import (
	"github.com/claimlens/claimlens/internal/ailink/prompt"
)

// Built-in provider defaults.
const (
	DefaultProviderID = "gemini"
	DefaultModel      = "gemini-2.5-flash"
)

// defaultValues is the lowest config layer. It is rebuilt on every Load so
// merges never leak between loads.
func defaultValues() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"host":             "localhost",
			"port":             8080,
			"read_timeout":     "30s",
			"write_timeout":    "5m",
			"idle_timeout":     "120s",
			"shutdown_timeout": "10s",
		},
		"store": map[string]any{
			"enabled":    false,
			"driver":     "libsql",
			"path":       DefaultStorePath(),
			"url":        "",
			"auth_token": "",
		},
		"cache": map[string]any{
			"ttl": "0s",
		},
		"ailink": map[string]any{
			"default_provider": DefaultProviderID,
			"default_timeout":  "0s",
			"prompts_dir":      "",
			"providers": map[string]any{
				DefaultProviderID: map[string]any{
					"enabled":     true,
					"ai_provider": "gemini",
					"models": map[string]any{
						"default": DefaultModel,
					},
				},
			},
			"routing": map[string]any{},
		},
		"analyzer": map[string]any{
			"prompt_slug": prompt.ClaimVerificationSlug,
			"provider":    "",
			"model":       "",
		},
		"feed": map[string]any{
			"limit":   10,
			"timeout": "30s",
		},
		"logging": map[string]any{
			"level":   "info",
			"profile": "structured",
		},
		"metrics": map[string]any{
			"enabled": true,
			"port":    9090,
		},
		"health": map[string]any{
			"enabled": true,
		},
		"debug": map[string]any{
			"enabled":       false,
			"pprof_enabled": false,
		},
	}
}
