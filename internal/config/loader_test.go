package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every discovery path at a temp dir so a developer's own
// config or .env never leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("CLAIMLENS_API_KEY", "")
	t.Setenv("CLAIMLENS_CONFIG", "")
	t.Setenv(LegacyAPIKeyEnv, "")
	t.Chdir(dir)

	SetConfigFile("")
	t.Cleanup(func() { SetConfigFile("") })
	return dir
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("LoadDefaults", func(t *testing.T) {
		isolate(t)

		cfg, err := Load(ctx)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		// Verify server defaults
		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)
		assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

		// Store and cache are opt-in
		assert.False(t, cfg.Store.Enabled)
		assert.Equal(t, "libsql", cfg.Store.Driver)
		assert.Equal(t, DefaultStorePath(), cfg.Store.Path)
		assert.Equal(t, time.Duration(0), cfg.Cache.TTL)

		// AILink defaults: gemini, no deadline, no credential
		assert.Equal(t, DefaultProviderID, cfg.AILink.DefaultProvider)
		assert.Equal(t, time.Duration(0), cfg.AILink.DefaultTimeout)
		provider, ok := cfg.AILink.Providers[DefaultProviderID]
		require.True(t, ok)
		assert.True(t, provider.Enabled)
		assert.Equal(t, "gemini", provider.AIProvider)
		assert.Equal(t, DefaultModel, provider.Models["default"])
		assert.Empty(t, provider.Credentials)

		assert.Equal(t, "claim-verification", cfg.Analyzer.PromptSlug)
		assert.Equal(t, 10, cfg.Feed.Limit)

		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, "structured", cfg.Logging.Profile)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, 9090, cfg.Metrics.Port)
		assert.True(t, cfg.Health.Enabled)
		assert.False(t, cfg.Debug.Enabled)
		assert.False(t, cfg.Debug.PprofEnabled)

		assert.Empty(t, ConfigFileUsed())
	})

	t.Run("RuntimeOverrides", func(t *testing.T) {
		isolate(t)

		overrides := map[string]any{
			"server": map[string]any{
				"port": 9000,
				"host": "0.0.0.0",
			},
			"logging": map[string]any{
				"level": "debug",
			},
		}

		cfg, err := Load(ctx, overrides)
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 9000, cfg.Server.Port)
		assert.Equal(t, "debug", cfg.Logging.Level)

		// Siblings of overridden keys keep their defaults
		assert.Equal(t, "structured", cfg.Logging.Profile)
		assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		isolate(t)
		t.Setenv("CLAIMLENS_PORT", "3000")
		t.Setenv("CLAIMLENS_LOG_LEVEL", "warn")
		t.Setenv("CLAIMLENS_METRICS_ENABLED", "false")
		t.Setenv("CLAIMLENS_STORE_ENABLED", "true")
		t.Setenv("CLAIMLENS_CACHE_TTL", "1h")
		t.Setenv("CLAIMLENS_AILINK_DEFAULT_TIMEOUT", "45s")
		t.Setenv("CLAIMLENS_METRICS_BEARER_TOKEN", "scrape-token")

		cfg, err := Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, 3000, cfg.Server.Port)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.False(t, cfg.Metrics.Enabled)
		assert.True(t, cfg.Store.Enabled)
		assert.Equal(t, time.Hour, cfg.Cache.TTL)
		assert.Equal(t, 45*time.Second, cfg.AILink.DefaultTimeout)
		assert.Equal(t, "scrape-token", cfg.Metrics.BearerToken)
	})

	t.Run("ConfigPrecedence", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "claimlens.yaml")
		writeFile(t, path, "server:\n  port: 4100\n  host: filehost\n")
		SetConfigFile(path)
		t.Setenv("CLAIMLENS_PORT", "4000")

		cfg, err := Load(ctx, map[string]any{
			"server": map[string]any{"port": 5000},
		})
		require.NoError(t, err)

		// runtime > env > file > defaults
		assert.Equal(t, 5000, cfg.Server.Port)
		assert.Equal(t, "filehost", cfg.Server.Host)
		assert.Equal(t, path, ConfigFileUsed())
	})

	t.Run("ConfigFileProviders", func(t *testing.T) {
		dir := isolate(t)
		path := filepath.Join(dir, "claimlens.yaml")
		writeFile(t, path, `
ailink:
  default_provider: xai
  providers:
    xai:
      enabled: true
      ai_provider: xai
      models:
        default: grok-4
      credentials:
        - label: main
          enabled: true
          api_key: xai-file-key
`)
		SetConfigFile(path)

		cfg, err := Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, "xai", cfg.AILink.DefaultProvider)
		xai, ok := cfg.AILink.Providers["xai"]
		require.True(t, ok)
		assert.Equal(t, "grok-4", xai.Models["default"])
		require.Len(t, xai.Credentials, 1)
		assert.Equal(t, "xai-file-key", xai.Credentials[0].APIKey)

		// the built-in gemini instance is still present
		_, ok = cfg.AILink.Providers[DefaultProviderID]
		assert.True(t, ok)
	})

	t.Run("MissingExplicitConfigFile", func(t *testing.T) {
		dir := isolate(t)
		SetConfigFile(filepath.Join(dir, "missing.yaml"))

		_, err := Load(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing.yaml")
	})

	t.Run("InvalidValues", func(t *testing.T) {
		isolate(t)

		_, err := Load(ctx, map[string]any{
			"cache": map[string]any{"ttl": "-1m"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache.ttl")
	})
}

func TestAPIKeyFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("PrefixedKey", func(t *testing.T) {
		isolate(t)
		t.Setenv("CLAIMLENS_API_KEY", "prefixed-key")
		t.Setenv(LegacyAPIKeyEnv, "legacy-key")

		cfg, err := Load(ctx)
		require.NoError(t, err)

		creds := cfg.AILink.Providers[DefaultProviderID].Credentials
		require.Len(t, creds, 1)
		assert.Equal(t, "prefixed-key", creds[0].APIKey)
		assert.True(t, creds[0].Enabled)
	})

	t.Run("LegacyKey", func(t *testing.T) {
		isolate(t)
		t.Setenv(LegacyAPIKeyEnv, "legacy-key")

		cfg, err := Load(ctx)
		require.NoError(t, err)

		creds := cfg.AILink.Providers[DefaultProviderID].Credentials
		require.Len(t, creds, 1)
		assert.Equal(t, "legacy-key", creds[0].APIKey)
	})

	t.Run("ConfiguredCredentialWins", func(t *testing.T) {
		isolate(t)
		t.Setenv("CLAIMLENS_API_KEY", "env-key")
		t.Setenv("CLAIMLENS_AILINK_PROVIDERS_GEMINI_CREDENTIALS_0_API_KEY", "configured-key")

		cfg, err := Load(ctx)
		require.NoError(t, err)

		creds := cfg.AILink.Providers[DefaultProviderID].Credentials
		require.Len(t, creds, 1)
		assert.Equal(t, "configured-key", creds[0].APIKey)
	})

	t.Run("DotEnvFile", func(t *testing.T) {
		dir := isolate(t)
		writeFile(t, filepath.Join(dir, ".env"), "CLAIMLENS_API_KEY=dotenv-key\n")
		t.Cleanup(func() { _ = os.Unsetenv("CLAIMLENS_API_KEY") })
		require.NoError(t, os.Unsetenv("CLAIMLENS_API_KEY"))

		cfg, err := Load(ctx)
		require.NoError(t, err)

		creds := cfg.AILink.Providers[DefaultProviderID].Credentials
		require.Len(t, creds, 1)
		assert.Equal(t, "dotenv-key", creds[0].APIKey)
	})
}

func TestAILinkDynamicEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_ENABLED", "true")
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_AI_PROVIDER", "XAI")
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_BASE_URL", "http://localhost:9999/v1")
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_MODELS_DEFAULT", "grok-4-fast")
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_DEFAULT_CREDENTIAL", "backup")
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_SELECTION_POLICY", "ROUND_ROBIN")
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_ROLES", "claim-verification, other")
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_CREDENTIALS_1_LABEL", "backup")
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_CREDENTIALS_1_API_KEY", "k2")
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_CREDENTIALS_1_PRIORITY", "5")
	t.Setenv("CLAIMLENS_AILINK_PROVIDERS_XAI_FAST_CREDENTIALS_1_ENABLED", "true")
	t.Setenv("CLAIMLENS_AILINK_ROUTING_CLAIM_VERIFICATION", "xai-fast")

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	provider, ok := cfg.AILink.Providers["xai-fast"]
	require.True(t, ok)
	assert.True(t, provider.Enabled)
	assert.Equal(t, "xai", provider.AIProvider)
	assert.Equal(t, "http://localhost:9999/v1", provider.BaseURL)
	assert.Equal(t, "grok-4-fast", provider.Models["default"])
	assert.Equal(t, "backup", provider.DefaultCredential)
	assert.Equal(t, "round_robin", provider.SelectionPolicy)
	assert.Equal(t, []string{"claim-verification", "other"}, provider.Roles)
	require.Len(t, provider.Credentials, 2)
	assert.Equal(t, "backup", provider.Credentials[1].Label)
	assert.Equal(t, "k2", provider.Credentials[1].APIKey)
	assert.Equal(t, 5, provider.Credentials[1].Priority)
	assert.True(t, provider.Credentials[1].Enabled)

	assert.Equal(t, "xai-fast", cfg.AILink.Routing["claim-verification"])
}

func TestGetConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	retrieved := GetConfig()
	require.NotNil(t, retrieved)
	assert.Equal(t, cfg.Server.Port, retrieved.Server.Port)
	assert.Equal(t, cfg.Logging.Level, retrieved.Logging.Level)
}

func TestEnvSpecs(t *testing.T) {
	isolate(t)
	_, err := Load(context.Background())
	require.NoError(t, err)

	envVarNames := make(map[string]bool)
	for _, spec := range getEnvSpecs() {
		envVarNames[spec.Name] = true
	}

	for _, name := range []string{
		"CLAIMLENS_LOG_LEVEL",
		"CLAIMLENS_PORT",
		"CLAIMLENS_HOST",
		"CLAIMLENS_METRICS_PORT",
		"CLAIMLENS_METRICS_BEARER_TOKEN",
		"CLAIMLENS_DB_PATH",
		"CLAIMLENS_STORE_ENABLED",
		"CLAIMLENS_AILINK_DEFAULT_PROVIDER",
		"CLAIMLENS_MODEL",
	} {
		assert.True(t, envVarNames[name], "%s must be mapped", name)
	}
	assert.False(t, envVarNames["CLAIMLENS_API_KEY"], "API key is handled by the credential fallback")
}

func TestConfigReload(t *testing.T) {
	isolate(t)
	ctx := context.Background()

	cfg1, err := Load(ctx)
	require.NoError(t, err)
	initialPort := cfg1.Server.Port

	cfg2, err := Load(ctx, map[string]any{
		"server": map[string]any{"port": initialPort + 1000},
	})
	require.NoError(t, err)
	assert.Equal(t, initialPort+1000, cfg2.Server.Port)
	assert.Equal(t, cfg2.Server.Port, GetConfig().Server.Port)

	// defaults are rebuilt per load, so the override does not persist
	cfg3, err := Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, initialPort, cfg3.Server.Port)
}

func TestMergeMaps(t *testing.T) {
	dst := map[string]any{
		"a": map[string]any{"x": 1, "y": 2},
		"b": []any{"one"},
	}
	mergeMaps(dst, map[string]any{
		"a": map[string]any{"y": 3},
		"b": []any{"two"},
		"c": "new",
	})

	assert.Equal(t, map[string]any{"x": 1, "y": 3}, dst["a"])
	assert.Equal(t, []any{"two"}, dst["b"])
	assert.Equal(t, "new", dst["c"])
}
