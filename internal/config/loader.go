// Package config provides centralized configuration management for ClaimLens.
//
// Layers, lowest precedence first:
//  1. built-in defaults (see defaults.go)
//  2. the YAML config file (--config, or the XDG config directory)
//  3. a .env file in the working or config directory
//  4. environment variables ({PREFIX}NAME specs plus dynamic AILink keys)
//  5. runtime overrides passed to Load
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/claimlens/claimlens/internal/ailink"
	"github.com/claimlens/claimlens/internal/appid"
)

// LegacyAPIKeyEnv is consulted after {PREFIX}API_KEY for the default
// provider's credential.
const LegacyAPIKeyEnv = "API_KEY"

var (
	// appConfig holds the current application configuration
	appConfig   *Config
	configMu    sync.RWMutex
	appIdentity *appid.Identity

	// configFile is an explicit config path set from --config.
	configFile string
	// usedConfigFile records which file the last Load read, if any.
	usedConfigFile string
)

// EnvVarSpec defines environment variable mappings for config fields
// following the pattern: {PREFIX}{NAME} maps to config path
type EnvVarSpec = gfconfig.EnvVarSpec

// Environment variable types
const (
	EnvString = gfconfig.EnvString
	EnvInt    = gfconfig.EnvInt
	EnvBool   = gfconfig.EnvBool
)

// SetConfigFile pins the YAML file Load reads. An empty path restores
// discovery.
func SetConfigFile(path string) {
	configMu.Lock()
	defer configMu.Unlock()
	configFile = strings.TrimSpace(path)
}

// ConfigFileUsed returns the YAML file the last Load read, or "".
func ConfigFileUsed() string {
	configMu.RLock()
	defer configMu.RUnlock()
	return usedConfigFile
}

// Load builds the configuration from all layers and stores it for GetConfig.
//
// This function is safe to call multiple times (e.g., for config reload)
func Load(ctx context.Context, runtimeOverrides ...map[string]any) (*Config, error) {
	identity, err := appid.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load app identity: %w", err)
	}
	appIdentity = identity
	prefix := envPrefix()

	merged := defaultValues()

	path, err := resolveConfigFile()
	if err != nil {
		return nil, err
	}
	if path != "" {
		fileValues, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		mergeMaps(merged, fileValues)
	}

	if err := loadDotEnv(path); err != nil {
		return nil, err
	}

	envOverrides, err := gfconfig.LoadEnvOverrides(getEnvSpecs())
	if err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}
	applyAILinkDynamicEnvOverrides(prefix, envOverrides)
	mergeMaps(merged, envOverrides)

	for _, overrides := range runtimeOverrides {
		mergeMaps(merged, overrides)
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(merged); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	applyAPIKeyFallback(cfg, prefix)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	configMu.Lock()
	usedConfigFile = path
	configMu.Unlock()
	setConfig(cfg)

	return cfg, nil
}

// Validate checks values that would otherwise fail much later. A missing
// API key is deliberately not an error here; it surfaces on first use.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	var problems []string
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", cfg.Server.Port))
	}
	if cfg.Metrics.Port < 0 || cfg.Metrics.Port > 65535 {
		problems = append(problems, fmt.Sprintf("metrics.port %d out of range", cfg.Metrics.Port))
	}
	if cfg.Cache.TTL < 0 {
		problems = append(problems, "cache.ttl must not be negative")
	}
	if cfg.AILink.DefaultTimeout < 0 {
		problems = append(problems, "ailink.default_timeout must not be negative")
	}
	if cfg.Feed.Limit < 0 {
		problems = append(problems, "feed.limit must not be negative")
	}
	if driver := strings.TrimSpace(cfg.Store.Driver); driver != "" && driver != "libsql" {
		problems = append(problems, fmt.Sprintf("store.driver %q is not supported", driver))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

func envPrefix() string {
	prefix := "CLAIMLENS_"
	if appIdentity != nil && strings.TrimSpace(appIdentity.EnvPrefix) != "" {
		prefix = appIdentity.EnvPrefix
	}
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix
}

// resolveConfigFile returns the explicit config file, or the first existing
// file among the XDG user config paths. An explicit file that does not exist
// is an error; a missing discovered file is not.
func resolveConfigFile() (string, error) {
	configMu.RLock()
	explicit := configFile
	configMu.RUnlock()

	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(envPrefix() + "CONFIG"))
	}
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	for _, candidate := range getUserConfigPaths() {
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if info.IsDir() {
			candidate = filepath.Join(candidate, "config.yaml")
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
		}
		return candidate, nil
	}
	return "", nil
}

func readConfigFile(path string) (map[string]any, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return v.AllSettings(), nil
}

// loadDotEnv loads .env from the working directory and next to the config
// file. Variables already present in the environment win.
func loadDotEnv(configPath string) error {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	} else if dir := gfconfig.GetAppConfigDir(configNameForPaths()); strings.TrimSpace(dir) != "" {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}

	seen := map[string]bool{}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if _, err := os.Stat(abs); err != nil {
			continue
		}
		if err := godotenv.Load(abs); err != nil {
			return fmt.Errorf("failed to load %s: %w", abs, err)
		}
	}
	return nil
}

// applyAPIKeyFallback fills the default provider's credential from
// {PREFIX}API_KEY, then API_KEY, when no credential carries a key.
func applyAPIKeyFallback(cfg *Config, prefix string) {
	key := strings.TrimSpace(os.Getenv(prefix + "API_KEY"))
	if key == "" {
		key = strings.TrimSpace(os.Getenv(LegacyAPIKeyEnv))
	}
	if key == "" {
		return
	}

	providerID := strings.TrimSpace(cfg.AILink.DefaultProvider)
	provider, ok := cfg.AILink.Providers[providerID]
	if !ok {
		return
	}
	for _, cred := range provider.Credentials {
		if strings.TrimSpace(cred.APIKey) != "" {
			return
		}
	}

	creds := append([]ailink.CredentialConfig(nil), provider.Credentials...)
	if len(creds) == 0 {
		creds = append(creds, ailink.CredentialConfig{Label: "env"})
	}
	creds[0].APIKey = key
	creds[0].Enabled = true
	provider.Credentials = creds
	cfg.AILink.Providers[providerID] = provider
}

// mergeMaps deep-merges src into dst. Nested maps merge; any other value,
// slices included, replaces what dst held.
func mergeMaps(dst, src map[string]any) {
	for key, value := range src {
		srcMap, srcIsMap := value.(map[string]any)
		if !srcIsMap {
			dst[key] = value
			continue
		}
		dstMap, dstIsMap := dst[key].(map[string]any)
		if !dstIsMap {
			dstMap = map[string]any{}
			dst[key] = dstMap
		}
		mergeMaps(dstMap, srcMap)
	}
}

// getUserConfigPaths returns the list of user config file paths to check
func getUserConfigPaths() []string {
	configName := configNameForPaths()
	legacyNames := []string{}
	if appIdentity != nil && appIdentity.BinaryName != "" && appIdentity.BinaryName != configName {
		legacyNames = append(legacyNames, appIdentity.BinaryName)
	}
	return gfconfig.GetAppConfigPaths(configName, legacyNames...)
}

// getEnvSpecs returns environment variable specifications for config mapping
// Maps {PREFIX}{NAME} environment variables to config paths
func getEnvSpecs() []EnvVarSpec {
	prefix := envPrefix()

	return []EnvVarSpec{
		// Server config
		{Name: prefix + "HOST", Path: []string{"server", "host"}, Type: EnvString},
		{Name: prefix + "PORT", Path: []string{"server", "port"}, Type: EnvInt},
		// Duration fields are parsed as strings and converted by mapstructure decode hook
		{Name: prefix + "READ_TIMEOUT", Path: []string{"server", "read_timeout"}, Type: EnvString},
		{Name: prefix + "WRITE_TIMEOUT", Path: []string{"server", "write_timeout"}, Type: EnvString},
		{Name: prefix + "IDLE_TIMEOUT", Path: []string{"server", "idle_timeout"}, Type: EnvString},
		{Name: prefix + "SHUTDOWN_TIMEOUT", Path: []string{"server", "shutdown_timeout"}, Type: EnvString},

		{Name: prefix + "LOG_LEVEL", Path: []string{"logging", "level"}, Type: EnvString},
		{Name: prefix + "LOG_PROFILE", Path: []string{"logging", "profile"}, Type: EnvString},

		// Store config
		{Name: prefix + "STORE_ENABLED", Path: []string{"store", "enabled"}, Type: EnvBool},
		{Name: prefix + "DB_DRIVER", Path: []string{"store", "driver"}, Type: EnvString},
		{Name: prefix + "DB_PATH", Path: []string{"store", "path"}, Type: EnvString},
		{Name: prefix + "DB_URL", Path: []string{"store", "url"}, Type: EnvString},
		{Name: prefix + "DB_AUTH_TOKEN", Path: []string{"store", "auth_token"}, Type: EnvString},
		{Name: prefix + "CACHE_TTL", Path: []string{"cache", "ttl"}, Type: EnvString},

		// AILink config
		{Name: prefix + "AILINK_DEFAULT_PROVIDER", Path: []string{"ailink", "default_provider"}, Type: EnvString},
		{Name: prefix + "AILINK_DEFAULT_TIMEOUT", Path: []string{"ailink", "default_timeout"}, Type: EnvString},
		{Name: prefix + "AILINK_PROMPTS_DIR", Path: []string{"ailink", "prompts_dir"}, Type: EnvString},

		// Analyzer config
		{Name: prefix + "PROMPT", Path: []string{"analyzer", "prompt_slug"}, Type: EnvString},
		{Name: prefix + "PROVIDER", Path: []string{"analyzer", "provider"}, Type: EnvString},
		{Name: prefix + "MODEL", Path: []string{"analyzer", "model"}, Type: EnvString},

		{Name: prefix + "FEED_LIMIT", Path: []string{"feed", "limit"}, Type: EnvInt},
		{Name: prefix + "FEED_TIMEOUT", Path: []string{"feed", "timeout"}, Type: EnvString},

		// Metrics config
		{Name: prefix + "METRICS_ENABLED", Path: []string{"metrics", "enabled"}, Type: EnvBool},
		{Name: prefix + "METRICS_PORT", Path: []string{"metrics", "port"}, Type: EnvInt},
		{Name: prefix + "METRICS_BEARER_TOKEN", Path: []string{"metrics", "bearer_token"}, Type: EnvString},

		// Health config
		{Name: prefix + "HEALTH_ENABLED", Path: []string{"health", "enabled"}, Type: EnvBool},

		// Debug config
		{Name: prefix + "DEBUG_ENABLED", Path: []string{"debug", "enabled"}, Type: EnvBool},
		{Name: prefix + "DEBUG_PPROF_ENABLED", Path: []string{"debug", "pprof_enabled"}, Type: EnvBool},
	}
}

func configNameForPaths() string {
	if appIdentity != nil && strings.TrimSpace(appIdentity.ConfigName) != "" {
		return appIdentity.ConfigName
	}
	return "claimlens"
}

func binaryNameForPaths() string {
	if appIdentity != nil && strings.TrimSpace(appIdentity.BinaryName) != "" {
		return appIdentity.BinaryName
	}
	return "claimlens"
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(configNameForPaths())
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	return gfconfig.GetAppDataDir(configNameForPaths())
}

// DefaultCacheDir returns the XDG-compliant cache directory for the app.
func DefaultCacheDir() string {
	return gfconfig.GetAppCacheDir(configNameForPaths())
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	dataDir := gfconfig.GetAppDataDir(configNameForPaths())
	if strings.TrimSpace(dataDir) == "" {
		return "./" + binaryNameForPaths() + ".db"
	}
	return filepath.Join(dataDir, binaryNameForPaths()+".db")
}

func applyAILinkDynamicEnvOverrides(prefix string, envOverrides map[string]any) {
	providerPrefix := prefix + "AILINK_PROVIDERS_"
	routingPrefix := prefix + "AILINK_ROUTING_"

	for _, item := range os.Environ() {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(value) == "" {
			continue
		}

		switch {
		case strings.HasPrefix(key, providerPrefix):
			applyAILinkProviderOverride(envOverrides, key[len(providerPrefix):], value)
		case strings.HasPrefix(key, routingPrefix):
			applyAILinkRoutingOverride(envOverrides, key[len(routingPrefix):], value)
		}
	}
}

func applyAILinkRoutingOverride(envOverrides map[string]any, rawRole string, providerID string) {
	role := toSlug(rawRole)
	providerID = strings.TrimSpace(providerID)
	if role == "" || providerID == "" {
		return
	}

	ailink := ensureMap(envOverrides, "ailink")
	routing := ensureMap(ailink, "routing")
	routing[role] = providerID
}

func applyAILinkProviderOverride(envOverrides map[string]any, raw string, value string) {
	parts := strings.Split(strings.TrimSpace(raw), "_")
	if len(parts) < 2 {
		return
	}

	section := -1
	for i, part := range parts {
		switch part {
		case "ENABLED", "AI", "BASE", "MODELS", "CREDENTIALS", "DEFAULT", "SELECTION", "ROLES":
			section = i
		}
		if section != -1 {
			break
		}
	}
	if section <= 0 {
		return
	}

	providerID := strings.ToLower(strings.Join(parts[:section], "-"))
	if providerID == "" {
		return
	}

	ailink := ensureMap(envOverrides, "ailink")
	providers := ensureMap(ailink, "providers")
	provider := ensureMap(providers, providerID)

	rest := parts[section:]
	switch {
	case len(rest) == 1 && rest[0] == "ENABLED":
		provider["enabled"] = strings.EqualFold(strings.TrimSpace(value), "true")
	case len(rest) == 1 && rest[0] == "ROLES":
		roles := []any{}
		for _, role := range strings.Split(value, ",") {
			if role = strings.TrimSpace(role); role != "" {
				roles = append(roles, role)
			}
		}
		provider["roles"] = roles
	case len(rest) == 2 && rest[0] == "AI" && rest[1] == "PROVIDER":
		provider["ai_provider"] = strings.ToLower(strings.TrimSpace(value))
	case len(rest) == 2 && rest[0] == "DEFAULT" && rest[1] == "CREDENTIAL":
		provider["default_credential"] = strings.TrimSpace(value)
	case len(rest) == 2 && rest[0] == "SELECTION" && rest[1] == "POLICY":
		provider["selection_policy"] = strings.ToLower(strings.TrimSpace(value))
	case len(rest) == 2 && rest[0] == "BASE" && rest[1] == "URL":
		provider["base_url"] = strings.TrimSpace(value)
	case len(rest) >= 2 && rest[0] == "MODELS":
		modelKey := strings.ToLower(strings.Join(rest[1:], "_"))
		models := ensureMap(provider, "models")
		models[modelKey] = strings.TrimSpace(value)
	case len(rest) >= 3 && rest[0] == "CREDENTIALS":
		idx, err := strconv.Atoi(rest[1])
		if err != nil || idx < 0 {
			return
		}
		field := strings.ToLower(strings.Join(rest[2:], "_"))
		if field == "" {
			return
		}

		creds := ensureSlice(provider, "credentials", idx+1)
		cred := ensureSliceMap(creds, idx)
		if field == "priority" {
			if parsed, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
				cred[field] = parsed
			} else {
				cred[field] = strings.TrimSpace(value)
			}
			return
		}
		if field == "enabled" {
			cred[field] = strings.EqualFold(strings.TrimSpace(value), "true")
			return
		}
		cred[field] = strings.TrimSpace(value)
	}
}

func ensureMap(parent map[string]any, key string) map[string]any {
	if parent == nil {
		return map[string]any{}
	}
	if existing, ok := parent[key]; ok {
		if typed, ok := existing.(map[string]any); ok {
			return typed
		}
	}
	next := map[string]any{}
	parent[key] = next
	return next
}

func ensureSlice(parent map[string]any, key string, length int) []any {
	var existing []any
	if raw, ok := parent[key]; ok {
		existing, _ = raw.([]any)
	}
	for len(existing) < length {
		existing = append(existing, map[string]any{})
	}
	parent[key] = existing
	return existing
}

func ensureSliceMap(slice []any, idx int) map[string]any {
	if idx < 0 || idx >= len(slice) {
		return map[string]any{}
	}
	if typed, ok := slice[idx].(map[string]any); ok {
		return typed
	}
	m := map[string]any{}
	slice[idx] = m
	return m
}

func toSlug(raw string) string {
	parts := strings.Split(strings.TrimSpace(raw), "_")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		p := strings.ToLower(strings.TrimSpace(part))
		if p == "" {
			continue
		}
		clean = append(clean, p)
	}
	return strings.Join(clean, "-")
}
