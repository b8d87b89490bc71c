package ailink

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/claimlens/claimlens/internal/ailink/driver"
	"github.com/claimlens/claimlens/internal/ailink/driver/gemini"
	"github.com/claimlens/claimlens/internal/ailink/driver/openai"
	"github.com/claimlens/claimlens/internal/ailink/driver/xai"
	"github.com/claimlens/claimlens/internal/ailink/prompt"
)

type Registry struct {
	cfg Config

	mu      sync.Mutex
	drivers map[string]driver.Driver
	rr      map[string]int
}

type ResolvedProvider struct {
	ProviderID string
	Provider   ProviderInstanceConfig
	Credential CredentialConfig
	Driver     driver.Driver
	Model      string
}

// ProviderStatus summarizes a configured provider for diagnostics.
type ProviderStatus struct {
	ID            string
	AIProvider    string
	Enabled       bool
	Default       bool
	HasCredential bool
	Model         string
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg}
}

// Config returns the configuration the registry was built with.
func (r *Registry) Config() Config {
	if r == nil {
		return Config{}
	}
	return r.cfg
}

// Resolve picks a provider for role, selects a credential and returns a ready
// driver. A provider without a usable API key yields *CredentialError.
func (r *Registry) Resolve(role string, promptDef *prompt.Prompt, modelOverride string) (*ResolvedProvider, error) {
	providerID, providerCfg, err := r.resolveProvider(role)
	if err != nil {
		return nil, err
	}
	return r.finish(providerID, providerCfg, promptDef, modelOverride)
}

// ResolveByID is Resolve for an explicitly named provider instance.
func (r *Registry) ResolveByID(providerID string, promptDef *prompt.Prompt, modelOverride string) (*ResolvedProvider, error) {
	if r == nil {
		return nil, fmt.Errorf("ailink registry not configured")
	}
	providerID = strings.TrimSpace(providerID)
	providerCfg, ok := r.cfg.Providers[providerID]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", providerID)
	}
	if !providerCfg.Enabled {
		return nil, fmt.Errorf("provider %q is disabled", providerID)
	}
	return r.finish(providerID, providerCfg, promptDef, modelOverride)
}

func (r *Registry) finish(providerID string, providerCfg ProviderInstanceConfig, promptDef *prompt.Prompt, modelOverride string) (*ResolvedProvider, error) {
	cred, credKey, err := selectCredential(providerCfg, func(groupKey string, n int) int {
		return r.rrIndex(providerID+":"+groupKey, n)
	})
	if err != nil {
		return nil, &CredentialError{ProviderID: providerID, Reason: err.Error()}
	}
	if strings.TrimSpace(cred.APIKey) == "" {
		return nil, &CredentialError{ProviderID: providerID, Reason: "api key is not set"}
	}

	drv, err := r.driverFor(providerID, providerCfg, cred, credKey)
	if err != nil {
		return nil, err
	}

	model, err := resolveModel(providerCfg, promptDef, modelOverride)
	if err != nil {
		return nil, err
	}

	return &ResolvedProvider{
		ProviderID: providerID,
		Provider:   providerCfg,
		Credential: cred,
		Driver:     drv,
		Model:      model,
	}, nil
}

// Status lists configured providers sorted by id. API keys are never
// included, only whether one is present.
func (r *Registry) Status() []ProviderStatus {
	if r == nil {
		return nil
	}
	ids := make([]string, 0, len(r.cfg.Providers))
	for id := range r.cfg.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]ProviderStatus, 0, len(ids))
	for _, id := range ids {
		cfg := r.cfg.Providers[id]
		hasKey := false
		for _, cred := range cfg.Credentials {
			if strings.TrimSpace(cred.APIKey) != "" {
				hasKey = true
				break
			}
		}
		out = append(out, ProviderStatus{
			ID:            id,
			AIProvider:    cfg.AIProvider,
			Enabled:       cfg.Enabled,
			Default:       id == strings.TrimSpace(r.cfg.DefaultProvider),
			HasCredential: hasKey,
			Model:         cfg.Models["default"],
		})
	}
	return out
}

func (r *Registry) resolveProvider(role string) (string, ProviderInstanceConfig, error) {
	if r == nil {
		return "", ProviderInstanceConfig{}, fmt.Errorf("ailink registry not configured")
	}

	role = strings.TrimSpace(role)
	if role != "" {
		if providerID, ok := r.cfg.Routing[role]; ok {
			providerID = strings.TrimSpace(providerID)
			if providerID != "" {
				providerCfg, ok := r.cfg.Providers[providerID]
				if !ok {
					return "", ProviderInstanceConfig{}, fmt.Errorf("unknown provider %q for role %q", providerID, role)
				}
				if !providerCfg.Enabled {
					return "", ProviderInstanceConfig{}, fmt.Errorf("provider %q is disabled", providerID)
				}
				return providerID, providerCfg, nil
			}
		}

		for _, providerID := range sortedProviderIDs(r.cfg.Providers) {
			providerCfg := r.cfg.Providers[providerID]
			if !providerCfg.Enabled {
				continue
			}
			if contains(providerCfg.Roles, role) {
				return providerID, providerCfg, nil
			}
		}
	}

	if id := strings.TrimSpace(r.cfg.DefaultProvider); id != "" {
		providerCfg, ok := r.cfg.Providers[id]
		if !ok {
			return "", ProviderInstanceConfig{}, fmt.Errorf("default provider %q not configured", id)
		}
		if !providerCfg.Enabled {
			return "", ProviderInstanceConfig{}, fmt.Errorf("default provider %q is disabled", id)
		}
		return id, providerCfg, nil
	}

	var onlyID string
	var onlyCfg ProviderInstanceConfig
	for providerID, providerCfg := range r.cfg.Providers {
		if !providerCfg.Enabled {
			continue
		}
		if onlyID != "" {
			return "", ProviderInstanceConfig{}, fmt.Errorf("no provider routing configured")
		}
		onlyID = providerID
		onlyCfg = providerCfg
	}
	if onlyID == "" {
		return "", ProviderInstanceConfig{}, fmt.Errorf("no enabled providers configured")
	}
	return onlyID, onlyCfg, nil
}

func selectCredential(cfg ProviderInstanceConfig, rrNext func(groupKey string, n int) int) (CredentialConfig, string, error) {
	if len(cfg.Credentials) == 0 {
		return CredentialConfig{}, "", fmt.Errorf("no credentials configured")
	}

	enabled := make([]CredentialConfig, 0, len(cfg.Credentials))
	for _, cred := range cfg.Credentials {
		if !cred.Enabled && strings.TrimSpace(cred.Label) != "" {
			continue
		}
		if strings.TrimSpace(cred.APIKey) == "" {
			continue
		}
		enabled = append(enabled, cred)
	}
	if len(enabled) == 0 {
		// Credentials exist but are not usable; return first so caller can report missing key.
		cred := cfg.Credentials[0]
		key := strings.TrimSpace(cred.Label)
		if key == "" {
			key = "0"
		}
		return cred, key, nil
	}

	if label := strings.TrimSpace(cfg.DefaultCredential); label != "" {
		for _, cred := range enabled {
			if strings.EqualFold(strings.TrimSpace(cred.Label), label) {
				return cred, strings.TrimSpace(cred.Label), nil
			}
		}
	}

	policy := strings.ToLower(strings.TrimSpace(cfg.SelectionPolicy))
	if policy == "" {
		policy = "priority"
	}

	highest := enabled[0].Priority
	for _, cred := range enabled[1:] {
		if cred.Priority > highest {
			highest = cred.Priority
		}
	}
	group := make([]CredentialConfig, 0, len(enabled))
	for _, cred := range enabled {
		if cred.Priority == highest {
			group = append(group, cred)
		}
	}

	idx := 0
	if policy == "round_robin" && rrNext != nil {
		idx = rrNext(fmt.Sprintf("%d", highest), len(group))
	}
	cred := group[idx]
	key := strings.TrimSpace(cred.Label)
	if key == "" {
		key = fmt.Sprintf("p%d-%d", highest, idx)
	}
	return cred, key, nil
}

func (r *Registry) driverFor(providerID string, providerCfg ProviderInstanceConfig, cred CredentialConfig, credKey string) (driver.Driver, error) {
	if strings.TrimSpace(providerID) == "" {
		return nil, fmt.Errorf("provider id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.drivers == nil {
		r.drivers = map[string]driver.Driver{}
	}
	driverKey := providerID
	if strings.TrimSpace(credKey) != "" {
		driverKey += ":" + credKey
	}
	if drv, ok := r.drivers[driverKey]; ok {
		return drv, nil
	}

	var drv driver.Driver
	providerType := strings.ToLower(strings.TrimSpace(providerCfg.AIProvider))
	switch providerType {
	case "gemini", "google":
		drv = gemini.NewClient(providerCfg.BaseURL, cred.APIKey)
	case "xai":
		drv = xai.NewClient(providerCfg.BaseURL, cred.APIKey)
	case "openai":
		drv = openai.NewClient(providerCfg.BaseURL, cred.APIKey)
	default:
		if providerType == "" {
			providerType = "(unset)"
		}
		return nil, fmt.Errorf("unsupported ai_provider %q for provider %q", providerType, providerID)
	}
	r.drivers[driverKey] = drv
	return drv, nil
}

func resolveModel(providerCfg ProviderInstanceConfig, promptDef *prompt.Prompt, override string) (string, error) {
	model := strings.TrimSpace(override)
	if model != "" {
		return model, nil
	}

	if providerCfg.Models != nil {
		model = strings.TrimSpace(providerCfg.Models["default"])
		if model != "" {
			return model, nil
		}
	}

	if models := preferredModels(promptDef); len(models) > 0 {
		model = strings.TrimSpace(models[0])
		if model != "" {
			return model, nil
		}
	}

	return "", fmt.Errorf("model not configured")
}

func preferredModels(promptDef *prompt.Prompt) []string {
	if promptDef == nil {
		return nil
	}

	value, ok := promptDef.Config.ProviderHints["preferred_models"]
	if !ok || value == nil {
		return nil
	}

	switch typed := value.(type) {
	case []string:
		return typed
	case []any:
		models := make([]string, 0, len(typed))
		for _, item := range typed {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				models = append(models, s)
			}
		}
		return models
	case string:
		if strings.TrimSpace(typed) == "" {
			return nil
		}
		return []string{typed}
	default:
		return nil
	}
}

func (r *Registry) rrIndex(key string, n int) int {
	if n <= 1 {
		return 0
	}
	if r == nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rr == nil {
		r.rr = map[string]int{}
	}
	idx := r.rr[key] % n
	r.rr[key] = r.rr[key] + 1
	return idx
}

func sortedProviderIDs(providers map[string]ProviderInstanceConfig) []string {
	ids := make([]string, 0, len(providers))
	for id := range providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func contains(values []string, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return false
	}
	for _, v := range values {
		if strings.EqualFold(strings.TrimSpace(v), needle) {
			return true
		}
	}
	return false
}
