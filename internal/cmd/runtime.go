package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/ailink"
	"github.com/claimlens/claimlens/internal/ailink/prompt"
	"github.com/claimlens/claimlens/internal/config"
	"github.com/claimlens/claimlens/internal/core/analyzer"
	"github.com/claimlens/claimlens/internal/core/engine"
	"github.com/claimlens/claimlens/internal/core/store"
	"github.com/claimlens/claimlens/internal/observability"
)

// appRuntime bundles what the analysis commands need. close releases the store.
type appRuntime struct {
	cfg      *config.Config
	engine   *engine.Engine
	registry *ailink.Registry
	prompts  *prompt.InMemoryRegistry
	store    *store.Store
}

func (r *appRuntime) close() {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		observability.Logger().Warn("Failed to close store", zap.Error(err))
	}
}

func buildPromptRegistry(cfg *config.Config) (*prompt.InMemoryRegistry, error) {
	reg, err := prompt.RegistryWithOverrides(cfg.AILink.PromptsDir)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	return reg, nil
}

// openStore opens and migrates the configured store.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	db, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// newRuntime wires config into an analysis engine. A missing API key is not
// an error here; it surfaces on the first analysis.
func newRuntime(ctx context.Context, cfg *config.Config) (*appRuntime, error) {
	prompts, err := buildPromptRegistry(cfg)
	if err != nil {
		return nil, err
	}
	registry := ailink.NewRegistry(cfg.AILink)
	service := &ailink.Service{Providers: registry, Prompts: prompts}

	rt := &appRuntime{
		cfg:      cfg,
		registry: registry,
		prompts:  prompts,
		engine: &engine.Engine{
			Analyzer: analyzer.New(service, analyzer.Options{
				PromptSlug: cfg.Analyzer.PromptSlug,
				Provider:   cfg.Analyzer.Provider,
				Model:      cfg.Analyzer.Model,
			}),
			PromptSlug: cfg.Analyzer.PromptSlug,
			Logger:     observability.Logger(),
		},
	}

	if !cfg.Store.Enabled {
		return rt, nil
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.store = db
	rt.engine.Store = db
	rt.engine.KeepHistory = true
	rt.engine.CacheTTL = cfg.Cache.TTL
	return rt, nil
}
