package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/ailink"
	"github.com/claimlens/claimlens/internal/config"
	"github.com/claimlens/claimlens/internal/observability"
)

var (
	doctorAILinkProvider string
	doctorAILinkModel    string
)

var doctorAILinkCmd = &cobra.Command{
	Use:   "ailink [prompt-slug]",
	Short: "Inspect provider resolution for analyses",
	Long: `Resolve the analysis prompt to a provider instance and show which model
and credential an analysis would use. API keys are never printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		promptSlug := cfg.Analyzer.PromptSlug
		if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
			promptSlug = strings.TrimSpace(args[0])
		}

		prompts, err := buildPromptRegistry(cfg)
		if err != nil {
			return err
		}
		promptDef, err := prompts.Get(promptSlug)
		if err != nil {
			return fmt.Errorf("prompt not found: %w", err)
		}

		providerID := strings.TrimSpace(doctorAILinkProvider)
		if providerID == "" {
			providerID = strings.TrimSpace(cfg.Analyzer.Provider)
		}
		model := strings.TrimSpace(doctorAILinkModel)
		if model == "" {
			model = strings.TrimSpace(cfg.Analyzer.Model)
		}

		registry := ailink.NewRegistry(cfg.AILink)
		var resolved *ailink.ResolvedProvider
		source := "explicit"
		if providerID != "" {
			resolved, err = registry.ResolveByID(providerID, promptDef, model)
		} else {
			source = describeAILinkResolution(cfg, promptSlug)
			resolved, err = registry.Resolve(promptSlug, promptDef, model)
		}
		if err != nil {
			return err
		}

		log := observability.CLILogger
		providerCfg := resolved.Provider
		log.Info("AILink Resolution")
		log.Info(fmt.Sprintf("  Prompt:       %s", promptSlug))
		log.Info(fmt.Sprintf("  Source:       %s", source))
		log.Info(fmt.Sprintf("  Provider ID:  %s", resolved.ProviderID))
		log.Info(fmt.Sprintf("  ai_provider:  %s", providerCfg.AIProvider))
		if providerCfg.BaseURL != "" {
			log.Info(fmt.Sprintf("  base_url:     %s", providerCfg.BaseURL))
		}
		log.Info(fmt.Sprintf("  model:        %s", resolved.Model))
		log.Info("")

		policy := strings.TrimSpace(providerCfg.SelectionPolicy)
		if policy == "" {
			policy = "priority"
		}
		log.Info("Credential Selection")
		log.Info(fmt.Sprintf("  selection_policy:   %s", policy))
		log.Info(fmt.Sprintf("  selected.label:     %s", resolved.Credential.Label))
		log.Info(fmt.Sprintf("  selected.priority:  %d", resolved.Credential.Priority))
		log.Info("  selected.api_key:   (set)")
		log.Debug("Resolved provider", zap.String("provider", resolved.ProviderID), zap.String("model", resolved.Model))
		return nil
	},
}

// describeAILinkResolution names the rule Registry.Resolve applies for role.
func describeAILinkResolution(cfg *config.Config, role string) string {
	role = strings.TrimSpace(role)
	if role != "" && strings.TrimSpace(cfg.AILink.Routing[role]) != "" {
		return "routing"
	}

	for _, providerCfg := range cfg.AILink.Providers {
		if !providerCfg.Enabled {
			continue
		}
		for _, r := range providerCfg.Roles {
			if strings.EqualFold(strings.TrimSpace(r), role) {
				return "roles"
			}
		}
	}

	if strings.TrimSpace(cfg.AILink.DefaultProvider) != "" {
		return "default_provider"
	}
	return "only_enabled_provider"
}

func init() {
	doctorCmd.AddCommand(doctorAILinkCmd)

	doctorAILinkCmd.Flags().StringVar(&doctorAILinkProvider, "provider", "", "Provider id (defaults to analyzer.provider or routing)")
	doctorAILinkCmd.Flags().StringVar(&doctorAILinkModel, "model", "", "Model override")
}
