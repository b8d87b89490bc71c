package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/ailink"
	"github.com/claimlens/claimlens/internal/config"
	"github.com/claimlens/claimlens/internal/observability"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long:  "Run diagnostic checks on the installation and suggest fixes for common issues.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		identity := GetAppIdentity()
		log := observability.CLILogger

		log.Info("=== " + identity.BinaryName + " doctor ===")
		log.Info("")

		allChecks := true
		totalChecks := 7

		goVersion := runtime.Version()
		log.Info(fmt.Sprintf("[1/%d] Checking Go runtime... ✅ %s %s/%s", totalChecks, goVersion, runtime.GOOS, runtime.GOARCH),
			zap.String("go_version", goVersion))

		version := crucible.GetVersion()
		if version.Gofulmen != "" && version.Crucible != "" {
			log.Info(fmt.Sprintf("[2/%d] Checking Gofulmen/Crucible... ✅ v%s / v%s", totalChecks, version.Gofulmen, version.Crucible))
		} else {
			log.Warn(fmt.Sprintf("[2/%d] Checking Gofulmen/Crucible... ⚠️  version metadata missing", totalChecks))
			allChecks = false
		}

		configPath := config.DefaultConfigPath()
		if configPath == "" {
			log.Warn(fmt.Sprintf("[3/%d] Checking config directory... ⚠️  cannot resolve", totalChecks))
			allChecks = false
		} else {
			log.Info(fmt.Sprintf("[3/%d] Checking config file... ✅ %s (%s)", totalChecks, configPath, existenceStatus(fileExists(configPath))))
		}

		cfg, cfgErr := config.Load(ctx)
		if cfgErr != nil {
			log.Error(fmt.Sprintf("[4/%d] Loading configuration... ❌ %v", totalChecks, cfgErr))
			log.Warn("⚠️  Remaining checks skipped.")
			return
		}
		log.Info(fmt.Sprintf("[4/%d] Loading configuration... ✅", totalChecks), zap.String("file", config.ConfigFileUsed()))

		if !checkProviders(cfg, totalChecks) {
			allChecks = false
		}

		prompts, err := buildPromptRegistry(cfg)
		switch {
		case err != nil:
			log.Error(fmt.Sprintf("[6/%d] Checking prompts... ❌ %v", totalChecks, err))
			allChecks = false
		default:
			if _, getErr := prompts.Get(cfg.Analyzer.PromptSlug); getErr != nil {
				log.Error(fmt.Sprintf("[6/%d] Checking prompts... ❌ %q not found", totalChecks, cfg.Analyzer.PromptSlug))
				allChecks = false
			} else {
				log.Info(fmt.Sprintf("[6/%d] Checking prompts... ✅ %d available, using %s", totalChecks, len(prompts.List()), cfg.Analyzer.PromptSlug))
			}
		}

		if !checkStore(ctx, cfg, totalChecks) {
			allChecks = false
		}

		log.Info("")
		if allChecks {
			log.Info(fmt.Sprintf("✅ All checks passed! Your %s installation is healthy.", identity.BinaryName))
		} else {
			log.Warn("⚠️  Some checks failed. Review the output above for details.")
		}
	},
}

// checkProviders reports whether the provider the analyzer will use has a
// key. Keys themselves are never printed.
func checkProviders(cfg *config.Config, totalChecks int) bool {
	log := observability.CLILogger
	registry := ailink.NewRegistry(cfg.AILink)

	target := strings.TrimSpace(cfg.Analyzer.Provider)
	if target == "" {
		target = strings.TrimSpace(cfg.AILink.DefaultProvider)
	}

	ok := false
	for _, status := range registry.Status() {
		if status.ID == target && status.Enabled && status.HasCredential {
			ok = true
		}
		log.Debug("Provider",
			zap.String("id", status.ID),
			zap.String("ai_provider", status.AIProvider),
			zap.Bool("enabled", status.Enabled),
			zap.Bool("default", status.Default),
			zap.Bool("has_credential", status.HasCredential),
			zap.String("model", status.Model))
	}

	if ok {
		log.Info(fmt.Sprintf("[5/%d] Checking provider %q... ✅ credential set", totalChecks, target))
		return true
	}
	prefix := GetAppIdentity().EnvPrefix
	log.Error(fmt.Sprintf("[5/%d] Checking provider %q... ❌ no API key (set %sAPI_KEY or %s)", totalChecks, target, prefix, config.LegacyAPIKeyEnv))
	return false
}

func checkStore(ctx context.Context, cfg *config.Config, totalChecks int) bool {
	log := observability.CLILogger
	if !cfg.Store.Enabled {
		log.Info(fmt.Sprintf("[7/%d] Checking store... ✅ disabled (history and cache off)", totalChecks))
		return true
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		log.Error(fmt.Sprintf("[7/%d] Checking store... ❌ %v", totalChecks, err))
		return false
	}
	defer db.Close() //nolint:errcheck

	if err := db.CheckHealth(ctx); err != nil {
		log.Error(fmt.Sprintf("[7/%d] Checking store... ❌ %v", totalChecks, err))
		return false
	}
	schema, err := db.SchemaVersion(ctx)
	if err != nil {
		log.Warn(fmt.Sprintf("[7/%d] Checking store... ⚠️  schema version unreadable", totalChecks), zap.Error(err))
		return false
	}
	log.Info(fmt.Sprintf("[7/%d] Checking store... ✅ %s (schema %s)", totalChecks, describeStoreLocation(cfg.Store), schema))
	return true
}

func describeStoreLocation(cfg config.StoreConfig) string {
	if cfg.URL != "" {
		return cfg.URL + " (remote)"
	}
	path := cfg.Path
	if path == "" {
		path = config.DefaultStorePath()
	}
	absPath, _ := filepath.Abs(path)
	if info, err := os.Stat(absPath); err == nil {
		return fmt.Sprintf("%s (%s)", absPath, formatFileSize(info.Size()))
	}
	return absPath
}

var (
	doctorInitForce   bool
	doctorInitAPIKey  string
	doctorResetConfig bool
	doctorResetData   bool
	doctorResetAll    bool
)

var doctorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigPath()
		if configPath == "" {
			return fmt.Errorf("config path not resolved")
		}

		if _, err := os.Stat(configPath); err == nil && !doctorInitForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
		}

		apiKey := strings.TrimSpace(doctorInitAPIKey)
		if strings.EqualFold(apiKey, "prompt") {
			key, err := promptForValue(cmd.InOrStdin(), cmd.OutOrStdout(), "Enter API key (leave blank to skip): ")
			if err != nil {
				return err
			}
			apiKey = key
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		mode := os.FileMode(0644)
		if apiKey != "" {
			mode = 0600
		}

		if err := os.WriteFile(configPath, []byte(buildInitConfig(GetAppIdentity().BinaryName, GetAppIdentity().EnvPrefix, apiKey)), mode); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		observability.CLILogger.Info("Config initialized", zap.String("path", configPath))
		return nil
	},
}

var doctorConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration status and paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := observability.CLILogger
		configPath := config.DefaultConfigPath()

		log.Info("Configuration:")
		log.Info(fmt.Sprintf("  Config file:     %s (%s)", configPath, existenceStatus(fileExists(configPath))))
		if dataDir := config.DefaultDataDir(); dataDir != "" {
			log.Info(fmt.Sprintf("  Data directory:  %s (%s)", dataDir, existenceStatus(fileExists(dataDir))))
		}

		cfg, err := config.Load(cmd.Context())
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return nil
		}

		prefix := GetAppIdentity().EnvPrefix
		log.Info("")
		log.Info("Environment:")
		for _, name := range []string{prefix + "API_KEY", config.LegacyAPIKeyEnv, prefix + "STORE_ENABLED", prefix + "CACHE_TTL", prefix + "ADMIN_TOKEN"} {
			log.Info(fmt.Sprintf("  %s: %s", name, envStatus(name)))
		}

		log.Info("")
		log.Info("Effective Settings:")
		log.Info(fmt.Sprintf("  analyzer.prompt_slug:    %s", cfg.Analyzer.PromptSlug))
		log.Info(fmt.Sprintf("  ailink.default_provider: %s", cfg.AILink.DefaultProvider))
		log.Info(fmt.Sprintf("  store.enabled:           %t", cfg.Store.Enabled))
		if cfg.Store.Enabled {
			log.Info(fmt.Sprintf("  store:                   %s", describeStoreLocation(cfg.Store)))
		}
		log.Info(fmt.Sprintf("  cache.ttl:               %s", cfg.Cache.TTL))
		log.Info(fmt.Sprintf("  server:                  %s:%d", cfg.Server.Host, cfg.Server.Port))
		return nil
	},
}

var doctorResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset user configuration and/or data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if doctorResetAll {
			doctorResetConfig = true
			doctorResetData = true
		}

		if !doctorResetConfig && !doctorResetData {
			return fmt.Errorf("specify --config, --data, or --all")
		}

		if doctorResetConfig {
			configPath := config.DefaultConfigPath()
			if configPath == "" {
				observability.CLILogger.Warn("Config path not resolved; skipping config reset")
			} else if err := os.Remove(configPath); err == nil {
				observability.CLILogger.Info("Config removed", zap.String("path", configPath))
			} else if os.IsNotExist(err) {
				observability.CLILogger.Info("Config already removed", zap.String("path", configPath))
			} else {
				return fmt.Errorf("remove config file: %w", err)
			}
		}

		if doctorResetData {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Store.URL != "" {
				return fmt.Errorf("remote store configured; database reset is not supported")
			}

			dbPath := cfg.Store.Path
			if dbPath == "" {
				dbPath = config.DefaultStorePath()
			}
			absPath, _ := filepath.Abs(dbPath)
			if err := os.Remove(absPath); err == nil {
				observability.CLILogger.Info("Database removed", zap.String("path", absPath))
			} else if os.IsNotExist(err) {
				observability.CLILogger.Info("Database already removed", zap.String("path", absPath))
			} else {
				return fmt.Errorf("remove database: %w", err)
			}
		}

		return nil
	},
}

var doctorValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(cmd.Context()); err != nil {
			return err
		}
		observability.CLILogger.Info("Config is valid", zap.String("path", config.ConfigFileUsed()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.AddCommand(doctorInitCmd)
	doctorCmd.AddCommand(doctorConfigCmd)
	doctorCmd.AddCommand(doctorResetCmd)
	doctorCmd.AddCommand(doctorValidateCmd)

	doctorInitCmd.Flags().BoolVar(&doctorInitForce, "force", false, "overwrite existing config file")
	doctorInitCmd.Flags().StringVar(&doctorInitAPIKey, "api-key", "", "set the provider api key or use 'prompt' to enter")

	doctorResetCmd.Flags().BoolVar(&doctorResetConfig, "config", false, "remove user config file")
	doctorResetCmd.Flags().BoolVar(&doctorResetData, "data", false, "remove local database")
	doctorResetCmd.Flags().BoolVar(&doctorResetAll, "all", false, "remove config and data")
}

// formatFileSize returns a human-readable file size
func formatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

func buildInitConfig(binaryName, envPrefix, apiKey string) string {
	lines := []string{
		fmt.Sprintf("# %s config - created by '%s doctor init'", binaryName, binaryName),
		"ailink:",
		"  default_provider: " + config.DefaultProviderID,
		"  providers:",
		"    " + config.DefaultProviderID + ":",
		"      enabled: true",
		"      ai_provider: gemini",
		"      models:",
		"        default: " + config.DefaultModel,
		"      credentials:",
		"        - label: default",
		"          priority: 0",
	}

	if apiKey != "" {
		lines = append(lines, fmt.Sprintf("          api_key: %q", apiKey))
	} else {
		lines = append(lines, fmt.Sprintf("          # api_key: \"\"  # or set %sAPI_KEY", envPrefix))
	}

	lines = append(lines,
		"store:",
		"  enabled: false",
		"cache:",
		"  ttl: 0s",
	)

	return strings.Join(lines, "\n") + "\n"
}

func promptForValue(in io.Reader, out io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(out, prompt); err != nil {
		return "", err
	}
	value, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func existenceStatus(exists bool) string {
	if exists {
		return "exists"
	}
	return "missing"
}

func envStatus(name string) string {
	if strings.TrimSpace(os.Getenv(name)) != "" {
		return "(set)"
	}
	return "(not set)"
}
