package cmd

import (
	"context"
	"fmt"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/ailink/driver"
	"github.com/claimlens/claimlens/internal/appid"
	"github.com/claimlens/claimlens/internal/config"
	"github.com/claimlens/claimlens/internal/observability"
)

var (
	cfgFile   string
	verbose   bool
	traceFile string

	appIdentity *appid.Identity

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}

	closeTrace func()
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// GetAppIdentity returns the identity loaded at startup.
func GetAppIdentity() *appid.Identity {
	if appIdentity == nil {
		identity, _ := appid.Get(context.Background())
		appIdentity = identity
	}
	return appIdentity
}

var rootCmd = &cobra.Command{
	Use:           appid.DefaultBinaryName,
	Short:         "Fact-check claims and URLs with search-grounded language models",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeTrace != nil {
			closeTrace()
			closeTrace = nil
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx as every command's context.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Keep config loading from emitting metrics to stdout; serve installs
	// the real telemetry system.
	if sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: false}); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	identity := GetAppIdentity()
	if identity != nil {
		rootCmd.Use = identity.BinaryName
		rootCmd.Short = identity.Description
		rootCmd.Long = fmt.Sprintf(`%s - %s

Each claim or URL is sent once to a search-grounded model and answered with a
credibility score (0-100), a short verdict, an explanation and the web sources
the model consulted.`, identity.BinaryName, identity.Description)
	}

	cobra.OnInitialize(initConfig)

	configUsage := "config file"
	if identity != nil {
		configUsage = fmt.Sprintf("config file (default is %s)", config.DefaultConfigPath())
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", configUsage)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
	rootCmd.PersistentFlags().StringVar(&traceFile, "trace", "", "trace provider requests/responses to an NDJSON file")
}

// initConfig sets up the CLI logger, tracing and the config file location.
// The config itself is loaded lazily by the commands that need it.
func initConfig() {
	identity := GetAppIdentity()
	observability.InitCLILogger(identity.BinaryName, verbose)

	config.SetConfigFile(cfgFile)
	if cfgFile == "" && verbose {
		observability.CLILogger.Debug("Config search paths",
			zap.Strings("paths", gfconfig.GetAppConfigPaths(identity.ConfigName, identity.BinaryName)))
	}

	if traceFile != "" {
		cleanup, err := driver.EnableTracing(traceFile)
		if err != nil {
			observability.CLILogger.Warn("Failed to enable tracing", zap.Error(err))
			return
		}
		observability.CLILogger.Debug("Provider tracing enabled", zap.String("file", traceFile))
		closeTrace = cleanup
	}
}

// loadConfig loads configuration, logging which file was used.
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if path := config.ConfigFileUsed(); path != "" {
		observability.CLILogger.Debug("Using config file", zap.String("path", path))
	}
	return cfg, nil
}
