package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/core/engine"
	"github.com/claimlens/claimlens/internal/observability"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis result cache",
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete expired cache entries",
	Long:  "Delete cached analyses whose TTL has passed. History is not affected.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		if !cfg.Store.Enabled {
			return engine.ErrHistoryDisabled
		}

		db, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		purged, err := db.PurgeExpired(ctx)
		if err != nil {
			return err
		}
		observability.CLILogger.Debug("Cache purged", zap.Int64("deleted", purged))
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired cache entries\n", purged)
		return err
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
}
