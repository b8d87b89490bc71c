package cmd

import (
	"github.com/spf13/cobra"

	"github.com/claimlens/claimlens/internal/core/store"
	"github.com/claimlens/claimlens/internal/output"
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show recent analyses",
	Long: `List recent analyses, newest first, or show one analysis by id.

History is only kept when the store is enabled (store.enabled: true or
CLAIMLENS_STORE_ENABLED=true).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringP("output", "o", "table", "Output format: table, json, markdown")
	addOutFlag(historyCmd)
	historyCmd.Flags().Int("limit", store.DefaultHistoryLimit, "Maximum analyses to list")
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(mustString(cmd, "output"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	formatter := output.NewFormatter(format)
	var rendered string
	if len(args) == 1 {
		outcome, err := rt.engine.Get(ctx, args[0])
		if err != nil {
			return err
		}
		rendered, err = formatter.FormatOutcome(outcome)
		if err != nil {
			return err
		}
	} else {
		outcomes, err := rt.engine.History(ctx, mustInt(cmd, "limit"))
		if err != nil {
			return err
		}
		rendered, err = formatter.FormatHistory(outcomes)
		if err != nil {
			return err
		}
	}

	return writeRendered(cmd, rendered)
}
