package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/core/engine"
	"github.com/claimlens/claimlens/internal/observability"
	"github.com/claimlens/claimlens/internal/output"
)

const maxStdinClaimBytes = 1 << 20

var analyzeCmd = &cobra.Command{
	Use:   "analyze <claim or url...>",
	Short: "Fact-check a claim or URL",
	Long: `Send a claim or URL to a search-grounded model and print its credibility
score, verdict, explanation and sources.

Words are joined with single spaces, so quoting is optional. Pass "-" to read
the claim from stdin.

Examples:
  claimlens analyze "The Great Wall of China is visible from space"
  claimlens analyze https://example.com/news/article --output json
  echo "Water boils at 100C at sea level" | claimlens analyze -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("output", "o", "table", "Output format: table, json, markdown")
	addOutFlag(analyzeCmd)
	analyzeCmd.Flags().Bool("no-cache", false, "Skip the result cache")
	analyzeCmd.Flags().String("provider", "", "Provider id override")
	analyzeCmd.Flags().String("model", "", "Model override")
	analyzeCmd.Flags().String("prompt", "", "Prompt slug override")
	analyzeCmd.Flags().Duration("timeout", 0, "Abort the provider call after this long (0 = no limit)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(mustString(cmd, "output"))
	if err != nil {
		return err
	}

	claim, err := claimFromArgs(args, cmd.InOrStdin())
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

	req := engine.Request{
		Claim:      claim,
		PromptSlug: mustString(cmd, "prompt"),
		Provider:   mustString(cmd, "provider"),
		Model:      mustString(cmd, "model"),
		NoCache:    mustBool(cmd, "no-cache"),
	}

	ctx, cancel := withOptionalTimeout(ctx, mustDuration(cmd, "timeout"))
	defer cancel()

	outcome, err := rt.engine.Analyze(ctx, req)
	if err != nil {
		return err
	}
	observability.CLILogger.Debug("Analysis complete",
		zap.String("provider", outcome.Provider),
		zap.String("model", outcome.Model),
		zap.Bool("cached", outcome.Cached),
		zap.Int("score", outcome.Result.Score),
		zap.Duration("duration", outcome.Duration))

	rendered, err := output.NewFormatter(format).FormatOutcome(outcome)
	if err != nil {
		return err
	}
	return writeRendered(cmd, rendered)
}

// claimFromArgs joins args into one claim, or reads stdin for "-".
func claimFromArgs(args []string, stdin io.Reader) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(stdin, maxStdinClaimBytes))
		if err != nil {
			return "", fmt.Errorf("read claim from stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func mustString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}

func mustBool(cmd *cobra.Command, name string) bool {
	value, _ := cmd.Flags().GetBool(name)
	return value
}

func mustInt(cmd *cobra.Command, name string) int {
	value, _ := cmd.Flags().GetInt(name)
	return value
}

func mustDuration(cmd *cobra.Command, name string) time.Duration {
	value, _ := cmd.Flags().GetDuration(name)
	return value
}
