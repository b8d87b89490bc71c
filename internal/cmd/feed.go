package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/core/analyzer"
	"github.com/claimlens/claimlens/internal/core/engine"
	"github.com/claimlens/claimlens/internal/feed"
	"github.com/claimlens/claimlens/internal/metrics"
	"github.com/claimlens/claimlens/internal/observability"
	"github.com/claimlens/claimlens/internal/output"
)

var feedCmd = &cobra.Command{
	Use:   "feed <url>",
	Short: "Fact-check the latest items of an RSS or Atom feed",
	Long: `Fetch an RSS or Atom feed and analyze its newest items one at a time.

Each item's link is analyzed; items without a link fall back to their title.
A failing item is reported and the run continues, except for configuration
errors such as a missing API key, which stop the run.`,
	Args: cobra.ExactArgs(1),
	RunE: runFeed,
}

func init() {
	rootCmd.AddCommand(feedCmd)

	feedCmd.Flags().StringP("output", "o", "table", "Output format: table, json, markdown")
	addOutFlag(feedCmd)
	feedCmd.Flags().Int("limit", 0, "Maximum items to analyze (default from config)")
	feedCmd.Flags().Bool("no-cache", false, "Skip the result cache")
	feedCmd.Flags().String("provider", "", "Provider id override")
	feedCmd.Flags().String("model", "", "Model override")
}

func runFeed(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(mustString(cmd, "output"))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	limit := mustInt(cmd, "limit")
	if limit <= 0 {
		limit = cfg.Feed.Limit
	}

	fetched, err := feed.NewFetcher(cfg.Feed.Timeout).Fetch(ctx, args[0], limit)
	if err != nil {
		return err
	}
	metrics.RecordFeedItems(len(fetched.Items))
	observability.CLILogger.Debug("Feed fetched",
		zap.String("url", args[0]),
		zap.String("title", fetched.Title),
		zap.Int("items", len(fetched.Items)))

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.close()

	report, err := analyzeFeed(ctx, rt.engine, args[0], fetched, engine.Request{
		Provider: mustString(cmd, "provider"),
		Model:    mustString(cmd, "model"),
		NoCache:  mustBool(cmd, "no-cache"),
	})
	if err != nil {
		return err
	}

	rendered, err := output.NewFormatter(format).FormatFeed(report)
	if err != nil {
		return err
	}
	return writeRendered(cmd, rendered)
}

type claimAnalyzer interface {
	Analyze(ctx context.Context, req engine.Request) (*engine.Outcome, error)
}

// analyzeFeed runs each item through eng in order. Per-item failures are
// recorded on the entry; a configuration error or cancellation ends the run.
func analyzeFeed(ctx context.Context, eng claimAnalyzer, url string, fetched *feed.Feed, base engine.Request) (*output.FeedReport, error) {
	report := &output.FeedReport{
		Title:   fetched.Title,
		URL:     url,
		Entries: make([]output.FeedEntry, 0, len(fetched.Items)),
	}

	for _, item := range fetched.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req := base
		req.Claim = item.Claim()
		outcome, err := eng.Analyze(ctx, req)
		if err != nil {
			if analyzer.IsConfigurationError(err) {
				return nil, err
			}
			observability.Logger().Warn("Feed item analysis failed",
				zap.String("item", req.Claim),
				zap.Error(err))
			report.Entries = append(report.Entries, output.FeedEntry{Item: item, Error: err.Error()})
			continue
		}
		report.Entries = append(report.Entries, output.FeedEntry{Item: item, Outcome: outcome})
	}
	return report, nil
}
