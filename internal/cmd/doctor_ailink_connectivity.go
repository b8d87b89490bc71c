package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/claimlens/claimlens/internal/core/analyzer"
	"github.com/claimlens/claimlens/internal/core/engine"
)

const connectivityProbeClaim = "Water boils at 100 degrees Celsius at sea level."

var (
	doctorAILinkConnectivityProvider string
	doctorAILinkConnectivityJSON     bool
	doctorAILinkConnectivityTimeout  time.Duration
)

type connectivityReport struct {
	OK             bool   `json:"ok"`
	Provider       string `json:"provider,omitempty"`
	Model          string `json:"model,omitempty"`
	LatencyMS      int64  `json:"latency_ms"`
	Classification string `json:"classification,omitempty"`
	Error          string `json:"error,omitempty"`
	Score          int    `json:"score,omitempty"`
	Sources        int    `json:"sources"`
}

var doctorAILinkConnectivityCmd = &cobra.Command{
	Use:   "connectivity",
	Short: "Run one live analysis against the configured provider",
	Long: `Analyze a fixed, well-known claim with the cache bypassed and report
whether the provider answered, how long it took and how many sources it cited.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		cfg.Store.Enabled = false

		rt, err := newRuntime(ctx, cfg)
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, cancel := withOptionalTimeout(ctx, doctorAILinkConnectivityTimeout)
		defer cancel()

		started := time.Now()
		outcome, err := rt.engine.Analyze(ctx, engine.Request{
			Claim:    connectivityProbeClaim,
			Provider: doctorAILinkConnectivityProvider,
			NoCache:  true,
		})
		report := buildConnectivityReport(outcome, err, time.Since(started))

		if doctorAILinkConnectivityJSON {
			payload, marshalErr := json.MarshalIndent(report, "", "  ")
			if marshalErr != nil {
				return marshalErr
			}
			if _, writeErr := fmt.Fprintln(cmd.OutOrStdout(), string(payload)); writeErr != nil {
				return writeErr
			}
		} else if report.OK {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s/%s answered in %dms (score %d, %d sources)\n",
				report.Provider, report.Model, report.LatencyMS, report.Score, report.Sources)
		}
		return err
	},
}

// buildConnectivityReport classifies the probe outcome.
func buildConnectivityReport(outcome *engine.Outcome, err error, elapsed time.Duration) connectivityReport {
	report := connectivityReport{LatencyMS: elapsed.Milliseconds()}
	var upstream *analyzer.UpstreamError
	switch {
	case err == nil && outcome != nil:
		report.OK = true
		report.Provider = outcome.Provider
		report.Model = outcome.Model
		report.Score = outcome.Result.Score
		report.Sources = len(outcome.Result.Sources)
		return report
	case analyzer.IsConfigurationError(err):
		report.Classification = "configuration"
	case errors.As(err, &upstream) && upstream.Timeout():
		report.Classification = "timeout"
		report.Provider = upstream.Provider
	case upstream != nil:
		report.Classification = "upstream"
		report.Provider = upstream.Provider
	default:
		report.Classification = "unknown"
	}
	if err != nil {
		report.Error = err.Error()
	}
	return report
}

func init() {
	doctorAILinkCmd.AddCommand(doctorAILinkConnectivityCmd)

	doctorAILinkConnectivityCmd.Flags().StringVar(&doctorAILinkConnectivityProvider, "provider", "", "Provider id override")
	doctorAILinkConnectivityCmd.Flags().BoolVar(&doctorAILinkConnectivityJSON, "json", false, "Print the report as JSON")
	doctorAILinkConnectivityCmd.Flags().DurationVar(&doctorAILinkConnectivityTimeout, "timeout", 60*time.Second, "Probe timeout")
}
