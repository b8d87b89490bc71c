package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe a running server's health endpoint",
	Long: `Probe a running server and exit non-zero unless it reports healthy.

Suitable as a container HEALTHCHECK. The default target is the readiness
probe of a server on the configured host and port.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := strings.TrimSpace(mustString(cmd, "url"))
		if target == "" {
			cfg, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			target = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
		}
		probe := mustString(cmd, "probe")

		status, err := probeHealth(cmd.Context(), http.DefaultClient, target, probe, mustDuration(cmd, "timeout"))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), status)
		return err
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().String("url", "", "server base URL (default from server config)")
	healthCmd.Flags().String("probe", "ready", "probe to query: ready, live, startup or all")
	healthCmd.Flags().Duration("timeout", 5*time.Second, "request timeout")
}

// probeHealth queries one health endpoint and returns its reported status.
// Any non-200 answer is an error.
func probeHealth(ctx context.Context, client *http.Client, baseURL, probe string, timeout time.Duration) (string, error) {
	path := "/health"
	switch probe {
	case "ready", "live", "startup":
		path += "/" + probe
	case "all", "":
	default:
		return "", fmt.Errorf("unknown probe %q", probe)
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	endpoint := strings.TrimRight(baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("probe %s: %w", endpoint, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", err
	}
	var payload struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &payload)

	if observability.CLILogger != nil {
		observability.CLILogger.Debug("Health probe",
			zap.String("url", endpoint),
			zap.Int("http_status", resp.StatusCode),
			zap.String("status", payload.Status))
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s returned %d", endpoint, resp.StatusCode)
	}
	if payload.Status == "" {
		payload.Status = "ok"
	}
	return payload.Status, nil
}
