package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/core/analyzer"
	"github.com/claimlens/claimlens/internal/core/engine"
	"github.com/claimlens/claimlens/internal/feed"
	"github.com/claimlens/claimlens/internal/observability"
	"github.com/claimlens/claimlens/internal/output"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Fact-check claims from a file",
	Long: `Read claims or URLs from a file, one per line, and analyze each.

Blank lines and lines starting with # are skipped. Use "-" to read stdin.
A failing claim is reported and the batch continues, except for
configuration errors, which stop it.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("output", "o", "table", "Output format: table, json, markdown")
	addOutFlag(batchCmd)
	batchCmd.Flags().Int("concurrency", 2, "Concurrent analyses")
	batchCmd.Flags().Bool("no-cache", false, "Skip the result cache")
	batchCmd.Flags().String("provider", "", "Provider id override")
	batchCmd.Flags().String("model", "", "Model override")
}

func runBatch(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(mustString(cmd, "output"))
	if err != nil {
		return err
	}
	concurrency := mustInt(cmd, "concurrency")
	if concurrency < 1 {
		return errors.New("concurrency must be at least 1")
	}

	claims, err := readBatchClaims(args[0], cmd.InOrStdin())
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

	startedAt := time.Now()
	entries, err := runBatchAnalyses(ctx, rt.engine, claims, engine.Request{
		Provider: mustString(cmd, "provider"),
		Model:    mustString(cmd, "model"),
		NoCache:  mustBool(cmd, "no-cache"),
	}, concurrency)
	if err != nil {
		return err
	}
	observability.CLILogger.Debug("Batch complete",
		zap.Int("claims", len(claims)),
		zap.Duration("elapsed", time.Since(startedAt)))

	rendered, err := output.NewFormatter(format).FormatFeed(&output.FeedReport{
		Title:   "batch",
		URL:     args[0],
		Entries: entries,
	})
	if err != nil {
		return err
	}
	return writeRendered(cmd, rendered)
}

type batchJob struct {
	index int
	claim string
}

// runBatchAnalyses analyzes claims with up to concurrency workers. Entries
// keep input order. The first configuration error cancels the batch.
func runBatchAnalyses(ctx context.Context, eng claimAnalyzer, claims []string, base engine.Request, concurrency int) ([]output.FeedEntry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	entries := make([]output.FeedEntry, len(claims))
	jobs := make(chan batchJob)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	setErr := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	worker := func() {
		defer wg.Done()
		for job := range jobs {
			if ctx.Err() != nil {
				return
			}
			req := base
			req.Claim = job.claim
			entry := output.FeedEntry{Item: feed.Item{Title: job.claim}}

			outcome, err := eng.Analyze(ctx, req)
			switch {
			case err == nil:
				entry.Outcome = outcome
			case analyzer.IsConfigurationError(err):
				setErr(err)
				return
			default:
				entry.Error = err.Error()
			}
			entries[job.index] = entry
		}
	}

	if concurrency > len(claims) {
		concurrency = len(claims)
	}
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go worker()
	}

sendLoop:
	for i, claim := range claims {
		select {
		case <-ctx.Done():
			break sendLoop
		case jobs <- batchJob{index: i, claim: claim}:
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func readBatchClaims(path string, stdin io.Reader) ([]string, error) {
	var reader io.Reader
	if path == "-" {
		reader = stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close() // nolint:errcheck // read-only file
		reader = file
	}
	return parseClaimLines(reader)
}

func parseClaimLines(reader io.Reader) ([]string, error) {
	claims := make([]string, 0)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStdinClaimBytes)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		claims = append(claims, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(claims) == 0 {
		return nil, fmt.Errorf("no claims found")
	}
	return claims, nil
}
