package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/observability"
)

type outputSink struct {
	writer io.Writer
	close  func() error
	path   string
}

// openSink opens path for writing, creating parent directories. An empty
// path or "-" selects fallback.
func openSink(path string, fallback io.Writer) (*outputSink, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "-" {
		return &outputSink{writer: fallback, close: func() error { return nil }, path: "-"}, nil
	}

	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	file, err := os.Create(trimmed)
	if err != nil {
		return nil, err
	}
	return &outputSink{writer: file, close: file.Close, path: trimmed}, nil
}

func addOutFlag(cmd *cobra.Command) {
	cmd.Flags().String("out", "", "Write output to this file instead of stdout")
}

// writeRendered writes rendered to --out, or to the command's stdout.
func writeRendered(cmd *cobra.Command, rendered string) error {
	sink, err := openSink(mustString(cmd, "out"), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(sink.writer, rendered); err != nil {
		_ = sink.close()
		return err
	}
	if err := sink.close(); err != nil {
		return err
	}
	if sink.path != "-" && observability.CLILogger != nil {
		observability.CLILogger.Info("Output written", zap.String("path", sink.path))
	}
	return nil
}
