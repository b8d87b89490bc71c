package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/fulmenhq/gofulmen/errors"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/core/analyzer"
	"github.com/claimlens/claimlens/internal/core/engine"
	"github.com/claimlens/claimlens/internal/observability"
)

// exitCodeFor maps a non-nil command error onto a foundry exit code.
func exitCodeFor(err error) foundry.ExitCode {
	var envelope *errors.ErrorEnvelope
	switch {
	case analyzer.IsConfigurationError(err):
		return foundry.ExitConfigInvalid
	case analyzer.IsUpstreamError(err):
		return foundry.ExitExternalServiceUnavailable
	case stderrors.Is(err, engine.ErrHistoryDisabled):
		return foundry.ExitConfigInvalid
	case stderrors.Is(err, os.ErrNotExist):
		return foundry.ExitFileNotFound
	case stderrors.As(err, &envelope) && envelope != nil && envelope.Code == "CONFIG_INVALID":
		return foundry.ExitConfigInvalid
	default:
		return foundry.ExitFailure
	}
}

// ExitForError reports err on stderr and exits with the matching semantic
// code. It returns without exiting when err is nil. With --verbose the exit
// metadata is also logged.
func ExitForError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	code := exitCodeFor(err)
	if verbose && observability.CLILogger != nil {
		ExitWithCode(observability.CLILogger, code, "command failed", err)
		return
	}
	if info, ok := foundry.GetExitCodeInfo(code); ok {
		os.Exit(info.Code)
	}
	os.Exit(int(code))
}

// ExitWithCode logs msg and err with exit code metadata, then exits.
// logger may be nil for failures before logging is set up.
func ExitWithCode(logger *logging.Logger, exitCode foundry.ExitCode, msg string, err error) {
	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v (exit code: %d)\n", msg, err, exitCode)
		os.Exit(int(exitCode))
	}
	if logger == nil {
		ExitWithCodeStderr(exitCode, msg, err)
		return
	}

	fields := []zap.Field{
		zap.Int("exit_code", info.Code),
		zap.String("exit_name", info.Name),
		zap.String("exit_category", info.Category),
	}
	var envelope *errors.ErrorEnvelope
	if stderrors.As(err, &envelope) && envelope != nil {
		fields = append(fields,
			zap.String("error_code", envelope.Code),
			zap.String("error_message", envelope.Message),
			zap.String("correlation_id", envelope.CorrelationID),
		)
		if envelope.Context != nil {
			fields = append(fields, zap.Any("error_context", envelope.Context))
		}
	}
	fields = append(fields, zap.Error(err))
	logger.Error(msg, fields...)

	os.Exit(info.Code)
}

// ExitWithCodeStderr writes msg and exit code metadata to stderr and exits.
func ExitWithCodeStderr(exitCode foundry.ExitCode, msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	}

	info, ok := foundry.GetExitCodeInfo(exitCode)
	if !ok {
		os.Exit(int(exitCode))
	}
	fmt.Fprintf(os.Stderr, "Exit Code: %d (%s) - %s\n", info.Code, info.Name, info.Description)
	os.Exit(info.Code)
}
