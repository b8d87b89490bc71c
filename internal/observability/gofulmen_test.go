package observability

import (
	"testing"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/fulmenhq/gofulmen/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func resetLoggers(t *testing.T) {
	t.Helper()
	cli, server := CLILogger, ServerLogger
	t.Cleanup(func() {
		CLILogger, ServerLogger = cli, server
	})
	CLILogger, ServerLogger = nil, nil
}

func TestInitLoggers(t *testing.T) {
	t.Run("CLI logger", func(t *testing.T) {
		resetLoggers(t)
		InitCLILogger("claimlens-test", false)
		require.NotNil(t, CLILogger)
		CLILogger.Info("cli log message", zap.String("test", "value"))
	})

	t.Run("verbose CLI logger", func(t *testing.T) {
		resetLoggers(t)
		InitCLILogger("claimlens-test", true)
		require.NotNil(t, CLILogger)
		CLILogger.Debug("debug message", zap.String("mode", "verbose"))
	})

	t.Run("server logger with namespace", func(t *testing.T) {
		resetLoggers(t)
		InitServerLogger("claimlens-test", "debug", "claimlens")
		require.NotNil(t, ServerLogger)
		ServerLogger.Info("structured log message",
			zap.String("component", "test"),
			zap.Int("score", 42))
	})
}

func TestLoggerPrefersServer(t *testing.T) {
	resetLoggers(t)
	assert.Nil(t, Logger())

	cli, err := logging.NewCLI("cli")
	require.NoError(t, err)
	CLILogger = cli
	assert.Same(t, cli, Logger())

	InitServerLogger("server", "info")
	assert.Same(t, ServerLogger, Logger())
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]string{
		"trace":   "TRACE",
		"debug":   "DEBUG",
		" INFO ":  "INFO",
		"warning": "WARN",
		"warn":    "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
		"":        "INFO",
	}
	for input, want := range cases {
		assert.Equal(t, want, parseLogLevel(input), input)
	}
}

func TestCrucibleVersion(t *testing.T) {
	version := crucible.GetVersion()
	assert.NotEmpty(t, version.Gofulmen)
	assert.NotEmpty(t, version.Crucible)
}
