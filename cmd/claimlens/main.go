package main

import (
	"github.com/claimlens/claimlens/internal/cmd"
	"github.com/claimlens/claimlens/internal/server/handlers"
)

// Version information set via ldflags during build
// Example: go build -ldflags="-X main.version=1.0.0 -X main.commit=abc123 -X main.buildDate=2026-01-15"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, buildDate)
	handlers.SetVersionInfo(version, commit, buildDate)

	// Exit codes follow the error kind: config problems, provider outages
	// and missing files each get their own code.
	if err := cmd.Execute(); err != nil {
		cmd.ExitForError(err)
	}
}
