package output

import (
	"github.com/claimlens/claimlens/internal/core/engine"
)

// JSONFormatter renders outcomes as JSON.
type JSONFormatter struct {
	Indent bool
}

// FormatOutcome renders a single outcome as JSON.
func (f *JSONFormatter) FormatOutcome(outcome *engine.Outcome) (string, error) {
	if outcome == nil {
		return "", nil
	}
	return marshal(outcome, f.Indent)
}

// FormatHistory renders history as a JSON array (never null).
func (f *JSONFormatter) FormatHistory(outcomes []engine.Outcome) (string, error) {
	if outcomes == nil {
		outcomes = []engine.Outcome{}
	}
	return marshal(outcomes, f.Indent)
}

// FormatFeed renders a feed report as JSON.
func (f *JSONFormatter) FormatFeed(report *FeedReport) (string, error) {
	if report == nil {
		return "", nil
	}
	if report.Entries == nil {
		copied := *report
		copied.Entries = []FeedEntry{}
		report = &copied
	}
	return marshal(report, f.Indent)
}
