package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/claimlens/claimlens/internal/core/engine"
	"github.com/claimlens/claimlens/internal/feed"
)

// Format represents an output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// FeedEntry pairs a feed item with its analysis or the error that stopped it.
type FeedEntry struct {
	Item    feed.Item       `json:"item"`
	Outcome *engine.Outcome `json:"outcome,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// FeedReport is the result of analyzing a feed.
type FeedReport struct {
	Title   string      `json:"title"`
	URL     string      `json:"url"`
	Entries []FeedEntry `json:"entries"`
}

// Formatter renders analysis outcomes.
type Formatter interface {
	FormatOutcome(outcome *engine.Outcome) (string, error)
	FormatHistory(outcomes []engine.Outcome) (string, error)
	FormatFeed(report *FeedReport) (string, error)
}

// ParseFormat validates and normalizes a format string.
func ParseFormat(value string) (Format, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "", string(FormatTable):
		return FormatTable, nil
	case string(FormatJSON):
		return FormatJSON, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", value)
	}
}

// NewFormatter returns a formatter for the requested format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{}
	}
}

func marshal(value any, indent bool) (string, error) {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(value, "", "  ")
	} else {
		data, err = json.Marshal(value)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func providerLabel(outcome *engine.Outcome) string {
	switch {
	case outcome.Provider != "" && outcome.Model != "":
		return outcome.Provider + " / " + outcome.Model
	case outcome.Provider != "":
		return outcome.Provider
	default:
		return outcome.Model
	}
}

func truncate(value string, max int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if max <= 0 || len(runes) <= max {
		return value
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
