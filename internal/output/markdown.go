package output

import (
	"fmt"
	"strings"

	"github.com/claimlens/claimlens/internal/core/engine"
)

// MarkdownFormatter renders outcomes as Markdown.
type MarkdownFormatter struct{}

// FormatOutcome renders a single outcome as a Markdown section.
func (f *MarkdownFormatter) FormatOutcome(outcome *engine.Outcome) (string, error) {
	if outcome == nil {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownLine(sanitizeMarkdown(outcome.Claim))))
	sb.WriteString(fmt.Sprintf("**Score**: %d/100 (%s)\n\n", outcome.Result.Score, outcome.Band))
	sb.WriteString(fmt.Sprintf("**Verdict**: %s\n\n", escapeMarkdownLine(sanitizeMarkdown(outcome.Result.Verdict))))
	if label := providerLabel(outcome); label != "" {
		sb.WriteString(fmt.Sprintf("**Provider**: %s", label))
		if outcome.Cached {
			sb.WriteString(" (cached)")
		}
		sb.WriteString("\n\n")
	}

	if analysis := sanitizeMarkdown(outcome.Result.Analysis); analysis != "" {
		sb.WriteString("### Analysis\n\n")
		sb.WriteString(analysis)
		sb.WriteString("\n\n")
	}

	if len(outcome.Result.Sources) > 0 {
		sb.WriteString("### Sources\n\n")
		for i, source := range outcome.Result.Sources {
			sb.WriteString(fmt.Sprintf("%d. [%s](%s)\n", i+1, escapeLinkText(sanitizeMarkdown(source.Title)), source.URI))
		}
	}

	return strings.TrimRight(sb.String(), "\n") + "\n", nil
}

// FormatHistory renders history as a Markdown table.
func (f *MarkdownFormatter) FormatHistory(outcomes []engine.Outcome) (string, error) {
	var sb strings.Builder
	sb.WriteString("## Analysis history\n\n")
	if len(outcomes) == 0 {
		sb.WriteString("No analyses recorded.\n")
		return sb.String(), nil
	}
	sb.WriteString("| ID | Analyzed | Score | Verdict | Claim |\n")
	sb.WriteString("|----|----------|-------|---------|-------|\n")
	for i := range outcomes {
		o := &outcomes[i]
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n",
			escapeMarkdownCell(o.ID),
			o.AnalyzedAt.UTC().Format("2006-01-02 15:04Z"),
			o.Result.Score,
			escapeMarkdownCell(sanitizeMarkdown(o.Result.Verdict)),
			escapeMarkdownCell(truncate(sanitizeMarkdown(o.Claim), claimColumnWidth)),
		))
	}
	return sb.String(), nil
}

// FormatFeed renders a feed report as a Markdown table.
func (f *MarkdownFormatter) FormatFeed(report *FeedReport) (string, error) {
	if report == nil {
		return "", nil
	}

	var sb strings.Builder
	title := strings.TrimSpace(report.Title)
	if title == "" {
		title = report.URL
	}
	sb.WriteString(fmt.Sprintf("## %s\n\n", escapeMarkdownLine(sanitizeMarkdown(title))))
	sb.WriteString("| # | Item | Score | Verdict |\n")
	sb.WriteString("|---|------|-------|---------|\n")
	for i, entry := range report.Entries {
		label := entry.Item.Title
		if label == "" {
			label = entry.Item.Claim()
		}
		item := escapeMarkdownCell(sanitizeMarkdown(label))
		if link := entry.Item.Link; link != "" {
			item = fmt.Sprintf("[%s](%s)", escapeLinkText(item), link)
		}
		score, verdict := "-", "error: "+escapeMarkdownCell(entry.Error)
		if entry.Outcome != nil {
			score = fmt.Sprintf("%d", entry.Outcome.Result.Score)
			verdict = escapeMarkdownCell(sanitizeMarkdown(entry.Outcome.Result.Verdict))
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", i+1, item, score, verdict))
	}
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.ReplaceAll(value, "|", "\\|")
}

func escapeMarkdownLine(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

func escapeLinkText(value string) string {
	value = strings.ReplaceAll(value, "[", "\\[")
	return strings.ReplaceAll(value, "]", "\\]")
}
