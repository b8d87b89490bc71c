package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/claimlens/claimlens/internal/core/engine"
)

const (
	claimColumnWidth    = 60
	analysisColumnWidth = 100
)

// TableFormatter renders outcomes as ASCII tables.
type TableFormatter struct{}

// FormatOutcome renders the verdict table, the analysis text and the sources.
func (f *TableFormatter) FormatOutcome(outcome *engine.Outcome) (string, error) {
	if outcome == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: analysisColumnWidth}})
	t.AppendRow(table.Row{"Claim", sanitizeText(outcome.Claim)})
	t.AppendRow(table.Row{"Score", fmt.Sprintf("%d/100 (%s)", outcome.Result.Score, outcome.Band)})
	t.AppendRow(table.Row{"Verdict", sanitizeText(outcome.Result.Verdict)})
	if label := providerLabel(outcome); label != "" {
		t.AppendRow(table.Row{"Provider", label})
	}
	if outcome.Cached {
		t.AppendRow(table.Row{"Cached", "yes"})
	}

	var sb strings.Builder
	sb.WriteString(t.Render())

	if analysis := sanitizeText(outcome.Result.Analysis); analysis != "" {
		sb.WriteString("\n\nAnalysis\n")
		sb.WriteString(analysis)
	}

	if len(outcome.Result.Sources) > 0 {
		st := table.NewWriter()
		st.SetStyle(table.StyleRounded)
		st.AppendHeader(table.Row{"#", "Source", "URL"})
		for i, source := range outcome.Result.Sources {
			st.AppendRow(table.Row{i + 1, sanitizeText(source.Title), source.URI})
		}
		sb.WriteString("\n\nSources\n")
		sb.WriteString(st.Render())
	}

	return sb.String(), nil
}

// FormatHistory renders one row per stored outcome.
func (f *TableFormatter) FormatHistory(outcomes []engine.Outcome) (string, error) {
	if len(outcomes) == 0 {
		return "No analyses recorded.", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Analyzed", "Score", "Verdict", "Claim"})
	for i := range outcomes {
		o := &outcomes[i]
		t.AppendRow(table.Row{
			o.ID,
			o.AnalyzedAt.Local().Format("2006-01-02 15:04"),
			o.Result.Score,
			truncate(sanitizeText(o.Result.Verdict), 30),
			truncate(sanitizeText(o.Claim), claimColumnWidth),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d analyses", len(outcomes))})
	return t.Render(), nil
}

// FormatFeed renders one row per feed item.
func (f *TableFormatter) FormatFeed(report *FeedReport) (string, error) {
	if report == nil {
		return "", nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	if title := strings.TrimSpace(report.Title); title != "" {
		t.SetTitle(sanitizeText(title))
	}
	t.AppendHeader(table.Row{"#", "Item", "Score", "Verdict"})

	analyzed := 0
	for i, entry := range report.Entries {
		label := entry.Item.Title
		if label == "" {
			label = entry.Item.Claim()
		}
		score, verdict := "-", "error: "+entry.Error
		if entry.Outcome != nil {
			analyzed++
			score = fmt.Sprintf("%d (%s)", entry.Outcome.Result.Score, entry.Outcome.Band)
			verdict = sanitizeText(entry.Outcome.Result.Verdict)
			if entry.Outcome.Cached {
				verdict += " (cached)"
			}
		}
		t.AppendRow(table.Row{i + 1, truncate(sanitizeText(label), claimColumnWidth), score, truncate(verdict, 40)})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d/%d analyzed", analyzed, len(report.Entries)), "", ""})
	return t.Render(), nil
}
