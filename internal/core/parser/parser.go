// Package parser turns a model's free-text fact-check answer into a
// core.AnalysisResult.
//
// The model is asked to answer with three labelled plain-text fields:
//
//	SCORE: <0-100>
//	VERDICT: <label>
//	ANALYSIS: <explanation>
//
// Each field is located independently, so ordering and surrounding prose do not
// matter. Missing fields fall back to defaults; parsing never fails.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/claimlens/claimlens/internal/core"
)

const (
	// DefaultScore is used when no SCORE field is present.
	DefaultScore = 50
	// DefaultVerdict is used when the VERDICT field is missing or blank.
	DefaultVerdict = "Unverified"

	minScore = 0
	maxScore = 100
)

var (
	scorePattern    = regexp.MustCompile(`(?i)SCORE:\s*(\d+)`)
	verdictPattern  = regexp.MustCompile(`(?i)VERDICT:\s*(.+?)(?:\n|$)`)
	analysisPattern = regexp.MustCompile(`(?is)ANALYSIS:\s*(.*)`)
)

// Parse extracts score, verdict, analysis and sources from a raw model answer
// and its grounding citations.
func Parse(raw string, citations []core.Citation) core.AnalysisResult {
	return core.AnalysisResult{
		Score:    parseScore(raw),
		Verdict:  parseVerdict(raw),
		Analysis: parseAnalysis(raw),
		Sources:  Sources(citations),
	}
}

// Format renders a verdict in the labelled layout Parse understands. For a
// score within [0,100], a non-empty trimmed single-line verdict that does not
// itself contain an ANALYSIS label, and a trimmed analysis, Parse(Format(...))
// yields the same triple back.
func Format(score int, verdict, analysis string) string {
	return fmt.Sprintf("SCORE: %d\nVERDICT: %s\nANALYSIS: %s", score, verdict, analysis)
}

// Sources converts grounding citations into display sources. Citations
// without a URI are dropped, blank titles become core.DefaultSourceTitle, and
// repeated URIs keep the first occurrence.
func Sources(citations []core.Citation) []core.Source {
	sources := make([]core.Source, 0, len(citations))
	seen := make(map[string]struct{}, len(citations))
	for _, citation := range citations {
		if citation.URI == "" {
			continue
		}
		if _, ok := seen[citation.URI]; ok {
			continue
		}
		seen[citation.URI] = struct{}{}

		title := citation.Title
		if title == "" {
			title = core.DefaultSourceTitle
		}
		sources = append(sources, core.Source{Title: title, URI: citation.URI})
	}
	return sources
}

func parseScore(raw string) int {
	match := scorePattern.FindStringSubmatch(raw)
	if match == nil {
		return DefaultScore
	}
	score, err := strconv.Atoi(match[1])
	if err != nil {
		// Only a range error is possible for an all-digit match.
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return maxScore
		}
		return DefaultScore
	}
	return clamp(score)
}

func parseVerdict(raw string) string {
	match := verdictPattern.FindStringSubmatch(raw)
	if match == nil {
		return DefaultVerdict
	}
	// A label followed only by whitespace (including a lone \r before the
	// newline) carries no verdict.
	verdict := strings.TrimSpace(match[1])
	if verdict == "" {
		return DefaultVerdict
	}
	return verdict
}

func parseAnalysis(raw string) string {
	match := analysisPattern.FindStringSubmatch(raw)
	if match == nil {
		return raw
	}
	return strings.TrimSpace(match[1])
}

func clamp(score int) int {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
