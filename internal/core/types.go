package core

import (
	"errors"
	"strings"
)

// DefaultSourceTitle is used for grounding citations that arrive without a title.
const DefaultSourceTitle = "Web Source"

// ErrEmptyClaim is returned when a claim is blank after trimming.
var ErrEmptyClaim = errors.New("claim must not be empty")

// Source is a web page the model consulted while grounding its answer.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Citation is a raw grounding chunk as reported by a provider. Either field
// may be empty.
type Citation struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri,omitempty"`
}

// AnalysisResult is the structured verdict for a single claim.
type AnalysisResult struct {
	Score    int      `json:"score"`
	Verdict  string   `json:"verdict"`
	Analysis string   `json:"analysis"`
	Sources  []Source `json:"sources"`
}

// TrustBand buckets a score into a coarse label for display.
type TrustBand string

const (
	TrustBandLikelyFake TrustBand = "Likely Fake"
	TrustBandMixed      TrustBand = "Mixed / Unverified"
	TrustBandLikelyTrue TrustBand = "Likely True"
)

// BandForScore maps a 0-100 score to its display band.
func BandForScore(score int) TrustBand {
	switch {
	case score < 40:
		return TrustBandLikelyFake
	case score < 70:
		return TrustBandMixed
	default:
		return TrustBandLikelyTrue
	}
}

// NormalizeClaim trims surrounding whitespace and rejects blank input.
func NormalizeClaim(claim string) (string, error) {
	trimmed := strings.TrimSpace(claim)
	if trimmed == "" {
		return "", ErrEmptyClaim
	}
	return trimmed, nil
}
