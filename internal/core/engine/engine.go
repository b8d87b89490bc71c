// Package engine runs claim analyses for the CLI and HTTP server, adding the
// optional result cache and history on top of the analyzer.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/claimlens/claimlens/internal/ailink/prompt"
	"github.com/claimlens/claimlens/internal/core"
	"github.com/claimlens/claimlens/internal/core/analyzer"
	"github.com/claimlens/claimlens/internal/core/store"
	"github.com/claimlens/claimlens/internal/metrics"
)

// ErrHistoryDisabled is returned by history lookups when no store is
// configured.
var ErrHistoryDisabled = errors.New("analysis history is disabled; set store.enabled to keep history")

// Analyzer runs one analysis.
type Analyzer interface {
	AnalyzeWithOptions(ctx context.Context, claim string, opts analyzer.Options) (*analyzer.Report, error)
}

// Store persists history and cached results.
type Store interface {
	SaveAnalysis(ctx context.Context, rec store.AnalysisRecord) error
	ListAnalyses(ctx context.Context, limit int) ([]store.AnalysisRecord, error)
	GetAnalysis(ctx context.Context, id string) (*store.AnalysisRecord, error)
	GetCachedAnalysis(ctx context.Context, key store.CacheKey) (*store.CacheEntry, error)
	SetCachedAnalysis(ctx context.Context, key store.CacheKey, entry store.CacheEntry, ttl time.Duration) error
}

// Request is one claim to analyze with optional per-call routing.
type Request struct {
	Claim      string
	PromptSlug string
	Provider   string
	Model      string
	NoCache    bool
}

// Outcome is a finished analysis plus the metadata the CLI and API report.
type Outcome struct {
	ID         string              `json:"id"`
	Claim      string              `json:"claim"`
	Result     core.AnalysisResult `json:"result"`
	Band       core.TrustBand      `json:"band"`
	Provider   string              `json:"provider,omitempty"`
	Model      string              `json:"model,omitempty"`
	Cached     bool                `json:"cached"`
	AnalyzedAt time.Time           `json:"analyzed_at"`
	Duration   time.Duration       `json:"-"`
	DurationMS int64               `json:"duration_ms"`
}

// Engine wraps an Analyzer with the optional cache and history. With a nil
// Store, or KeepHistory off and CacheTTL zero, it is a pass-through and nothing
// is persisted.
type Engine struct {
	Analyzer    Analyzer
	Store       Store
	KeepHistory bool
	CacheTTL    time.Duration
	PromptSlug  string
	Logger      *logging.Logger

	Clock func() time.Time
	NewID func() string
}

// Analyze runs req through the cache and analyzer. Errors from the analyzer
// are returned unchanged so callers can inspect *analyzer.ConfigurationError
// and *analyzer.UpstreamError. Store failures are logged and never fail the
// analysis.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Outcome, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if e == nil || e.Analyzer == nil {
		return nil, &analyzer.ConfigurationError{Message: "analysis engine is not configured"}
	}

	claim, err := core.NormalizeClaim(req.Claim)
	if err != nil {
		metrics.RecordAnalysis(req.Provider, metrics.StatusInvalid, 0, 0)
		return nil, err
	}

	slug := strings.TrimSpace(req.PromptSlug)
	if slug == "" {
		slug = e.PromptSlug
	}
	if slug == "" {
		slug = prompt.ClaimVerificationSlug
	}

	start := e.now()
	key := store.CacheKey{
		ClaimKey:   ClaimKey(claim),
		PromptSlug: slug,
		Provider:   strings.TrimSpace(req.Provider),
		Model:      strings.TrimSpace(req.Model),
	}

	if e.cacheEnabled() && !req.NoCache {
		if outcome := e.fromCache(ctx, claim, slug, key, start); outcome != nil {
			return outcome, nil
		}
	}

	report, err := e.Analyzer.AnalyzeWithOptions(ctx, claim, analyzer.Options{
		PromptSlug: slug,
		Provider:   req.Provider,
		Model:      req.Model,
	})
	duration := e.now().Sub(start)
	if err != nil {
		metrics.RecordAnalysis(req.Provider, statusFor(err), duration, 0)
		return nil, err
	}

	outcome := &Outcome{
		ID:         e.newID(),
		Claim:      claim,
		Result:     report.Result,
		Band:       core.BandForScore(report.Result.Score),
		Provider:   report.Provider,
		Model:      report.Model,
		AnalyzedAt: start.UTC(),
		Duration:   duration,
		DurationMS: duration.Milliseconds(),
	}
	metrics.RecordAnalysis(outcome.Provider, metrics.StatusSuccess, duration, outcome.Result.Score)

	if e.cacheEnabled() {
		entry := store.CacheEntry{Result: outcome.Result, Provider: outcome.Provider, Model: outcome.Model}
		if err := e.Store.SetCachedAnalysis(ctx, key, entry, e.CacheTTL); err != nil {
			e.warn("Failed to cache analysis", err)
		}
	}
	e.record(ctx, slug, outcome)

	return outcome, nil
}

// History returns the most recent outcomes, newest first.
func (e *Engine) History(ctx context.Context, limit int) ([]Outcome, error) {
	if e == nil || e.Store == nil {
		return nil, ErrHistoryDisabled
	}
	records, err := e.Store.ListAnalyses(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Outcome, 0, len(records))
	for _, rec := range records {
		out = append(out, outcomeFromRecord(rec))
	}
	return out, nil
}

// Get returns one stored outcome. Missing ids yield store.ErrNotFound.
func (e *Engine) Get(ctx context.Context, id string) (*Outcome, error) {
	if e == nil || e.Store == nil {
		return nil, ErrHistoryDisabled
	}
	rec, err := e.Store.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	outcome := outcomeFromRecord(*rec)
	return &outcome, nil
}

// ClaimKey is the cache identity of a claim. Internal whitespace is never
// significant. Case is ignored for free text; for an absolute URL only the
// scheme and host are folded, since paths and queries are case-sensitive.
func ClaimKey(claim string) string {
	normalized := strings.Join(strings.Fields(claim), " ")
	if u, ok := absoluteURL(normalized); ok {
		u.Scheme = strings.ToLower(u.Scheme)
		u.Host = strings.ToLower(u.Host)
		normalized = u.String()
	} else {
		normalized = strings.ToLower(normalized)
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func absoluteURL(claim string) (*url.URL, bool) {
	if strings.ContainsAny(claim, " \t") {
		return nil, false
	}
	u, err := url.Parse(claim)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

func (e *Engine) fromCache(ctx context.Context, claim, slug string, key store.CacheKey, start time.Time) *Outcome {
	entry, err := e.Store.GetCachedAnalysis(ctx, key)
	if err != nil {
		e.warn("Failed to read analysis cache", err)
		metrics.RecordCacheLookup(false)
		return nil
	}
	metrics.RecordCacheLookup(entry != nil)
	if entry == nil {
		return nil
	}

	duration := e.now().Sub(start)
	outcome := &Outcome{
		ID:         e.newID(),
		Claim:      claim,
		Result:     entry.Result,
		Band:       core.BandForScore(entry.Result.Score),
		Provider:   entry.Provider,
		Model:      entry.Model,
		Cached:     true,
		AnalyzedAt: start.UTC(),
		Duration:   duration,
		DurationMS: duration.Milliseconds(),
	}
	metrics.RecordAnalysis(outcome.Provider, metrics.StatusCached, duration, outcome.Result.Score)
	e.record(ctx, slug, outcome)
	return outcome
}

func (e *Engine) record(ctx context.Context, slug string, outcome *Outcome) {
	if !e.KeepHistory || e.Store == nil {
		return
	}
	err := e.Store.SaveAnalysis(ctx, store.AnalysisRecord{
		ID:         outcome.ID,
		Claim:      outcome.Claim,
		PromptSlug: slug,
		Result:     outcome.Result,
		Provider:   outcome.Provider,
		Model:      outcome.Model,
		Cached:     outcome.Cached,
		AnalyzedAt: outcome.AnalyzedAt,
		Duration:   outcome.Duration,
	})
	if err != nil {
		e.warn("Failed to record analysis history", err)
	}
}

func (e *Engine) cacheEnabled() bool {
	return e.Store != nil && e.CacheTTL > 0
}

func (e *Engine) warn(msg string, err error) {
	if e.Logger != nil {
		e.Logger.Warn(msg, zap.Error(err))
	}
}

func (e *Engine) now() time.Time {
	if e.Clock != nil {
		return e.Clock()
	}
	return time.Now()
}

func (e *Engine) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return uuid.NewString()
}

func outcomeFromRecord(rec store.AnalysisRecord) Outcome {
	result := rec.Result
	if result.Sources == nil {
		result.Sources = []core.Source{}
	}
	return Outcome{
		ID:         rec.ID,
		Claim:      rec.Claim,
		Result:     result,
		Band:       core.BandForScore(result.Score),
		Provider:   rec.Provider,
		Model:      rec.Model,
		Cached:     rec.Cached,
		AnalyzedAt: rec.AnalyzedAt,
		Duration:   rec.Duration,
		DurationMS: rec.Duration.Milliseconds(),
	}
}

func statusFor(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyClaim):
		return metrics.StatusInvalid
	case analyzer.IsConfigurationError(err):
		return metrics.StatusConfigError
	default:
		return metrics.StatusUpstream
	}
}
