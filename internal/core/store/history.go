package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claimlens/claimlens/internal/core"
)

// DefaultHistoryLimit bounds ListAnalyses when the caller passes no limit.
const DefaultHistoryLimit = 20

// MaxHistoryLimit caps ListAnalyses regardless of the requested limit.
const MaxHistoryLimit = 500

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// AnalysisRecord is one completed analysis as kept in history.
type AnalysisRecord struct {
	ID         string
	Claim      string
	PromptSlug string
	Result     core.AnalysisResult
	Provider   string
	Model      string
	Cached     bool
	AnalyzedAt time.Time
	Duration   time.Duration
}

// SaveAnalysis appends a record to history. Records are immutable; saving
// an existing id fails.
func (s *Store) SaveAnalysis(ctx context.Context, rec AnalysisRecord) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("analysis id is required")
	}

	sources := rec.Result.Sources
	if sources == nil {
		sources = []core.Source{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}

	analyzedAt := rec.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now()
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO analyses (id, claim, prompt_slug, score, verdict, analysis, sources_json, provider, model, cached, analyzed_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Claim,
		rec.PromptSlug,
		rec.Result.Score,
		rec.Result.Verdict,
		rec.Result.Analysis,
		string(sourcesJSON),
		rec.Provider,
		rec.Model,
		boolToInt(rec.Cached),
		analyzedAt.UTC().UnixMilli(),
		rec.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("save analysis: %w", err)
	}
	return nil
}

// ListAnalyses returns the most recent records, newest first.
func (s *Store) ListAnalyses(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, claim, prompt_slug, score, verdict, analysis, sources_json, provider, model, cached, analyzed_at, duration_ms
		FROM analyses
		ORDER BY analyzed_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	records := make([]AnalysisRecord, 0, limit)
	for rows.Next() {
		rec, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}
	return records, nil
}

// GetAnalysis returns one record by id, or ErrNotFound.
func (s *Store) GetAnalysis(ctx context.Context, id string) (*AnalysisRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, claim, prompt_slug, score, verdict, analysis, sources_json, provider, model, cached, analyzed_at, duration_ms
		FROM analyses
		WHERE id = ?
	`, strings.TrimSpace(id))

	rec, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (AnalysisRecord, error) {
	var (
		rec         AnalysisRecord
		sourcesJSON string
		cached      int
		analyzedAt  int64
		durationMs  int64
	)
	err := row.Scan(
		&rec.ID,
		&rec.Claim,
		&rec.PromptSlug,
		&rec.Result.Score,
		&rec.Result.Verdict,
		&rec.Result.Analysis,
		&sourcesJSON,
		&rec.Provider,
		&rec.Model,
		&cached,
		&analyzedAt,
		&durationMs,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan analysis: %w", err)
	}

	rec.Result.Sources = []core.Source{}
	if sourcesJSON != "" {
		if err := json.Unmarshal([]byte(sourcesJSON), &rec.Result.Sources); err != nil {
			return rec, fmt.Errorf("decode sources: %w", err)
		}
	}
	rec.Cached = cached != 0
	rec.AnalyzedAt = time.UnixMilli(analyzedAt).UTC()
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	return rec, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
