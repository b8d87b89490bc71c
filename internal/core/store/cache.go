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

// CacheKey identifies a cached analysis. ClaimKey is a normalized digest of
// the claim; Provider and Model are the requested values, which may be empty
// when routing picked them.
type CacheKey struct {
	ClaimKey   string
	PromptSlug string
	Provider   string
	Model      string
}

// CacheEntry is a cached analysis result.
type CacheEntry struct {
	Result    core.AnalysisResult
	Provider  string
	Model     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// GetCachedAnalysis returns the cached result for key when present and not
// expired. A miss returns (nil, nil).
func (s *Store) GetCachedAnalysis(ctx context.Context, key CacheKey) (*CacheEntry, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(key.ClaimKey) == "" {
		return nil, errors.New("cache claim key is required")
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT result_json, answered_by, answered_model, created_at, expires_at
		FROM analysis_cache
		WHERE claim_key = ? AND prompt_slug = ? AND provider = ? AND model = ? AND expires_at > ?
	`, key.ClaimKey, key.PromptSlug, key.Provider, key.Model, time.Now().UTC().UnixMilli())

	var (
		resultJSON string
		entry      CacheEntry
		createdAt  int64
		expiresAt  int64
	)
	if err := row.Scan(&resultJSON, &entry.Provider, &entry.Model, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch cached analysis: %w", err)
	}

	if err := json.Unmarshal([]byte(resultJSON), &entry.Result); err != nil {
		return nil, fmt.Errorf("decode cached analysis: %w", err)
	}
	if entry.Result.Sources == nil {
		entry.Result.Sources = []core.Source{}
	}
	entry.CreatedAt = time.UnixMilli(createdAt).UTC()
	entry.ExpiresAt = time.UnixMilli(expiresAt).UTC()
	return &entry, nil
}

// SetCachedAnalysis stores entry under key for ttl. A non-positive ttl is a
// no-op.
func (s *Store) SetCachedAnalysis(ctx context.Context, key CacheKey, entry CacheEntry, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if ttl <= 0 {
		return nil
	}
	if strings.TrimSpace(key.ClaimKey) == "" {
		return errors.New("cache claim key is required")
	}

	resultJSON, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("encode cached analysis: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO analysis_cache (claim_key, prompt_slug, provider, model, result_json, answered_by, answered_model, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(claim_key, prompt_slug, provider, model) DO UPDATE SET
			result_json = excluded.result_json,
			answered_by = excluded.answered_by,
			answered_model = excluded.answered_model,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at
	`,
		key.ClaimKey,
		key.PromptSlug,
		key.Provider,
		key.Model,
		string(resultJSON),
		entry.Provider,
		entry.Model,
		now.UnixMilli(),
		now.Add(ttl).UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("store cached analysis: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired cache entries and returns how many were
// removed.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM analysis_cache WHERE expires_at <= ?`, time.Now().UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("purge expired cache: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}
