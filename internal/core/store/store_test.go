package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/claimlens/claimlens/internal/config"
)

func TestBuildLibsqlDSN(t *testing.T) {
	t.Run("URLUsesRawValue", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io",
			AuthToken: "token123",
		}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=token123", dsn)
	})

	t.Run("URLWithExistingQuery", func(t *testing.T) {
		cfg := config.StoreConfig{
			URL:       "libsql://example.turso.io?foo=bar",
			AuthToken: "token123",
		}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "libsql://example.turso.io?authToken=token123&foo=bar", dsn)
	})

	t.Run("PathWithFilePrefix", func(t *testing.T) {
		cfg := config.StoreConfig{Path: "file:./claimlens.db"}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, "file:./claimlens.db", dsn)
	})

	t.Run("PathMissing", func(t *testing.T) {
		cfg := config.StoreConfig{}

		_, err := buildLibsqlDSN(cfg)
		require.Error(t, err)
	})

	t.Run("MemoryPath", func(t *testing.T) {
		cfg := config.StoreConfig{Path: ":memory:"}

		dsn, err := buildLibsqlDSN(cfg)
		require.NoError(t, err)
		require.Equal(t, ":memory:", dsn)
	})
}

func TestIsLocalDSN(t *testing.T) {
	require.True(t, isLocalDSN(":memory:"))
	require.True(t, isLocalDSN("file:/tmp/claimlens.db"))
	require.False(t, isLocalDSN("libsql://example.turso.io?authToken=x"))
}

func TestStoreNotInitialized(t *testing.T) {
	ctx := context.Background()
	var s *Store

	require.NoError(t, s.Close())
	require.Empty(t, s.Driver())
	require.Error(t, s.Migrate(ctx))
	require.Error(t, s.SaveAnalysis(ctx, AnalysisRecord{ID: "x"}))

	_, err := s.ListAnalyses(ctx, 10)
	require.Error(t, err)
	_, err = s.GetCachedAnalysis(ctx, CacheKey{ClaimKey: "k"})
	require.Error(t, err)
}
