package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/admissions-mail-filter/internal/core"
)

func testEntry(digest string, expiresAt time.Time) *core.CacheEntry {
	return &core.CacheEntry{
		Digest:       digest,
		Pertains:     true,
		Confidence:   0.95,
		Reason:       "scholarship awarded to the student",
		MatchedRules: []string{core.RuleScholarshipAwarded},
		LastSeen:     time.Now(),
		ExpiresAt:    expiresAt,
	}
}

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	entry := testEntry("abc123", time.Now().Add(time.Hour))
	require.NoError(t, c.Set(ctx, entry))

	got, err := c.Get(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, entry.Pertains, got.Pertains)
	assert.Equal(t, entry.Confidence, got.Confidence)
	assert.Equal(t, entry.MatchedRules, got.MatchedRules)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheExpiredEntry(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("stale", time.Now().Add(-time.Minute))))

	_, err := c.Get(ctx, "stale")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("gone", time.Now().Add(time.Hour))))
	require.NoError(t, c.Delete(ctx, "gone"))

	_, err := c.Get(ctx, "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := NewMemoryCache(zap.NewNop(), time.Hour)
	defer c.Stop()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, testEntry("fresh", time.Now().Add(time.Hour))))
	require.NoError(t, c.Set(ctx, testEntry("stale", time.Now().Add(-time.Minute))))

	require.NoError(t, c.Cleanup(ctx))

	_, err := c.Get(ctx, "fresh")
	assert.NoError(t, err)
	assert.Len(t, c.entries, 1)
}
