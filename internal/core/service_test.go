package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/admissions-mail-filter/internal/whitelist"
)

// fakeCache is an in-memory CacheRepository for service tests.
type fakeCache struct {
	entries map[string]*CacheEntry
	gets    int
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*CacheEntry{}}
}

func (f *fakeCache) Get(_ context.Context, digest string) (*CacheEntry, error) {
	f.gets++
	if e, ok := f.entries[digest]; ok {
		return e, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeCache) Set(_ context.Context, entry *CacheEntry) error {
	f.sets++
	f.entries[entry.Digest] = entry
	return nil
}

func (f *fakeCache) Delete(_ context.Context, digest string) error {
	delete(f.entries, digest)
	return nil
}

func (f *fakeCache) Cleanup(_ context.Context) error { return nil }

func newTestService(cache CacheRepository, cacheEnabled bool, trusted []string) *FilterService {
	checker := whitelist.NewChecker(trusted, zap.NewNop())
	return NewFilterService(NewEngine(), cache, zap.NewNop(), cacheEnabled, time.Hour, checker)
}

func TestClassifyTrustedDomainBypass(t *testing.T) {
	svc := newTestService(newFakeCache(), true, []string{"cedarville.edu"})

	result := svc.Classify(context.Background(), &Email{
		Subject: "Ugly Sweater Season Is Here",
		Body:    "Join us for the annual ugly sweater contest!",
		From:    "Admissions Office <admissions@Cedarville.edu>",
	})

	assert.True(t, result.Pertains)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Contains(t, result.MatchedRules, "trusted_domain")
}

func TestClassifyUntrustedDomainUsesEngine(t *testing.T) {
	svc := newTestService(newFakeCache(), true, []string{"cedarville.edu"})

	result := svc.Classify(context.Background(), &Email{
		Subject: "Ugly Sweater Season Is Here",
		Body:    "Join us for the annual ugly sweater contest!",
		From:    "outreach@other-college.edu",
	})

	assert.False(t, result.Pertains)
	assert.Contains(t, result.MatchedRules, RuleIrrelevantMarketing)
}

func TestClassifyCachesVerdict(t *testing.T) {
	cache := newFakeCache()
	svc := newTestService(cache, true, nil)
	email := &Email{
		Subject: "Password Reset Required",
		Body:    "Your password needs to be reset immediately",
		From:    "security@example.edu",
	}

	first := svc.Classify(context.Background(), email)
	require.Equal(t, 1, cache.sets)

	second := svc.Classify(context.Background(), email)
	assert.Equal(t, 1, cache.sets, "cache hit must not re-store")
	assert.Equal(t, first.Pertains, second.Pertains)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Reason, second.Reason)
}

func TestClassifyCacheDisabled(t *testing.T) {
	cache := newFakeCache()
	svc := newTestService(cache, false, nil)

	svc.Classify(context.Background(), &Email{Subject: "Hello", Body: "World"})

	assert.Zero(t, cache.gets)
	assert.Zero(t, cache.sets)
}

func TestContentDigestStability(t *testing.T) {
	a := &Email{Subject: "s", Body: "b", From: "f@x.edu"}
	b := &Email{Subject: "s", Body: "b", From: "f@x.edu"}
	c := &Email{Subject: "s2", Body: "b", From: "f@x.edu"}

	assert.Equal(t, ContentDigest(a), ContentDigest(b))
	assert.NotEqual(t, ContentDigest(a), ContentDigest(c))
}
