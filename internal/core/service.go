package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/admissions-mail-filter/internal/whitelist"
)

// FilterService is the core service for classifying admissions mail. It
// wraps the rule engine with a trusted-domain bypass and an optional
// verdict cache so repeated mailbox scans skip re-evaluation.
type FilterService struct {
	engine       *Engine
	cache        CacheRepository
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
	trusted      *whitelist.Checker
}

// NewFilterService creates a new filter service
func NewFilterService(
	engine *Engine,
	cache CacheRepository,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
	trusted *whitelist.Checker,
) *FilterService {
	return &FilterService{
		engine:       engine,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
		trusted:      trusted,
	}
}

// Classify returns the verdict for one email. Mail from a trusted domain
// is always kept; otherwise the cache is consulted before the engine runs.
func (s *FilterService) Classify(ctx context.Context, email *Email) Result {
	if email != nil && s.trusted != nil && s.trusted.IsTrusted(email.From) {
		s.logger.Info("Keeping email from trusted domain",
			zap.String("sender", email.From),
			zap.String("action", "trusted_bypass"))

		return Result{
			Pertains:     true,
			Confidence:   1.0,
			Reason:       "sender domain is trusted",
			MatchedRules: []string{"trusted_domain"},
		}
	}

	digest := ""
	if s.cacheEnabled && email != nil {
		digest = ContentDigest(email)
		if entry, err := s.cache.Get(ctx, digest); err == nil {
			s.logger.Debug("Cache hit for message", zap.String("digest", digest))
			return Result{
				Pertains:     entry.Pertains,
				Confidence:   entry.Confidence,
				Reason:       entry.Reason,
				MatchedRules: entry.MatchedRules,
			}
		}
	}

	result := s.engine.Classify(email)

	if s.cacheEnabled && digest != "" {
		now := time.Now()
		entry := &CacheEntry{
			Digest:       digest,
			Pertains:     result.Pertains,
			Confidence:   result.Confidence,
			Reason:       result.Reason,
			MatchedRules: result.MatchedRules,
			LastSeen:     now,
			ExpiresAt:    now.Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return result
}

// ContentDigest keys the verdict cache. Keying by subject+body+sender
// rather than by sender alone keeps cached verdicts exact: identical
// content always maps to the identical engine output.
func ContentDigest(email *Email) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s", email.From, email.Subject, email.Body)
	return hex.EncodeToString(h.Sum(nil))
}
