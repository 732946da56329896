package slug

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"catalog-curator/internal/cache"
	"catalog-curator/internal/config"

	"go.uber.org/zap"
)

// Lookup is the narrow store contract the uniqueness check reads through
type Lookup interface {
	CountBySlug(ctx context.Context, entityType EntityType, normalizedSlug string, excludeID int64) (int, error)
}

// GenerateOptions tune slug generation. The zero value strips stop-words
// from the normalized source text; KeepStopWords opts out.
type GenerateOptions struct {
	KeepStopWords bool
	MaxWords      int
	Bounds        *Bounds // per-entity override, nil for configured default
}

// Service generates and validates unique human-readable identifiers. The
// uniqueness verdicts are memoized through the cache facade so repeated
// admin edits do not hammer the store.
type Service struct {
	lookup   Lookup
	cache    cache.Cache
	logger   *zap.Logger
	bounds   Bounds
	cacheTTL time.Duration
	attempts int
}

// NewService creates a Service wired to the store lookup and cache facade
func NewService(lookup Lookup, c cache.Cache, cfg config.SlugConfig, logger *zap.Logger) *Service {
	return &Service{
		lookup:   lookup,
		cache:    c,
		logger:   logger,
		bounds:   Bounds{Min: cfg.MinLength, Max: cfg.MaxLength},
		cacheTTL: cfg.UniquenessCacheTTL,
		attempts: cfg.MaxSuffixAttempts,
	}
}

// Bounds returns the configured default length bounds
func (s *Service) Bounds() Bounds {
	return s.bounds
}

// IsUnique reports whether the normalized slug is free within the entity
// namespace, excluding the given id. Verdicts of both polarities are cached;
// a cache hit short-circuits the store lookup.
func (s *Service) IsUnique(ctx context.Context, entityType EntityType, rawSlug string, excludeID int64) (bool, error) {
	normalized := Normalize(rawSlug)
	key := cache.SlugUniquenessKey(string(entityType), normalized, excludeID)

	if cached, err := s.cache.Get(ctx, key); err == nil {
		return cached == "1", nil
	} else if err != cache.ErrCacheMiss {
		// Cache trouble must not fail validation; fall through to the store.
		s.logger.Warn("slug uniqueness cache read failed", zap.Error(err), zap.String("key", key))
	}

	count, err := s.lookup.CountBySlug(ctx, entityType, normalized, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check slug uniqueness: %w", err)
	}

	unique := count == 0
	verdict := "0"
	if unique {
		verdict = "1"
	}
	if err := s.cache.Set(ctx, key, verdict, s.cacheTTL); err != nil {
		s.logger.Warn("slug uniqueness cache write failed", zap.Error(err), zap.String("key", key))
	}

	return unique, nil
}

// Invalidate drops the cached uniqueness verdicts a slug change makes
// stale. Called by mutating paths before they return; only the exact keys
// for the touched slug are removed.
func (s *Service) Invalidate(ctx context.Context, entityType EntityType, slugs []string, ids ...int64) error {
	keys := []string{}
	for _, raw := range slugs {
		if raw == "" {
			continue
		}
		keys = append(keys, cache.SlugUniquenessKeys(string(entityType), Normalize(raw), ids...)...)
	}
	return s.cache.Delete(ctx, keys...)
}

// Generate produces a unique slug from free-form source text. The primary
// path is fully deterministic for a given store state: normalization, then
// a -2, -3, ... suffix probe up to the configured attempt budget, then a
// timestamp suffix as the final fallback.
func (s *Service) Generate(ctx context.Context, sourceText string, entityType EntityType, excludeID int64, opts GenerateOptions) (string, error) {
	bounds := s.bounds
	if opts.Bounds != nil {
		bounds = *opts.Bounds
	}

	base := Normalize(sourceText)
	if !opts.KeepStopWords {
		base = stripStopWords(base)
	}
	if opts.MaxWords > 0 {
		base = capWords(base, opts.MaxWords)
	}
	base = truncateAtWordBoundary(base, bounds.Max)

	if base == "" || len(base) < bounds.Min || IsReserved(base, entityType) {
		base = fmt.Sprintf("%s-%s", entityType, base)
		base = truncateAtWordBoundary(Normalize(base), bounds.Max)
	}

	candidate := base
	for attempt := 2; ; attempt++ {
		unique, err := s.IsUnique(ctx, entityType, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if unique && !IsReserved(candidate, entityType) {
			return candidate, nil
		}
		if attempt > s.attempts+1 {
			break
		}
		candidate = suffixed(base, strconv.Itoa(attempt), bounds.Max)
	}

	// Attempt budget exhausted; a timestamp suffix is effectively unique.
	candidate = suffixed(base, strconv.FormatInt(time.Now().UTC().Unix(), 10), bounds.Max)
	s.logger.Warn("slug suffix attempts exhausted, falling back to timestamp",
		zap.String("entity_type", string(entityType)),
		zap.String("base", base),
		zap.String("slug", candidate),
	)
	return candidate, nil
}

// SuggestAlternatives proposes free variations of a taken slug. Unlike
// Generate this helper is randomized and carries no determinism guarantee.
func (s *Service) SuggestAlternatives(ctx context.Context, taken string, entityType EntityType, count int) []string {
	base := Normalize(taken)
	suggestions := []string{}
	for i := 0; i < count*4 && len(suggestions) < count; i++ {
		candidate := suffixed(base, strconv.Itoa(rand.Intn(9000)+1000), s.bounds.Max)
		unique, err := s.IsUnique(ctx, entityType, candidate, 0)
		if err != nil || !unique {
			continue
		}
		suggestions = append(suggestions, candidate)
	}
	return suggestions
}

// suffixed appends -suffix, trimming the base at a word boundary so the
// result still fits the length bound
func suffixed(base, suffix string, max int) string {
	room := max - len(suffix) - 1
	trimmed := truncateAtWordBoundary(base, room)
	if trimmed == "" {
		return suffix
	}
	return trimmed + "-" + suffix
}
