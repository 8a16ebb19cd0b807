package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Limiter guards the analyze path per client.
type Limiter interface {
	Consume(clientID string) error
	Remaining(clientID string) int
}

// Enricher gathers external knowledge for a phrase and never fails.
type Enricher interface {
	Enrich(ctx context.Context, phrase string) *domain.Enrichment
}

// Extractor turns a phrase plus enrichment into a validated record.
type Extractor interface {
	Extract(ctx context.Context, phrase string, enrichment *domain.Enrichment) (domain.ItemRecord, error)
}

// ItemResolverConfig holds configuration for the item resolver
type ItemResolverConfig struct {
	CacheTTL             time.Duration
	KnownPatternShortcut bool
}

// ItemResolver handles analyze requests with rate limiting and caching.
type ItemResolver struct {
	cache     domain.CacheRepository
	limiter   Limiter
	enricher  Enricher
	extractor Extractor
	fallback  *HeuristicFallback
	cacheTTL  time.Duration
	shortcut  bool
	inflight  singleflight.Group
	logger    zerolog.Logger
	now       func() time.Time
}

// NewItemResolver creates a resolver with its dependencies. A nil limiter disables rate limiting.
func NewItemResolver(
	cache domain.CacheRepository,
	limiter Limiter,
	enricher Enricher,
	extractor Extractor,
	fallback *HeuristicFallback,
	config ItemResolverConfig,
	logger zerolog.Logger,
) *ItemResolver {
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	if fallback == nil {
		fallback = NewHeuristicFallback()
	}

	return &ItemResolver{
		cache:     cache,
		limiter:   limiter,
		enricher:  enricher,
		extractor: extractor,
		fallback:  fallback,
		cacheTTL:  cacheTTL,
		shortcut:  config.KnownPatternShortcut,
		logger:    logger.With().Str("component", "resolver").Logger(),
		now:       time.Now,
	}
}

// Analyze resolves itemName into a record.
// Flow: validate -> rate limit -> cache -> known pattern or enrich + extract -> fallback -> cache
//
// Only validation and rate-limit failures are returned to the caller. Source and extraction
// failures degrade to the heuristic estimate.
func (s *ItemResolver) Analyze(ctx context.Context, clientID, itemName string) (*domain.AnalysisResult, error) {
	name, err := ValidateItemName(itemName)
	if err != nil {
		return nil, err
	}

	if s.limiter != nil {
		if err := s.limiter.Consume(clientID); err != nil {
			return nil, err
		}
		s.logger.Debug().Str("client", clientID).Int("remaining", s.limiter.Remaining(clientID)).Msg("rate limit consumed")
	}

	key := NormalizeKey(name)
	cacheKey := "analysis:" + key

	if cached, ok := s.getFromCache(ctx, cacheKey); ok {
		cached.Cached = true
		return cached, nil
	}

	// Concurrent callers for the same key share one resolution. The work is detached from
	// the caller's cancellation so a disconnect does not abandon it.
	v, err, shared := s.inflight.Do(key, func() (interface{}, error) {
		return s.resolve(context.WithoutCancel(ctx), name, cacheKey)
	})
	if err != nil {
		return nil, err
	}

	result := *v.(*domain.AnalysisResult)
	if shared {
		s.logger.Debug().Str("key", key).Msg("joined in-flight resolution")
	}
	return &result, nil
}

func (s *ItemResolver) resolve(ctx context.Context, name, cacheKey string) (*domain.AnalysisResult, error) {
	result := &domain.AnalysisResult{
		Sources: []domain.SourceResult{},
	}

	if record, ok := s.knownPattern(name); ok {
		result.Item = record
		s.logger.Info().Str("item", name).Msg("resolved from known pattern")
	} else {
		result.Item = s.enrichAndExtract(ctx, name, result)
	}

	result.Timestamp = s.now().UTC()
	s.setInCache(ctx, cacheKey, result)

	return result, nil
}

func (s *ItemResolver) knownPattern(name string) (domain.ItemRecord, bool) {
	if !s.shortcut {
		return domain.ItemRecord{}, false
	}
	return s.fallback.KnownPattern(name)
}

func (s *ItemResolver) enrichAndExtract(ctx context.Context, name string, result *domain.AnalysisResult) domain.ItemRecord {
	var enrichment *domain.Enrichment
	if s.enricher != nil {
		enrichment = s.enricher.Enrich(ctx, name)
		if enrichment != nil && enrichment.Sources != nil {
			result.Sources = enrichment.Sources
		}
	}

	if s.extractor != nil {
		record, err := s.extractor.Extract(ctx, name, enrichment)
		if err == nil {
			s.logger.Info().Str("item", name).Int("sources", len(result.Sources)).Msg("resolved by extraction")
			return record
		}
		s.logExtractionFailure(name, err)
	}

	record := s.fallback.Estimate(name)
	s.logger.Info().Str("item", name).Float64("confidence", record.Confidence).Msg("resolved by heuristic fallback")
	return record
}

func (s *ItemResolver) logExtractionFailure(name string, err error) {
	var extractionErr *domain.ExtractionError
	if errors.As(err, &extractionErr) && extractionErr.Kind == domain.ExtractionUnavailable {
		s.logger.Debug().Str("item", name).Msg("extraction unavailable, using fallback")
		return
	}
	s.logger.Warn().Err(err).Str("item", name).Msg("extraction failed, using fallback")
}

// getFromCache retrieves a previous analysis from cache
func (s *ItemResolver) getFromCache(ctx context.Context, key string) (*domain.AnalysisResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn().Err(err).Str("key", key).Msg("analysis cache read failed")
		}
		return nil, false
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable analysis cache entry")
		return nil, false
	}
	if result.Sources == nil {
		result.Sources = []domain.SourceResult{}
	}
	return &result, true
}

// setInCache stores an analysis; failures are logged and otherwise ignored
func (s *ItemResolver) setInCache(ctx context.Context, key string, result *domain.AnalysisResult) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Error().Err(err).Msg("marshal analysis")
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("analysis cache write failed")
	}
}
