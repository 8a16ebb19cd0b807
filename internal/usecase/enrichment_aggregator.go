package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultSourceTimeout bounds each knowledge-source call.
const DefaultSourceTimeout = 5 * time.Second

// EnrichmentAggregatorConfig holds configuration for the aggregator
type EnrichmentAggregatorConfig struct {
	CacheTTL      time.Duration
	SourceTimeout time.Duration
}

// EnrichmentAggregator queries every knowledge source concurrently and keeps what succeeds.
type EnrichmentAggregator struct {
	sources []domain.KnowledgeSource
	cache   domain.CacheRepository
	ttl     time.Duration
	timeout time.Duration
	logger  zerolog.Logger
	now     func() time.Time
}

// NewEnrichmentAggregator creates an aggregator. Sources are reported in the order given.
func NewEnrichmentAggregator(
	sources []domain.KnowledgeSource,
	cache domain.CacheRepository,
	config EnrichmentAggregatorConfig,
	logger zerolog.Logger,
) *EnrichmentAggregator {
	ttl := config.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	timeout := config.SourceTimeout
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}

	return &EnrichmentAggregator{
		sources: sources,
		cache:   cache,
		ttl:     ttl,
		timeout: timeout,
		logger:  logger.With().Str("component", "enrichment").Logger(),
		now:     time.Now,
	}
}

// Enrich returns the combined source results for phrase. It never fails: sources that
// error or time out are left out, and the result may hold no sources at all.
func (a *EnrichmentAggregator) Enrich(ctx context.Context, phrase string) *domain.Enrichment {
	key := "enrich:" + NormalizeKey(phrase)

	if cached, ok := a.fromCache(ctx, key); ok {
		return cached
	}

	results := make([]*domain.SourceResult, len(a.sources))

	// Goroutines never return an error, so one source failing cannot cancel its siblings.
	var g errgroup.Group
	for i, src := range a.sources {
		g.Go(func() error {
			res, err := a.lookup(ctx, src, phrase)
			if err != nil {
				a.logFailure(src.Name(), phrase, err)
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	enrichment := &domain.Enrichment{
		Query:     phrase,
		Sources:   make([]domain.SourceResult, 0, len(results)),
		Timestamp: a.now().UTC(),
	}
	for _, res := range results {
		if res != nil {
			enrichment.Sources = append(enrichment.Sources, *res)
		}
	}

	a.toCache(ctx, key, enrichment)

	a.logger.Debug().
		Str("query", phrase).
		Int("sources", len(enrichment.Sources)).
		Int("queried", len(a.sources)).
		Msg("enrichment complete")

	return enrichment
}

func (a *EnrichmentAggregator) lookup(ctx context.Context, src domain.KnowledgeSource, phrase string) (*domain.SourceResult, error) {
	sctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res, err := src.Lookup(sctx, phrase)
	if err != nil {
		var upstream *domain.UpstreamError
		if errors.As(err, &upstream) {
			return nil, err
		}
		return nil, &domain.UpstreamError{
			Source:  src.Name(),
			Timeout: errors.Is(sctx.Err(), context.DeadlineExceeded),
			Err:     err,
		}
	}
	if res == nil || res.Payload == "" {
		return nil, domain.ErrNoResults
	}
	if res.Source == "" {
		res.Source = src.Name()
	}
	return res, nil
}

func (a *EnrichmentAggregator) logFailure(source, phrase string, err error) {
	if errors.Is(err, domain.ErrNoResults) {
		a.logger.Debug().Str("source", source).Str("query", phrase).Msg("source returned nothing")
		return
	}

	var upstream *domain.UpstreamError
	timeout := errors.As(err, &upstream) && upstream.Timeout
	a.logger.Warn().
		Err(err).
		Str("source", source).
		Str("query", phrase).
		Bool("timeout", timeout).
		Msg("knowledge source failed, skipping")
}

func (a *EnrichmentAggregator) fromCache(ctx context.Context, key string) (*domain.Enrichment, bool) {
	if a.cache == nil {
		return nil, false
	}
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			a.logger.Warn().Err(err).Str("key", key).Msg("enrichment cache read failed")
		}
		return nil, false
	}

	var enrichment domain.Enrichment
	if err := json.Unmarshal(data, &enrichment); err != nil {
		a.logger.Warn().Err(err).Str("key", key).Msg("discarding unreadable enrichment cache entry")
		return nil, false
	}
	return &enrichment, true
}

func (a *EnrichmentAggregator) toCache(ctx context.Context, key string, enrichment *domain.Enrichment) {
	if a.cache == nil {
		return
	}
	data, err := json.Marshal(enrichment)
	if err != nil {
		a.logger.Error().Err(err).Msg("marshal enrichment")
		return
	}
	if err := a.cache.Set(ctx, key, data, a.ttl); err != nil {
		a.logger.Warn().Err(err).Str("key", key).Msg("enrichment cache write failed")
	}
}
