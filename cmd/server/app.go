package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/JAChelton/ai-inventory-tracker/config"
	"github.com/JAChelton/ai-inventory-tracker/internal/catalog"
	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/JAChelton/ai-inventory-tracker/internal/infrastructure/cache"
	"github.com/JAChelton/ai-inventory-tracker/internal/infrastructure/knowledge"
	"github.com/JAChelton/ai-inventory-tracker/internal/infrastructure/llm"
	"github.com/JAChelton/ai-inventory-tracker/internal/observability"
	"github.com/JAChelton/ai-inventory-tracker/internal/session"
	"github.com/JAChelton/ai-inventory-tracker/internal/usecase"
	"github.com/rs/zerolog"
)

// app holds the wired services shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	catalog  *catalog.Catalog
	matcher  *usecase.TextMatcher
	detector *usecase.UnknownItemDetector
	limiter  *usecase.RateLimiter
	resolver *usecase.ItemResolver

	closers []io.Closer
}

// newApp loads configuration and builds the service graph. Logs go to logOutput.
func newApp(ctx context.Context, logOutput io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      logOutput,
		ServiceName: "inventory-tracker",
	})

	a := &app{cfg: cfg, logger: logger}

	a.catalog, err = catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	store, err := a.newCache(ctx)
	if err != nil {
		return nil, err
	}

	a.limiter = usecase.NewRateLimiter(usecase.RateLimiterConfig{
		Capacity: cfg.RateLimit.Capacity,
		Window:   cfg.RateLimit.Window,
	})
	a.closers = append(a.closers, a.limiter)

	aggregator := usecase.NewEnrichmentAggregator(a.knowledgeSources(), store, usecase.EnrichmentAggregatorConfig{
		CacheTTL:      cfg.Cache.EnrichmentTTL,
		SourceTimeout: cfg.Sources.Timeout,
	}, logger)

	generator, err := llm.New(llm.Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	switch {
	case errors.Is(err, domain.ErrExtractionUnavailable):
		logger.Warn().Str("provider", cfg.LLM.Provider).Msg("no language model configured, unknown items use heuristic estimates")
	case err != nil:
		a.Close()
		return nil, fmt.Errorf("create llm client: %w", err)
	}

	a.resolver = usecase.NewItemResolver(
		store,
		a.limiter,
		aggregator,
		usecase.NewStructuredExtractor(generator, logger),
		usecase.NewHeuristicFallback(),
		usecase.ItemResolverConfig{
			CacheTTL:             cfg.Cache.TTL,
			KnownPatternShortcut: cfg.Matching.KnownPatternShortcut,
		},
		logger,
	)

	a.matcher = usecase.NewTextMatcher(a.catalog.Vocabulary(), cfg.Matching.QuantityWindow)
	a.detector = usecase.NewUnknownItemDetector()

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("cache", cfg.Cache.Type).
		Int("catalog_items", len(a.catalog.Items())).
		Int("rate_limit", cfg.RateLimit.Capacity).
		Dur("rate_window", cfg.RateLimit.Window).
		Bool("known_pattern_shortcut", cfg.Matching.KnownPatternShortcut).
		Msg("services initialized")

	return a, nil
}

func (a *app) newCache(ctx context.Context) (domain.CacheRepository, error) {
	if a.cfg.Cache.Type == "redis" {
		rc, err := cache.NewRedisCache(ctx, a.cfg.Cache.RedisURL, "inventory:")
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		a.closers = append(a.closers, rc)
		return rc, nil
	}

	mc := cache.NewMemoryCache()
	a.closers = append(a.closers, mc)
	return mc, nil
}

// knowledgeSources returns the enabled sources in reporting order.
func (a *app) knowledgeSources() []domain.KnowledgeSource {
	src := a.cfg.Sources
	var sources []domain.KnowledgeSource

	if src.Wikipedia.Enabled {
		sources = append(sources, knowledge.NewWikipedia(src.Wikipedia.BaseURL, a.logger))
	}
	if src.DuckDuckGo.Enabled {
		sources = append(sources, knowledge.NewDuckDuckGo(src.DuckDuckGo.BaseURL, a.logger))
	}
	if src.CustomSearch.Enabled() {
		sources = append(sources, knowledge.NewCustomSearch(src.CustomSearch.BaseURL, src.CustomSearch.APIKey, src.CustomSearch.EngineID, a.logger))
	}

	if len(sources) == 0 {
		a.logger.Warn().Msg("no knowledge sources enabled")
	}
	return sources
}

// newSession creates a client session over the shared resolver.
func (a *app) newSession(clientID string, onUpdate func(session.Report)) *session.Session {
	return session.New(a.catalog.Names(), a.matcher, a.detector, a.resolver, session.Config{
		ClientID: clientID,
		Debounce: a.cfg.Session.Debounce,
		OnUpdate: onUpdate,
	}, a.logger)
}

// Close releases background workers and connections in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close")
		}
	}
}
