package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KnowledgeSource is one independent external source queried during enrichment.
type KnowledgeSource interface {
	Name() string
	Lookup(ctx context.Context, query string) (*SourceResult, error)
}

// TextGenerator sends a system and user prompt to a generative model and returns its raw text.
type TextGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
