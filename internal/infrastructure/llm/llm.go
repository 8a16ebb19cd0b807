// Package llm provides text generators backed by hosted language models.
package llm

import (
	"fmt"
	"time"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/rs/zerolog"
)

// Config describes which model to call and how.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// New returns the generator for cfg.Provider. Provider "none" or a missing API key yields
// domain.ErrExtractionUnavailable.
func New(cfg Config, logger zerolog.Logger) (domain.TextGenerator, error) {
	if cfg.Provider == "none" || cfg.APIKey == "" {
		return nil, domain.ErrExtractionUnavailable
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}

	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg, logger), nil
	case "anthropic":
		return NewAnthropic(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
