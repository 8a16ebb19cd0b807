package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Sources   SourcesConfig
	LLM       LLMConfig
	Catalog   CatalogConfig
	Matching  MatchingConfig
	Session   SessionConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is believed.
	// Empty means the client IP is always the connection's remote address.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" or "json"
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type          string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL      string        `mapstructure:"redis_url"`
	TTL           time.Duration `mapstructure:"ttl"`
	EnrichmentTTL time.Duration `mapstructure:"enrichment_ttl"`
}

// RateLimitConfig holds the fixed-window budget for analyze requests
type RateLimitConfig struct {
	Capacity int           `mapstructure:"capacity"`
	Window   time.Duration `mapstructure:"window"`
}

// SourcesConfig holds the knowledge sources queried during enrichment
type SourcesConfig struct {
	Timeout      time.Duration      `mapstructure:"timeout"`
	Wikipedia    WikipediaConfig    `mapstructure:"wikipedia"`
	DuckDuckGo   DuckDuckGoConfig   `mapstructure:"duckduckgo"`
	CustomSearch CustomSearchConfig `mapstructure:"customsearch"`
}

// WikipediaConfig configures the Wikipedia page summary source
type WikipediaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
}

// DuckDuckGoConfig configures the DuckDuckGo instant answer source
type DuckDuckGoConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
}

// CustomSearchConfig configures the Google Custom Search source.
// The source is only enabled when both credentials are present.
type CustomSearchConfig struct {
	APIKey   string `mapstructure:"api_key"`
	EngineID string `mapstructure:"engine_id"`
	BaseURL  string `mapstructure:"base_url"`
}

// Enabled reports whether credentials for the source are configured
func (c CustomSearchConfig) Enabled() bool {
	return c.APIKey != "" && c.EngineID != ""
}

// LLMConfig holds generative model configuration for structured extraction
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // "openai", "anthropic" or "none"
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether extraction can be attempted at all
func (c LLMConfig) Enabled() bool {
	return c.Provider != "none" && c.APIKey != ""
}

// CatalogConfig points at an optional catalog file overriding the embedded one
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// MatchingConfig tunes text matching and resolution
type MatchingConfig struct {
	QuantityWindow       int  `mapstructure:"quantity_window"`
	KnownPatternShortcut bool `mapstructure:"known_pattern_shortcut"`
}

// SessionConfig tunes the client-side processing flow
type SessionConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/inventory-tracker/")

	// Environment variable settings: server.port -> INVENTORY_SERVER_PORT
	v.SetEnvPrefix("INVENTORY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "3001")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})
	v.SetDefault("server.trusted_proxies", []string{})

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.enrichment_ttl", "24h")

	// Rate limit defaults: 10 analyze requests per minute per client
	v.SetDefault("ratelimit.capacity", 10)
	v.SetDefault("ratelimit.window", "60s")

	// Knowledge source defaults
	v.SetDefault("sources.timeout", "5s")
	v.SetDefault("sources.wikipedia.enabled", true)
	v.SetDefault("sources.wikipedia.base_url", "https://en.wikipedia.org/api/rest_v1")
	v.SetDefault("sources.duckduckgo.enabled", true)
	v.SetDefault("sources.duckduckgo.base_url", "https://api.duckduckgo.com")
	v.SetDefault("sources.customsearch.api_key", "")
	v.SetDefault("sources.customsearch.engine_id", "")
	v.SetDefault("sources.customsearch.base_url", "https://www.googleapis.com/customsearch/v1")

	// LLM defaults
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 500)
	v.SetDefault("llm.timeout", "30s")

	// Catalog and matching defaults
	v.SetDefault("catalog.path", "")
	v.SetDefault("matching.quantity_window", 10)
	v.SetDefault("matching.known_pattern_shortcut", true)

	// Session defaults
	v.SetDefault("session.debounce", "1s")
}

// validate validates the configuration
func validate(config *Config) error {
	for _, proxy := range config.Server.TrustedProxies {
		if !validProxy(proxy) {
			return fmt.Errorf("trusted proxy must be an IP or CIDR, got: %q", proxy)
		}
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Cache.TTL <= 0 || config.Cache.EnrichmentTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}

	if config.RateLimit.Capacity <= 0 {
		return fmt.Errorf("rate limit capacity must be positive, got: %d", config.RateLimit.Capacity)
	}

	if config.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive, got: %s", config.RateLimit.Window)
	}

	if config.Sources.Timeout <= 0 {
		return fmt.Errorf("source timeout must be positive, got: %s", config.Sources.Timeout)
	}

	switch config.LLM.Provider {
	case "openai", "anthropic", "none":
	default:
		return fmt.Errorf("llm provider must be 'openai', 'anthropic' or 'none', got: %s", config.LLM.Provider)
	}

	if config.LLM.Temperature < 0 || config.LLM.Temperature > 2 {
		return fmt.Errorf("llm temperature must be between 0 and 2, got: %.2f", config.LLM.Temperature)
	}

	if config.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm max tokens must be positive, got: %d", config.LLM.MaxTokens)
	}

	if config.Log.Format != "console" && config.Log.Format != "json" {
		return fmt.Errorf("log format must be 'console' or 'json', got: %s", config.Log.Format)
	}

	if config.Matching.QuantityWindow < 0 {
		return fmt.Errorf("quantity window must not be negative, got: %d", config.Matching.QuantityWindow)
	}

	return nil
}

func validProxy(proxy string) bool {
	if strings.Contains(proxy, "/") {
		_, _, err := net.ParseCIDR(proxy)
		return err == nil
	}
	return net.ParseIP(proxy) != nil
}
