package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidItemName is returned when an item name is missing, too short or too long
	ErrInvalidItemName = errors.New("invalid item name")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache backend cannot be reached
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrExtractionUnavailable is returned when no generative model is configured
	ErrExtractionUnavailable = errors.New("structured extraction unavailable")

	// ErrNoResults is returned by a knowledge source that found nothing for a query
	ErrNoResults = errors.New("no results from knowledge source")
)

// RateLimitError is returned when a client exhausted its request budget.
type RateLimitError struct {
	ClientID   string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s, retry after %s", e.ClientID, e.RetryAfter)
}

// RetryAfterSeconds rounds the wait up to whole seconds, never below one.
func (e *RateLimitError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// UpstreamError wraps a failed knowledge-source call.
type UpstreamError struct {
	Source  string
	Timeout bool
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("upstream %s timed out: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("upstream %s failed: %v", e.Source, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ExtractionFailure classifies why structured extraction did not produce a record.
type ExtractionFailure string

const (
	ExtractionUnavailable ExtractionFailure = "unavailable"
	ExtractionUpstream    ExtractionFailure = "upstream"
	ExtractionParse       ExtractionFailure = "parse"
	ExtractionValidation  ExtractionFailure = "validation"
)

// ExtractionError is the typed failure of the structured extraction step.
type ExtractionError struct {
	Kind   ExtractionFailure
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction %s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction %s: %s", e.Kind, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
