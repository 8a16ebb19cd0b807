// Package knowledge queries public knowledge sources for text describing an item.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	userAgent    = "InventoryTracker/1.0 (+https://github.com/JAChelton/ai-inventory-tracker)"
	maxAttempts  = 2
	maxBodyBytes = 1 << 20
)

// client is the HTTP plumbing shared by every source: pacing, headers, retries and decoding.
type client struct {
	name        string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      zerolog.Logger
}

func newClient(name string, limit rate.Limit, burst int, logger zerolog.Logger) client {
	return client{
		name: name,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		rateLimiter: rate.NewLimiter(limit, burst),
		logger:      logger.With().Str("source", name).Logger(),
	}
}

// doRequest executes an HTTP GET request with proper headers
func (c *client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	return c.httpClient.Do(req)
}

// getJSON fetches reqURL and decodes the body into out. A 404 is domain.ErrNoResults.
// Server errors are retried once; nothing is retried after ctx is done.
func (c *client) getJSON(ctx context.Context, reqURL string, out any) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return c.upstreamErr(ctx, fmt.Errorf("rate limiter: %w", err))
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			return c.upstreamErr(ctx, err)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		resp.Body.Close()
		if err != nil {
			return c.upstreamErr(ctx, fmt.Errorf("read body: %w", err))
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, out); err != nil {
				return c.upstreamErr(ctx, fmt.Errorf("failed to decode response: %w", err))
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			return domain.ErrNoResults
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			c.logger.Debug().Int("status", resp.StatusCode).Int("attempt", attempt).Msg("retryable response")
		default:
			return c.upstreamErr(ctx, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)))
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return c.upstreamErr(ctx, ctx.Err())
			case <-time.After(time.Duration(attempt*250) * time.Millisecond):
			}
		}
	}
	return c.upstreamErr(ctx, lastErr)
}

func (c *client) upstreamErr(ctx context.Context, err error) error {
	return &domain.UpstreamError{
		Source:  c.name,
		Timeout: errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
