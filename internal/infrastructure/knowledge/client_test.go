package knowledge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestClient() client {
	return newClient("test", rate.Inf, 1, zerolog.Nop())
}

func TestGetJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"extract":"hello"}`))
	}))
	defer server.Close()

	c := newTestClient()
	var out wikipediaSummary
	require.NoError(t, c.getJSON(context.Background(), server.URL, &out))
	assert.Equal(t, "hello", out.Extract)
}

func TestGetJSON_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient()
	var out wikipediaSummary
	assert.ErrorIs(t, c.getJSON(context.Background(), server.URL, &out), domain.ErrNoResults)
}

func TestGetJSON_RetriesServerErrorOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"extract":"second time lucky"}`))
	}))
	defer server.Close()

	c := newTestClient()
	var out wikipediaSummary
	require.NoError(t, c.getJSON(context.Background(), server.URL, &out))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "second time lucky", out.Extract)
}

func TestGetJSON_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient()
	var out wikipediaSummary
	err := c.getJSON(context.Background(), server.URL, &out)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "test", upstream.Source)
	assert.False(t, upstream.Timeout)
	assert.Equal(t, int32(maxAttempts), calls.Load())
}

func TestGetJSON_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	c := newTestClient()
	var out customSearchResponse
	err := c.getJSON(context.Background(), server.URL, &out)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	c := newTestClient()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var out wikipediaSummary
	err := c.getJSON(ctx, server.URL, &out)

	var upstream *domain.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.True(t, upstream.Timeout)
}

func TestGetJSON_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	c := newTestClient()
	var out wikipediaSummary
	err := c.getJSON(context.Background(), server.URL, &out)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNoResults))
}
