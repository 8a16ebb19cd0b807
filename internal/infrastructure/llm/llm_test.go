package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemJSON = `{"name":"Rowing Machine","weight_kg":40,"dimensions":"240x60x50cm","category":"fitness","confidence":0.8,"reasoning":"x"}`

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		want    any
	}{
		{name: "disabled", cfg: Config{Provider: "none", APIKey: "k"}, wantErr: domain.ErrExtractionUnavailable},
		{name: "no key", cfg: Config{Provider: "openai"}, wantErr: domain.ErrExtractionUnavailable},
		{name: "openai", cfg: Config{Provider: "openai", APIKey: "k"}, want: &OpenAI{}},
		{name: "anthropic", cfg: Config{Provider: "anthropic", APIKey: "k"}, want: &Anthropic{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(tt.cfg, zerolog.Nop())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, gen)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, gen)
		})
	}

	_, err := New(Config{Provider: "markov", APIKey: "k"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestOpenAI_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		assert.Equal(t, 0.2, req.Temperature)
		assert.Equal(t, 300, req.MaxTokens)
		if assert.NotNil(t, req.ResponseFormat) {
			assert.Equal(t, "json_object", req.ResponseFormat.Type)
		}
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "sys", req.Messages[0].Content)
			assert.Equal(t, "user", req.Messages[1].Role)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": itemJSON}}},
			"usage":   map[string]int{"prompt_tokens": 12, "completion_tokens": 34},
		})
	}))
	defer server.Close()

	gen := NewOpenAI(Config{
		Model: "gpt-test", APIKey: "test-key", BaseURL: server.URL + "/v1",
		Temperature: 0.2, MaxTokens: 300, Timeout: 5 * time.Second,
	}, zerolog.Nop())

	out, err := gen.Generate(context.Background(), "sys", "Item: rowing machine")
	require.NoError(t, err)
	assert.JSONEq(t, itemJSON, out)
}

func TestOpenAI_Errors(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"slow down"}`))
		}))
		defer server.Close()

		gen := NewOpenAI(Config{APIKey: "k", BaseURL: server.URL}, zerolog.Nop())
		_, err := gen.Generate(context.Background(), "s", "u")

		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
		assert.Equal(t, 7*time.Second, httpErr.RetryAfter)
		assert.Equal(t, int32(1), calls.Load(), "a long Retry-After is not waited out")
	})

	t.Run("short Retry-After is retried once", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
		}))
		defer server.Close()

		gen := NewOpenAI(Config{APIKey: "k", BaseURL: server.URL}, zerolog.Nop())
		got, err := gen.Generate(context.Background(), "s", "u")

		require.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, got)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("cancelled while waiting to retry", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		gen := NewOpenAI(Config{APIKey: "k", BaseURL: server.URL}, zerolog.Nop())
		_, err := gen.Generate(ctx, "s", "u")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("no choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		gen := NewOpenAI(Config{APIKey: "k", BaseURL: server.URL}, zerolog.Nop())
		_, err := gen.Generate(context.Background(), "s", "u")
		assert.ErrorContains(t, err, "no choices")
	})

	t.Run("empty content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  "}}]}`))
		}))
		defer server.Close()

		gen := NewOpenAI(Config{APIKey: "k", BaseURL: server.URL}, zerolog.Nop())
		_, err := gen.Generate(context.Background(), "s", "u")
		assert.ErrorContains(t, err, "empty response")
	})
}

func TestAnthropic_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body["model"])
		assert.Equal(t, float64(256), body["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_01",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-test",
			"content":       []map[string]any{{"type": "text", "text": itemJSON}},
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]int{"input_tokens": 20, "output_tokens": 40},
		})
	}))
	defer server.Close()

	gen := NewAnthropic(Config{
		Model: "claude-test", APIKey: "test-key", BaseURL: server.URL,
		MaxTokens: 256, Temperature: 0.2, Timeout: 5 * time.Second,
	}, zerolog.Nop())

	out, err := gen.Generate(context.Background(), "sys", "Item: rowing machine")
	require.NoError(t, err)
	assert.JSONEq(t, itemJSON, out)
}

func TestAnthropic_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	gen := NewAnthropic(Config{APIKey: "bad", BaseURL: server.URL, MaxTokens: 10}, zerolog.Nop())
	_, err := gen.Generate(context.Background(), "s", "u")
	assert.ErrorContains(t, err, "anthropic API error")
}

func TestAnthropic_DefaultModel(t *testing.T) {
	gen := NewAnthropic(Config{APIKey: "k", Model: defaultOpenAIModel}, zerolog.Nop())
	assert.Equal(t, defaultAnthropicModel, gen.model)
}
