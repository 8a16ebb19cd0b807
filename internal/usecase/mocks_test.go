package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
)

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu       sync.Mutex
	data     map[string][]byte
	getError error
	setError error
	sets     int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string][]byte)}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

// MockSource is a scripted knowledge source.
type MockSource struct {
	name   string
	result *domain.SourceResult
	err    error
	delay  time.Duration
	calls  atomic.Int32
}

func (m *MockSource) Name() string { return m.name }

func (m *MockSource) Lookup(ctx context.Context, query string) (*domain.SourceResult, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// MockGenerator returns canned model output and records the prompts it saw.
type MockGenerator struct {
	mu         sync.Mutex
	output     string
	err        error
	lastSystem string
	lastUser   string
}

func (m *MockGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSystem = systemPrompt
	m.lastUser = userPrompt
	return m.output, m.err
}

// MockLimiter counts calls and fails when err is set.
type MockLimiter struct {
	calls atomic.Int32
	err   error
}

func (m *MockLimiter) Consume(clientID string) error {
	m.calls.Add(1)
	return m.err
}

func (m *MockLimiter) Remaining(clientID string) int {
	return 10 - int(m.calls.Load())
}

// MockEnricher returns a fixed enrichment and can block until released.
type MockEnricher struct {
	enrichment *domain.Enrichment
	calls      atomic.Int32
	started    chan struct{}
	release    chan struct{}
	ctxErr     error
	mu         sync.Mutex
}

func (m *MockEnricher) Enrich(ctx context.Context, phrase string) *domain.Enrichment {
	if m.calls.Add(1) == 1 && m.started != nil {
		close(m.started)
	}
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	m.ctxErr = ctx.Err()
	m.mu.Unlock()
	if m.enrichment == nil {
		return &domain.Enrichment{Query: phrase, Sources: []domain.SourceResult{}}
	}
	return m.enrichment
}

// MockExtractor returns a fixed record or error.
type MockExtractor struct {
	record domain.ItemRecord
	err    error
	calls  atomic.Int32
}

func (m *MockExtractor) Extract(ctx context.Context, phrase string, enrichment *domain.Enrichment) (domain.ItemRecord, error) {
	m.calls.Add(1)
	return m.record, m.err
}

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
