package usecase

import (
	"sync"
	"time"

	"github.com/JAChelton/ai-inventory-tracker/internal/domain"
)

// RateLimiterConfig holds the fixed-window budget.
type RateLimiterConfig struct {
	Capacity int
	Window   time.Duration
	// Now replaces time.Now in tests.
	Now func() time.Time
}

type rateBucket struct {
	remaining int
	resetAt   time.Time
}

// RateLimiter is a per-client fixed-window limiter. Each client gets Capacity requests per
// Window, and the budget is restored in full once the window ends.
type RateLimiter struct {
	capacity int
	window   time.Duration
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*rateBucket

	stop      chan struct{}
	closeOnce sync.Once
}

// NewRateLimiter creates a limiter and starts sweeping finished windows in the background.
// Call Close to stop the sweeper.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	l := &RateLimiter{
		capacity: cfg.Capacity,
		window:   cfg.Window,
		now:      cfg.Now,
		buckets:  make(map[string]*rateBucket),
		stop:     make(chan struct{}),
	}
	go l.sweep(cfg.Window)
	return l
}

// Consume takes one request from clientID's budget, or returns a *domain.RateLimitError
// carrying the time left until the window resets.
func (l *RateLimiter) Consume(clientID string) error {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[clientID]
	if !ok || !now.Before(b.resetAt) {
		b = &rateBucket{remaining: l.capacity, resetAt: now.Add(l.window)}
		l.buckets[clientID] = b
	}

	if b.remaining <= 0 {
		return &domain.RateLimitError{ClientID: clientID, RetryAfter: b.resetAt.Sub(now)}
	}
	b.remaining--
	return nil
}

// Remaining reports how many requests clientID may still make in its current window.
func (l *RateLimiter) Remaining(clientID string) int {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[clientID]
	if !ok || !now.Before(b.resetAt) {
		return l.capacity
	}
	return b.remaining
}

func (l *RateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.removeExpired()
		}
	}
}

func (l *RateLimiter) removeExpired() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, b := range l.buckets {
		if !now.Before(b.resetAt) {
			delete(l.buckets, id)
		}
	}
}

// Close stops the background sweeper.
func (l *RateLimiter) Close() error {
	l.closeOnce.Do(func() { close(l.stop) })
	return nil
}
