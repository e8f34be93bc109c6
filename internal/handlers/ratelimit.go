package handlers

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// rateLimiter is a fixed-window counter per key. Counters expire with their
// window, so memory is bounded by the number of active clients.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu   sync.Mutex
	hits *cache.Cache
}

// newRateLimiter returns nil (no limiting) when limit or window is not positive.
func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	if limit <= 0 || window <= 0 {
		return nil
	}
	return &rateLimiter{
		limit:  limit,
		window: window,
		hits:   cache.New(window, 2*window),
	}
}

func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.hits.IncrementInt(key, 1)
	if err != nil {
		// First request of a new window.
		l.hits.Set(key, 1, l.window)
		return true
	}
	return n <= l.limit
}
