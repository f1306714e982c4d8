package guard

import (
	"sync"
	"time"
)

const (
	// DefaultRequestsPerWindow is the per-IP request allowance inside one window.
	DefaultRequestsPerWindow = 20
	// DefaultWindow is the fixed rate-limit window length.
	DefaultWindow = time.Minute
)

type rateEntry struct {
	count       int
	windowStart time.Time
}

// RateLimiter is a process-wide fixed-window counter keyed by client IP.
// Windows reset lazily on the next request; there is no background sweep.
type RateLimiter struct {
	mu        sync.Mutex
	perWindow int
	window    time.Duration
	now       func() time.Time
	entries   map[string]*rateEntry
}

// NewRateLimiter creates a limiter allowing perWindow requests per window.
// Non-positive arguments fall back to the defaults.
func NewRateLimiter(perWindow int, window time.Duration) *RateLimiter {
	if perWindow <= 0 {
		perWindow = DefaultRequestsPerWindow
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RateLimiter{
		perWindow: perWindow,
		window:    window,
		now:       time.Now,
		entries:   make(map[string]*rateEntry),
	}
}

// Allow records one request for ip and reports whether it is within the
// allowance for the current window.
func (l *RateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[ip]
	if !ok {
		e = &rateEntry{windowStart: now}
		l.entries[ip] = e
	}
	if now.Sub(e.windowStart) > l.window {
		e.count = 0
		e.windowStart = now
	}
	e.count++
	return e.count <= l.perWindow
}
