// Package ratelimit provides a process-wide fixed-window request counter
// keyed by client identifier.
package ratelimit

import (
	"sync"
	"time"
)

// Entries for keys that have gone quiet are swept once the map grows past
// this size.
const sweepThreshold = 4096

// Limiter counts requests per client key over a fixed window. When the
// window for a key expires, its counter starts over; enforcement is therefore
// approximate around window boundaries, which is acceptable for abuse
// protection on a single route.
//
// The zero value is not usable; construct with New. All methods are safe for
// concurrent use.
type Limiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	entries map[string]*windowEntry

	// now is swappable in tests.
	now func() time.Time
}

type windowEntry struct {
	start time.Time
	count int
}

func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Allow records one request for key and reports whether it fits within the
// current window's quota.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[key]
	if !ok || now.Sub(entry.start) >= l.window {
		l.entries[key] = &windowEntry{start: now, count: 1}
		if len(l.entries) > sweepThreshold {
			l.sweepLocked(now)
		}
		return l.limit >= 1
	}

	entry.count++
	return entry.count <= l.limit
}

// RetryAfter returns how long the key must wait until its window resets.
// Zero means the key may retry immediately.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok {
		return 0
	}
	remaining := l.window - l.now().Sub(entry.start)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// sweepLocked drops expired windows. Caller must hold l.mu.
func (l *Limiter) sweepLocked(now time.Time) {
	for key, entry := range l.entries {
		if now.Sub(entry.start) >= l.window {
			delete(l.entries, key)
		}
	}
}
