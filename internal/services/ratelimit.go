package services

import (
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// FixedWindowLimiter is a process-local, best-effort rate limiter keyed by an
// arbitrary identifier (phone number, IP, user id). Windows are fixed, state
// resets on restart, and nothing is shared across server instances.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	now     func() time.Time
	windows map[string]*window
}

func NewFixedWindowLimiter(limit int, windowSize time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		limit:   limit,
		window:  windowSize,
		now:     time.Now,
		windows: make(map[string]*window),
	}
}

// Allow records a hit for key and reports whether it stays within the limit
// for the current window.
func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.sweep(now)
		l.windows[key] = &window{start: now, count: 1}
		return true
	}

	w.count++
	return w.count <= l.limit
}

// sweep drops stale windows; called with the lock held.
func (l *FixedWindowLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.window {
			delete(l.windows, key)
		}
	}
}
