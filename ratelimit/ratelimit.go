// Package ratelimit provides a rolling-window gate for outbound requests.
//
// Unlike a token bucket, the limiter guarantees that no more than N
// requests are issued within any rolling window, which is what public
// APIs with per-minute quotas actually enforce.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits at most limit requests within any rolling window.
// The zero value and any limiter with limit <= 0 admit everything.
type Limiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	issued []time.Time // admission times still inside the window, oldest first
}

// New returns a limiter admitting perMinute requests per rolling minute.
func New(perMinute int) *Limiter {
	return NewWindow(perMinute, time.Minute)
}

// NewWindow returns a limiter admitting limit requests per rolling window.
func NewWindow(limit int, window time.Duration) *Limiter {
	return &Limiter{limit: limit, window: window}
}

// Wait blocks until a request may be issued or ctx is done. The admission
// is recorded before Wait returns, so callers must issue the request they
// waited for.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil || l.limit <= 0 {
		return nil
	}
	for {
		l.mu.Lock()
		now := time.Now()
		l.prune(now)
		if len(l.issued) < l.limit {
			l.issued = append(l.issued, now)
			l.mu.Unlock()
			return nil
		}
		// Full window: sleep until the oldest admission expires.
		wait := l.issued[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// prune drops admissions that have left the window. Callers hold mu.
func (l *Limiter) prune(now time.Time) {
	cut := 0
	for cut < len(l.issued) && now.Sub(l.issued[cut]) >= l.window {
		cut++
	}
	if cut > 0 {
		l.issued = append(l.issued[:0], l.issued[cut:]...)
	}
}
