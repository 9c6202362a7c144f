// Package ratelimit implements per-identity admission control over a
// sliding time window. A request counts against the budget the moment it
// is admitted, regardless of how the job later ends.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks recent admission timestamps per client identity. Stale
// timestamps are pruned lazily on each check; no background sweep runs.
type Limiter struct {
	mu        sync.Mutex
	window    time.Duration
	entries   map[string][]time.Time
	now       func() time.Time
	lastSweep time.Time
}

// NewLimiter creates a limiter with the given sliding window.
func NewLimiter(window time.Duration) *Limiter {
	return &Limiter{
		window:  window,
		entries: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records one admission attempt for identity and reports whether it
// stays within limit attempts per window. A denied attempt is not recorded.
func (l *Limiter) Allow(identity string, limit int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	// Identities that went quiet would otherwise keep their map keys
	// forever; drop fully stale ones at most once per window.
	if now.Sub(l.lastSweep) >= l.window {
		for id, stamps := range l.entries {
			if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
				delete(l.entries, id)
			}
		}
		l.lastSweep = now
	}

	recent := l.entries[identity][:0]
	for _, ts := range l.entries[identity] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= limit {
		l.entries[identity] = recent
		return false
	}

	l.entries[identity] = append(recent, now)
	return true
}

// Remaining reports how many admissions identity has left in the current
// window without recording an attempt.
func (l *Limiter) Remaining(identity string, limit int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	count := 0
	for _, ts := range l.entries[identity] {
		if ts.After(cutoff) {
			count++
		}
	}

	remaining := limit - count
	if remaining < 0 {
		return 0
	}
	return remaining
}
