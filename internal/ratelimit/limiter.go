// Package ratelimit provides a sliding one-minute window limiter.
package ratelimit

import (
	"sync"
	"time"
)

// retention is how long minute buckets are kept for reporting. Only the
// trailing minute counts toward the admission limit.
const retention = time.Hour

// Limiter counts admitted commands in minute buckets and denies admission
// once the trailing-minute total reaches the configured ceiling.
// The check-and-increment is a single critical section, so concurrent
// callers cannot both observe "under limit" and over-admit.
type Limiter struct {
	mu      sync.Mutex
	buckets map[time.Time]int
	max     int
	now     func() time.Time
}

// New creates a Limiter admitting at most max commands per minute.
func New(max int) *Limiter {
	return NewWithClock(max, time.Now)
}

// NewWithClock creates a Limiter with a custom clock (for testing).
func NewWithClock(max int, now func() time.Time) *Limiter {
	if now == nil {
		panic("ratelimit: nil clock")
	}
	return &Limiter{
		buckets: make(map[time.Time]int),
		max:     max,
		now:     now,
	}
}

// Allow reports whether another command may be admitted now. On admission the
// current minute bucket is incremented; denied calls leave the counters
// untouched.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	if l.sumSince(now.Add(-time.Minute)) >= l.max {
		return false
	}

	bucket := now.Truncate(time.Minute)
	l.buckets[bucket]++
	return true
}

// CountLastMinute returns the number of commands admitted in the trailing
// minute.
func (l *Limiter) CountLastMinute() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	return l.sumSince(now.Add(-time.Minute))
}

// CountLastHour returns the number of commands admitted in the trailing hour.
func (l *Limiter) CountLastHour() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	return l.sumSince(now.Add(-retention))
}

// Max returns the configured per-minute ceiling.
func (l *Limiter) Max() int { return l.max }

// prune drops buckets outside the reporting retention (lock must be held).
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-retention)
	for bucket := range l.buckets {
		if bucket.Before(cutoff) {
			delete(l.buckets, bucket)
		}
	}
}

// sumSince totals bucket counts at or after cutoff (lock must be held).
func (l *Limiter) sumSince(cutoff time.Time) int {
	total := 0
	for bucket, count := range l.buckets {
		if !bucket.Before(cutoff) {
			total += count
		}
	}
	return total
}
