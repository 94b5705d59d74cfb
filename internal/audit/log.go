// Package audit provides the append-only security event log.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

const DefaultLimit = 10000

// Severity tiers for security events.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// LevelCritical extends slog's levels above Error for critical security
// events.
const LevelCritical = slog.Level(12)

// ParseSeverity validates a severity string.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Level maps a severity to its slog level.
func (s Severity) Level() slog.Level {
	switch s {
	case SeverityCritical:
		return LevelCritical
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Event is a single audit entry. Events are never mutated after append.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	EventType string    `json:"event_type"`
	Details   string    `json:"details"`
	Severity  Severity  `json:"severity"`
}

// Log is a bounded in-memory event log that also routes each event to a
// structured logging sink by severity. Appends are serialized; retention
// keeps the most recent events in original order.
type Log struct {
	mu     sync.RWMutex
	events []Event
	limit  int
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Log.
type Option func(*Log)

// WithClock sets a custom clock (for testing).
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// WithHandler replaces the slog sink (for testing or custom routing).
func WithHandler(h slog.Handler) Option {
	return func(l *Log) { l.logger = slog.New(h) }
}

// NewLog creates a Log retaining at most limit events.
func NewLog(limit int, opts ...Option) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	l := &Log{
		events: make([]Event, 0, limit),
		limit:  limit,
		now:    func() time.Time { return time.Now().UTC() },
		logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.LevelKey {
					if level, ok := a.Value.Any().(slog.Level); ok && level == LevelCritical {
						a.Value = slog.StringValue("CRITICAL")
					}
				}
				return a
			},
		})),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends an event and emits it to the severity-routed sink.
func (l *Log) Record(eventType, details string, severity Severity) {
	event := Event{
		Timestamp: l.now(),
		EventType: eventType,
		Details:   details,
		Severity:  severity,
	}

	l.logger.Log(context.Background(), severity.Level(), "security event",
		slog.String("event_type", eventType),
		slog.String("details", details),
		slog.String("severity", string(severity)),
	)

	l.mu.Lock()
	l.events = append(l.events, event)
	if len(l.events) > l.limit {
		l.events = l.events[len(l.events)-l.limit:]
	}
	l.mu.Unlock()
}

// List returns a paginated snapshot of events in append order.
func (l *Log) List(offset, limit int) ([]Event, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := len(l.events)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = total
	}

	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	result := make([]Event, end-start)
	copy(result, l.events[start:end])
	return result, total
}

// CountSince returns how many retained events are newer than the cutoff.
func (l *Log) CountSince(cutoff time.Time) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for _, e := range l.events {
		if e.Timestamp.After(cutoff) {
			count++
		}
	}
	return count
}
