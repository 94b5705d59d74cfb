package policy

import "time"

// Rate limit status labels reported by Report.
const (
	RateStatusNormal   = "normal"
	RateStatusElevated = "elevated"
)

// securityLevel is the fixed posture label reported to operators.
const securityLevel = "high"

// Report is a point-in-time snapshot of the engine's security posture.
type Report struct {
	Timestamp              time.Time `json:"timestamp"`
	RateLimitStatus        string    `json:"rate_limit_status"`
	CommandsLastHour       int       `json:"commands_last_hour"`
	EventsLastHour         int       `json:"events_last_hour"`
	DangerousPatternsCount int       `json:"dangerous_patterns_count"`
	SafeCommandsCount      int       `json:"safe_commands_count"`
	SecurityLevel          string    `json:"security_level"`
}

// Report returns the current security snapshot.
func (e *Engine) Report() Report {
	now := e.now()
	status := RateStatusNormal
	if e.limiter.CountLastMinute() >= e.limiter.Max() {
		status = RateStatusElevated
	}

	return Report{
		Timestamp:              now,
		RateLimitStatus:        status,
		CommandsLastHour:       e.limiter.CountLastHour(),
		EventsLastHour:         e.log.CountSince(now.Add(-time.Hour)),
		DangerousPatternsCount: e.matcher.DenyCount(),
		SafeCommandsCount:      e.matcher.AllowCount(),
		SecurityLevel:          securityLevel,
	}
}
