// Package api exposes the policy engine over HTTP to privileged-action
// services. Every endpoint returns the engine's verdict as-is; there is no
// override path.
package api

import (
	"github.com/wardenhq/warden/internal/audit"
)

// CheckRequest is the body for POST /check.
type CheckRequest struct {
	Command string `json:"command"`
	Kind    string `json:"kind"`
}

// CheckResponse is the verdict for a command or file check.
type CheckResponse struct {
	Allowed bool `json:"allowed"`
}

// FileCheckRequest is the body for POST /files/check.
type FileCheckRequest struct {
	Path      string `json:"path"`
	Operation string `json:"operation"`
}

// SanitizeRequest is the body for POST /sanitize.
type SanitizeRequest struct {
	Text string `json:"text"`
}

// SanitizeResponse carries the sanitized text.
type SanitizeResponse struct {
	Text string `json:"text"`
}

// TokenCreateRequest is the body for POST /tokens.
type TokenCreateRequest struct {
	Claims     map[string]any `json:"claims"`
	TTLSeconds int64          `json:"ttl_seconds,omitempty"`
}

// TokenCreateResponse carries the signed token.
type TokenCreateResponse struct {
	Token string `json:"token"`
}

// TokenVerifyRequest is the body for POST /tokens/verify.
type TokenVerifyRequest struct {
	Token string `json:"token"`
}

// TokenVerifyResponse carries the verified claims.
type TokenVerifyResponse struct {
	Claims map[string]any `json:"claims"`
}

// PasswordHashRequest is the body for POST /passwords/hash.
type PasswordHashRequest struct {
	Password string `json:"password"`
}

// PasswordHashResponse carries the password hash.
type PasswordHashResponse struct {
	Hash string `json:"hash"`
}

// PasswordVerifyRequest is the body for POST /passwords/verify.
type PasswordVerifyRequest struct {
	Password string `json:"password"`
	Hash     string `json:"hash"`
}

// PasswordVerifyResponse reports whether the password matched.
type PasswordVerifyResponse struct {
	Valid bool `json:"valid"`
}

// EventRequest is the body for POST /events.
type EventRequest struct {
	EventType string `json:"event_type"`
	Details   string `json:"details"`
	Severity  string `json:"severity"`
}

// EventListResponse is the response for GET /events.
type EventListResponse struct {
	Events []audit.Event `json:"events"`
	Total  int           `json:"total"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}
