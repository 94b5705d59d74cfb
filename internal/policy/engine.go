// Package policy implements the engine every privileged-action path must
// consult before executing anything on the host.
//
// Commands matching no rule at all are allowed; the deny patterns, keyword
// heuristics, path checks, and rate limiter run first and each denial is
// recorded in the audit log before it is returned.
package policy

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wardenhq/warden/internal/audit"
	"github.com/wardenhq/warden/internal/config"
	"github.com/wardenhq/warden/internal/pathsafe"
	"github.com/wardenhq/warden/internal/password"
	"github.com/wardenhq/warden/internal/ratelimit"
	"github.com/wardenhq/warden/internal/rules"
	"github.com/wardenhq/warden/internal/token"
)

const maxInputLength = 1000

// forbiddenInputChars are stripped by SanitizeInput.
const forbiddenInputChars = `<>"';\`

// Engine is the policy facade. Construct one per process (or per test) and
// share it by reference; it holds all mutable state, there are no globals.
type Engine struct {
	matcher   *rules.Matcher
	paths     *pathsafe.Checker
	limiter   *ratelimit.Limiter
	tokens    *token.Service
	passwords *password.Hasher
	log       *audit.Log
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*options)

type options struct {
	clock        func() time.Time
	auditOptions []audit.Option
}

// WithClock sets a shared clock for the limiter, audit log, and token
// service (for testing).
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// WithAuditOptions forwards options to the audit log.
func WithAuditOptions(opts ...audit.Option) Option {
	return func(o *options) { o.auditOptions = append(o.auditOptions, opts...) }
}

// New builds an Engine from validated configuration. All pattern lists are
// compiled here, once.
func New(cfg *config.Config, opts ...Option) (*Engine, error) {
	o := &options{clock: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(o)
	}

	matcher, err := rules.NewMatcher(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("failed to build command matcher: %w", err)
	}

	auditOpts := append([]audit.Option{audit.WithClock(o.clock)}, o.auditOptions...)

	return &Engine{
		matcher:   matcher,
		paths:     pathsafe.NewChecker(cfg.Files),
		limiter:   ratelimit.NewWithClock(cfg.RateLimit.MaxCommandsPerMinute, o.clock),
		tokens:    token.NewWithClock(cfg.Auth.SigningKey, time.Duration(cfg.Auth.TokenTTL), o.clock),
		passwords: password.New(cfg.Auth.BcryptCost),
		log:       audit.NewLog(cfg.Audit.MaxEvents, auditOpts...),
		now:       o.clock,
	}, nil
}

// IsCommandSafe decides whether a command may run. Checks short-circuit in a
// fixed order: deny patterns, dangerous keywords, protected roots, path
// traversal, rate limit, allow-list, then default allow.
func (e *Engine) IsCommandSafe(command string, kind rules.CommandKind) bool {
	if pattern, matched := e.matcher.MatchDeny(command); matched {
		e.log.Record("dangerous_command",
			fmt.Sprintf("blocked %q: matched deny pattern %q", command, pattern),
			audit.SeverityCritical)
		return false
	}

	if keyword, matched := e.matcher.MatchKeyword(command); matched {
		e.log.Record("dangerous_command",
			fmt.Sprintf("blocked %q: contains keyword %q", command, keyword),
			audit.SeverityCritical)
		return false
	}

	if root, matched := e.matcher.MatchProtectedRoot(command); matched {
		e.log.Record("protected_path_command",
			fmt.Sprintf("blocked %q: destructive operation on %q", command, root),
			audit.SeverityWarning)
		return false
	}

	if pathsafe.HasTraversal(command) {
		e.log.Record("path_traversal",
			fmt.Sprintf("blocked %q: path traversal attempt", command),
			audit.SeverityWarning)
		return false
	}

	if !e.limiter.Allow() {
		e.log.Record("rate_limit_exceeded",
			fmt.Sprintf("blocked %q: command rate limit reached", command),
			audit.SeverityWarning)
		return false
	}

	if e.matcher.Allowed(kind, command) {
		e.log.Record("command_approved",
			fmt.Sprintf("allowed %q: on %s allow-list", command, kind),
			audit.SeverityInfo)
		return true
	}

	// Unclassified simple commands are allowed once every check above has
	// passed.
	e.log.Record("command_approved",
		fmt.Sprintf("allowed %q: no rule matched", command),
		audit.SeverityInfo)
	return true
}

// CheckFileSafety decides whether a file operation may run.
func (e *Engine) CheckFileSafety(path string, op pathsafe.Operation) bool {
	safe, reason := e.paths.Check(path, op)
	if !safe {
		e.log.Record("unsafe_file_operation",
			fmt.Sprintf("blocked %s of %q: %s", op, path, reason),
			audit.SeverityWarning)
	}
	return safe
}

// SanitizeInput strips forbidden characters, truncates to the maximum input
// length, and trims surrounding whitespace. Applying it twice yields the
// same result as applying it once.
func (e *Engine) SanitizeInput(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenInputChars, r) {
			return -1
		}
		return r
	}, text)

	if utf8.RuneCountInString(cleaned) > maxInputLength {
		runes := []rune(cleaned)
		cleaned = string(runes[:maxInputLength])
	}
	return strings.TrimSpace(cleaned)
}

// CreateAccessToken issues a signed session token. A non-positive ttl uses
// the configured default.
func (e *Engine) CreateAccessToken(claims map[string]any, ttl time.Duration) (string, error) {
	return e.tokens.Create(claims, ttl)
}

// VerifyToken verifies a session token and returns its claims. Fails with
// token.ErrExpired or token.ErrInvalid.
func (e *Engine) VerifyToken(tok string) (map[string]any, error) {
	return e.tokens.Verify(tok)
}

// HashPassword hashes a password with the configured cost.
func (e *Engine) HashPassword(plain string) (string, error) {
	return e.passwords.Hash(plain)
}

// VerifyPassword reports whether plain matches the stored hash.
func (e *Engine) VerifyPassword(plain, hash string) bool {
	return e.passwords.Verify(plain, hash)
}

// LogSecurityEvent appends an event to the audit log on behalf of a caller.
func (e *Engine) LogSecurityEvent(eventType, details string, severity audit.Severity) {
	e.log.Record(eventType, details, severity)
}

// Events returns a paginated snapshot of the audit log.
func (e *Engine) Events(offset, limit int) ([]audit.Event, int) {
	return e.log.List(offset, limit)
}
