// Package rules classifies command strings against deny patterns,
// dangerous-keyword heuristics, and per-kind allow-lists.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wardenhq/warden/internal/config"
)

// CommandKind categorizes the surface a command targets.
type CommandKind string

const (
	KindSystem      CommandKind = "system"
	KindFile        CommandKind = "file"
	KindProcess     CommandKind = "process"
	KindApplication CommandKind = "application"
)

// ParseKind validates a kind string.
func ParseKind(s string) (CommandKind, error) {
	switch CommandKind(strings.ToLower(s)) {
	case KindSystem:
		return KindSystem, nil
	case KindFile:
		return KindFile, nil
	case KindProcess:
		return KindProcess, nil
	case KindApplication:
		return KindApplication, nil
	}
	return "", fmt.Errorf("unknown command kind %q", s)
}

// denyPattern pairs a compiled matcher with its source pattern for audit
// messages.
type denyPattern struct {
	source string
	regex  *regexp.Regexp
}

// Matcher evaluates commands against precompiled pattern sets.
// All state is immutable after construction, so it is safe for concurrent
// use without locking.
type Matcher struct {
	deny           []denyPattern
	keywords       []string
	protectedRoots []string
	allow          map[CommandKind]map[string]struct{}
	allowTotal     int
}

// NewMatcher compiles a Matcher from configuration. Patterns are compiled
// once here and shared read-only across all calls.
func NewMatcher(cfg config.RulesConfig) (*Matcher, error) {
	m := &Matcher{
		keywords: make([]string, len(cfg.DangerousKeywords)),
		allow:    make(map[CommandKind]map[string]struct{}),
	}

	for _, pattern := range cfg.DenyPatterns {
		regex, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile deny pattern %q: %w", pattern, err)
		}
		m.deny = append(m.deny, denyPattern{source: pattern, regex: regex})
	}

	for i, kw := range cfg.DangerousKeywords {
		m.keywords[i] = strings.ToLower(kw)
	}

	m.protectedRoots = make([]string, len(cfg.ProtectedRoots))
	for i, root := range cfg.ProtectedRoots {
		m.protectedRoots[i] = strings.ToLower(root)
	}

	for kindStr, cmds := range cfg.AllowCommands {
		kind, err := ParseKind(kindStr)
		if err != nil {
			return nil, fmt.Errorf("allow_commands: %w", err)
		}
		set := make(map[string]struct{}, len(cmds))
		for _, cmd := range cmds {
			set[strings.ToLower(cmd)] = struct{}{}
		}
		m.allow[kind] = set
		m.allowTotal += len(set)
	}

	return m, nil
}

// MatchDeny returns the first deny pattern that matches the command, if any.
func (m *Matcher) MatchDeny(command string) (pattern string, matched bool) {
	lower := strings.ToLower(strings.TrimSpace(command))
	for _, dp := range m.deny {
		if dp.regex.MatchString(lower) {
			return dp.source, true
		}
	}
	return "", false
}

// MatchKeyword returns the first dangerous keyword contained in the command,
// if any. This is a broader substring heuristic, independent of the regex set.
func (m *Matcher) MatchKeyword(command string) (keyword string, matched bool) {
	lower := strings.ToLower(command)
	for _, kw := range m.keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// MatchProtectedRoot reports whether the command references a protected
// system root together with a destructive verb.
func (m *Matcher) MatchProtectedRoot(command string) (root string, matched bool) {
	lower := strings.ToLower(command)
	for _, protected := range m.protectedRoots {
		if !strings.Contains(lower, protected) {
			continue
		}
		for _, action := range destructiveVerbs {
			if strings.Contains(lower, action) {
				return protected, true
			}
		}
	}
	return "", false
}

var destructiveVerbs = []string{"delete", "remove", "rm", "del"}

// Allowed reports whether the command's first token is on the allow-list for
// the given kind.
func (m *Matcher) Allowed(kind CommandKind, command string) bool {
	fields := strings.Fields(strings.ToLower(command))
	if len(fields) == 0 {
		return false
	}
	set, ok := m.allow[kind]
	if !ok {
		return false
	}
	_, ok = set[fields[0]]
	return ok
}

// DenyCount returns the number of compiled deny patterns.
func (m *Matcher) DenyCount() int { return len(m.deny) }

// AllowCount returns the total number of allow-listed commands across kinds.
func (m *Matcher) AllowCount() int { return m.allowTotal }
