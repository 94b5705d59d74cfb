// Package pathsafe guards file operations against protected system paths,
// dangerous executable extensions, and path traversal.
package pathsafe

import (
	"regexp"
	"strings"

	"github.com/wardenhq/warden/internal/config"
)

// Operation is the kind of file operation being checked.
type Operation string

const (
	OpDelete  Operation = "delete"
	OpModify  Operation = "modify"
	OpWrite   Operation = "write"
	OpExecute Operation = "execute"
)

// traversalPatterns cover relative escapes and their URL-encoded variants.
var traversalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\.\.[\\/]`),
	regexp.MustCompile(`(?i)%2e%2e[\\/]`),
	regexp.MustCompile(`(?i)\.\.%2f`),
	regexp.MustCompile(`(?i)\.\.%5c`),
}

// Checker validates file operations against configured protected paths and
// extension sets. Immutable after construction.
type Checker struct {
	protected  []string
	extensions map[string]struct{}
}

// NewChecker builds a Checker from configuration.
func NewChecker(cfg config.FilesConfig) *Checker {
	c := &Checker{
		protected:  make([]string, len(cfg.ProtectedPaths)),
		extensions: make(map[string]struct{}, len(cfg.DangerousExtensions)),
	}
	for i, p := range cfg.ProtectedPaths {
		c.protected[i] = strings.ToLower(p)
	}
	for _, ext := range cfg.DangerousExtensions {
		c.extensions[strings.ToLower(ext)] = struct{}{}
	}
	return c
}

// Check reports whether the operation on path is safe, along with the reason
// when it is not. Unknown operations are allowed; only the listed mutating
// and execute operations are restricted.
func (c *Checker) Check(path string, op Operation) (safe bool, reason string) {
	lower := strings.ToLower(path)

	switch op {
	case OpDelete, OpModify, OpWrite:
		for _, protected := range c.protected {
			if strings.HasPrefix(lower, protected) {
				return false, "protected path " + protected
			}
		}
	case OpExecute:
		if ext := extension(lower); ext != "" {
			if _, ok := c.extensions[ext]; ok {
				return false, "dangerous extension " + ext
			}
		}
	}

	return true, ""
}

// HasTraversal reports whether the string contains a path traversal attempt.
func HasTraversal(s string) bool {
	for _, pattern := range traversalPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// ProtectedCount returns the number of protected path prefixes.
func (c *Checker) ProtectedCount() int { return len(c.protected) }

// extension returns the trailing ".ext" of a path, or "" if there is none.
func extension(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	ext := path[idx:]
	if strings.ContainsAny(ext, `\/`) {
		return ""
	}
	return ext
}
