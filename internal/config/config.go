// Package config loads and validates the warden policy configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Config is the full warden configuration. It is loaded once at startup and
// never mutated afterwards.
type Config struct {
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Rules     RulesConfig     `yaml:"rules"`
	Files     FilesConfig     `yaml:"files"`
	Audit     AuditConfig     `yaml:"audit"`
}

// AuthConfig holds token and password settings.
type AuthConfig struct {
	SigningKey string   `yaml:"signing_key"` // empty means generate at startup
	TokenTTL   Duration `yaml:"token_ttl"`
	BcryptCost int      `yaml:"bcrypt_cost"`
}

// RateLimitConfig bounds how many commands may be admitted per minute.
type RateLimitConfig struct {
	MaxCommandsPerMinute int `yaml:"max_commands_per_minute"`
}

// RulesConfig holds the command classification lists.
type RulesConfig struct {
	DenyPatterns      []string            `yaml:"deny_patterns"`
	DangerousKeywords []string            `yaml:"dangerous_keywords"`
	ProtectedRoots    []string            `yaml:"protected_roots"`
	AllowCommands     map[string][]string `yaml:"allow_commands"`
}

// FilesConfig holds the file-operation safety lists.
type FilesConfig struct {
	ProtectedPaths      []string `yaml:"protected_paths"`
	DangerousExtensions []string `yaml:"dangerous_extensions"`
}

// AuditConfig bounds the in-memory audit log.
type AuditConfig struct {
	MaxEvents int `yaml:"max_events"`
}

// Duration wraps time.Duration so YAML values like "24h" parse directly.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// LoadFile reads a YAML config file, substitutes ${ENV_VAR} references, and
// validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses YAML bytes into a validated Config.
func LoadBytes(data []byte) (*Config, error) {
	content := envVarRegex.ReplaceAllStringFunc(string(data), func(match string) string {
		varName := match[2 : len(match)-1]
		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match
	})

	var cfg Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects malformed configuration rather than silently ignoring it.
func (c *Config) Validate() error {
	if c.RateLimit.MaxCommandsPerMinute <= 0 {
		return fmt.Errorf("rate_limit.max_commands_per_minute must be positive, got %d", c.RateLimit.MaxCommandsPerMinute)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", time.Duration(c.Auth.TokenTTL))
	}
	if c.Auth.BcryptCost < 0 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost out of range: %d", c.Auth.BcryptCost)
	}
	if c.Audit.MaxEvents < 0 {
		return fmt.Errorf("audit.max_events must not be negative, got %d", c.Audit.MaxEvents)
	}
	for i, pattern := range c.Rules.DenyPatterns {
		if pattern == "" {
			return fmt.Errorf("rules.deny_patterns[%d] is empty", i)
		}
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return fmt.Errorf("rules.deny_patterns[%d] %q does not compile: %w", i, pattern, err)
		}
	}
	for i, kw := range c.Rules.DangerousKeywords {
		if kw == "" {
			return fmt.Errorf("rules.dangerous_keywords[%d] is empty", i)
		}
	}
	for kind, cmds := range c.Rules.AllowCommands {
		if kind == "" {
			return fmt.Errorf("rules.allow_commands has an empty kind key")
		}
		for i, cmd := range cmds {
			if cmd == "" {
				return fmt.Errorf("rules.allow_commands[%s][%d] is empty", kind, i)
			}
		}
	}
	for i, p := range c.Files.ProtectedPaths {
		if p == "" {
			return fmt.Errorf("files.protected_paths[%d] is empty", i)
		}
	}
	for i, ext := range c.Files.DangerousExtensions {
		if ext == "" || ext[0] != '.' {
			return fmt.Errorf("files.dangerous_extensions[%d] %q must start with a dot", i, ext)
		}
	}
	return nil
}
