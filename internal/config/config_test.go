package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.RateLimit.MaxCommandsPerMinute != 20 {
		t.Errorf("expected max_commands_per_minute 20, got %d", cfg.RateLimit.MaxCommandsPerMinute)
	}
	if time.Duration(cfg.Auth.TokenTTL) != 24*time.Hour {
		t.Errorf("expected token_ttl 24h, got %s", time.Duration(cfg.Auth.TokenTTL))
	}
	if len(cfg.Rules.DenyPatterns) == 0 {
		t.Error("expected non-empty deny_patterns")
	}
	if len(cfg.Rules.AllowCommands["system"]) == 0 {
		t.Error("expected system allow commands")
	}
	if len(cfg.Files.ProtectedPaths) == 0 {
		t.Error("expected protected_paths")
	}
}

func TestLoadBytes_EnvSubstitution(t *testing.T) {
	t.Setenv("WARDEN_TEST_KEY", "supersecret")

	yaml := `
auth:
  signing_key: "${WARDEN_TEST_KEY}"
  token_ttl: 1h
  bcrypt_cost: 10
rate_limit:
  max_commands_per_minute: 5
`
	cfg, err := LoadBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if cfg.Auth.SigningKey != "supersecret" {
		t.Errorf("expected substituted signing key, got %q", cfg.Auth.SigningKey)
	}
}

func TestLoadBytes_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "zero rate limit",
			yaml: `
auth: {token_ttl: 1h}
rate_limit: {max_commands_per_minute: 0}
`,
			wantErr: "max_commands_per_minute",
		},
		{
			name: "missing ttl",
			yaml: `
rate_limit: {max_commands_per_minute: 10}
`,
			wantErr: "token_ttl",
		},
		{
			name: "bad deny pattern",
			yaml: `
auth: {token_ttl: 1h}
rate_limit: {max_commands_per_minute: 10}
rules:
  deny_patterns: ['[unclosed']
`,
			wantErr: "does not compile",
		},
		{
			name: "bad extension",
			yaml: `
auth: {token_ttl: 1h}
rate_limit: {max_commands_per_minute: 10}
files:
  dangerous_extensions: [exe]
`,
			wantErr: "must start with a dot",
		},
		{
			name: "empty keyword",
			yaml: `
auth: {token_ttl: 1h}
rate_limit: {max_commands_per_minute: 10}
rules:
  dangerous_keywords: ['']
`,
			wantErr: "dangerous_keywords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDurationUnmarshal(t *testing.T) {
	yaml := `
auth:
  token_ttl: 90m
  bcrypt_cost: 4
rate_limit:
  max_commands_per_minute: 1
`
	cfg, err := LoadBytes([]byte(yaml))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if time.Duration(cfg.Auth.TokenTTL) != 90*time.Minute {
		t.Errorf("expected 90m, got %s", time.Duration(cfg.Auth.TokenTTL))
	}

	bad := `
auth:
  token_ttl: soon
rate_limit:
  max_commands_per_minute: 1
`
	if _, err := LoadBytes([]byte(bad)); err == nil {
		t.Error("expected error for unparseable duration")
	}
}
