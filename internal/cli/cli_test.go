package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// execute runs the root command with args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCheckCommand(t *testing.T) {
	out, err := execute(t, "check", "dir", "--kind", "system")
	if err != nil {
		t.Fatalf("check dir: %v", err)
	}
	if !strings.Contains(out, "allowed") {
		t.Errorf("expected 'allowed', got %q", out)
	}

	out, err = execute(t, "check", "rm -rf /", "--kind", "system")
	var exitErr *ExitCodeError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("expected exit code 1 for denied command, got %v", err)
	}
	if !strings.Contains(out, "denied") {
		t.Errorf("expected 'denied', got %q", out)
	}
}

func TestCheckCommand_BadKind(t *testing.T) {
	_, err := execute(t, "check", "dir", "--kind", "network")
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestFileCheckCommand(t *testing.T) {
	_, err := execute(t, "filecheck", "/tmp/notes.txt", "--op", "write")
	if err != nil {
		t.Fatalf("filecheck: %v", err)
	}

	_, err = execute(t, "filecheck", `C:\Windows\System32\evil.dll`, "--op", "delete")
	var exitErr *ExitCodeError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected denial exit code, got %v", err)
	}
}

func TestSanitizeCommand(t *testing.T) {
	out, err := execute(t, "sanitize", `hello <world>;`)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if !strings.Contains(out, "hello world") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestTokenRoundTripCommands(t *testing.T) {
	t.Setenv("WARDEN_SIGNING_KEY", "cli-test-key")

	out, err := execute(t, "token", "create", "--claim", "user=alice", "--ttl", "1m")
	if err != nil {
		t.Fatalf("token create: %v", err)
	}
	tok := strings.TrimSpace(out)
	if tok == "" {
		t.Fatal("expected a token on stdout")
	}

	out, err = execute(t, "token", "verify", tok)
	if err != nil {
		t.Fatalf("token verify: %v", err)
	}
	if !strings.Contains(out, `"user": "alice"`) {
		t.Errorf("expected claims output, got %q", out)
	}

	if _, err := execute(t, "token", "verify", "garbage"); err == nil {
		t.Error("expected error verifying garbage token")
	}
}

func TestHashCommand(t *testing.T) {
	out, err := execute(t, "hash", "hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "$2") {
		t.Errorf("expected bcrypt hash, got %q", out)
	}
}

func TestReportCommand(t *testing.T) {
	out, err := execute(t, "report")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, `"security_level": "high"`) {
		t.Errorf("expected report JSON, got %q", out)
	}
}
