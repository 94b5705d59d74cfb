package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := NewWithClock("test-key", time.Hour, func() time.Time { return now })

	tok, err := svc.Create(map[string]any{"user": "alice", "role": "admin"}, time.Minute)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	claims, err := svc.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims["user"] != "alice" {
		t.Errorf("expected user claim 'alice', got %v", claims["user"])
	}
	if claims["role"] != "admin" {
		t.Errorf("expected role claim 'admin', got %v", claims["role"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Error("expected exp claim to be embedded")
	}
}

func TestVerify_Expired(t *testing.T) {
	current := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := NewWithClock("test-key", time.Hour, func() time.Time { return current })

	tok, err := svc.Create(map[string]any{"user": "alice"}, time.Minute)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	current = current.Add(2 * time.Minute)
	_, err = svc.Verify(tok)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired, got %v", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := NewWithClock("test-key", time.Hour, func() time.Time { return now })

	tok, err := svc.Create(map[string]any{"user": "alice"}, time.Minute)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Flip a character in the signature segment.
	parts := strings.Split(tok, ".")
	sig := parts[2]
	if sig[0] == 'A' {
		parts[2] = "B" + sig[1:]
	} else {
		parts[2] = "A" + sig[1:]
	}
	tampered := strings.Join(parts, ".")

	_, err = svc.Verify(tampered)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	svc := New("test-key", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(tok); !errors.Is(err, ErrInvalid) {
			t.Errorf("Verify(%q) expected ErrInvalid, got %v", tok, err)
		}
	}
}

func TestVerify_WrongKey(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	issuer := NewWithClock("key-one", time.Hour, clock)
	verifier := NewWithClock("key-two", time.Hour, clock)

	tok, err := issuer.Create(map[string]any{"user": "alice"}, time.Minute)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := verifier.Verify(tok); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid across keys, got %v", err)
	}
}

func TestCreate_DefaultTTL(t *testing.T) {
	current := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	svc := NewWithClock("test-key", time.Hour, func() time.Time { return current })

	tok, err := svc.Create(map[string]any{"user": "alice"}, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Still valid just before the default TTL elapses, expired just after.
	current = current.Add(59 * time.Minute)
	if _, err := svc.Verify(tok); err != nil {
		t.Errorf("expected valid before default TTL, got %v", err)
	}
	current = current.Add(2 * time.Minute)
	if _, err := svc.Verify(tok); !errors.Is(err, ErrExpired) {
		t.Errorf("expected ErrExpired after default TTL, got %v", err)
	}
}

func TestRandomKeyWhenUnset(t *testing.T) {
	svc := New("", time.Hour)
	tok, err := svc.Create(map[string]any{"user": "alice"}, time.Minute)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Verify(tok); err != nil {
		t.Errorf("round trip with generated key failed: %v", err)
	}
}
