// Package token issues and verifies signed session tokens.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures callers must distinguish.
var (
	// ErrExpired means the token was well formed and correctly signed but is
	// past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrInvalid means the signature did not verify or the payload is
	// malformed.
	ErrInvalid = errors.New("token invalid")
)

// Service signs and verifies HS256 tokens with a fixed process-wide key.
// Stateless aside from the key; safe for concurrent use.
type Service struct {
	key        []byte
	defaultTTL time.Duration
	now        func() time.Time
}

// New creates a token Service. An empty key generates a random one, which
// means tokens do not survive a restart.
func New(key string, defaultTTL time.Duration) *Service {
	return NewWithClock(key, defaultTTL, time.Now)
}

// NewWithClock creates a Service with a custom clock (for testing).
func NewWithClock(key string, defaultTTL time.Duration, now func() time.Time) *Service {
	if now == nil {
		panic("token: nil clock")
	}
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	keyBytes := []byte(key)
	if len(keyBytes) == 0 {
		keyBytes = randomKey()
	}
	return &Service{key: keyBytes, defaultTTL: defaultTTL, now: now}
}

// Create signs the claims into a token expiring after ttl. A non-positive ttl
// uses the service default.
func (s *Service) Create(claims map[string]any, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := s.now()
	mapClaims := make(jwt.MapClaims, len(claims)+2)
	for k, v := range claims {
		mapClaims[k] = v
	}
	mapClaims["iat"] = jwt.NewNumericDate(now)
	mapClaims["exp"] = jwt.NewNumericDate(now.Add(ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mapClaims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the claims.
// Returns ErrExpired or ErrInvalid; callers branch with errors.Is.
func (s *Service) Verify(tokenString string) (map[string]any, error) {
	parsed, err := jwt.Parse(tokenString,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return s.key, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	return map[string]any(claims), nil
}

func randomKey() []byte {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("token: failed to generate signing key: %v", err))
	}
	key := make([]byte, base64.RawURLEncoding.EncodedLen(len(buf)))
	base64.RawURLEncoding.Encode(key, buf)
	return key
}
