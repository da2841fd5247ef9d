package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-signing-secret-of-at-least-32-bytes"

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	_, err := NewTokenService(TokenConfig{})
	require.Error(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "too-short"})
	require.Error(t, err)
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewTokenService(TokenConfig{Secret: testSecret, TTL: time.Hour, Clock: now})
	require.NoError(t, err)

	token, err := svc.Issue("admin@akademi.org", "ADMIN")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "admin@akademi.org", claims.Subject)
	require.Equal(t, "ADMIN", claims.Role)
	require.True(t, claims.IssuedAt.Time.Equal(current))
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(time.Hour)))
}

func TestIssueRequiresSubject(t *testing.T) {
	svc, err := NewTokenService(TokenConfig{Secret: testSecret})
	require.NoError(t, err)

	_, err = svc.Issue("", "ADMIN")
	require.Error(t, err)
}

func TestDefaultTTLIsTwentyFourHours(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewTokenService(TokenConfig{Secret: testSecret, Clock: now})
	require.NoError(t, err)

	token, err := svc.Issue("user@akademi.org", "TRAINER")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	require.True(t, claims.ExpiresAt.Time.Equal(current.Add(24*time.Hour)))
}

func TestValidateExpiredToken(t *testing.T) {
	current := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewTokenService(TokenConfig{Secret: testSecret, TTL: time.Minute, Clock: now})
	require.NoError(t, err)

	token, err := svc.Issue("user@akademi.org", "RESPONSIBLE")
	require.NoError(t, err)

	// One millisecond past expiry is already invalid.
	current = current.Add(time.Minute + time.Millisecond)

	_, err = svc.Validate(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestValidateTamperedSignature(t *testing.T) {
	svc, err := NewTokenService(TokenConfig{Secret: testSecret, TTL: time.Hour})
	require.NoError(t, err)

	token, err := svc.Issue("user@akademi.org", "ADMIN")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	// Flip one byte of the signature segment.
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.Validate(tampered)
	require.Error(t, err)
}

func TestValidateWrongKey(t *testing.T) {
	issuer, err := NewTokenService(TokenConfig{Secret: testSecret, TTL: time.Hour})
	require.NoError(t, err)

	verifier, err := NewTokenService(TokenConfig{Secret: "another-signing-secret-of-32-bytes!!", TTL: time.Hour})
	require.NoError(t, err)

	token, err := issuer.Issue("user@akademi.org", "ADMIN")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestValidateMissingRoleClaimIsDistinct(t *testing.T) {
	svc, err := NewTokenService(TokenConfig{Secret: testSecret, TTL: time.Hour})
	require.NoError(t, err)

	token, err := svc.Issue("user@akademi.org", "")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.ErrorIs(t, err, ErrMissingRoleClaim)
	// Signature and expiry were accepted; the claims are still surfaced so
	// callers can decide what to do with the incomplete authentication.
	require.NotNil(t, claims)
	require.Equal(t, "user@akademi.org", claims.Subject)
}
