package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

func newTestManager(t *testing.T, secret string) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(secret, time.Hour)
	require.NoError(t, err)
	return tm
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Minute)
	assert.ErrorIs(t, err, ErrEmptySecret)
}

func TestIssueAndValidate(t *testing.T) {
	tm := newTestManager(t, "super-secret")

	tok, err := tm.IssueWithTTL("user-123", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.ID)
	assert.Equal(t, "user-123", tok.UserID)
	assert.WithinDuration(t, tok.IssuedAt.Add(time.Hour), tok.ExpiresAt, time.Millisecond)

	claims, err := tm.Validate(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, tok.ID, claims.ID)
}

func TestIssueUsesDefaultTTL(t *testing.T) {
	tm, err := NewTokenManager("secret", 0)
	require.NoError(t, err)

	tok, err := tm.Issue("u1")
	require.NoError(t, err)
	assert.Equal(t, DefaultAccessTokenTTL, tok.ExpiresAt.Sub(tok.IssuedAt))
}

func TestExpiresAtMatchesExpClaim(t *testing.T) {
	tm := newTestManager(t, "secret")
	issued := time.Date(2026, 1, 1, 12, 0, 0, 900_000_000, time.UTC)
	tm.now = func() time.Time { return issued }

	tok, err := tm.IssueWithTTL("u1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 12, 1, 0, 0, time.UTC), tok.ExpiresAt.UTC())

	var claims Claims
	_, _, err = jwt.NewParser().ParseUnverified(tok.Value, &claims)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, tok.ExpiresAt.Equal(claims.ExpiresAt.Time))

	for _, at := range []time.Time{tok.ExpiresAt.Add(-500 * time.Millisecond), tok.ExpiresAt} {
		tm.now = func() time.Time { return at }
		_, err = tm.Validate(tok.Value)
		assert.NoError(t, err, "validated at %s", at)
	}

	tm.now = func() time.Time { return tok.ExpiresAt.Add(time.Nanosecond) }
	_, err = tm.Validate(tok.Value)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestValidateZeroTTLIsExpired(t *testing.T) {
	tm := newTestManager(t, "secret")

	tok, err := tm.IssueWithTTL("u1", 0)
	require.NoError(t, err)

	_, err = tm.Validate(tok.Value)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestValidateExpiresWithClock(t *testing.T) {
	tm := newTestManager(t, "secret")
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return issued }

	tok, err := tm.IssueWithTTL("u1", time.Minute)
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(59 * time.Second) }
	_, err = tm.Validate(tok.Value)
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(61 * time.Second) }
	_, err = tm.Validate(tok.Value)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestValidateMalformed(t *testing.T) {
	tm := newTestManager(t, "secret")

	for _, raw := range []string{"not-a-token", "", "not.a.jwt", "a.b"} {
		_, err := tm.Validate(raw)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, "token %q", raw)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	tok, err := newTestManager(t, "right-secret").IssueWithTTL("u2", time.Hour)
	require.NoError(t, err)

	_, err = newTestManager(t, "wrong-secret").Validate(tok.Value)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestValidateExpiredWithWrongSecretIsInvalid(t *testing.T) {
	tok, err := newTestManager(t, "right-secret").IssueWithTTL("u2", -time.Hour)
	require.NoError(t, err)

	_, err = newTestManager(t, "wrong-secret").Validate(tok.Value)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestValidateTamperedPayload(t *testing.T) {
	tm := newTestManager(t, "secret")
	tok, err := tm.IssueWithTTL("u1", time.Hour)
	require.NoError(t, err)

	other, err := tm.IssueWithTTL("u2", time.Hour)
	require.NoError(t, err)

	parts := strings.Split(tok.Value, ".")
	otherParts := strings.Split(other.Value, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err = tm.Validate(forged)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	tm := newTestManager(t, "secret")

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tm.Validate(none)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.Validate(hs512)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestValidateRequiresExpiryAndSubject(t *testing.T) {
	tm := newTestManager(t, "secret")

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "u1",
	}}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.Validate(noExp)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = tm.Validate(noSub)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
