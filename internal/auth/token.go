package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/domain"
)

// DefaultAccessTokenTTL is used when no positive TTL is configured.
const DefaultAccessTokenTTL = 15 * time.Minute

// ErrEmptySecret is returned when a TokenManager is built without a signing secret.
var ErrEmptySecret = errors.New("token signing secret is empty")

// TokenManager handles issuing and validating HS256 JWT access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a new manager. A missing secret is an error; there is no fallback.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Claims describes the JWT payload. The user id travels in "sub".
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the subject the token was issued for.
func (c *Claims) UserID() string {
	return c.Subject
}

// Issue signs a token for userID valid for the default TTL.
func (tm *TokenManager) Issue(userID string) (*domain.Token, error) {
	return tm.IssueWithTTL(userID, tm.ttl)
}

// IssueWithTTL signs a token for userID expiring ttl from now. A zero or
// negative ttl produces a token that is already expired. Both timestamps are
// truncated to the claim resolution so ExpiresAt is the exact cutoff.
func (tm *TokenManager) IssueWithTTL(userID string, ttl time.Duration) (*domain.Token, error) {
	issuedAt := tm.now().Truncate(jwt.TimePrecision)
	expiresAt := issuedAt.Add(ttl).Truncate(jwt.TimePrecision)
	tokenID := uuid.NewString()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tm.secret)
	if err != nil {
		return nil, err
	}
	return &domain.Token{
		ID:        tokenID,
		UserID:    userID,
		Value:     tokenString,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Validate checks signature and expiry and returns the claims. A token is
// still valid at the instant of its exp and expired strictly after it.
// Expired tokens yield domain.ErrTokenExpired; every other failure,
// tampered or malformed, yields domain.ErrInvalidToken.
func (tm *TokenManager) Validate(tokenStr string) (*Claims, error) {
	// exp is checked below; jwt's own check treats now == exp as expired.
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrInvalidToken
	}
	if tm.now().After(claims.ExpiresAt.Time) {
		return nil, domain.ErrTokenExpired
	}
	return claims, nil
}
