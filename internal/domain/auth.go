package domain

import "time"

// TokenType is the scheme returned alongside issued access tokens.
const TokenType = "bearer"

// Token describes an issued access token. It is never persisted.
type Token struct {
	ID        string
	UserID    string
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
