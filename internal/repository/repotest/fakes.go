// Package repotest provides in-memory repository fakes for tests.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
)

var (
	_ repository.UserRepository         = (*Users)(nil)
	_ repository.LoginAttemptRepository = (*LoginAttempts)(nil)
)

// Users is an in-memory UserRepository that enforces unique usernames.
type Users struct {
	mu    sync.Mutex
	byKey map[string]domain.User
	// Err, when set, is returned from every call wrapped in ErrStoreUnavailable.
	Err error
}

// NewUsers returns an empty store.
func NewUsers() *Users {
	return &Users{byKey: map[string]domain.User{}}
}

func (u *Users) Create(_ context.Context, user *domain.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, u.Err)
	}
	if _, exists := u.byKey[user.Username]; exists {
		return domain.ErrUsernameTaken
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	u.byKey[user.Username] = *user
	return nil
}

func (u *Users) FindByUsername(_ context.Context, username string) (*domain.User, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, false, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, u.Err)
	}
	user, ok := u.byKey[username]
	if !ok {
		return nil, false, nil
	}
	return &user, true, nil
}

// Get returns the stored record for assertions.
func (u *Users) Get(username string) (domain.User, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.byKey[username]
	return user, ok
}

// LoginAttempts is an in-memory LoginAttemptRepository that ignores the window.
type LoginAttempts struct {
	mu     sync.Mutex
	counts map[string]int64
	Err    error
}

// NewLoginAttempts returns an empty counter store.
func NewLoginAttempts() *LoginAttempts {
	return &LoginAttempts{counts: map[string]int64{}}
}

func (l *LoginAttempts) Failures(_ context.Context, username string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return 0, l.Err
	}
	return l.counts[username], nil
}

func (l *LoginAttempts) RecordFailure(_ context.Context, username string, _ time.Duration) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return 0, l.Err
	}
	l.counts[username]++
	return l.counts[username], nil
}

func (l *LoginAttempts) Reset(_ context.Context, username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	delete(l.counts, username)
	return nil
}
