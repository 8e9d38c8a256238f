package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
)

// dummyPassword is hashed once at startup so logins for unknown usernames
// spend the same bcrypt work as logins with a wrong password.
const dummyPassword = "auth-service-timing-equalizer"

// AuthService coordinates registration, login and token verification.
type AuthService struct {
	users       repository.UserRepository
	attempts    repository.LoginAttemptRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	hasher      *auth.PasswordHasher
	tokenMgr    *auth.TokenManager
	dummyHash   string
	maxAttempts int64
	lockout     time.Duration
	now         func() time.Time
}

var _ auth.TokenVerifier = (*AuthService)(nil)

// AuthDependencies encapsulates collaborators for the auth service.
// LoginAttempts and Dispatcher are optional.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	LoginAttempts repository.LoginAttemptRepository
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// NewAuthService builds the service. It fails when no signing secret is configured.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) (*AuthService, error) {
	tokenMgr, err := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL())
	if err != nil {
		return nil, err
	}

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &AuthService{
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		hasher:     hasher,
		tokenMgr:   tokenMgr,
		dummyHash:  dummyHash,
		now:        time.Now,
	}
	if deps.LoginAttempts != nil && cfg.LoginMaxAttempts > 0 {
		s.attempts = deps.LoginAttempts
		s.maxAttempts = int64(cfg.LoginMaxAttempts)
		s.lockout = cfg.LoginLockout()
	}
	return s, nil
}

// Register creates a new user and returns it with the store-assigned ID.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", domain.ErrValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:     events.EventUserRegistered,
		Username: user.Username,
		UserID:   user.ID,
	})
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown usernames
// and wrong passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Token, error) {
	if s.lockedOut(ctx, username) {
		s.publish(ctx, events.Event{
			Type:     events.EventLoginFailed,
			Username: username,
			Payload:  events.LoginFailedPayload{Reason: "locked_out"},
		})
		return nil, domain.ErrTooManyAttempts
	}

	user, found, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if !found {
		s.hasher.Verify(password, s.dummyHash)
		s.loginFailed(ctx, username, "unknown_user")
		return nil, domain.ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.loginFailed(ctx, username, "password_mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokenMgr.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, username); err != nil {
			s.logger.Warn("reset login attempts", zap.String("username", username), zap.Error(err))
		}
	}
	s.publish(ctx, events.Event{
		Type:     events.EventLoginSucceeded,
		Username: username,
		UserID:   user.ID,
		Payload:  events.LoginSucceededPayload{TokenID: token.ID, ExpiresAt: token.ExpiresAt},
	})
	return token, nil
}

// VerifyToken validates a bearer token and returns the caller it was issued for.
func (s *AuthService) VerifyToken(_ context.Context, token string) (*auth.Principal, error) {
	claims, err := s.tokenMgr.Validate(token)
	if err != nil {
		return nil, err
	}
	return &auth.Principal{UserID: claims.UserID(), TokenID: claims.ID}, nil
}

// lockedOut fails open: a limiter outage must not block logins.
func (s *AuthService) lockedOut(ctx context.Context, username string) bool {
	if s.attempts == nil {
		return false
	}
	n, err := s.attempts.Failures(ctx, username)
	if err != nil {
		s.logger.Warn("read login attempts", zap.String("username", username), zap.Error(err))
		return false
	}
	return n >= s.maxAttempts
}

func (s *AuthService) loginFailed(ctx context.Context, username, reason string) {
	if s.attempts != nil {
		if _, err := s.attempts.RecordFailure(ctx, username, s.lockout); err != nil {
			s.logger.Warn("record login failure", zap.String("username", username), zap.Error(err))
		}
	}
	s.publish(ctx, events.Event{
		Type:     events.EventLoginFailed,
		Username: username,
		Payload:  events.LoginFailedPayload{Reason: reason},
	})
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
