package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: got %d destinations, have %d values", len(dest), len(r.values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

type fakeDB struct {
	row   fakeRow
	query string
	args  []any
}

func (db *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	db.query = sql
	db.args = args
	return db.row
}

func TestCreateUser(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	db := &fakeDB{row: fakeRow{values: []any{"5b7c4ad4-8f0e-4f4e-9d1c-3a7f0f1d2b11", created}}}
	repo := NewUserRepository(db)

	user := &domain.User{Username: "alice", PasswordHash: "$2a$10$hash"}
	require.NoError(t, repo.Create(context.Background(), user))

	assert.Equal(t, "5b7c4ad4-8f0e-4f4e-9d1c-3a7f0f1d2b11", user.ID)
	assert.Equal(t, created, user.CreatedAt)
	assert.Contains(t, db.query, "INSERT INTO users (username, password_hash)")
	assert.Equal(t, []any{"alice", "$2a$10$hash"}, db.args)
}

func TestCreateUserDuplicate(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}}}
	repo := NewUserRepository(db)

	err := repo.Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestCreateUserStoreFailure(t *testing.T) {
	cause := errors.New("connection refused")
	db := &fakeDB{row: fakeRow{err: cause}}
	repo := NewUserRepository(db)

	err := repo.Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
}

func TestCreateUserOtherPgError(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: &pgconn.PgError{Code: "42P01"}}}
	repo := NewUserRepository(db)

	err := repo.Create(context.Background(), &domain.User{Username: "alice", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, domain.ErrUsernameTaken)
}

func TestFindByUsernameFound(t *testing.T) {
	created := time.Now().UTC()
	db := &fakeDB{row: fakeRow{values: []any{"id-1", "alice", "$2a$10$hash", created}}}
	repo := NewUserRepository(db)

	user, found, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, &domain.User{ID: "id-1", Username: "alice", PasswordHash: "$2a$10$hash", CreatedAt: created}, user)
	assert.Equal(t, []any{"alice"}, db.args)
}

func TestFindByUsernameAbsent(t *testing.T) {
	repo := NewUserRepository(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}})

	user, found, err := repo.FindByUsername(context.Background(), "bob")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, user)
}

func TestFindByUsernameStoreFailure(t *testing.T) {
	repo := NewUserRepository(&fakeDB{row: fakeRow{err: context.DeadlineExceeded}})

	_, found, err := repo.FindByUsername(context.Background(), "alice")
	assert.False(t, found)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
