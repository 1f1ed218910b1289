package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdomain "github.com/icarushq/icarus/internal/auth/domain"
	"github.com/icarushq/icarus/internal/event"
	"github.com/icarushq/icarus/internal/persistence"
	"github.com/icarushq/icarus/internal/user/domain"
)

func newUserRepository(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repository := NewUserRepository(db, "postgres", persistence.NewUnitOfWork(), event.NewRegistry(nil), nil)
	return repository, mock
}

func userRows(user *domain.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "name", "email", "email_verified_at", "password", "active", "operates_in"})
	var verifiedAt any
	if user.EmailVerifiedAt() != nil {
		verifiedAt = *user.EmailVerifiedAt()
	}
	rows.AddRow(user.ID().String(), user.Name(), user.Email(), verifiedAt, user.Password(), user.IsActive(), encodeContexts(user.OperatesIn()))
	return rows
}

func TestUserRepository_Save_Create(t *testing.T) {
	repository, mock := newUserRepository(t)
	ctx := context.Background()

	user := domain.NewUser("Ada Lovelace", "ada@example.com", "$argon2id$fake")

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO users (active, created_at, email, email_verified_at, id, name, operates_in, password, updated_at) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
	)).WithArgs(
		true, sqlmock.AnyArg(), "ada@example.com", nil, user.ID().String(),
		"Ada Lovelace", `["account"]`, "$argon2id$fake", sqlmock.AnyArg(),
	).WillReturnResult(sqlmock.NewResult(0, 1))

	assert.True(t, repository.Save(ctx, user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Save_UnchangedSkipsStorage(t *testing.T) {
	repository, mock := newUserRepository(t)
	ctx := context.Background()

	user := domain.NewUser("Ada", "ada@example.com", "hash")

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	require.True(t, repository.Save(ctx, user))

	// No further expectation: saving again without changes must not touch storage
	assert.True(t, repository.Save(ctx, user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Save_UpdateSendsOnlyChangedFields(t *testing.T) {
	repository, mock := newUserRepository(t)
	ctx := context.Background()

	user := domain.NewUser("Ada", "ada@example.com", "hash")

	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(0, 1))
	require.True(t, repository.Save(ctx, user))

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE users SET active = $1, updated_at = $2 WHERE id = $3",
	)).WithArgs(false, sqlmock.AnyArg(), user.ID().String()).WillReturnResult(sqlmock.NewResult(0, 1))

	user.Deactivate()
	assert.True(t, repository.Save(ctx, user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Find(t *testing.T) {
	repository, mock := newUserRepository(t)
	ctx := context.Background()

	stored := domain.NewUser("Ada", "ada@example.com", "hash")
	stored.AddOperatesIn(authdomain.ContextPlatform)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, email, email_verified_at, password, active, operates_in FROM users WHERE id = $1",
	)).WithArgs(stored.ID().String()).WillReturnRows(userRows(stored))

	found, err := repository.Find(ctx, stored.ID())
	require.NoError(t, err)
	assert.Equal(t, stored.ID(), found.ID())
	assert.Equal(t, "ada@example.com", found.Email())
	assert.True(t, found.CanOperateIn(authdomain.ContextPlatform))

	// Second find is served from the identity map, no second query
	again, err := repository.Find(ctx, stored.ID())
	require.NoError(t, err)
	assert.Same(t, found, again)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Find_NotFound(t *testing.T) {
	repository, mock := newUserRepository(t)
	ctx := context.Background()

	id := domain.NewUser("Ada", "ada@example.com", "hash").ID()
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repository.Find(ctx, id)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	repository, mock := newUserRepository(t)
	ctx := context.Background()

	stored := domain.NewUser("Ada", "ada@example.com", "hash")

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, name, email, email_verified_at, password, active, operates_in FROM users WHERE email = $1",
	)).WithArgs("ada@example.com").WillReturnRows(userRows(stored))

	found, err := repository.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, stored.ID(), found.ID())

	// The email lookup always hits storage, but a live identity wins
	mock.ExpectQuery("SELECT").WillReturnRows(userRows(stored))

	again, err := repository.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Same(t, found, again)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	repository, mock := newUserRepository(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repository.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_RoundTripPreservesVerification(t *testing.T) {
	repository, mock := newUserRepository(t)
	ctx := context.Background()

	stored := domain.NewUser("Ada", "ada@example.com", "hash")
	stored.VerifyEmail(time.Now().UTC().Truncate(time.Second))

	mock.ExpectQuery("SELECT").WillReturnRows(userRows(stored))

	found, err := repository.Find(ctx, stored.ID())
	require.NoError(t, err)
	require.NotNil(t, found.EmailVerifiedAt())
	assert.True(t, found.EmailVerifiedAt().Equal(*stored.EmailVerifiedAt()))

	// Hydration primed the snapshot: an unchanged save is a no-op
	assert.True(t, repository.Save(ctx, found))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection refused")))
	assert.True(t, IsUniqueViolation(errors.New(`pq: duplicate key value violates unique constraint "users_email_key"`)))
	assert.True(t, IsUniqueViolation(errors.New("Error 1062: Duplicate entry 'ada@example.com' for key 'users.email'")))
}
