package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/fleet-booking/internal/model"
)

// bcrypt's minimum cost keeps the hashing in tests fast.
const testBcryptCost = 4

func newUserRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewUserRepo(db), mock
}

var userCols = []string{"id", "name", "email", "password_hash", "role", "is_deleted", "created_at", "updated_at"}

func TestUserCreate(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ana", "ana@example.com", sqlmock.AnyArg(), "owner").
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := repo.Create(context.Background(), "Ana", "Ana@Example.COM", "secret", model.RoleOwner, testBcryptCost)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'ana@example.com' for key 'users.email'"))

	_, err := repo.Create(context.Background(), "Ana", "ana@example.com", "secret", model.RoleOwner, testBcryptCost)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserGetByEmailNormalizes(t *testing.T) {
	repo, mock := newUserRepo(t)

	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email=\\? AND is_deleted=0").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(5, "Ana", "ana@example.com", "hash", "owner", false, now, now))

	u, err := repo.GetByEmail(context.Background(), "  Ana@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), u.ID)
	assert.Equal(t, model.RoleOwner, u.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByIDIncludesDeleted(t *testing.T) {
	repo, mock := newUserRepo(t)

	now := time.Now()
	mock.ExpectQuery("FROM users WHERE id=\\?").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(7, "Bo", "bo@example.com", "hash", "customer", true, now, now))

	u, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, u.IsDeleted, "the deleted flag must be surfaced, not filtered")
}

func TestUserSoftDeleteMissing(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectExec("UPDATE users SET is_deleted=1").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserCountActive(t *testing.T) {
	repo, mock := newUserRepo(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM users WHERE is_deleted=0").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.CountActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12), n)
}
