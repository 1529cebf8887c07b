package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepositoryFindByEmailWithPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password", "profile_id", "is_active"}).
		AddRow("user-1", "Admin", "admin@meridian.dev", "$2a$10$hash", "profile_system_admin", true)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = ? LIMIT 1")).
		WithArgs("admin@meridian.dev").
		WillReturnRows(rows)

	user, err := repo.FindByEmailWithPassword(context.Background(), "admin@meridian.dev")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	assert.True(t, user.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = ? LIMIT 1")).
		WithArgs("nobody@meridian.dev").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "profile_id", "is_active"}))

	user, err := repo.FindByEmailWithPassword(context.Background(), "nobody@meridian.dev")
	require.NoError(t, err)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCheckUserExistsByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("admin@meridian.dev").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.CheckUserExistsByEmail(context.Background(), "admin@meridian.dev")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}
