package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridiancrm/backend/internal/infrastructure/persistence"
	"github.com/meridiancrm/backend/pkg/auth"
	"github.com/meridiancrm/backend/pkg/constants"
	pkgerrors "github.com/meridiancrm/backend/pkg/errors"
)

func newTestAuth(t *testing.T) (*AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewAuthService(persistence.NewUserRepository(db), persistence.NewSessionRepository(db)), mock
}

func userRow(t *testing.T, password string, active bool) *sqlmock.Rows {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return sqlmock.NewRows([]string{"id", "name", "email", "password", "profile_id", "is_active"}).
		AddRow("user-1", "Admin", "admin@meridian.dev", hash, constants.ProfileSystemAdmin, active)
}

func TestLoginSuccessCreatesSession(t *testing.T) {
	svc, mock := newTestAuth(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = ? LIMIT 1")).
		WithArgs("admin@meridian.dev").
		WillReturnRows(userRow(t, "Sup3rSecret", true))
	mock.ExpectExec("INSERT INTO " + constants.TableSession).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET last_login_date").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result, err := svc.Login(context.Background(), "admin@meridian.dev", "Sup3rSecret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "user-1", result.User.ID)
	assert.True(t, result.User.IsSuperUser())

	// The token must carry the session jti that was persisted
	claims, err := auth.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.RegisteredClaims.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	svc, mock := newTestAuth(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = ? LIMIT 1")).
		WithArgs("admin@meridian.dev").
		WillReturnRows(userRow(t, "Sup3rSecret", true))

	_, err := svc.Login(context.Background(), "admin@meridian.dev", "wrong")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestLoginUnknownUser(t *testing.T) {
	svc, mock := newTestAuth(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = ? LIMIT 1")).
		WithArgs("ghost@meridian.dev").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password", "profile_id", "is_active"}))

	_, err := svc.Login(context.Background(), "ghost@meridian.dev", "whatever")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestLoginDeactivatedAccount(t *testing.T) {
	svc, mock := newTestAuth(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE email = ? LIMIT 1")).
		WithArgs("admin@meridian.dev").
		WillReturnRows(userRow(t, "Sup3rSecret", false))

	_, err := svc.Login(context.Background(), "admin@meridian.dev", "Sup3rSecret")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestValidateSessionRejectsRevoked(t *testing.T) {
	svc, mock := newTestAuth(t)

	token, _, _, err := auth.GenerateToken(auth.UserSession{ID: "user-1", Email: "a@b.c", ProfileID: constants.ProfileStandard})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = svc.ValidateSession(context.Background(), token)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	svc, mock := newTestAuth(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("dupe@meridian.dev").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Name:     "Dupe",
		Email:    "dupe@meridian.dev",
		Password: "Sup3rSecret",
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestCreateUserRejectsWeakPassword(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Name:     "Weak",
		Email:    "weak@meridian.dev",
		Password: "short",
	})
	require.Error(t, err)
}
