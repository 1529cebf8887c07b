package auth

import (
	"testing"
	"time"

	"github.com/meridiancrm/backend/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	session := UserSession{
		ID:        "user-1",
		Name:      "Ada",
		Email:     "ada@example.com",
		ProfileID: constants.ProfileStandard,
	}

	token, jti, expiresAt, err := GenerateToken(session)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, jti)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, session.ID, claims.User.ID)
	assert.Equal(t, session.Email, claims.User.Email)
	assert.Equal(t, jti, claims.RegisteredClaims.ID)
	assert.False(t, claims.User.IsSuperUser())
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestDecodeTokenExtractsJTI(t *testing.T) {
	session := UserSession{ID: "user-2", ProfileID: constants.ProfileSystemAdmin}
	token, jti, _, err := GenerateToken(session)
	require.NoError(t, err)

	claims, err := DecodeToken(token)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.RegisteredClaims.ID)
	assert.True(t, claims.User.IsSuperUser())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)
	assert.True(t, VerifyPassword("Sup3rSecret", hash))
	assert.False(t, VerifyPassword("wrong", hash))
}

func TestValidatePasswordStrength(t *testing.T) {
	assert.Error(t, ValidatePasswordStrength("short"))
	assert.Error(t, ValidatePasswordStrength("alllowercase1"))
	assert.Error(t, ValidatePasswordStrength("NoNumbersHere"))
	assert.NoError(t, ValidatePasswordStrength("GoodPass1"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.co"))
	assert.True(t, IsValidEmail("first.last+tag@example.org"))
	assert.False(t, IsValidEmail("missing-at.example.org"))
	assert.False(t, IsValidEmail(""))
}
