package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/pqrs-service/internal/domain"
)

func testStaff() *domain.StaffMember {
	return &domain.StaffMember{
		ID:   "staff-1",
		Name: "Ana",
		Role: domain.StaffRoleHandler,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager("secret", 60)

	token, expiresAt, err := tm.GenerateToken(testStaff())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffID)
	assert.Equal(t, domain.StaffRoleHandler, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	other := NewTokenManager("different", 60)

	token, _, err := tm.GenerateToken(testStaff())
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestTokenIDsAreUnique(t *testing.T) {
	tm := NewTokenManager("secret", 60)

	first, _, err := tm.GenerateToken(testStaff())
	require.NoError(t, err)
	second, _, err := tm.GenerateToken(testStaff())
	require.NoError(t, err)

	firstClaims, err := tm.ParseToken(first)
	require.NoError(t, err)
	secondClaims, err := tm.ParseToken(second)
	require.NoError(t, err)

	assert.NotEqual(t, firstClaims.ID, secondClaims.ID)
}

func TestHashAndComparePassword(t *testing.T) {
	hashed, err := HashPassword("hunter2hunter2", 4)
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hashed, "hunter2hunter2"))
	assert.Error(t, ComparePassword(hashed, "wrong"))
}
