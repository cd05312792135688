package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	SetSecret("test-secret")

	userID := uuid.New().String()
	tenantID := uuid.New().String()

	token, err := GenerateToken(userID, tenantID)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, tenantID, claims.TenantID)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	SetSecret("test-secret")

	_, err := ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	require.NoError(t, CheckPassword(hash, "hunter2"))
	require.Error(t, CheckPassword(hash, "hunter3"))
}
