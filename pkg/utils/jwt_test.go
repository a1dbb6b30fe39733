package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateTokens(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "test-access-secret")
	t.Setenv("REFRESH_SECRET", "test-refresh-secret")

	access, refresh, err := GenerateTokens(42, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateToken(access, false)
	require.NoError(t, err)
	require.EqualValues(t, 42, claims.UserID)
	require.Equal(t, "admin", claims.Role)

	refreshClaims, err := ValidateToken(refresh, true)
	require.NoError(t, err)
	require.EqualValues(t, 42, refreshClaims.UserID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "test-access-secret")
	t.Setenv("REFRESH_SECRET", "test-refresh-secret")

	access, _, err := GenerateTokens(42, "user")
	require.NoError(t, err)

	// an access token must not verify against the refresh secret
	_, err = ValidateToken(access, true)
	require.Error(t, err)
}

func TestGenerateTokens_MissingSecrets(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "")
	t.Setenv("REFRESH_SECRET", "")

	_, _, err := GenerateTokens(1, "user")
	require.Error(t, err)
}
