package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := GenerateAccessToken("test-secret", "user-1", "learner", time.Hour)
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "learner", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken("test-secret", "user-1", "learner", time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "other-secret")
	assert.Error(t, err)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken("test-secret", "user-1", "learner", -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "test-secret")
	assert.Error(t, err)
}
