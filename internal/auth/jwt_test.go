package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)

	token, err := manager.GenerateAccessToken("staff-1", "linh@nerdsociety.vn")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", claims.StaffID)
	assert.Equal(t, "linh@nerdsociety.vn", claims.Email)
}

func TestTokenRejection(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)

	t.Run("Garbage", func(t *testing.T) {
		_, err := manager.ParseAndValidate("not.a.token")
		assert.Error(t, err)
	})

	t.Run("Wrong Secret", func(t *testing.T) {
		other := NewJWTManager("different-secret", time.Hour)
		token, err := other.GenerateAccessToken("staff-1", "")
		require.NoError(t, err)

		_, err = manager.ParseAndValidate(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := NewJWTManager("secret", -time.Minute)
		token, err := expired.GenerateAccessToken("staff-1", "")
		require.NoError(t, err)

		_, err = manager.ParseAndValidate(token)
		assert.Error(t, err)
	})
}
