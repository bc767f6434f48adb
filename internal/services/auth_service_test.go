package services_test

import (
	"testing"
	"time"

	"orderhub/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestAuthService_Authenticate(t *testing.T) {
	authService := services.NewAuthService("test_jwt_secret")

	token := signToken(t, "test_jwt_secret", jwt.MapClaims{
		"user_id": "user-1",
		"role":    "admin",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	identity, err := authService.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.True(t, identity.IsAdmin())

	plain := signToken(t, "test_jwt_secret", jwt.MapClaims{"user_id": "user-2"})
	identity, err = authService.Authenticate(plain)
	require.NoError(t, err)
	assert.Equal(t, services.RoleUser, identity.Role)
}

func TestAuthService_RejectsBadTokens(t *testing.T) {
	authService := services.NewAuthService("test_jwt_secret")

	wrongSecret := signToken(t, "other", jwt.MapClaims{"user_id": "u"})
	_, err := authService.Authenticate(wrongSecret)
	assert.Error(t, err)

	expired := signToken(t, "test_jwt_secret", jwt.MapClaims{"user_id": "u", "exp": time.Now().Add(-time.Minute).Unix()})
	_, err = authService.Authenticate(expired)
	assert.Error(t, err)

	noUser := signToken(t, "test_jwt_secret", jwt.MapClaims{"role": "admin"})
	_, err = authService.Authenticate(noUser)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "user_id")

	_, err = authService.Authenticate("not-a-token")
	assert.Error(t, err)
}
