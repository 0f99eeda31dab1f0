package service_test

import (
	"testing"
	"time"

	"ria-board/src/config"
	"ria-board/src/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthConfig(t *testing.T, password string) *config.Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:    "test-secret",
			JWTExpiresIn: time.Hour,
			Username:     "david",
			PasswordHash: string(hash),
		},
	}
}

func TestAuthService_Login(t *testing.T) {
	auth := service.NewAuthService(newAuthConfig(t, "correct-horse"))

	token, err := auth.Login("david", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "david", claims.Username)
}

func TestAuthService_LoginFailures(t *testing.T) {
	auth := service.NewAuthService(newAuthConfig(t, "correct-horse"))

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "パスワード誤り", username: "david", password: "wrong"},
		{name: "ユーザー名誤り", username: "mallory", password: "correct-horse"},
		{name: "両方空", username: "", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Login(tt.username, tt.password)
			assert.ErrorIs(t, err, service.ErrInvalidCredentials)
		})
	}
}

func TestAuthService_LoginNotConfigured(t *testing.T) {
	auth := service.NewAuthService(&config.Config{})

	_, err := auth.Login("david", "anything")
	assert.ErrorIs(t, err, service.ErrAuthNotConfigured)
}

func TestAuthService_ValidateTokenRejectsGarbage(t *testing.T) {
	auth := service.NewAuthService(newAuthConfig(t, "pw"))

	_, err := auth.ValidateToken("not.a.token")
	assert.Error(t, err)

	_, err = auth.ValidateToken("")
	assert.Error(t, err)
}

func TestAuthService_ValidateTokenRejectsWrongSecret(t *testing.T) {
	first := service.NewAuthService(newAuthConfig(t, "pw"))
	token, err := first.Login("david", "pw")
	require.NoError(t, err)

	other := newAuthConfig(t, "pw")
	other.Auth.JWTSecret = "different-secret"
	second := service.NewAuthService(other)

	_, err = second.ValidateToken(token)
	assert.Error(t, err)
}
