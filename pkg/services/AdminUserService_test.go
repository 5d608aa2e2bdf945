package services

import (
	"testing"

	"github.com/rikkicasupanan/portfolio/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUserService(t *testing.T) {
	db := newTestDB(t)
	service := NewAdminUserService(AdminUserServiceConfig{DB: db})

	require.NoError(t, service.EnsureAdmin(" Admin@Example.com ", "first-password"))

	t.Run("valid credentials", func(t *testing.T) {
		user, err := service.Authenticate("admin@example.com", "first-password")
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", user.Email)
		assert.NotEqual(t, "first-password", user.PasswordHash)

		byID, err := service.GetByID(user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, byID.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Authenticate("admin@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Authenticate("someone@example.com", "first-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("ensuring again rotates the password", func(t *testing.T) {
		require.NoError(t, service.EnsureAdmin("admin@example.com", "second-password"))

		_, err := service.Authenticate("admin@example.com", "first-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = service.Authenticate("admin@example.com", "second-password")
		assert.NoError(t, err)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := service.GetByID("missing")
		assert.ErrorIs(t, err, models.ErrAdminUserNotFound)
	})

	t.Run("credentials are required", func(t *testing.T) {
		assert.Error(t, service.EnsureAdmin("", "x"))
		assert.Error(t, service.EnsureAdmin("a@example.com", ""))
	})
}
