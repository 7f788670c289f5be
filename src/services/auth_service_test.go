package services_test

import (
	"context"
	"testing"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-api/src/config"
	"portfolio-api/src/services"
	"portfolio-api/src/utils"
)

func authConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.SecretKey = "test-secret"
	cfg.Auth.AccessTokenExpireMinutes = 30
	return cfg
}

func TestLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := services.NewAuthService(userRepo, authConfig())
	ctx := context.Background()
	require.NoError(t, service.EnsureDemoUser(ctx))

	t.Run("correct credentials return a bearer token", func(t *testing.T) {
		response, err := service.Login(ctx, "demo@example.com", "demo123")
		require.NoError(t, err)
		assert.Equal(t, "bearer", response.TokenType)
		require.NotEmpty(t, response.AccessToken)

		token, err := jwtauth.VerifyToken(service.TokenAuth(), response.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "1", token.Subject())
		email, _ := token.Get("email")
		assert.Equal(t, "demo@example.com", email)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := service.Login(ctx, "demo@example.com", "nope")
		requireHTTPError(t, err, 401, "Incorrect email or password")
	})

	t.Run("unknown email gets the same message", func(t *testing.T) {
		_, err := service.Login(ctx, "ghost@example.com", "demo123")
		requireHTTPError(t, err, 401, "Incorrect email or password")
	})
}

func TestEnsureDemoUserIsIdempotent(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := services.NewAuthService(userRepo, authConfig())
	ctx := context.Background()

	require.NoError(t, service.EnsureDemoUser(ctx))
	require.NoError(t, service.EnsureDemoUser(ctx))

	user, err := userRepo.GetByEmail(ctx, "demo@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Demo User", user.FullName)
	assert.True(t, user.IsActive)
}

func TestSocialLogin(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := services.NewAuthService(userRepo, authConfig())
	ctx := context.Background()

	t.Run("google provisions a demo account", func(t *testing.T) {
		response, err := service.SocialLogin(ctx, "google")
		require.NoError(t, err)
		assert.Equal(t, "bearer", response.TokenType)
		assert.Equal(t, "google", response.Provider)
		assert.NotEmpty(t, response.AccessToken)

		user, err := userRepo.GetByEmail(ctx, "demo-google@example.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "Demo Google User", user.FullName)
	})

	t.Run("repeat login reuses the account", func(t *testing.T) {
		first, err := userRepo.GetByEmail(ctx, "demo-google@example.com")
		require.NoError(t, err)

		_, err = service.SocialLogin(ctx, "google")
		require.NoError(t, err)

		again, err := userRepo.GetByEmail(ctx, "demo-google@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
	})

	t.Run("facebook works too", func(t *testing.T) {
		response, err := service.SocialLogin(ctx, "facebook")
		require.NoError(t, err)
		assert.Equal(t, "facebook", response.Provider)
	})

	t.Run("anything else is rejected", func(t *testing.T) {
		for _, provider := range []string{"twitter", "github", ""} {
			_, err := service.SocialLogin(ctx, provider)
			requireHTTPError(t, err, 400, "Invalid provider. Must be 'google' or 'facebook'")
		}
	})
}

func TestVerifyUser(t *testing.T) {
	userRepo := newFakeUserRepo()
	service := services.NewAuthService(userRepo, authConfig())
	ctx := context.Background()
	require.NoError(t, service.EnsureDemoUser(ctx))

	t.Run("active user resolves", func(t *testing.T) {
		user, err := service.VerifyUser(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "demo@example.com", user.Email)
	})

	t.Run("unknown id fails", func(t *testing.T) {
		_, err := service.VerifyUser(ctx, 999)
		requireHTTPError(t, err, 401, "Invalid or expired token")
	})

	t.Run("deactivated user fails", func(t *testing.T) {
		userRepo.mu.Lock()
		userRepo.users["demo@example.com"].IsActive = false
		userRepo.mu.Unlock()

		_, err := service.VerifyUser(ctx, 1)
		requireHTTPError(t, err, 401, "Invalid or expired token")
	})
}

func requireHTTPError(t *testing.T, err error, code int, message string) {
	t.Helper()
	require.Error(t, err)
	var httpErr *utils.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, code, httpErr.Code)
	assert.Equal(t, message, httpErr.Message)
}
