package handlers_test

import (
	"context"
	"io"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/sirupsen/logrus"

	"portfolio-api/src/api"
	"portfolio-api/src/api/controllers"
	"portfolio-api/src/api/handlers"
	"portfolio-api/src/config"
	"portfolio-api/src/models"
	"portfolio-api/src/schemas"
	"portfolio-api/src/utils"
)

// fakeAuthService accepts exactly one email/password pair and knows one user.
type fakeAuthService struct {
	tokenAuth *jwtauth.JWTAuth
	user      *models.User
	password  string
}

func (s *fakeAuthService) Login(_ context.Context, email, password string) (*schemas.TokenResponse, error) {
	if s.user == nil || email != s.user.Email || password != s.password {
		return nil, utils.Unauthorized("Incorrect email or password")
	}
	return &schemas.TokenResponse{AccessToken: s.mint(s.user), TokenType: "bearer"}, nil
}

func (s *fakeAuthService) SocialLogin(_ context.Context, provider string) (*schemas.SocialAuthResponse, error) {
	if provider != utils.ProviderGoogle && provider != utils.ProviderFacebook {
		return nil, utils.BadRequest("Invalid provider. Must be 'google' or 'facebook'")
	}
	return &schemas.SocialAuthResponse{AccessToken: s.mint(s.user), TokenType: "bearer", Provider: provider}, nil
}

func (s *fakeAuthService) VerifyUser(_ context.Context, userID int) (*models.User, error) {
	if s.user == nil || s.user.ID != userID || !s.user.IsActive {
		return nil, utils.Unauthorized("Invalid or expired token")
	}
	return s.user, nil
}

func (s *fakeAuthService) EnsureDemoUser(_ context.Context) error { return nil }

func (s *fakeAuthService) TokenAuth() *jwtauth.JWTAuth { return s.tokenAuth }

func (s *fakeAuthService) mint(user *models.User) string {
	claims := map[string]interface{}{"sub": strconv.Itoa(user.ID), "email": user.Email}
	jwtauth.SetExpiryIn(claims, time.Minute)
	_, tokenString, _ := s.tokenAuth.Encode(claims)
	return tokenString
}

// fakePortfolioService returns a canned response for every user.
type fakePortfolioService struct {
	response *schemas.PortfolioResponse
	err      error
}

func (s *fakePortfolioService) GetUserPortfolio(_ context.Context, _ int) (*schemas.PortfolioResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *fakePortfolioService) GenerateHoldings(_ int, _ []models.Ticker) []schemas.Holding {
	return nil
}

type testEnv struct {
	server    *api.Server
	auth      *fakeAuthService
	portfolio *fakePortfolioService
}

func setupServer(t *testing.T) *testEnv {
	t.Helper()

	auth := &fakeAuthService{
		tokenAuth: jwtauth.New("HS256", []byte("test-secret"), nil),
		user:      &models.User{ID: 1, Email: "demo@example.com", IsActive: true},
		password:  "demo123",
	}
	portfolio := &fakePortfolioService{
		response: &schemas.PortfolioResponse{
			Holdings: []schemas.ValuedHolding{
				{Ticker: "AAPL", Name: "Apple Inc.", Qty: 10, Price: 192.53, DailyChangePct: 1.25, Value: 1925.30},
			},
			TotalValue: 1925.30,
		},
	}

	cfg := &config.Config{}
	cfg.Service.AllowedOrigins = "http://localhost:3000"

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	controller := controllers.NewController(nil, auth, portfolio)
	handler := handlers.NewHandler(controller)
	return &testEnv{
		server:    api.NewServer(cfg, handler, auth.tokenAuth, logger),
		auth:      auth,
		portfolio: portfolio,
	}
}
