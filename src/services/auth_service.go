package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/jwtauth"
	"golang.org/x/crypto/bcrypt"

	"portfolio-api/src/config"
	"portfolio-api/src/models"
	"portfolio-api/src/repositories"
	"portfolio-api/src/schemas"
	"portfolio-api/src/utils"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "demo123"
	demoFullName = "Demo User"

	// Social logins are mocked: the provider token is never verified, the
	// flow just provisions a provider-scoped demo account.
	socialPassword = "mock-password-not-used"
)

type AuthServiceI interface {
	Login(ctx context.Context, email, password string) (*schemas.TokenResponse, error)
	SocialLogin(ctx context.Context, provider string) (*schemas.SocialAuthResponse, error)
	VerifyUser(ctx context.Context, userID int) (*models.User, error)
	EnsureDemoUser(ctx context.Context) error
	TokenAuth() *jwtauth.JWTAuth
}

type AuthService struct {
	userRepo  repositories.UserRepository
	tokenAuth *jwtauth.JWTAuth
	expiresIn time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenAuth: jwtauth.New("HS256", []byte(cfg.Auth.SecretKey), nil),
		expiresIn: time.Duration(cfg.Auth.AccessTokenExpireMinutes) * time.Minute,
	}
}

// TokenAuth exposes the signer so the router can mount the token verifier.
func (s *AuthService) TokenAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}

// Login checks the password against the stored bcrypt hash and issues a token.
// Unknown emails and bad passwords produce the same message on purpose.
func (s *AuthService) Login(ctx context.Context, email, password string) (*schemas.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, utils.Unauthorized("Incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, utils.Unauthorized("Incorrect email or password")
	}

	token, err := s.createAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &schemas.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// SocialLogin provisions (or reuses) the demo account tied to the provider and
// issues a token for it.
func (s *AuthService) SocialLogin(ctx context.Context, provider string) (*schemas.SocialAuthResponse, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider != utils.ProviderGoogle && provider != utils.ProviderFacebook {
		return nil, utils.BadRequest("Invalid provider. Must be 'google' or 'facebook'")
	}

	email := fmt.Sprintf("demo-%s@example.com", provider)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		fullName := fmt.Sprintf("Demo %s User", titleCase(provider))
		user, err = s.createUser(ctx, email, socialPassword, fullName)
		if err != nil {
			return nil, err
		}
	}

	token, err := s.createAccessToken(user)
	if err != nil {
		return nil, err
	}
	return &schemas.SocialAuthResponse{AccessToken: token, TokenType: "bearer", Provider: provider}, nil
}

// VerifyUser resolves a token subject to a live account. Deactivated or
// deleted users fail verification even while their token is unexpired.
func (s *AuthService) VerifyUser(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, utils.Unauthorized("Invalid or expired token")
	}
	return user, nil
}

// EnsureDemoUser seeds the local development account if it is missing.
func (s *AuthService) EnsureDemoUser(ctx context.Context) error {
	user, err := s.userRepo.GetByEmail(ctx, demoEmail)
	if err != nil {
		return err
	}
	if user != nil {
		return nil
	}
	_, err = s.createUser(ctx, demoEmail, demoPassword, demoFullName)
	return err
}

func (s *AuthService) createUser(ctx context.Context, email, password, fullName string) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:          email,
		HashedPassword: string(hashed),
		FullName:       fullName,
		IsActive:       true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) createAccessToken(user *models.User) (string, error) {
	claims := map[string]interface{}{
		"sub":   strconv.Itoa(user.ID),
		"email": user.Email,
	}
	jwtauth.SetExpiryIn(claims, s.expiresIn)
	jwtauth.SetIssuedNow(claims)

	_, tokenString, err := s.tokenAuth.Encode(claims)
	return tokenString, err
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
