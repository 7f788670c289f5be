package controllers

import (
	"context"

	"portfolio-api/src/models"
	"portfolio-api/src/schemas"
)

func (c *Controller) Login(ctx context.Context, email, password string) (*schemas.TokenResponse, error) {
	return c.AuthService.Login(ctx, email, password)
}

func (c *Controller) SocialLogin(ctx context.Context, provider string) (*schemas.SocialAuthResponse, error) {
	return c.AuthService.SocialLogin(ctx, provider)
}

func (c *Controller) VerifyUser(ctx context.Context, userID int) (*models.User, error) {
	return c.AuthService.VerifyUser(ctx, userID)
}
