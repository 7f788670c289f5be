package controllers

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/src/services"
)

type Controller struct {
	DB               *pgxpool.Pool
	AuthService      services.AuthServiceI
	PortfolioService services.PortfolioServiceI
}

func NewController(db *pgxpool.Pool, authService services.AuthServiceI, portfolioService services.PortfolioServiceI) *Controller {
	return &Controller{
		DB:               db,
		AuthService:      authService,
		PortfolioService: portfolioService,
	}
}
