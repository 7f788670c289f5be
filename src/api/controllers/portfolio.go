package controllers

import (
	"context"

	"portfolio-api/src/schemas"
)

func (c *Controller) GetPortfolio(ctx context.Context, userID int) (*schemas.PortfolioResponse, error) {
	return c.PortfolioService.GetUserPortfolio(ctx, userID)
}
