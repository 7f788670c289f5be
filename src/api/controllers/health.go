package controllers

import (
	"context"

	"portfolio-api/src/schemas"
	"portfolio-api/src/utils"
)

// Health reports liveness plus database reachability. A broken database
// never fails the endpoint, it only flips the reported state.
func (c *Controller) Health(ctx context.Context) *schemas.HealthResponse {
	if c.DB == nil {
		return &schemas.HealthResponse{OK: false, Database: "disconnected"}
	}
	if err := c.DB.Ping(ctx); err != nil {
		utils.LoggerFromContext(ctx).WithError(err).Error("health check failed")
		return &schemas.HealthResponse{OK: false, Database: "disconnected"}
	}
	return &schemas.HealthResponse{OK: true, Database: "connected"}
}
