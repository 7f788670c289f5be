package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"portfolio-api/src/utils"
)

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	user, ok := UserFromContext(r.Context())
	if !ok {
		h.HandleErrors(w, utils.Unauthorized("Invalid or expired token"))
		return
	}

	logger := utils.LoggerFromContext(ctx)
	logger.WithField("email", user.Email).Info("fetching portfolio")

	portfolio, err := h.Controller.GetPortfolio(ctx, user.ID)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	logger.WithFields(logrus.Fields{
		"email":       user.Email,
		"holdings":    len(portfolio.Holdings),
		"total_value": portfolio.TotalValue,
	}).Info("portfolio retrieved")

	h.respond(w, r, portfolio, http.StatusOK)
}
