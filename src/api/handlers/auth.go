package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"portfolio-api/src/schemas"
	"portfolio-api/src/utils"
)

func (h *Handler) PostLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var loginRequest = new(schemas.LoginRequest)
	if err := json.NewDecoder(r.Body).Decode(loginRequest); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}
	if loginRequest.Email == "" {
		h.HandleErrors(w, utils.BadRequest("email is required"))
		return
	}
	if loginRequest.Password == "" {
		h.HandleErrors(w, utils.BadRequest("password is required"))
		return
	}

	logger := utils.LoggerFromContext(ctx)
	logger.WithField("email", loginRequest.Email).Info("login attempt")

	tokenResponse, err := h.Controller.Login(ctx, loginRequest.Email, loginRequest.Password)
	if err != nil {
		logger.WithField("email", loginRequest.Email).Warn("failed login attempt")
		h.HandleErrors(w, err)
		return
	}

	logger.WithField("email", loginRequest.Email).Info("successful login")
	h.respond(w, r, tokenResponse, http.StatusOK)
}

// PostSocialLogin reads the provider from the query string, falling back to
// the request body.
func (h *Handler) PostSocialLogin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	provider := r.URL.Query().Get("provider")
	if provider == "" {
		var socialRequest schemas.SocialLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&socialRequest); err == nil {
			provider = socialRequest.Provider
		}
	}
	if provider == "" {
		h.HandleErrors(w, utils.BadRequest("provider is required"))
		return
	}

	logger := utils.LoggerFromContext(ctx)
	logger.WithField("provider", provider).Info("social login attempt")

	socialResponse, err := h.Controller.SocialLogin(ctx, provider)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	logger.WithField("provider", provider).Info("successful social login")
	h.respond(w, r, socialResponse, http.StatusOK)
}
