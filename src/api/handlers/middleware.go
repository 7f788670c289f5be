package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"portfolio-api/src/models"
	"portfolio-api/src/utils"
)

type contextKey string

const userKey = contextKey("currentUser")

// RequestLogger attaches a request-scoped logger carrying a request id to the
// context and echoes the id back in the response headers.
func RequestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			entry := logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})

			w.Header().Set("X-Request-ID", requestID)
			ctx := utils.WithLogger(r.Context(), entry)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authenticator resolves the verified token subject to an active user and
// stores it in the context. It expects jwtauth.Verifier to have run first.
func (h *Handler) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			h.HandleErrors(w, utils.Unauthorized("Invalid or expired token"))
			return
		}

		sub, _ := claims["sub"].(string)
		userID, convErr := strconv.Atoi(sub)
		if convErr != nil {
			h.HandleErrors(w, utils.Unauthorized("Invalid or expired token"))
			return
		}

		user, err := h.Controller.VerifyUser(r.Context(), userID)
		if err != nil {
			h.HandleErrors(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}
