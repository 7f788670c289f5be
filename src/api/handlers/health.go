package handlers

import (
	"context"
	"net/http"
	"time"
)

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	h.respond(w, r, h.Controller.Health(ctx), http.StatusOK)
}
