package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all quantum simulation routes. The
// /simulate prefix is shared with the classical and analysis modules,
// so the route is registered flat rather than through a subrouter.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/simulate/quantum", h.HandleSimulate)
}
