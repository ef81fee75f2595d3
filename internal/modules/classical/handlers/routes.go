package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all classical simulation routes. The
// /simulate prefix is shared with the quantum and analysis modules, so
// the route is registered flat rather than through a subrouter.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/simulate/classical", h.HandleSimulate)
}
