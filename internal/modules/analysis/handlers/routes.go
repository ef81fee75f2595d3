package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all comparison routes. The /simulate prefix
// is shared with the classical and quantum modules, so the route is
// registered flat rather than through a subrouter.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/simulate/compare", h.HandleCompare)
}
