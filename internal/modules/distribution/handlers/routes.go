package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all distribution routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/distributions", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/live", h.HandleLive)
		r.Post("/{kind}", h.HandleCompute)
		r.Get("/{id}", h.HandleGet)
		r.Delete("/{id}", h.HandleDelete)
		r.Get("/{id}/msgpack", h.HandleGetMsgpack)
		r.Get("/{id}/chart", h.HandleChart)
		r.Post("/{id}/marginal", h.HandleMarginal)
		r.Post("/{id}/project", h.HandleProject)
	})
}
