// internal/app/features/events/routes.go
package events

import (
	"github.com/dalemusser/eventdesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(rr chi.Router) {
		rr.Use(sm.RequireSignedIn)
		rr.Get("/", h.ServeList)
		rr.Get("/categories", h.ServeCategories)
		rr.Post("/", h.ServeCreate)
		rr.Get("/{id}", h.ServeGet)
		rr.Put("/{id}", h.ServeUpdate)
		rr.Delete("/{id}", h.ServeDelete)
	})

	return r
}
