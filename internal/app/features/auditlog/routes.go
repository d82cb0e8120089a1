// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/eventdesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log under the path where this router is mounted
// (typically "/audit" from bootstrap). Only superadmins may read it.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole("superadmin"))

		pr.Get("/", h.ServeList)
		pr.Get("/event-types", h.ServeEventTypes)
	})

	return r
}
