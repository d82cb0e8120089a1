// internal/app/features/registrations/routes.go
package registrations

import (
	"github.com/dalemusser/eventdesk/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the admin-only registration endpoints.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(rr chi.Router) {
		rr.Use(sm.RequireSignedIn)
		rr.Get("/", h.ServeList)
		rr.Get("/events", h.ServeEvents)
		rr.Get("/stats", h.ServeStats)
		rr.Get("/export.csv", h.ServeExportCSV)
		rr.Get("/export-view.csv", h.ServeExportViewCSV)
		rr.Post("/bulk-approve", h.ServeBulkApprove)

		rr.Route("/{groupID}", func(g chi.Router) {
			g.Get("/", h.ServeDetail)
			g.Delete("/", h.ServeDelete)
			g.Get("/members", h.ServeMembers)
			g.Get("/payment-proof", h.ServePaymentProof)
			g.Post("/approve", h.ServeApprove)
			g.Post("/reject", h.ServeReject)
		})
	})

	return r
}
