// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	uierrors "github.com/dalemusser/eventdesk/internal/app/features/errors"
	"github.com/dalemusser/eventdesk/internal/app/system/auditlog"
	"github.com/dalemusser/eventdesk/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	Audit      *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout handles POST /logout. The cookie is expired even when the
// incoming session could not be decoded.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if su, ok := auth.CurrentUser(r); ok {
		h.Log.Info("admin signed out", zap.String("email", su.Email))
		h.Audit.Logout(r.Context(), r, su.Email)
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
	}
	uierrors.OK(w, "Signed out", nil)
}
