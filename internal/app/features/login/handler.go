// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/eventdesk/internal/app/features/errors"
	adminuserstore "github.com/dalemusser/eventdesk/internal/app/store/adminusers"
	"github.com/dalemusser/eventdesk/internal/app/system/auditlog"
	"github.com/dalemusser/eventdesk/internal/app/system/auth"
	"github.com/dalemusser/eventdesk/internal/app/system/outcome"
	"github.com/dalemusser/eventdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/eventdesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *adminuserstore.Store
	Sessions *auth.SessionManager
	Limiter  *ratelimit.LoginLimiter
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(db *mongo.Database, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	return &Handler{
		Users:    adminuserstore.New(db),
		Sessions: sm,
		Limiter:  limiter,
		Log:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

type sessionResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ServeLogin handles POST /login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := uierrors.DecodeJSON(r, &req); err != nil {
		uierrors.Fail(w, h.Log, "login", err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if ok, reason := h.Limiter.Check(r, email); !ok {
		h.Log.Warn("login rate limited",
			zap.String("email", email),
			zap.String("ip", ratelimit.ClientIP(r)))
		h.Audit.LoginRateLimited(r.Context(), r, email)
		uierrors.WriteJSON(w, http.StatusTooManyRequests, outcome.Result{Success: false, Message: reason})
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	u, err := h.Users.Authenticate(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, adminuserstore.ErrInvalidCredentials) {
			h.Log.Info("login failed", zap.String("email", email))
			h.Audit.LoginFailed(r.Context(), r, email, "invalid credentials")
			uierrors.WriteJSON(w, http.StatusUnauthorized, outcome.Result{Success: false, Message: "Invalid email or password."})
			return
		}
		uierrors.Fail(w, h.Log, "login", outcome.Fetch("Unable to sign in right now", err))
		return
	}

	su := auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role}
	if err := h.Sessions.SignIn(w, r, su); err != nil {
		uierrors.Fail(w, h.Log, "login", outcome.Write("Unable to start session", err))
		return
	}
	h.Limiter.ResetEmail(email)
	h.Log.Info("admin signed in", zap.String("email", u.Email), zap.String("role", u.Role))
	h.Audit.LoginSuccess(r.Context(), r, u.Email)

	uierrors.OK(w, "Signed in", sessionResponse(su))
}

// ServeSession handles GET /login/session and reports the signed-in admin.
func (h *Handler) ServeSession(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		uierrors.WriteJSON(w, http.StatusUnauthorized, outcome.Result{Success: false, Message: "Not signed in."})
		return
	}
	uierrors.OK(w, "", sessionResponse(*su))
}
