// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/eventdesk/internal/app/system/outcome"
	"go.uber.org/zap"
)

// Handler serves the JSON fallbacks for unknown routes and auth redirects.
// No DB needed.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden handles GET /forbidden (the target of RequireRole redirects).
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusForbidden, outcome.Result{Message: "You don't have permission to do that."})
}

// Unauthorized handles GET /unauthorized.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusUnauthorized, outcome.Result{Message: "Please sign in to continue."})
}

// NotFound is installed as the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, outcome.Result{Message: "Not found", Kind: outcome.KindNotFound})
}

// MethodNotAllowed is installed as the router's MethodNotAllowed handler.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusMethodNotAllowed, outcome.Result{Message: "Method not allowed"})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes a 200 success result.
func OK(w http.ResponseWriter, msg string, data any) {
	WriteJSON(w, http.StatusOK, outcome.OK(msg, data))
}

// Fail writes a failure result whose status follows the error kind. Fetch
// and write failures are logged with their cause; the cause never reaches
// the client.
func Fail(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	status := outcome.HTTPStatus(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error(op+" failed", zap.Error(err))
	}
	WriteJSON(w, status, outcome.Failed(err))
}
