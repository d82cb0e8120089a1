// internal/app/features/registrations/moderate.go
package registrations

import (
	"net/http"

	uierrors "github.com/dalemusser/eventdesk/internal/app/features/errors"
	"github.com/dalemusser/eventdesk/internal/app/system/outcome"
	"github.com/dalemusser/eventdesk/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type rejectRequest struct {
	// Blank reasons are rejected by the engine after tag stripping, so the
	// tag only guards against a missing field.
	Reason string `json:"reason"`
}

type bulkRequest struct {
	GroupIDs []string `json:"group_ids" validate:"max=500"`
}

type bulkResponse struct {
	Matched int64 `json:"matched"`
}

// ServeApprove handles POST /registrations/{groupID}/approve. The approval
// email is best-effort: its failure is returned as a warning on a
// successful result.
func (h *Handler) ServeApprove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "approve registration")
	defer cancel()

	groupID := chi.URLParam(r, "groupID")
	notice, err := h.Mod.ApproveAndNotify(ctx, groupID, reviewer(r))
	if err != nil {
		uierrors.Fail(w, h.Log, "approve registration", err)
		return
	}
	h.latest.Invalidate()
	if notice.Warning != "" {
		h.Log.Warn("approval email not sent",
			zap.String("group_id", groupID),
			zap.String("warning", notice.Warning))
	}

	res := outcome.OK("Registration approved", notice)
	res.Warning = notice.Warning
	uierrors.WriteJSON(w, http.StatusOK, res)
}

// ServeReject handles POST /registrations/{groupID}/reject with {"reason"}.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "reject registration")
	defer cancel()

	var req rejectRequest
	if err := uierrors.DecodeJSON(r, &req); err != nil {
		uierrors.Fail(w, h.Log, "reject registration", err)
		return
	}

	groupID := chi.URLParam(r, "groupID")
	if err := h.Mod.Reject(ctx, groupID, req.Reason, reviewer(r)); err != nil {
		uierrors.Fail(w, h.Log, "reject registration", err)
		return
	}
	h.latest.Invalidate()
	uierrors.OK(w, "Registration rejected", nil)
}

// ServeBulkApprove handles POST /registrations/bulk-approve with
// {"group_ids": [...]}. Ids that match nothing are ignored; the response
// reports how many groups matched. No approval emails are sent.
func (h *Handler) ServeBulkApprove(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "bulk approve")
	defer cancel()

	var req bulkRequest
	if err := uierrors.DecodeJSON(r, &req); err != nil {
		uierrors.Fail(w, h.Log, "bulk approve", err)
		return
	}

	matched, err := h.Mod.BulkApprove(ctx, req.GroupIDs, reviewer(r))
	if err != nil {
		uierrors.Fail(w, h.Log, "bulk approve", err)
		return
	}
	h.latest.Invalidate()
	uierrors.OK(w, "Registrations approved", bulkResponse{Matched: matched})
}

// ServeDelete handles DELETE /registrations/{groupID}. Members are removed
// before the group row.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete registration")
	defer cancel()

	groupID := chi.URLParam(r, "groupID")
	if err := h.Mod.Delete(ctx, groupID); err != nil {
		uierrors.Fail(w, h.Log, "delete registration", err)
		return
	}
	h.latest.Invalidate()
	uierrors.OK(w, "Registration deleted", nil)
}
