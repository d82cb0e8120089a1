// internal/app/features/registrations/detail.go
package registrations

import (
	"net/http"

	uierrors "github.com/dalemusser/eventdesk/internal/app/features/errors"
	"github.com/dalemusser/eventdesk/internal/app/system/outcome"
	"github.com/dalemusser/eventdesk/internal/app/system/proofurl"
	"github.com/dalemusser/eventdesk/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeDetail handles GET /registrations/{groupID}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "registration detail")
	defer cancel()

	reg, err := h.Agg.Detail(ctx, chi.URLParam(r, "groupID"))
	if err != nil {
		uierrors.Fail(w, h.Log, "registration detail", err)
		return
	}
	uierrors.OK(w, "", reg)
}

// ServeMembers handles GET /registrations/{groupID}/members.
func (h *Handler) ServeMembers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "registration members")
	defer cancel()

	members, err := h.Agg.Members(ctx, chi.URLParam(r, "groupID"))
	if err != nil {
		uierrors.Fail(w, h.Log, "registration members", err)
		return
	}
	uierrors.OK(w, "", members)
}

// ServePaymentProof handles GET /registrations/{groupID}/payment-proof.
//
// A group without a screenshot answers has_proof=false. A screenshot whose
// URL cannot be produced is a fetch error.
func (h *Handler) ServePaymentProof(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "payment proof")
	defer cancel()

	groupID := chi.URLParam(r, "groupID")
	reg, err := h.Agg.Detail(ctx, groupID)
	if err != nil {
		uierrors.Fail(w, h.Log, "payment proof", err)
		return
	}
	if !reg.HasPaymentProof() {
		uierrors.OK(w, "", proofurl.Proof{HasProof: false})
		return
	}
	if h.Proofs == nil {
		uierrors.Fail(w, h.Log, "payment proof", outcome.Fetch("Payment proof storage is not configured", nil))
		return
	}

	proof, err := h.Proofs.Resolve(ctx, reg.PaymentScreenshotPath)
	if err != nil {
		h.Log.Error("resolve payment proof failed", zap.String("group_id", groupID), zap.Error(err))
		uierrors.Fail(w, h.Log, "payment proof", outcome.Fetch("Failed to load payment proof", err))
		return
	}
	uierrors.OK(w, "", proof)
}
