// internal/app/features/registrations/handler.go
package registrations

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/eventdesk/internal/app/system/aggregate"
	"github.com/dalemusser/eventdesk/internal/app/system/auth"
	"github.com/dalemusser/eventdesk/internal/app/system/moderation"
	"github.com/dalemusser/eventdesk/internal/app/system/proofurl"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"go.uber.org/zap"
)

// ProofResolver turns a stored screenshot path into a URL.
type ProofResolver interface {
	Resolve(ctx context.Context, objectPath *string) (proofurl.Proof, error)
}

// EventLister reads the event catalogue for the dashboard stats.
type EventLister interface {
	List(ctx context.Context, category string) ([]models.Event, error)
}

// Handler owns the admin registration endpoints: list, detail, moderation
// and CSV export. It is constructed once at startup in bootstrap and passed
// into Routes().
type Handler struct {
	Agg    *aggregate.Aggregator
	Mod    *moderation.Engine
	Proofs ProofResolver
	Events EventLister

	// Loc is the zone export dates are rendered in.
	Loc *time.Location
	Log *zap.Logger


	// latest keeps the newest list snapshot for /events and discards
	// results of fetches that were overtaken by a newer one.
	latest aggregate.Latest
}

// NewHandler constructs a registrations Handler. proofs and events may be nil.
func NewHandler(agg *aggregate.Aggregator, mod *moderation.Engine, proofs ProofResolver, events EventLister, loc *time.Location, logger *zap.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Agg:    agg,
		Mod:    mod,
		Proofs: proofs,
		Events: events,
		Loc:    loc,
		Log:    logger,
	}
}

// reviewer names the signed-in admin for reviewed_by. An anonymous
// request falls back to the engine default.
func reviewer(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok && u.Email != "" {
		return u.Email
	}
	return ""
}

// fetch runs one aggregated list read and publishes it unless a newer read
// already finished.
func (h *Handler) fetch(ctx context.Context) (aggregate.Snapshot, error) {
	token := h.latest.Begin()
	snap, err := h.Agg.List(ctx)
	if err != nil {
		return aggregate.Snapshot{}, err
	}
	if !h.latest.Commit(token, snap) {
		h.Log.Debug("stale registration list discarded")
	}
	return snap, nil
}

// snapshot returns the latest published list, fetching one if none exists.
func (h *Handler) snapshot(ctx context.Context) (aggregate.Snapshot, error) {
	if snap, ok := h.latest.Snapshot(); ok {
		return snap, nil
	}
	return h.fetch(ctx)
}
