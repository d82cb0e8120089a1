// internal/app/features/registrations/list.go
package registrations

import (
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/eventdesk/internal/app/features/errors"
	"github.com/dalemusser/eventdesk/internal/app/system/aggregate"
	"github.com/dalemusser/eventdesk/internal/app/system/outcome"
	"github.com/dalemusser/eventdesk/internal/app/system/regfilter"
	"github.com/dalemusser/eventdesk/internal/app/system/timeouts"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type listResponse struct {
	Registrations []models.Registration `json:"registrations"`
	Total         int                   `json:"total"`
	Filtered      int                   `json:"filtered"`
	Stats         aggregate.Stats       `json:"stats"`
	Events        []string              `json:"events"`
	Orphans       []string              `json:"orphans,omitempty"`
}

// criteriaFromQuery reads search, status, event and sort.
func criteriaFromQuery(r *http.Request) regfilter.Criteria {
	q := r.URL.Query()
	return regfilter.Criteria{
		Search: strings.TrimSpace(q.Get("search")),
		Status: strings.TrimSpace(q.Get("status")),
		Event:  strings.TrimSpace(q.Get("event")),
		Sort:   strings.TrimSpace(q.Get("sort")),
	}
}

// ServeList handles GET /registrations.
//
// Stats and the event dropdown are computed over the unfiltered list so the
// header numbers do not move while the admin filters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "list registrations")
	defer cancel()

	snap, err := h.fetch(ctx)
	if err != nil {
		uierrors.Fail(w, h.Log, "list registrations", err)
		return
	}

	filtered := regfilter.Apply(snap.Registrations, criteriaFromQuery(r))
	uierrors.OK(w, "", listResponse{
		Registrations: filtered,
		Total:         len(snap.Registrations),
		Filtered:      len(filtered),
		Stats:         aggregate.Summarize(snap.Registrations),
		Events:        regfilter.EventNames(snap.Registrations),
		Orphans:       snap.Orphans,
	})
}

// ServeEvents handles GET /registrations/events: the distinct event names
// of the latest list, in first-seen order.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "registration events")
	defer cancel()

	snap, err := h.snapshot(ctx)
	if err != nil {
		uierrors.Fail(w, h.Log, "registration events", err)
		return
	}
	uierrors.OK(w, "", regfilter.EventNames(snap.Registrations))
}

type statsResponse struct {
	aggregate.Stats
	EventCount int `json:"event_count"`
}

// ServeStats handles GET /registrations/stats. The registration list and
// the event catalogue are read concurrently. A failed registration read
// yields zero stats with a warning rather than an error response.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "registration stats")
	defer cancel()

	var (
		snap     aggregate.Snapshot
		events   []models.Event
		regErr   error
		eventErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap, regErr = h.fetch(gctx)
		return nil
	})
	if h.Events != nil {
		g.Go(func() error {
			events, eventErr = h.Events.List(gctx, "")
			return nil
		})
	}
	_ = g.Wait()

	resp := statsResponse{Stats: aggregate.Summarize(snap.Registrations), EventCount: len(events)}
	var warning string
	if regErr != nil {
		h.Log.Warn("registration stats unavailable", zap.Error(regErr))
		resp.Stats = aggregate.Summarize(nil)
		warning = "Registration data is unavailable"
	}
	if eventErr != nil {
		h.Log.Warn("event count unavailable", zap.Error(eventErr))
	}

	res := outcome.OK("", resp)
	res.Warning = warning
	uierrors.WriteJSON(w, http.StatusOK, res)
}
