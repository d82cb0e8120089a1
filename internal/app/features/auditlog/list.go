// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/eventdesk/internal/app/features/errors"
	"github.com/dalemusser/eventdesk/internal/app/store/audit"
	"github.com/dalemusser/eventdesk/internal/app/system/outcome"
	"github.com/dalemusser/eventdesk/internal/app/system/paging"
	"github.com/dalemusser/eventdesk/internal/app/system/timeouts"
)

// ServeList handles GET /audit. Filters: category, event_type, actor,
// start_date and end_date (YYYY-MM-DD, UTC), page.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))

	if category != "" && eventTypesForCategory(category) == nil {
		uierrors.Fail(w, h.Log, "audit list", outcome.Validation("Unknown category"))
		return
	}

	page := paging.Parse(r, paging.PageSize)

	filter := audit.QueryFilter{
		Category:  category,
		EventType: eventType,
		Actor:     strings.ToLower(strings.TrimSpace(q.Get("actor"))),
		Limit:     page.Limit(),
		Offset:    page.Offset(),
	}

	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			uierrors.Fail(w, h.Log, "audit list", outcome.Validation("start_date must be YYYY-MM-DD"))
			return
		}
		filter.StartTime = &t
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			uierrors.Fail(w, h.Log, "audit list", outcome.Validation("end_date must be YYYY-MM-DD"))
			return
		}
		// inclusive of the whole day
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	events, err := h.Store.Query(ctx, filter)
	if err != nil {
		uierrors.Fail(w, h.Log, "audit list", outcome.Fetch("Unable to load the audit log", err))
		return
	}
	total, err := h.Store.CountByFilter(ctx, filter)
	if err != nil {
		uierrors.Fail(w, h.Log, "audit list", outcome.Fetch("Unable to load the audit log", err))
		return
	}

	uierrors.OK(w, "", listResponse{
		Events:     events,
		Total:      total,
		Page:       page.Number,
		TotalPages: page.TotalPages(total),
	})
}

// ServeEventTypes handles GET /audit/event-types and lists the filter options.
func (h *Handler) ServeEventTypes(w http.ResponseWriter, r *http.Request) {
	uierrors.OK(w, "", allCategories())
}
