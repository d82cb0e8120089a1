// internal/app/features/events/handler.go
package events

import (
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/eventdesk/internal/app/features/errors"
	eventstore "github.com/dalemusser/eventdesk/internal/app/store/events"
	"github.com/dalemusser/eventdesk/internal/app/system/htmlsanitize"
	"github.com/dalemusser/eventdesk/internal/app/system/outcome"
	"github.com/dalemusser/eventdesk/internal/app/system/timeouts"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the event catalogue endpoints.
type Handler struct {
	Store *eventstore.Store
	Log   *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Store: eventstore.New(db), Log: logger}
}

type createRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Category    string     `json:"category" validate:"required,max=100"`
	Description string     `json:"description" validate:"max=5000"`
	Venue       string     `json:"venue" validate:"max=200"`
	Fee         float64    `json:"fee" validate:"gte=0"`
	MaxTeamSize int        `json:"max_team_size" validate:"gte=0,lte=100"`
	StartsAt    *time.Time `json:"starts_at"`
}

type updateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Category    *string    `json:"category" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Venue       *string    `json:"venue" validate:"omitempty,max=200"`
	Fee         *float64   `json:"fee" validate:"omitempty,gte=0"`
	MaxTeamSize *int       `json:"max_team_size" validate:"omitempty,gte=0,lte=100"`
	StartsAt    *time.Time `json:"starts_at"`
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// storeErr maps event store errors onto outcome kinds.
func storeErr(msg string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return outcome.NotFound("Event not found")
	case errors.Is(err, eventstore.ErrDuplicateEventName):
		return outcome.Validation("An event with this name already exists")
	default:
		return outcome.Fetch(msg, err)
	}
}

// ServeList handles GET /events. ?q= searches name, description and
// category; otherwise ?category= narrows the catalogue.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list events")
	defer cancel()

	var (
		list []models.Event
		err  error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		list, err = h.Store.Search(ctx, q)
	} else {
		list, err = h.Store.List(ctx, r.URL.Query().Get("category"))
	}
	if err != nil {
		uierrors.Fail(w, h.Log, "list events", outcome.Fetch("Failed to fetch events", err))
		return
	}
	if list == nil {
		list = []models.Event{}
	}
	uierrors.OK(w, "", list)
}

// ServeCategories handles GET /events/categories.
func (h *Handler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "event categories")
	defer cancel()

	cats, err := h.Store.Categories(ctx)
	if err != nil {
		uierrors.Fail(w, h.Log, "event categories", outcome.Fetch("Failed to fetch categories", err))
		return
	}
	uierrors.OK(w, "", cats)
}

// ServeGet handles GET /events/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get event")
	defer cancel()

	e, err := h.Store.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, h.Log, "get event", storeErr("Failed to fetch event", err))
		return
	}
	uierrors.OK(w, "", e)
}

// ServeCreate handles POST /events.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := uierrors.DecodeJSON(r, &req); err != nil {
		uierrors.Fail(w, h.Log, "create event", err)
		return
	}
	name := strings.TrimSpace(req.Name)
	category := strings.TrimSpace(req.Category)
	if name == "" || category == "" {
		uierrors.Fail(w, h.Log, "create event", outcome.Validation("name and category are required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create event")
	defer cancel()

	e := models.Event{
		Name:        name,
		Category:    category,
		Description: htmlsanitize.Sanitize(strings.TrimSpace(req.Description)),
		Venue:       strings.TrimSpace(req.Venue),
		Fee:         req.Fee,
		MaxTeamSize: req.MaxTeamSize,
	}
	if req.StartsAt != nil {
		e.StartsAt = req.StartsAt.UTC()
	}

	created, err := h.Store.Create(ctx, e)
	if err != nil {
		uierrors.Fail(w, h.Log, "create event", storeErr("Failed to create event", err))
		return
	}
	h.Log.Info("event created", zap.String("event_id", created.ID), zap.String("name", created.Name))
	uierrors.WriteJSON(w, http.StatusCreated, outcome.OK("Event created", created))
}

// ServeUpdate handles PUT /events/{id}. Absent fields are left unchanged.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := uierrors.DecodeJSON(r, &req); err != nil {
		uierrors.Fail(w, h.Log, "update event", err)
		return
	}
	p := eventstore.Patch{
		Name:        trimPtr(req.Name),
		Category:    trimPtr(req.Category),
		Venue:       trimPtr(req.Venue),
		Fee:         req.Fee,
		MaxTeamSize: req.MaxTeamSize,
		StartsAt:    req.StartsAt,
	}
	if (p.Name != nil && *p.Name == "") || (p.Category != nil && *p.Category == "") {
		uierrors.Fail(w, h.Log, "update event", outcome.Validation("name and category cannot be blank"))
		return
	}
	if req.Description != nil {
		d := htmlsanitize.Sanitize(strings.TrimSpace(*req.Description))
		p.Description = &d
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "update event")
	defer cancel()

	id := chi.URLParam(r, "id")
	e, err := h.Store.Update(ctx, id, p)
	if err != nil {
		uierrors.Fail(w, h.Log, "update event", storeErr("Failed to update event", err))
		return
	}
	h.Log.Info("event updated", zap.String("event_id", id))
	uierrors.OK(w, "Event updated", e)
}

// ServeDelete handles DELETE /events/{id}. Registrations keep their copy of
// the event name.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete event")
	defer cancel()

	id := chi.URLParam(r, "id")
	n, err := h.Store.Delete(ctx, id)
	if err != nil {
		uierrors.Fail(w, h.Log, "delete event", outcome.Write("Failed to delete event", err))
		return
	}
	if n == 0 {
		uierrors.Fail(w, h.Log, "delete event", outcome.NotFound("Event not found"))
		return
	}
	h.Log.Info("event deleted", zap.String("event_id", id))
	uierrors.OK(w, "Event deleted", nil)
}
