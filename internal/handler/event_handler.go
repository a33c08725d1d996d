package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"eventshuffle/internal/domain"
	"eventshuffle/internal/service"
	apperrors "eventshuffle/pkg/errors"
	"eventshuffle/pkg/logger"
)

// EventBasePath is where the event routes are mounted
const EventBasePath = "/api/v1/event"

type EventHandler struct {
	events   service.EventManager
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEventHandler(events service.EventManager, logger *logger.Logger) *EventHandler {
	return &EventHandler{
		events:   events,
		validate: newValidator(),
		logger:   logger,
	}
}

// Routes returns the event routes, relative to EventBasePath
func (h *EventHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/list", h.ListEvents)
	r.Post("/", h.CreateEvent)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.GetEvent)
		r.Post("/vote", h.SubmitVote)
		r.Get("/results", h.GetResults)
		r.Get("/results.ics", h.ExportResults)
	})
	return r
}

// ListEvents handles GET /api/v1/event/list
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.events.ListEvents(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, list)
}

// CreateEvent handles POST /api/v1/event
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEventRequest
	if err := decodeAndValidate(h.validate, w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	resp, err := h.events.CreateEvent(r.Context(), req.Name, req.Dates, req.Recurrence)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("%s/%d", EventBasePath, resp.ID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetEvent handles GET /api/v1/event/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	view, err := h.events.GetEvent(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if view == nil {
		respondError(w, r, h.logger, eventNotFound(id))
		return
	}

	respondCacheable(w, r, view)
}

// SubmitVote handles POST /api/v1/event/{id}/vote
func (h *EventHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	var req domain.CreateVoteRequest
	if err := decodeAndValidate(h.validate, w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	view, err := h.events.SubmitVote(r.Context(), id, req.Name, req.Votes)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if view == nil {
		respondError(w, r, h.logger, eventNotFound(id))
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// GetResults handles GET /api/v1/event/{id}/results
func (h *EventHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	results, err := h.events.GetResults(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if results == nil {
		respondError(w, r, h.logger, eventNotFound(id))
		return
	}

	respondCacheable(w, r, results)
}

// ExportResults handles GET /api/v1/event/{id}/results.ics
func (h *EventHandler) ExportResults(w http.ResponseWriter, r *http.Request) {
	id, ok := h.eventID(w, r)
	if !ok {
		return
	}

	data, err := h.events.ExportResultsCalendar(r.Context(), id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if data == nil {
		respondError(w, r, h.logger, eventNotFound(id))
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="event-%d.ics"`, id))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// RedirectToList handles GET /
func (h *EventHandler) RedirectToList(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, EventBasePath+"/list", http.StatusFound)
}

func (h *EventHandler) eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, h.logger, apperrors.NewValidationError("Invalid event id", map[string]interface{}{
			"id": raw,
		}))
		return 0, false
	}
	return id, true
}

func eventNotFound(id int64) *apperrors.AppError {
	appErr := apperrors.NewNotFoundError("Event not found")
	appErr.Details = map[string]interface{}{"id": id}
	return appErr
}
