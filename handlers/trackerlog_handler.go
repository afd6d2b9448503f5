package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtside/volleytrack/middleware"
	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/services"
)

type TrackerLogHandler struct {
	trackerLogService services.TrackerLogService
}

func NewTrackerLogHandler(trackerLogService services.TrackerLogService) *TrackerLogHandler {
	return &TrackerLogHandler{trackerLogService: trackerLogService}
}

// List returns the most recent audit entries; ?limit caps the count.
func (h *TrackerLogHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			badRequestResponse(w, r, errors.New("invalid limit parameter"))
			return
		}
		limit = parsed
	}

	entries, err := h.trackerLogService.List(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"logs": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MatchSelected records that a tracker opened a match for tracking.
func (h *TrackerLogHandler) MatchSelected(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	session := middleware.SessionFromContext(r.Context())
	entry := &models.TrackerLog{
		MatchID: &matchID,
		Action:  models.TrackerActionMatchSelect,
	}
	if session != nil {
		entry.Detail = session.Name
		if session.Role == models.RoleTracker {
			teamID := session.TeamID
			entry.TeamID = &teamID
		}
	}

	if err = h.trackerLogService.Append(r.Context(), entry); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusCreated, jsonResponse{"log": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
