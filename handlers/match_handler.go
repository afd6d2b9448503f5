package handlers

import (
	"fmt"
	"net/http"

	"github.com/courtside/volleytrack/middleware"
	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.MatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List returns matches, optionally filtered by ?status=scheduled|completed.
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *models.MatchStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.MatchStatus(raw)
		if s != models.MatchStatusScheduled && s != models.MatchStatusCompleted {
			badRequestResponse(w, r, fmt.Errorf("unknown match status %q", raw))
			return
		}
		status = &s
	}

	matches, err := h.matchService.List(r.Context(), status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.MatchInput
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Update(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err = h.matchService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdvanceSet locks the current set and moves the match to the next one.
func (h *MatchHandler) AdvanceSet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.AdvanceSet(r.Context(), id, actorTeamID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Finalize completes the match and locks every set.
func (h *MatchHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Finalize(r.Context(), id, actorTeamID(r))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Score(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	score, err := h.matchService.GetScore(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"score": score}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// actorTeamID extracts the tracker team for audit entries; nil for
// admin or anonymous sessions.
func actorTeamID(r *http.Request) *int {
	session := middleware.SessionFromContext(r.Context())
	if session == nil || session.Role != models.RoleTracker {
		return nil
	}
	teamID := session.TeamID
	return &teamID
}
