package handlers

import (
	"net/http"

	"github.com/courtside/volleytrack/middleware"
	"github.com/courtside/volleytrack/services"
)

type StatHandler struct {
	statService services.StatService
}

func NewStatHandler(statService services.StatService) *StatHandler {
	return &StatHandler{statService: statService}
}

// Record applies one stat event to a match's current set.
func (h *StatHandler) Record(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RecordStatInput
	if err = readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.MatchID = matchID

	session := middleware.SessionFromContext(r.Context())
	result, err := h.statService.RecordStat(r.Context(), session, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusCreated, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Undo reverses the single most recent stat event. The body may pin the
// expected entry with {"log_id": "..."}; a mismatch is a conflict.
func (h *StatHandler) Undo(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		LogID string `json:"log_id"`
	}
	// An empty body means "undo whatever is newest".
	if r.ContentLength > 0 {
		if err = readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	session := middleware.SessionFromContext(r.Context())
	result, err := h.statService.UndoLast(r.Context(), session, matchID, input.LogID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatHandler) MatchStats(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.statService.MatchStats(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MatchLogs returns the match's stat log, newest first.
func (h *StatHandler) MatchLogs(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	logs, err := h.statService.MatchLogs(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"logs": logs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatHandler) Totals(w http.ResponseWriter, r *http.Request) {
	playerID, err := idParam(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	totals, err := h.statService.Totals(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"totals": totals}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StatHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.statService.Leaderboard(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
