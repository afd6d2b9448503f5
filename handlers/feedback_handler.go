package handlers

import (
	"net/http"

	"github.com/courtside/volleytrack/services"
)

type FeedbackHandler struct {
	feedbackService services.FeedbackService
}

func NewFeedbackHandler(feedbackService services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.feedbackService.Submit(r.Context(), input.Name, input.Message)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusCreated, jsonResponse{"feedback": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.feedbackService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err = writeJSON(w, http.StatusOK, jsonResponse{"feedback": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
