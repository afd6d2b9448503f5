package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/courtside/volleytrack/middleware"
	"github.com/courtside/volleytrack/models"
	"github.com/courtside/volleytrack/services"
)

type AuthHandler struct {
	authService  services.AuthService
	auth         *middleware.Authenticator
	secureCookie bool
}

func NewAuthHandler(authService services.AuthService, auth *middleware.Authenticator, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		auth:         auth,
		secureCookie: secureCookie,
	}
}

// Login authenticates either an admin (email + password) or a team
// tracker (team_id + password) and sets the session cookie. The token
// is also returned in the body for non-browser clients.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		TeamID   int    `json:"team_id"`
		Password string `json:"password"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Password == "" || (input.Email == "" && input.TeamID == 0) {
		badRequestResponse(w, r, errors.New("either email or team_id is required, along with password"))
		return
	}

	var (
		session *models.Session
		err     error
	)
	if input.Email != "" {
		session, err = h.authService.AdminLogin(r.Context(), input.Email, input.Password)
	} else {
		session, err = h.authService.TrackerLogin(r.Context(), input.TeamID, input.Password)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	token, expiresAt, err := h.auth.IssueToken(session)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	http.SetCookie(w, h.sessionCookie(token, expiresAt))

	response := jsonResponse{"session": session, "token": token}
	if err = writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Logout(r.Context(), middleware.SessionFromContext(r.Context()))
	http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0)))

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "logged out"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CurrentUser returns the session behind the cookie, or 401.
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == nil {
		unauthorizedResponse(w, r, "not logged in")
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": session}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AuthHandler) sessionCookie(value string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
