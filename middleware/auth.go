package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/courtside/volleytrack/models"
)

// SessionCookieName is the HttpOnly cookie carrying the signed session
// token. A Bearer header is accepted as an alternative for API clients.
const SessionCookieName = "vt_session"

const sessionTTL = 24 * time.Hour

type contextKey string

const sessionContextKey contextKey = "session"

// Authenticator signs and verifies session tokens and exposes the
// middleware that loads them into the request context.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) IssueToken(session *models.Session) (string, time.Time, error) {
	expiresAt := time.Now().Add(sessionTTL)
	claims := jwt.MapClaims{
		"role":    string(session.Role),
		"user_id": session.UserID,
		"team_id": session.TeamID,
		"name":    session.Name,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

func (a *Authenticator) ParseToken(tokenString string) (*models.Session, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	session := &models.Session{
		Role: models.SessionRole(claimString(claims, "role")),
		Name: claimString(claims, "name"),
	}
	if id, ok := claims["user_id"].(float64); ok {
		session.UserID = int(id)
	}
	if id, ok := claims["team_id"].(float64); ok {
		session.TeamID = int(id)
	}
	if session.Role != models.RoleAdmin && session.Role != models.RoleTracker {
		return nil, fmt.Errorf("unknown session role %q", session.Role)
	}
	return session, nil
}

// WithSession resolves the session from the cookie or an Authorization
// Bearer header, if present, and stores it in the request context. It
// never rejects: route groups decide what they require.
func (a *Authenticator) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := ""
		if cookie, err := r.Cookie(SessionCookieName); err == nil {
			tokenString = cookie.Value
		} else if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
			tokenString = strings.TrimPrefix(header, "Bearer ")
		}
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := a.ParseToken(tokenString)
		if err != nil {
			// Expired or garbage tokens degrade to anonymous.
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), session)))
	})
}

// RequireSession rejects anonymous requests.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects anything but an admin session.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())
		if session == nil {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}
		if session.Role != models.RoleAdmin {
			http.Error(w, "admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ContextWithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns the authenticated session, or nil.
func SessionFromContext(ctx context.Context) *models.Session {
	session, _ := ctx.Value(sessionContextKey).(*models.Session)
	return session
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}
