package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/volleytrack/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func writeFlag(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "downtime.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDowntimeGateDisabledByDefault(t *testing.T) {
	gate := NewDowntimeGate(filepath.Join(t.TempDir(), "missing.json"), testLogger())
	handler := gate.Handler(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDowntimeGateServesMaintenancePage(t *testing.T) {
	path := writeFlag(t, `{"enabled": true, "message": "Back at noon."}`)
	gate := NewDowntimeGate(path, testLogger())
	handler := gate.Handler(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Back at noon.")
}

func TestDowntimeGateSkipsAPIAndHealth(t *testing.T) {
	path := writeFlag(t, `{"enabled": true}`)
	gate := NewDowntimeGate(path, testLogger())
	handler := gate.Handler(okHandler())

	for _, target := range []string{"/api/matches", "/ws/matches/1", "/metrics", "/healthz"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusOK, rec.Code, target)
	}
}

func TestDowntimeGateAdminBypass(t *testing.T) {
	path := writeFlag(t, `{"enabled": true}`)
	gate := NewDowntimeGate(path, testLogger())
	handler := gate.Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	admin := &models.Session{Role: models.RoleAdmin, Name: "Admin"}
	req = req.WithContext(ContextWithSession(req.Context(), admin))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A tracker session does not bypass.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	tracker := &models.Session{Role: models.RoleTracker, TeamID: 1}
	req = req.WithContext(ContextWithSession(req.Context(), tracker))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDowntimeGateCachesFlagReads(t *testing.T) {
	path := writeFlag(t, `{"enabled": false}`)
	gate := NewDowntimeGate(path, testLogger())
	handler := gate.Handler(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	// Flip the file; the cached value holds until the TTL passes.
	require.NoError(t, os.WriteFile(path, []byte(`{"enabled": true}`), 0o644))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Expire the cache by hand instead of sleeping through the TTL.
	gate.mu.Lock()
	gate.fetchedAt = gate.fetchedAt.Add(-2 * downtimeCacheTTL)
	gate.mu.Unlock()

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAuthenticatorTokenRoundTrip(t *testing.T) {
	auth := NewAuthenticator("test-secret-test-secret-test-secret")

	session := &models.Session{Role: models.RoleTracker, TeamID: 7, Name: "Ravens"}
	token, expiresAt, err := auth.IssueToken(session)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	parsed, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleTracker, parsed.Role)
	assert.Equal(t, 7, parsed.TeamID)
	assert.Equal(t, "Ravens", parsed.Name)

	_, err = auth.ParseToken(token + "tampered")
	assert.Error(t, err)

	other := NewAuthenticator("a-completely-different-secret-value")
	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestRequireAdmin(t *testing.T) {
	handler := RequireAdmin(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithSession(req.Context(), &models.Session{Role: models.RoleTracker, TeamID: 1}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(ContextWithSession(req.Context(), &models.Session{Role: models.RoleAdmin, UserID: 1}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWithSessionParsesCookie(t *testing.T) {
	auth := NewAuthenticator("test-secret-test-secret-test-secret")
	token, _, err := auth.IssueToken(&models.Session{Role: models.RoleAdmin, UserID: 3, Name: "Admin"})
	require.NoError(t, err)

	var got *models.Session
	handler := auth.WithSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, got)
	assert.Equal(t, 3, got.UserID)

	// Garbage cookies degrade to anonymous rather than erroring.
	got = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "not-a-token"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, got)
}
