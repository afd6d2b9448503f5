package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/courtside/volleytrack/models"
)

const downtimeCacheTTL = 30 * time.Second

type downtimeFlag struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

// DowntimeGate serves a maintenance page while a JSON flag file has
// enabled set. The file is re-read at most once per TTL so the gate
// costs nothing on the hot path. Admin sessions bypass the gate, as do
// API and websocket routes, which fail closed at the service layer
// instead of showing a static page.
type DowntimeGate struct {
	path   string
	logger *slog.Logger

	mu        sync.Mutex
	cached    downtimeFlag
	fetchedAt time.Time
}

func NewDowntimeGate(path string, logger *slog.Logger) *DowntimeGate {
	return &DowntimeGate{path: path, logger: logger}
}

func (g *DowntimeGate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.path == "" || g.skip(r) {
			next.ServeHTTP(w, r)
			return
		}

		flag := g.current()
		if !flag.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		if session := SessionFromContext(r.Context()); session != nil && session.Role == models.RoleAdmin {
			next.ServeHTTP(w, r)
			return
		}

		message := flag.Message
		if message == "" {
			message = "Scheduled maintenance in progress. Please check back shortly."
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Retry-After", "60")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(
			"<!doctype html><html><head><title>Down for maintenance</title></head>" +
				"<body><h1>Down for maintenance</h1><p>" + message + "</p></body></html>\n"))
	})
}

func (g *DowntimeGate) skip(r *http.Request) bool {
	p := r.URL.Path
	return strings.HasPrefix(p, "/api/") ||
		strings.HasPrefix(p, "/ws/") ||
		strings.HasPrefix(p, "/metrics") ||
		p == "/healthz"
}

func (g *DowntimeGate) current() downtimeFlag {
	g.mu.Lock()
	defer g.mu.Unlock()

	if time.Since(g.fetchedAt) < downtimeCacheTTL {
		return g.cached
	}
	g.fetchedAt = time.Now()

	data, err := os.ReadFile(g.path)
	if err != nil {
		// Missing file means no downtime.
		if !os.IsNotExist(err) {
			g.logger.Warn("failed to read downtime flag file", slog.String("path", g.path), slog.Any("error", err))
		}
		g.cached = downtimeFlag{}
		return g.cached
	}

	var flag downtimeFlag
	if err = json.Unmarshal(data, &flag); err != nil {
		g.logger.Warn("downtime flag file is not valid JSON", slog.String("path", g.path), slog.Any("error", err))
		g.cached = downtimeFlag{}
		return g.cached
	}
	g.cached = flag
	return g.cached
}
