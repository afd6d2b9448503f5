package routes

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/courtside/volleytrack/handlers"
	"github.com/courtside/volleytrack/middleware"
)

//go:embed swagger.json
var swaggerDoc []byte

// Handlers collects everything the router mounts.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Players    *handlers.PlayerHandler
	Teams      *handlers.TeamHandler
	Matches    *handlers.MatchHandler
	Stats      *handlers.StatHandler
	Feedback   *handlers.FeedbackHandler
	TrackerLog *handlers.TrackerLogHandler
	WebSocket  *handlers.WebSocketHandler
}

func New(h Handlers, auth *middleware.Authenticator, downtime *middleware.DowntimeGate) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Use(auth.WithSession)
	router.Use(downtime.Handler)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(swaggerDoc)
	})
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Get("/ws/matches/{matchID}", h.WebSocket.SubscribeMatch)

	router.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.Get("/user", h.Auth.CurrentUser)

		r.Route("/players", func(r chi.Router) {
			r.Get("/", h.Players.List)
			r.Get("/{playerID}", h.Players.Get)
			r.Get("/{playerID}/totals", h.Stats.Totals)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.Players.Create)
				r.Post("/import", h.Players.Import)
				r.Put("/{playerID}", h.Players.Update)
				r.Delete("/{playerID}", h.Players.Delete)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.Teams.List)
			r.Get("/{teamID}", h.Teams.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.Teams.Create)
				r.Put("/{teamID}", h.Teams.Update)
				r.Delete("/{teamID}", h.Teams.Delete)
				r.Put("/{teamID}/password", h.Teams.SetPassword)
				r.Post("/{teamID}/logo", h.Teams.UploadLogo)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", h.Matches.List)
			r.Get("/{matchID}", h.Matches.Get)
			r.Get("/{matchID}/score", h.Matches.Score)
			r.Get("/{matchID}/stats", h.Stats.MatchStats)
			r.Get("/{matchID}/logs", h.Stats.MatchLogs)

			// Match administration.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", h.Matches.Create)
				r.Put("/{matchID}", h.Matches.Update)
				r.Delete("/{matchID}", h.Matches.Delete)
			})

			// Live tracking: trackers and admins. The stat service also
			// checks that a tracker session belongs to the match's
			// tracker team.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession)
				r.Post("/{matchID}/stats", h.Stats.Record)
				r.Post("/{matchID}/stats/undo", h.Stats.Undo)
				r.Post("/{matchID}/advance-set", h.Matches.AdvanceSet)
				r.Post("/{matchID}/finalize", h.Matches.Finalize)
				r.Post("/{matchID}/select", h.TrackerLog.MatchSelected)
			})
		})

		r.Get("/leaderboard", h.Stats.Leaderboard)

		r.Post("/feedback", h.Feedback.Submit)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/feedback", h.Feedback.List)
			r.Get("/tracker-logs", h.TrackerLog.List)
		})
	})

	return router
}
