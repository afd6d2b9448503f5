package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtside/volleytrack/config"
	"github.com/courtside/volleytrack/db"
	"github.com/courtside/volleytrack/handlers"
	"github.com/courtside/volleytrack/live"
	"github.com/courtside/volleytrack/metrics"
	"github.com/courtside/volleytrack/middleware"
	"github.com/courtside/volleytrack/repositories"
	"github.com/courtside/volleytrack/routes"
	"github.com/courtside/volleytrack/services"
	"github.com/courtside/volleytrack/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	if err = db.Migrate(dbConn); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema up to date")

	// Logo uploads are optional: without R2 credentials the server runs
	// and the upload endpoint reports uploads as unconfigured.
	var uploader storage.FileUploader
	if cfg.R2AccountID != "" {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 not configured, logo uploads disabled")
	}

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("live hub started")

	recorder := metrics.New()

	transactor := repositories.NewSQLTransactor(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	statRepo := repositories.NewPostgresStatRepository(dbConn)
	statLogRepo := repositories.NewPostgresStatLogRepository(dbConn)
	trackerLogRepo := repositories.NewPostgresTrackerLogRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	feedbackRepo := repositories.NewPostgresFeedbackRepository(dbConn)

	authService := services.NewAuthService(userRepo, teamRepo, trackerLogRepo)
	playerService := services.NewPlayerService(playerRepo)
	teamService := services.NewTeamService(teamRepo, playerRepo, uploader)
	matchService := services.NewMatchService(transactor, matchRepo, teamRepo, trackerLogRepo, hub, recorder)
	statService := services.NewStatService(transactor, statRepo, statLogRepo, matchRepo, playerRepo, teamRepo, trackerLogRepo, hub, recorder)
	trackerLogService := services.NewTrackerLogService(trackerLogRepo)
	feedbackService := services.NewFeedbackService(feedbackRepo)
	logger.Info("services initialized")

	authenticator := middleware.NewAuthenticator(cfg.JWTSecretKey)
	downtime := middleware.NewDowntimeGate(cfg.DowntimeFile, logger)

	router := routes.New(routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, authenticator, false),
		Players:    handlers.NewPlayerHandler(playerService),
		Teams:      handlers.NewTeamHandler(teamService),
		Matches:    handlers.NewMatchHandler(matchService),
		Stats:      handlers.NewStatHandler(statService),
		Feedback:   handlers.NewFeedbackHandler(feedbackService),
		TrackerLog: handlers.NewTrackerLogHandler(trackerLogService),
		WebSocket:  handlers.NewWebSocketHandler(hub, logger),
	}, authenticator, downtime)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
