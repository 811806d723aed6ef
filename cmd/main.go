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

	"github.com/Dosada05/bracket-tracker/brackets"
	"github.com/Dosada05/bracket-tracker/config"
	"github.com/Dosada05/bracket-tracker/db"
	"github.com/Dosada05/bracket-tracker/handlers"
	"github.com/Dosada05/bracket-tracker/repositories"
	api "github.com/Dosada05/bracket-tracker/routes"
	"github.com/Dosada05/bracket-tracker/services"
	"github.com/Dosada05/bracket-tracker/storage"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("database", cfg.DatabaseType),
		slog.Int("best_of", cfg.BestOf))

	dbConn, err := db.Connect(cfg.DatabaseType, cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 10*time.Second)
	err = db.CreateSchema(schemaCtx, dbConn, cfg.DatabaseType)
	cancelSchema()
	if err != nil {
		logger.Error("failed to create database schema", slog.Any("error", err))
		os.Exit(1)
	}

	archive := storage.NewNoopSnapshotArchive()
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(context.Background(), storage.CloudflareR2UploaderConfig{
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
		archive = storage.NewSnapshotArchive(uploader)
		logger.Info("snapshot archive enabled", slog.String("bucket", cfg.R2BucketName))
	}

	engine := brackets.NewEngine(
		brackets.WithBestOf(cfg.BestOf),
		brackets.WithLogger(logger.With(slog.String("component", "engine"))),
	)

	bracketRepo := repositories.NewBracketRepository(dbConn)
	competitorRepo := repositories.NewCompetitorRepository(dbConn)

	store := services.NewBracketStore(bracketRepo, archive, logger)
	bracketService := services.NewBracketService(store, competitorRepo, engine, logger)
	matchService := services.NewMatchService(store, engine, logger)
	competitorService := services.NewCompetitorService(dbConn, store, competitorRepo, bracketService, logger)
	logger.Info("services initialized", slog.String("format", engine.GetName()))

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		handlers.NewBracketHandler(bracketService),
		handlers.NewMatchHandler(matchService),
		handlers.NewCompetitorHandler(competitorService),
		cfg.CORSOrigins,
	)

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
		logger.Info("server stopped gracefully")
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
	logger.Info("application exited")
}
