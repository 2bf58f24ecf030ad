package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"portfolio-backend/internal/assistant"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/db"
	"portfolio-backend/internal/logging"
	"portfolio-backend/internal/server"
	"portfolio-backend/internal/store"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := assistant.New(ctx, cfg)
	if err != nil {
		logging.Fatal("failed to build assistant", "error", err)
	}

	fileArchive := store.NewFileSubmissionStore(cfg.SubmissionsFile)
	slog.Info("contact archive loaded", "file", cfg.SubmissionsFile, "submissions", len(fileArchive.Load()))
	archive := store.MultiArchive{fileArchive}
	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logging.Fatal("failed to connect to database", "error", err)
		}
		defer database.Close()
		if err := database.RunMigrations(ctx, cfg.MigrationsDir); err != nil {
			logging.Fatal("failed to run migrations", "error", err)
		}
		archive = append(archive, store.NewDatabaseStore(database))
	} else {
		slog.Info("DB_URL not set, archiving contact submissions to file only", "file", cfg.SubmissionsFile)
	}

	s := server.NewServer(cfg, a, archive, database)
	if err := server.ListenAndServe(ctx, ":"+cfg.AssistantPort, s.Router()); err != nil {
		logging.Fatal("assistant server failed", "error", err)
	}
}
