package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/logging"
	"portfolio-backend/internal/relay"
	"portfolio-backend/internal/server"
	"portfolio-backend/internal/site"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := site.NewRouter(cfg.AllowedOrigin, cfg.StaticDir, relay.New(cfg))
	if err := server.ListenAndServe(ctx, ":"+cfg.Port, router); err != nil {
		logging.Fatal("portfolio server failed", "error", err)
	}
}
