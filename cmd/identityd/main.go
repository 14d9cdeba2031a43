package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"galaxy-airline/internal/app"
	"galaxy-airline/internal/config"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := app.NewServer(config.Load(), logger)
	if err := srv.Init(ctx); err != nil {
		logger.Fatal("failed to start identity service", zap.Error(err))
	}
	defer srv.Close()

	if err := srv.Run(ctx); err != nil {
		logger.Error("identity service stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("identity service stopped")
}
