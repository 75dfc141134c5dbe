package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/splitr/splitr/internal/auth"
	"github.com/splitr/splitr/internal/config"
	"github.com/splitr/splitr/internal/imagestore"
	"github.com/splitr/splitr/internal/ocr"
	"github.com/splitr/splitr/internal/server"
	"github.com/splitr/splitr/internal/service"
	"github.com/splitr/splitr/internal/storage/sqlite"
	"github.com/splitr/splitr/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	var images imagestore.Store = imagestore.Disabled{}
	if cfg.S3Bucket != "" {
		images, err = imagestore.NewS3Store(context.Background(), imagestore.S3Config{
			AccessKeyID:     cfg.AwsAccessKeyID,
			SecretAccessKey: cfg.AwsSecretAccessKey,
			Region:          cfg.AwsRegion,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			BaseURL:         cfg.ImageBaseURL,
		})
		if err != nil {
			slog.Error("Failed to configure image storage", "error", err)
			os.Exit(1)
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JwtSecret, cfg.JwtTTL)
	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager)
	parser := ocr.NewClient(cfg.ParserBaseURL, cfg.ParserTimeout)
	receiptSvc := service.NewReceiptService(store, parser, images)
	splitSvc := service.NewSplitService(store)

	router := server.New(authSvc, receiptSvc, splitSvc, jwtManager).Router()
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		slog.Info("Server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}
