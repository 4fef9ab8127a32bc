package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snapfeed/internal/config"
	"snapfeed/internal/db"
	"snapfeed/internal/logger"
	"snapfeed/internal/router"
	"snapfeed/internal/services"
	"snapfeed/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load .env file and environment
	cfg, envLoaded := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	if !envLoaded {
		zap.L().Info("No .env file found, reading configuration from the environment")
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// Initialize Database (schema failures are logged, not fatal)
	gdb, err := db.Init(ctx, cfg.DB)
	if err != nil {
		zap.L().Fatal("invalid database configuration", zap.Error(err))
	}

	// Initialize Object Store
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		zap.L().Fatal("invalid storage configuration", zap.Error(err))
	}

	posts := services.NewPostService(gdb, cfg.DB.QueryTimeout)
	uploader := services.NewImageUploader(store, cfg.Storage.Prefix)

	r, err := router.New(router.Dependencies{
		Posts:          posts,
		Uploader:       uploader,
		Store:          store,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		zap.L().Fatal("build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zap.L().Info("snapfeed server starting",
			zap.String("port", cfg.Port),
			zap.String("db_driver", cfg.DB.Driver),
			zap.String("storage_driver", cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	zap.L().Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP server shutdown failed", zap.Error(err))
	}
	if sqlDB, err := gdb.DB(); err == nil {
		sqlDB.Close()
	}
	if closer, ok := store.(io.Closer); ok {
		closer.Close()
	}
	zap.L().Info("Server stopped gracefully")
}
