// Command sheetdrop starts the spreadsheet upload portal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"sheetdrop/internal/config"
	"sheetdrop/internal/crypto"
	"sheetdrop/internal/server"
	"sheetdrop/internal/service"
	"sheetdrop/internal/session"
	"sheetdrop/internal/store"
	"sheetdrop/internal/upload"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	// The signing secret must never be predictable. Without one in the
	// environment, sessions do not survive a restart.
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret, err = crypto.RandBytes(32)
		if err != nil {
			logger.Fatal("generate session secret", zap.Error(err))
		}
		logger.Warn("SHEETDROP_SESSION_SECRET not set, generated a per-instance secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	if err := store.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	var blobs upload.BlobStore
	if cfg.S3.Enabled() {
		blobs, err = upload.NewMinioStore(cfg.S3)
		if err != nil {
			logger.Fatal("object storage", zap.Error(err))
		}
		logger.Info("storing uploads in object storage", zap.String("bucket", cfg.S3.Bucket))
	} else {
		blobs, err = upload.NewFSStore(cfg.UploadDir)
		if err != nil {
			logger.Fatal("upload directory", zap.Error(err))
		}
		logger.Info("storing uploads on the filesystem", zap.String("dir", cfg.UploadDir))
	}

	srv := server.New(server.Config{
		Addr:           cfg.Addr,
		Logger:         logger,
		Auth:           service.NewAuth(store.NewUsers(db)),
		Sessions:       session.NewManager(secret, cfg.SessionTTL, false),
		Uploads:        upload.NewService(blobs),
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting", zap.String("addr", cfg.Addr))
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
			os.Exit(1)
		}
		logger.Info("shutdown complete")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}
}
