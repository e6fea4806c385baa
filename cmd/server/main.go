package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/vidstream/account-service/internal/api"
	mongodb "github.com/vidstream/account-service/internal/infrastructure/db/mongo"
	redisdb "github.com/vidstream/account-service/internal/infrastructure/db/redis"
	s3storage "github.com/vidstream/account-service/internal/infrastructure/storage/s3"
	"github.com/vidstream/account-service/internal/pkg/config"
	"github.com/vidstream/account-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongodb index bootstrap failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	uploader, err := s3storage.NewUploader(ctx, s3storage.Config{
		Region:        cfg.S3.Region,
		Endpoint:      cfg.S3.Endpoint,
		Bucket:        cfg.S3.Bucket,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("media storage setup failed")
	}

	e := api.NewRouter(db, rdb, uploader, cfg, log)

	// Serve errors come back to the main goroutine so the deferred
	// mongo/redis teardown still runs.
	serveErr := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error().Err(err).Msg("server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
