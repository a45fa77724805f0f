// Package main Sweet Shop API
//
// @title        Sweet Shop API
// @version      1.0
// @description  Inventory and purchasing API for a sweet shop.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:5000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/kata/sweetshop/internal/api"
	"github.com/kata/sweetshop/internal/core/ports"
	"github.com/kata/sweetshop/internal/core/service"
	mongodb "github.com/kata/sweetshop/internal/infrastructure/db/mongo"
	redisdb "github.com/kata/sweetshop/internal/infrastructure/db/redis"
	"github.com/kata/sweetshop/internal/infrastructure/http/handlers"
	"github.com/kata/sweetshop/internal/infrastructure/queue"
	"github.com/kata/sweetshop/internal/infrastructure/security"
	"github.com/kata/sweetshop/internal/infrastructure/storage"
	"github.com/kata/sweetshop/internal/pkg/config"
	"github.com/kata/sweetshop/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "sweetshop-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("api stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("api stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	users := mongodb.NewUserRepository(db)
	sweets := mongodb.NewSweetRepository(db)
	movements := mongodb.NewMovementRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, sweets, movements); err != nil {
		return err
	}

	checks := []handlers.DependencyCheck{{Name: "mongodb", Ping: mongodb.Pinger(client)}}

	var revoker ports.TokenRevoker
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		revoker = redisdb.NewTokenRevocationList(rdb)
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: redisdb.Pinger(rdb)})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("token revocation enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, logout will not revoke tokens")
	}

	images, err := storage.NewLocalImageStore(cfg.Uploads.Dir, "/uploads")
	if err != nil {
		return err
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.MovementWorkers,
		service.NewMovementService(movements, logger.Component("movements")), logger.Component("dispatcher"))
	dispatcher.Start(workerCtx)

	authSvc := service.NewAuthService(users, service.AuthOptions{
		Secret:     cfg.Auth.JWTSecret,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
		Revoker:    revoker,
	}, logger.Component("auth"))
	sweetSvc := service.NewSweetService(sweets, logger.Component("inventory"),
		service.WithMovementRecorder(dispatcher),
		service.WithMovementHistory(movements),
		service.WithSanitizer(security.NewTextSanitizer()),
	)

	e := api.NewRouter(api.Dependencies{
		Config:       cfg,
		Logger:       log,
		Auth:         authSvc,
		Inventory:    sweetSvc,
		Images:       service.NewImageService(images, cfg.Uploads.MaxBytes, logger.Component("uploads")),
		HealthChecks: checks,
		Registerer:   prometheus.DefaultRegisterer,
		Gatherer:     prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stopWorkers()
		dispatcher.Wait()
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)

	stopWorkers()
	dispatcher.Wait()
	return err
}
