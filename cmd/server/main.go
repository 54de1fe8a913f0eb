package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tableserve/pos-portal/docs"
	"github.com/tableserve/pos-portal/internal/api"
	"github.com/tableserve/pos-portal/internal/core/domain"
	"github.com/tableserve/pos-portal/internal/core/ports"
	"github.com/tableserve/pos-portal/internal/core/service"
	"github.com/tableserve/pos-portal/internal/infrastructure/config"
	mongodb "github.com/tableserve/pos-portal/internal/infrastructure/db/mongo"
	redisdb "github.com/tableserve/pos-portal/internal/infrastructure/db/redis"
	"github.com/tableserve/pos-portal/internal/infrastructure/queue"
	"github.com/tableserve/pos-portal/pkg/logger"
)

const (
	tokenTTL        = 24 * time.Hour
	shutdownTimeout = 10 * time.Second
)

// @title        POS Portal API
// @version      1.0
// @description  Multi-tenant POS access scoping: device-scoped catalog visibility and device liveness.
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- MongoDB ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
	}()

	// --- Redis ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connect failed")
	}
	defer rdb.Close()

	// --- Repositories ---
	deviceRepo := mongodb.NewDeviceRepository(db)
	catalogRepo := mongodb.NewCatalogRepository(db)
	authRepo := mongodb.NewAuthRepository(db)

	if err := deviceRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("device indexes failed")
	}
	if err := catalogRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("catalog indexes failed")
	}

	// --- Services ---
	throttle := redisdb.NewHeartbeatThrottle(rdb)
	deviceService := service.NewDeviceService(deviceRepo, throttle, cfg.LivenessWindow, log)
	scopeResolver := service.NewScopeResolver(deviceRepo)
	portalService := service.NewPortalService(catalogRepo, scopeResolver, cfg.LivenessWindow, log)
	authService := service.NewAuthService(authRepo, cfg.JWTSecret, tokenTTL)

	// Batch-ingested heartbeats are applied with platform scope; per-request
	// tenant checks already happened at the ingestion endpoint.
	dispatcher := queue.NewDispatcher(cfg.HeartbeatWorkers, deviceService,
		ports.AdminScope{Role: domain.RolePlatformOwner}, log)
	dispatcher.Start(ctx)

	// --- HTTP server ---
	docs.SwaggerInfo.Host = "localhost:" + cfg.Port
	e := api.NewRouter(api.RouterDeps{
		Portal:    portalService,
		Devices:   deviceService,
		Auth:      authService,
		Queue:     dispatcher,
		DB:        db,
		Redis:     rdb,
		JWTSecret: cfg.JWTSecret,
		Logger:    log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// --- Graceful shutdown ---
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	cancel() // stop dispatcher workers
}
