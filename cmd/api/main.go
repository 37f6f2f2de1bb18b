package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"github.com/samirrijal/greenmap/internal/adapters/http"
	natsadapter "github.com/samirrijal/greenmap/internal/adapters/nats"
	"github.com/samirrijal/greenmap/internal/adapters/postgres"
	"github.com/samirrijal/greenmap/internal/adapters/storage"
	"github.com/samirrijal/greenmap/internal/adapters/valkey"
	"github.com/samirrijal/greenmap/internal/core/ports"
	"github.com/samirrijal/greenmap/internal/core/usecases"
	"github.com/samirrijal/greenmap/internal/pkg/auth"
	"github.com/samirrijal/greenmap/internal/pkg/config"
	"github.com/samirrijal/greenmap/internal/pkg/geospatial"
	"github.com/samirrijal/greenmap/internal/pkg/logging"
	"github.com/samirrijal/greenmap/internal/pkg/metrics"
	"github.com/samirrijal/greenmap/internal/pkg/telemetry"
	"github.com/samirrijal/greenmap/internal/workflows"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load("greenmap-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go reportPoolStats(ctx, db)

	// Cache (optional; reads fall through to the database)
	var cacheSvc ports.CacheService
	var cachePinger http.Pinger
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer cache.Close()
		cacheSvc, cachePinger = cache, cache
	}

	// NATS (optional; events are dropped while it is down)
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer natsConn.Close()
	}

	images, err := storage.NewDiskStore(cfg.Server.UploadDir, cfg.Server.UploadsURL(), usecases.MaxImageBytes)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	tokens, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.Fatalf("jwt: %v", err)
	}

	// Repos
	userRepo := postgres.NewUserRepo(db)
	communityRepo := postgres.NewCommunityRepo(db)
	zoneRepo := postgres.NewZoneRepo(db)
	verificationRepo := postgres.NewVerificationRepo(db)
	dashboardRepo := postgres.NewDashboardRepo(db)

	// Use cases
	verificationSvc := usecases.NewVerificationService(zoneRepo, verificationRepo, images, events)
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    tlog.NewStructuredLogger(slog.Default()),
		})
		if err != nil {
			log.Fatalf("temporal client: %v", err)
		}
		defer tc.Close()
		verificationSvc.UseWorkflow(workflows.NewStarter(tc, cfg.Temporal.TaskQueue))
		slog.Info("planting verifications run as workflows", "task_queue", cfg.Temporal.TaskQueue)
	}

	deps := &http.Dependencies{
		Detection:     usecases.NewDetectionService(geospatial.GlobalSource),
		Dashboard:     usecases.NewDashboardService(dashboardRepo),
		Auth:          usecases.NewAuthService(userRepo, tokens),
		Communities:   usecases.NewCommunityService(communityRepo, cacheSvc, events),
		Zones:         usecases.NewGreenZoneService(zoneRepo, communityRepo, cacheSvc, events),
		Verifications: verificationSvc,
		Tokens:        tokens,
		NATS:          natsConn,
		DB:            db,
		Cache:         cachePinger,
		UploadDir:     cfg.Server.UploadDir,
		CORSOrigins:   cfg.Server.CORSOrigins,
		Version:       version,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		AppName:      "GreenMap API",
	})

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats refreshes the connection pool gauges until ctx ends.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
