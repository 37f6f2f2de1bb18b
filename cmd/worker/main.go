package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/greenmap/internal/adapters/nats"
	"github.com/samirrijal/greenmap/internal/adapters/postgres"
	"github.com/samirrijal/greenmap/internal/adapters/storage"
	"github.com/samirrijal/greenmap/internal/adapters/valkey"
	"github.com/samirrijal/greenmap/internal/core/domain"
	"github.com/samirrijal/greenmap/internal/core/ports"
	"github.com/samirrijal/greenmap/internal/core/usecases"
	"github.com/samirrijal/greenmap/internal/pkg/config"
	"github.com/samirrijal/greenmap/internal/pkg/logging"
	"github.com/samirrijal/greenmap/internal/workflows"
)

func main() {
	cfg, err := config.Load("greenmap-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, community cache will not be invalidated", "error", err)
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	images, err := storage.NewDiskStore(cfg.Server.UploadDir, cfg.Server.UploadsURL(), usecases.MaxImageBytes)
	if err != nil {
		log.Fatalf("upload dir: %v", err)
	}

	zoneRepo := postgres.NewZoneRepo(db)
	communities := usecases.NewCommunityService(postgres.NewCommunityRepo(db), cacheSvc, nil)

	// Event consumers keep other API instances' community caches fresh
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats subscriber unavailable", "error", err)
	} else {
		defer sub.Close()
		err = sub.SubscribeZoneCreated(ctx, "worker-zone-created", func(ctx context.Context, z *domain.GreenZone) error {
			communities.Invalidate(ctx, z.CommunityID)
			return nil
		})
		if err != nil {
			log.Fatalf("subscribe: %v", err)
		}
		err = sub.SubscribeZoneVerified(ctx, "worker-zone-verified", func(ctx context.Context, v *domain.Verification) error {
			zone, err := zoneRepo.GetByID(ctx, v.ZoneID)
			if err != nil {
				return err
			}
			communities.Invalidate(ctx, zone.CommunityID)
			return nil
		})
		if err != nil {
			log.Fatalf("subscribe: %v", err)
		}
	}

	if !cfg.Temporal.Enabled {
		slog.Info("temporal disabled, running event consumers only")
		<-worker.InterruptCh()
		return
	}

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.PlantingVerificationWorkflow)
	w.RegisterActivity(&workflows.PlantingActivities{
		Zones:         zoneRepo,
		Verifications: postgres.NewVerificationRepo(db),
		Images:        images,
		Events:        events,
	})

	slog.Info("verification worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
