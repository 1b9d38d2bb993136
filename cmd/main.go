package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"
	"github.com/smartcv/searchpanel/internal/clients/brightdata"
	"github.com/smartcv/searchpanel/internal/config"
	"github.com/smartcv/searchpanel/internal/logger"
	"github.com/smartcv/searchpanel/internal/metrics"
	"github.com/smartcv/searchpanel/internal/repositories"
	"github.com/smartcv/searchpanel/internal/server"
	"github.com/smartcv/searchpanel/internal/services"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(cfg.Server.MetricsPort)

	dbContext, err := repositories.NewDbContext(cfg.Warehouse.ConnectionString)
	if err != nil {
		log.Fatalf("failed to open warehouse: %v", err)
	}
	defer func() { _ = dbContext.Close() }()

	if err = dbContext.EnsureSnapshotIndex(cfg.Warehouse.Table); err != nil {
		log.Fatalf("failed to prepare warehouse: %v", err)
	}

	results := repositories.NewResultsRepository(dbContext.DB, cfg.Warehouse.Table, cfg.Warehouse.TimestampColumn)

	collector := brightdata.NewClient(cfg.Collector.APIURL, cfg.Collector.APIKey,
		cfg.Collector.DatasetID, cfg.Collector.WebhookURL)
	collector.SetRateLimit(cfg.Collector.MaxRequestsPerSecond)
	collector.SetTimeout(cfg.Collector.RequestTimeout)

	bus := EventBus.New()
	sessions := services.NewSessions(cfg.Server.SessionTTL)
	flow := services.NewFlow(collector, results, sessions, bus, cfg.Handoff.CVGeneratorURL)

	poller, err := services.NewPoller(flow, cfg.Collector.PollInterval, bus)
	if err != nil {
		log.Fatalf("failed to create status poller: %v", err)
	}

	cleaner, err := services.NewResultsCleaner(results, cfg.Warehouse.RetentionDays)
	if err != nil {
		log.Fatalf("failed to create results cleaner: %v", err)
	}
	defer cleaner.Stop()

	srv := server.NewServer(cfg.Server, flow, poller)

	go func() {
		log.Infof("control panel listening on port %d", cfg.Server.Port)
		if err := srv.Run(); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down services...")
	poller.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("server shutdown error: %v", err)
	}

	log.Info("Services stopped.")
}
