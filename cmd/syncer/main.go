// Command syncer mirrors the bridge hub and its chain adapters into
// the relational store and keeps ticket lifecycle status converging
// toward what each adapter reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bridge-syncer/internal/clients"
	"bridge-syncer/internal/clients/adapters"
	"bridge-syncer/internal/config"
	"bridge-syncer/internal/db"
	"bridge-syncer/internal/events"
	"bridge-syncer/internal/handlers"
	"bridge-syncer/internal/repository"
	"bridge-syncer/internal/router"
	"bridge-syncer/internal/services"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.NewEntry(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}

	chainRepo := repository.NewChainRepository(gdb)
	tokenRepo := repository.NewTokenRepository(gdb)
	ticketRepo := repository.NewTicketRepository(gdb)

	hub := clients.NewHubClient(cfg.Hub.BaseURL, cfg.Hub.Timeout())

	chainAdapters, err := adapters.Build(cfg.Adapters)
	if err != nil {
		log.WithError(err).Fatal("failed to build chain adapters")
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATS.URL != "" {
		natsPublisher, err := events.NewNATSPublisher(cfg.NATS, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect event publisher")
		}
		publisher = natsPublisher
	}
	defer publisher.Close()

	hubSync := services.NewHubSyncService(hub, chainRepo, tokenRepo, ticketRepo, log)
	volumes := services.NewTokenVolumeService(ticketRepo, tokenRepo, log)

	tasks := []services.Task{
		{Name: "chain_sync", Interval: cfg.Intervals.ChainSyncInterval(), Run: hubSync.SyncChains},
		{Name: "token_sync", Interval: cfg.Intervals.TokenSyncInterval(), Run: hubSync.SyncTokens},
		{Name: "ticket_sync", Interval: cfg.Intervals.TicketSyncInterval(), Run: hubSync.SyncTickets},
		{Name: "token_volume", Interval: cfg.Intervals.VolumeInterval(), Run: volumes.RecomputeOnce},
		{Name: "db_stats", Interval: 15 * time.Second, Run: func(context.Context) error {
			db.ReportPoolStats(gdb)
			return nil
		}},
	}

	for _, adapter := range chainAdapters {
		reconciler := services.NewReconcileService(ticketRepo, adapter, publisher, log)
		tasks = append(tasks,
			services.Task{
				Name:     "reconcile:" + adapter.ChainID(),
				Interval: cfg.Intervals.ReconcileInterval(),
				Run:      reconciler.ReconcileOnce,
			},
			services.Task{
				Name:     "tombstone:" + adapter.ChainID(),
				Interval: cfg.Intervals.TombstoneInterval(),
				Run:      reconciler.ReconcileTombstonesOnce,
			},
		)

		if custom, ok := adapter.(adapters.CustomAdapter); ok {
			pending := services.NewPendingQueueService(ticketRepo, custom, publisher, log)
			tasks = append(tasks, services.Task{
				Name:     "pending:" + custom.ChainID(),
				Interval: cfg.Intervals.PendingPollInterval(),
				Run:      pending.PollOnce,
			})
		}
	}

	scheduler := services.NewSchedulerService(tasks, log)
	scheduler.Start()

	handler := handlers.NewSyncerHandler(ticketRepo, chainRepo, tokenRepo, hubSync, hub, log)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router.New(handler, log),
	}
	go func() {
		log.WithField("addr", server.Addr).Info("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown incomplete")
	}
}
