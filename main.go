package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/purbarunBC13/team-tracker/activity"
	"github.com/purbarunBC13/team-tracker/bootstrap"
	"github.com/purbarunBC13/team-tracker/config"
	"github.com/purbarunBC13/team-tracker/db"
	"github.com/purbarunBC13/team-tracker/events"
	"github.com/purbarunBC13/team-tracker/handlers"
	"github.com/purbarunBC13/team-tracker/memstore"
	"github.com/purbarunBC13/team-tracker/notify"
	"github.com/purbarunBC13/team-tracker/repoNotification"
	"github.com/purbarunBC13/team-tracker/scheduler"
	"github.com/purbarunBC13/team-tracker/security"
	"github.com/purbarunBC13/team-tracker/service"
	"github.com/purbarunBC13/team-tracker/store"
)

func main() {
	logger := log.New(os.Stdout, "[team-api] ", log.LstdFlags)
	storeLogger := log.New(os.Stdout, "[team-store] ", log.LstdFlags)
	notifyLogger := log.New(os.Stdout, "[notify] ", log.LstdFlags)
	activityLogger := log.New(os.Stdout, "[activity] ", log.LstdFlags)
	eventsLogger := log.New(os.Stdout, "[events] ", log.LstdFlags)
	schedulerLogger := log.New(os.Stdout, "[scheduler] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var st store.Store
	switch cfg.StoreBackend {
	case config.BackendMemory:
		storeLogger.Println("Using in-memory store")
		st = memstore.New().Store()
	default:
		mongo, err := db.ConnectToMongo(ctx, cfg.MongoURI, cfg.MongoDB, storeLogger)
		if err != nil {
			logger.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			if err := mongo.DisconnectMongo(context.Background()); err != nil {
				storeLogger.Printf("Error disconnecting from MongoDB: %v", err)
			}
		}()
		if err := mongo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("Failed to prepare collections: %v", err)
		}
		st = mongo.Store()
	}

	if cfg.NotificationBackend == config.BackendCassandra {
		repo, err := repoNotification.New(cfg.CassandraHost, storeLogger)
		if err != nil {
			logger.Fatalf("Failed to initialize Cassandra connection: %v", err)
		}
		defer repo.CloseSession()
		if err := repo.CreateTables(); err != nil {
			logger.Fatalf("Failed to create notification tables: %v", err)
		}
		st.Notifications = repo
	}

	var conn events.Conn
	if cfg.NatsURL != "" {
		nc, err := events.Connect(cfg.NatsURL, eventsLogger)
		if err != nil {
			eventsLogger.Printf("NATS unavailable, events disabled: %v", err)
		} else {
			defer nc.Drain()
			conn = nc
		}
	}
	publisher := events.NewPublisher(conn, eventsLogger)

	tokens := security.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL)
	notifier := notify.NewNotifier(st.Notifications, notifyLogger, notify.WithBroadcaster(publisher))
	recorder := activity.NewRecorder(st.Activity, activityLogger)

	if cfg.EnableBootstrap {
		if _, err := bootstrap.SeedAdmin(ctx, st.Users, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword, logger); err != nil {
			logger.Fatalf("Bootstrap failed: %v", err)
		}
	}

	if cfg.ActivityRetentionDays > 0 {
		jobs := scheduler.New(schedulerLogger)
		if _, err := jobs.ScheduleCleanup(cfg.ActivityCleanupSpec, cfg.ActivityRetentionDays, recorder); err != nil {
			logger.Fatalf("Failed to schedule activity cleanup: %v", err)
		}
		jobs.Start()
		defer jobs.Stop()
	}

	svc := service.New(st, notifier, recorder, publisher, tokens, logger)
	router := handlers.NewRouter(handlers.NewHandler(logger, svc), tokens, cfg.AllowedOrigins, os.Stdout)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Printf("Starting server on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Could not listen on port %s: %v", cfg.Port, err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Printf("Received signal %s, shutting down...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Could not gracefully shutdown the server: %v", err)
	}
	logger.Println("Server stopped gracefully")
}
