package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jamboree26/notifications/internal/handlers"
	infracache "github.com/jamboree26/notifications/internal/infrastructure/cache"
	"github.com/jamboree26/notifications/internal/infrastructure/config"
	"github.com/jamboree26/notifications/internal/infrastructure/database"
	"github.com/jamboree26/notifications/internal/infrastructure/metrics"
	"github.com/jamboree26/notifications/internal/infrastructure/push"
	"github.com/jamboree26/notifications/internal/repositories/postgres"
	"github.com/jamboree26/notifications/internal/services"
	"github.com/jamboree26/notifications/pkg/cache"
	"github.com/jamboree26/notifications/pkg/cache/memorycache"
)

const (
	defaultEnv = "dev"

	migrationsPathSuffix = "internal/infrastructure/database/migrations/postgres"
)

func main() {
	// Get environment from ENV variable or use default
	env := os.Getenv("ENV")
	if env == "" {
		env = defaultEnv
	}

	// Initialize configuration
	if err := config.InitConfig(env); err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	pg, err := database.NewPostgres(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pg.Close()

	log.Printf("Connected to database: %s@%s:%d/%s",
		cfg.Database.User,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Database)

	// Apply pending migrations
	migrationsPath, err := findMigrationsPath()
	if err != nil {
		log.Fatalf("Failed to locate migrations: %v", err)
	}
	if err := pg.RunMigrations(migrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations applied")

	// Initialize repositories
	tenantRepo := postgres.NewPostgresTenantRepository(pg.DB)
	channelRepo := postgres.NewPostgresChannelRepository(pg.DB)
	subscriptionRepo := postgres.NewPostgresSubscriptionRepository(pg.DB)
	tokenRepo := postgres.NewPostgresDeviceTokenRepository(pg.DB)
	notificationRepo := postgres.NewPostgresNotificationRepository(pg.DB)

	// Initialize metrics
	collector := metrics.NewCollector()
	exporter := metrics.NewPrometheusExporter(collector)

	// Initialize push sender
	var sender push.Sender
	if cfg.Push.Enabled {
		fcm, err := push.NewFCMSender(context.Background(), &cfg.Push)
		if err != nil {
			log.Fatalf("Failed to initialize FCM: %v", err)
		}
		sender = fcm
		log.Printf("FCM push delivery enabled (project %s)", cfg.Push.ProjectID)
	} else {
		sender = push.NewNoopSender()
		log.Println("Push delivery disabled, using noop sender")
	}
	sender = metrics.InstrumentSender(sender, collector, exporter)

	// Initialize recipient token cache
	var tokenCache cache.Cache
	var invalidator *infracache.Invalidator
	if cfg.Cache.Enabled {
		memCache, err := memorycache.New(&memorycache.Config{
			MaxSizeBytes:  cfg.Cache.MaxMemoryBytes,
			DefaultTTL:    time.Duration(cfg.Cache.TTLMinutes) * time.Minute,
			EnableMetrics: cfg.Cache.Metrics,
		})
		if err != nil {
			log.Fatalf("Failed to initialize cache: %v", err)
		}
		tokenCache = memCache
		defer memCache.Close()

		invalidator = infracache.NewInvalidator(tokenCache, cfg.Database.ConnectionString())
		if err := invalidator.Start(); err != nil {
			log.Fatalf("Failed to start cache invalidator: %v", err)
		}
		defer invalidator.Stop()
		log.Printf("Recipient cache enabled (%d bytes max)", cfg.Cache.MaxMemoryBytes)
	}

	// Initialize services
	tenantService := services.NewTenantService(tenantRepo)
	channelService := services.NewChannelService(channelRepo)
	subscriptionService := services.NewSubscriptionService(
		subscriptionRepo, tokenRepo, tokenCache, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)
	notificationService := services.NewNotificationService(
		notificationRepo, subscriptionService, channelService, sender, tokenRepo)

	// Seed the default tenant and its heartbeat channel
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelSeed()
	if err := tenantService.EnsureDefault(seedCtx, cfg.Tenant.DefaultID, cfg.Tenant.DefaultName); err != nil {
		log.Fatalf("Failed to seed default tenant: %v", err)
	}
	if err := channelService.EnsureHeartbeatChannel(seedCtx, cfg.Tenant.DefaultID, cfg.Heartbeat.ChannelID); err != nil {
		log.Fatalf("Failed to seed heartbeat channel: %v", err)
	}

	if tokenCache != nil {
		collector.SetCache(tokenCache)
	}

	// Periodically refresh gauge metrics
	metricsTicker := time.NewTicker(10 * time.Second)
	defer metricsTicker.Stop()
	go func() {
		for range metricsTicker.C {
			exporter.Update()
		}
	}()

	// Metrics HTTP server
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: metricsMux,
	}
	go func() {
		log.Printf("Metrics server listening on :%d", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	// Assemble the API router
	router := handlers.NewRouter(&handlers.RouterConfig{
		APIPrefix:     cfg.Server.APIPrefix,
		Tenants:       tenantService,
		Channels:      channelService,
		Subscriptions: subscriptionService,
		Notifications: notificationService,
		Health:        pg,
		Middlewares: []func(http.Handler) http.Handler{
			metrics.Middleware(collector, exporter),
		},
	})

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	// Start heartbeat loop
	var heartbeat *services.Heartbeat
	if cfg.Heartbeat.Enabled {
		heartbeat = services.NewHeartbeat(notificationService, cfg.Tenant.DefaultID, cfg.Heartbeat.ChannelID)
		heartbeat.Start()
		log.Printf("Heartbeat loop started on channel %q", cfg.Heartbeat.ChannelID)
	}

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErrors:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
		log.Println("Initiating graceful shutdown...")

		if heartbeat != nil {
			heartbeat.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Forced shutdown: %v", err)
			server.Close()
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Metrics server shutdown error: %v", err)
		}

		log.Println("Shutdown complete")
	}
}

func findMigrationsPath() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up the directory tree until we find go.mod
	for {
		goModPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(goModPath); err == nil {
			return filepath.Join(dir, migrationsPathSuffix), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found in any parent directory")
		}
		dir = parent
	}
}
