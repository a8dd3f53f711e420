package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DukeRupert/homewatch/internal"
	"github.com/DukeRupert/homewatch/internal/email"
	"github.com/DukeRupert/homewatch/internal/handler"
	"github.com/DukeRupert/homewatch/internal/metrics"
	"github.com/DukeRupert/homewatch/internal/middleware"
	"github.com/DukeRupert/homewatch/internal/report"
	"github.com/DukeRupert/homewatch/internal/repository"
	"github.com/DukeRupert/homewatch/internal/service"
	"github.com/DukeRupert/homewatch/internal/storage"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database connection
	db, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	// Initialize repository
	queries := repository.New(db)

	// Initialize blob storage
	store, localRoot, err := newStorage(cfg, logger)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	logger.Info("Storage ready", "provider", cfg.StorageProvider)

	// Initialize email sender
	smtpCfg := email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		Secure:   cfg.SMTPSecure,
	}
	sender := email.NewSMTPSender(smtpCfg, logger)
	if !smtpCfg.IsConfigured() {
		logger.Warn("SMTP is not fully configured; email delivery will fail until it is")
	}

	// Initialize services
	clientService := service.NewClientService(queries, logger)
	propertyService := service.NewPropertyService(queries, logger)
	inspectorService := service.NewInspectorService(queries, logger)
	checklistService := service.NewChecklistService(queries, store, logger)
	photoService := service.NewPhotoService(queries, store, service.NewImagingProcessor(), cfg.PhotosBucket, logger)
	deliveryService := service.NewDeliveryService(
		queries,
		service.NewPhotoResolver(store, logger),
		report.NewPDFGenerator(logger),
		sender,
		service.DeliveryConfig{
			SMTP:         smtpCfg,
			CompanyPhone: cfg.CompanyPhone,
			CompanyEmail: cfg.CompanyEmail,
			LogoPath:     cfg.LogoPath,
		},
		logger,
	)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	handler.RegisterRoutes(mux, handler.Handlers{
		Clients:    handler.NewClientHandler(clientService, logger),
		Properties: handler.NewPropertyHandler(propertyService, logger),
		Inspectors: handler.NewInspectorHandler(inspectorService, logger),
		Checklists: handler.NewChecklistHandler(checklistService, deliveryService, logger),
		Photos:     handler.NewPhotoHandler(photoService, logger),
	})

	// Serve local blob storage in development
	if localRoot != "" {
		filesFS := http.FileServer(http.Dir(localRoot))
		mux.Handle("GET /files/", http.StripPrefix("/files/", filesFS))
	}

	// Metrics endpoint, optionally behind basic auth
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword)
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	// Middleware stack
	loggingMw := middleware.NewRequestLoggingMiddleware(logger)
	root := metrics.Middleware(loggingMw.Handler(mux))

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: root,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
		}
	}()

	<-sigChan
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Graceful shutdown complete")
	return nil
}

// newStorage builds the configured storage backend. The second return is
// the local storage root for the dev file server, empty for S3.
func newStorage(cfg *internal.Config, logger *slog.Logger) (storage.Storage, string, error) {
	switch cfg.StorageProvider {
	case storage.ProviderS3:
		store, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicURL:       cfg.S3PublicURL,
		}, logger)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		store, err := storage.NewLocalStorage(storage.LocalConfig{
			BasePath: cfg.LocalStoragePath,
			BaseURL:  cfg.LocalStorageURL,
		}, logger)
		if err != nil {
			return nil, "", err
		}
		return store, store.Root(), nil
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
