package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockdesk/internal/config"
	"stockdesk/internal/database"
	"stockdesk/internal/handlers"
	"stockdesk/internal/logger"
	"stockdesk/internal/mirror"
	"stockdesk/internal/repository"
	"stockdesk/internal/router"
	"stockdesk/internal/services"
	"stockdesk/internal/validator"

	_ "stockdesk/internal/docs" // Import swagger docs
)

// @title           Stockdesk API
// @version         1.0
// @description     Warehouse stock-control desk: blocked items, reprint monitoring, supply-room withdrawals, PPE issues, cut-password orders and consolidated stock snapshots.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig(appConfig.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	store := repository.NewStore(dbManager.DB())

	// Mirror the SQLite file after every commit when configured
	var syncer handlers.MirrorSyncer
	if path, ok := dbManager.SQLitePath(); ok && appConfig.MirrorPath != "" {
		target, err := mirror.NewTarget(ctx, appConfig.MirrorPath, mirror.Options{
			S3Region:    appConfig.MirrorS3Region,
			S3Endpoint:  appConfig.MirrorS3Endpoint,
			S3PathStyle: appConfig.MirrorS3PathStyle,
		})
		if err != nil {
			return fmt.Errorf("failed to create mirror target: %w", err)
		}
		m := mirror.New(dbManager.DB(), path, target)
		store.OnCommit(m.Notify)
		go m.Run(ctx)
		syncer = m
		log.Infof("Mirroring %s to %s", path, target.String())
	}

	validator.Register()

	// Initialize services
	auditService := services.NewAuditService(store)
	catalogService := services.NewCatalogService(store, auditService, appConfig.CatalogCacheSize, appConfig.CatalogCacheTTL)
	svc := router.Services{
		Users: services.NewUserService(store, auditService, services.RegistrationKeys{
			User:  appConfig.RegistrationKeyUser,
			Admin: appConfig.RegistrationKeyAdmin,
		}),
		Audit:        auditService,
		BlockedItems: services.NewBlockedItemService(store, auditService),
		Monitoring:   services.NewMonitoringService(store, auditService),
		Supplies:     services.NewSupplyService(store, auditService),
		PPE:          services.NewPPEService(store, catalogService, auditService),
		CutPasswords: services.NewCutPasswordService(store, auditService),
		Consolidated: services.NewConsolidatedService(store, auditService),
		Catalog:      catalogService,
	}

	engine := router.New(svc, router.Options{
		Sectors:           appConfig.Sectors,
		MaintenanceAPIKey: appConfig.MaintenanceAPIKey,
		Mirror:            syncer,
		Docs:              true,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting stockdesk server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
