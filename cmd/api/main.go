package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tech-kart/internal/audit"
	"tech-kart/internal/config"
	"tech-kart/internal/database"
	"tech-kart/internal/gateway"
	"tech-kart/internal/handler"
	"tech-kart/internal/notification"
	"tech-kart/internal/repository"
	"tech-kart/internal/router"
	"tech-kart/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting tech-kart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	settingsRepo := repository.NewSettingsRepository(pool, logger)

	// Initialize payment gateway client
	gatewayClient := gateway.NewHTTPClient(cfg.Gateway, logger)

	// Initialize order-confirmation sender
	var notifier notification.Sender
	if cfg.Notification.Enabled {
		notifier = notification.NewWebhookSender(cfg.Notification.WebhookURL, logger)
	} else {
		notifier = notification.NopSender{}
		logger.Info().Msg("order confirmations disabled")
	}

	// Initialize callback-payload archiver
	var archiver audit.Archiver
	switch cfg.Audit.Backend {
	case "s3":
		archiver, err = audit.NewS3Archiver(ctx, cfg.Audit.Bucket, cfg.Audit.Region, cfg.Audit.Prefix, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 archiver, callback payloads will not be archived")
			archiver = audit.NopArchiver{}
		}
	default:
		archiver, err = audit.NewFileArchiver(cfg.Audit.Dir, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise file archiver, callback payloads will not be archived")
			archiver = audit.NopArchiver{}
		}
	}

	// Initialize checkout service
	checkoutService := service.NewCheckoutService(
		catalogRepo, orderRepo, settingsRepo, gatewayClient, notifier, archiver,
		service.Options{
			Currency:        cfg.Checkout.Currency,
			GatewayName:     cfg.Gateway.Name,
			SignatureSecret: cfg.Gateway.KeySecret,
		},
		logger,
	)

	// Initialize HTTP handler and router
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, cfg.Gateway.KeyID, logger)
	mux := router.New(checkoutHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
