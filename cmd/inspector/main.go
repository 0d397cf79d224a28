package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evm-wallet-inspector/internal/api"
	app_service "evm-wallet-inspector/internal/application/service"
	"evm-wallet-inspector/internal/domain/entity"
	"evm-wallet-inspector/internal/domain/repository"
	domain_service "evm-wallet-inspector/internal/domain/service"
	"evm-wallet-inspector/internal/infrastructure/blockchain"
	"evm-wallet-inspector/internal/infrastructure/config"
	"evm-wallet-inspector/internal/infrastructure/curated"
	"evm-wallet-inspector/internal/infrastructure/explorer"
	"evm-wallet-inspector/internal/infrastructure/logger"
	"evm-wallet-inspector/internal/infrastructure/messaging"
	"evm-wallet-inspector/internal/infrastructure/storage"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	log, err := logger.NewLogger(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	// Create FX application
	app := fx.New(
		// Provide dependencies
		fx.Supply(cfg),
		fx.Supply(log),
		fx.Supply(&cfg.Explorer),
		fx.Supply(&cfg.Events),
		fx.Supply(&cfg.Holdings),
		fx.Supply(&cfg.NATS),
		fx.Provide(func(cfg *config.Config) *entity.Registry { return cfg.Registry() }),

		// Infrastructure providers
		fx.Provide(
			func(cfg *config.Config, log *logger.Logger) (*storage.ABIFileStore, error) {
				return storage.NewABIFileStore(cfg.Storage.ABIDir, log)
			},
			explorer.NewClient,
			blockchain.NewClientPool,
			messaging.NewNATSPublisher,
		),

		// Interface bindings
		fx.Provide(
			func(s *storage.ABIFileStore) repository.ABIRepository { return s },
			func(c *explorer.Client) domain_service.ABIFetcher { return c },
			func(p *blockchain.ClientPool) domain_service.ChainClientProvider { return p },
			func(p *messaging.NATSPublisher) domain_service.EventPublisher { return p },
		),

		// Domain services
		fx.Provide(
			blockchain.NewResolver,
			blockchain.NewENSResolver,
		),

		// Application providers
		fx.Provide(
			app_service.NewEventQueryService,
			app_service.NewTransactionDecoderService,
			app_service.NewHoldingsService,
		),

		// Curated list + API server
		fx.Provide(
			func(cfg *config.Config, log *logger.Logger) entity.CuratedList {
				list, err := curated.Load(cfg.Holdings.CuratedPath)
				if err != nil {
					log.Warn("No curated contract list loaded", zap.Error(err))
					return nil
				}
				return list
			},
			api.NewServer,
		),

		// Lifecycle hooks
		fx.Invoke(startPublisher),
		fx.Invoke(startHTTPServer),

		// Configure logging
		fx.WithLogger(func() fxevent.Logger {
			return fxevent.NopLogger
		}),
	)

	// Start the application
	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Error("Failed to start application", zap.Error(err))
		os.Exit(1)
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down application...")

	// Stop the application
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.Stop(stopCtx); err != nil {
		log.Error("Failed to stop application gracefully", zap.Error(err))
		os.Exit(1)
	}

	log.Info("Application stopped successfully")
}

// startPublisher connects the NATS publisher when enabled
func startPublisher(
	lifecycle fx.Lifecycle,
	publisher *messaging.NATSPublisher,
) {
	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return publisher.Connect(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return publisher.Disconnect()
		},
	})
}

// startHTTPServer starts the JSON API server
func startHTTPServer(
	lifecycle fx.Lifecycle,
	server *api.Server,
	pool *blockchain.ClientPool,
	cfg *config.Config,
	log *logger.Logger,
) {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.HTTPPort),
		Handler: server.Handler(),
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting HTTP server...", zap.Int("port", cfg.App.HTTPPort))

			go func() {
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("HTTP server error", zap.Error(err))
				}
			}()

			log.Info("HTTP server started successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping HTTP server...")
			pool.Close()
			return httpServer.Shutdown(ctx)
		},
	})
}
