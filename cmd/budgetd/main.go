package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"budget/internal/amqp"
	"budget/internal/auth"
	"budget/internal/backend"
	"budget/internal/bridge"
	"budget/internal/cli"
	apphttp "budget/internal/http"
	applog "budget/internal/log"
	"budget/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// AMQP announcements are optional: without a broker the service still
	// works, changes just are not announced to the sync worker.
	var publisher services.SyncPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync announcements", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("AMQP sync announcements enabled",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewLedgerService(result.Store, publisher)
	srv := apphttp.NewServer(":"+cfg.Port, svc, result.Store, auth.New(cfg.AuthUsername, cfg.AuthPassword))

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var processor *services.SyncProcessor
	if cfg.AutoSync {
		processor = services.NewSyncProcessor(result.Store, bridge.New(cfg.BridgeBaseURL),
			services.SyncProcessorConfig{Interval: cfg.SyncInterval})
		if err := processor.Start(ctx); err != nil {
			logger.Error("Failed to start sync processor", "error", err)
			os.Exit(1)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting budgetd", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
	}

	if processor != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := processor.Stop(stopCtx); err != nil {
			logger.Warn("Sync processor stop", "error", err)
		}
		cancel()
	}
	if amqpClient != nil {
		if err := amqpClient.Close(); err != nil {
			logger.Warn("AMQP close", "error", err)
		}
	}
	if err := svc.Close(); err != nil {
		logger.Warn("Service close", "error", err)
	}
	if result.Cleanup != nil {
		if err := result.Cleanup(); err != nil {
			logger.Warn("Backend cleanup", "error", err)
		}
	}

	logger.Info("Server stopped gracefully")
}
