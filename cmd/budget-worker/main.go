package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"budget/internal/amqp"
	"budget/internal/backend"
	"budget/internal/bridge"
	"budget/internal/cli"
	applog "budget/internal/log"
	"budget/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if cfg.BridgeBaseURL == "" {
		logger.Error("BRIDGE_BASE_URL is required for the sync worker")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateStore(cfg)
	if err != nil {
		logger.Error("Failed to initialize data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	syncWorker := worker.NewSyncWorker(result.Store, bridge.New(cfg.BridgeBaseURL))

	// Push the current ledger once before consuming, in case announcements
	// were lost while the worker was down.
	if err := syncWorker.StartupExport(ctx); err != nil {
		logger.Warn("Startup export failed, continuing", "error", err)
	}

	logger.Info("Starting budget-worker",
		"queue", cfg.AMQPQueue,
		"companion", cfg.BridgeBaseURL)

	err = amqpClient.ConsumeTransactionSync(ctx, func(msg *amqp.TransactionSyncMessage) error {
		return syncWorker.HandleMessage(ctx, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
	}

	if err := amqpClient.Close(); err != nil {
		logger.Warn("AMQP close", "error", err)
	}
	if result.Cleanup != nil {
		if err := result.Cleanup(); err != nil {
			logger.Warn("Backend cleanup", "error", err)
		}
	}

	logger.Info("Worker stopped")
}
