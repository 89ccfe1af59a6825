// Package worker reacts to queued sync announcements by pushing the full
// ledger to the companion service.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/amqp"
	"budget/internal/ledger"
)

// Exporter pushes the full ledger to the companion service, reporting plain
// success. *bridge.Client satisfies it.
type Exporter interface {
	ExportAll(ctx context.Context, store ledger.Store) bool
}

// SyncWorker consumes transaction sync messages and answers each with a full
// export. The wire protocol carries complete snapshots, so one export covers
// any number of queued changes.
type SyncWorker struct {
	store    ledger.Store
	exporter Exporter
}

func NewSyncWorker(store ledger.Store, exporter Exporter) *SyncWorker {
	return &SyncWorker{store: store, exporter: exporter}
}

// HandleMessage processes a single sync announcement. A failed export returns
// an error so the message is requeued and retried.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"operation", msg.Operation)

	if !w.exporter.ExportAll(ctx, w.store) {
		return fmt.Errorf("export after %s of %s failed", msg.Operation, msg.ID)
	}
	return nil
}

// StartupExport pushes the current ledger once at startup, covering any
// announcements lost while the worker was down.
func (w *SyncWorker) StartupExport(ctx context.Context) error {
	if !w.exporter.ExportAll(ctx, w.store) {
		return errors.New("startup export failed")
	}
	return nil
}
