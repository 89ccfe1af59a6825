package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"budget/internal/ledger"
)

// Exporter pushes the full ledger to the companion service, reporting plain
// success. *bridge.Client satisfies it.
type Exporter interface {
	ExportAll(ctx context.Context, store ledger.Store) bool
}

// SyncProcessorConfig holds configuration for the periodic exporter.
type SyncProcessorConfig struct {
	// Interval is how often the ledger is pushed (default: 30s).
	Interval time.Duration
}

// DefaultSyncProcessorConfig returns sensible defaults.
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{Interval: 30 * time.Second}
}

// SyncProcessor periodically exports the ledger through the bridge. A failed
// export is logged and retried on the next tick; it never stops the loop.
type SyncProcessor struct {
	store    ledger.Store
	exporter Exporter
	config   SyncProcessorConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSyncProcessor(store ledger.Store, exporter Exporter, config SyncProcessorConfig) *SyncProcessor {
	if config.Interval <= 0 {
		config.Interval = DefaultSyncProcessorConfig().Interval
	}
	return &SyncProcessor{
		store:    store,
		exporter: exporter,
		config:   config,
	}
}

// Start begins the export loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sync processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running.
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Export immediately on startup.
	p.export(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.export(ctx)
		}
	}
}

func (p *SyncProcessor) export(ctx context.Context) {
	if ok := p.exporter.ExportAll(ctx, p.store); !ok {
		slog.WarnContext(ctx, "Periodic export failed, will retry on next tick")
	}
}
