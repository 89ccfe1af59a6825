package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"budget/internal/core"
	"budget/internal/ledger"
)

// ErrInvalidMonthlyIncome is the one hard validation failure callers must
// handle: a monthly income target of zero or less.
var ErrInvalidMonthlyIncome = errors.New("monthly income must be positive")

// SyncPublisher announces ledger changes to the async sync queue.
// *amqp.Client satisfies it; a nil publisher disables announcements.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string) error
	PublishTransactionDelete(ctx context.Context, id string) error
}

// LedgerService orchestrates mutations across the store and the sync queue,
// and carries the session-scoped monthly income target.
type LedgerService struct {
	store     ledger.Store
	publisher SyncPublisher

	mu            sync.Mutex
	monthlyIncome core.Money
}

func NewLedgerService(store ledger.Store, publisher SyncPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// AddIncome records an income transaction with a fresh id and the current
// timestamp, then announces it for sync.
func (s *LedgerService) AddIncome(ctx context.Context, amount core.Money, category, description string) (core.Transaction, error) {
	return s.add(ctx, amount, category, description, core.Income)
}

// AddExpense records an expense transaction with a fresh id and the current
// timestamp, then announces it for sync.
func (s *LedgerService) AddExpense(ctx context.Context, amount core.Money, category, description string) (core.Transaction, error) {
	return s.add(ctx, amount, category, description, core.Expense)
}

func (s *LedgerService) add(ctx context.Context, amount core.Money, category, description string, typ core.TransactionType) (core.Transaction, error) {
	tx := core.Transaction{
		ID:          uuid.NewString(),
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        time.Now().UTC().Format(time.RFC3339),
		Type:        typ,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}
	if err := s.store.Add(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	// Best-effort announcement, the transaction is already saved locally.
	if s.publisher != nil {
		if err := s.publisher.PublishTransactionSync(ctx, tx.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message",
				"id", tx.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", tx.ID,
		"type", string(tx.Type),
		"category", tx.Category,
		"amount_cents", tx.Amount.Cents)

	return tx, nil
}

// DeleteTransaction removes the transaction with the given id. Unknown ids
// are a silent no-op, mirroring the store contract.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message",
				"id", id, "error", err)
		}
	}

	return nil
}

// Balance returns the current running balance.
func (s *LedgerService) Balance(ctx context.Context) (core.Money, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.Balance(txs), nil
}

// CategorySummary returns per-category totals in first-seen order.
func (s *LedgerService) CategorySummary(ctx context.Context) ([]ledger.CategoryTotals, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.CategorySummary(txs), nil
}

// Recent returns at most limit transactions, newest first.
func (s *LedgerService) Recent(ctx context.Context, limit int) ([]core.Transaction, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.Recent(txs, limit), nil
}

// BalanceHistory returns the running balance series for charting.
func (s *LedgerService) BalanceHistory(ctx context.Context) ([]ledger.BalancePoint, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.BalanceHistory(txs), nil
}

// MonthlySummary returns per-month totals in first-seen order.
func (s *LedgerService) MonthlySummary(ctx context.Context) ([]ledger.MonthTotals, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return ledger.MonthlySummary(txs), nil
}

// SetMonthlyIncome updates the session monthly income target. Zero and
// negative values are rejected; the value is not persisted.
func (s *LedgerService) SetMonthlyIncome(amount core.Money) error {
	if amount.Cents <= 0 {
		return ErrInvalidMonthlyIncome
	}
	s.mu.Lock()
	s.monthlyIncome = amount
	s.mu.Unlock()
	return nil
}

// MonthlyIncome returns the last value set, zero initially.
func (s *LedgerService) MonthlyIncome() core.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.monthlyIncome
}

// Close releases the store. The publisher is owned by the caller.
func (s *LedgerService) Close() error {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			return fmt.Errorf("close store: %w", err)
		}
	}
	return nil
}
