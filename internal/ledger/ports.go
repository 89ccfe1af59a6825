package ledger

import (
	"context"

	"budget/internal/core"
)

// Store is the port every transaction backend implements. The ledger owns its
// backing storage exclusively; callers hold an explicit Store handle rather
// than any process-global state.
type Store interface {
	// Add appends a transaction and persists the collection. The store trusts
	// its input; validation happens at the service boundary.
	Add(ctx context.Context, tx core.Transaction) error

	// Delete removes the transaction with the given id and persists. Deleting
	// an unknown id is a silent no-op.
	Delete(ctx context.Context, id string) error

	// List returns a snapshot of all transactions in insertion order.
	List(ctx context.Context) ([]core.Transaction, error)

	// Merge inserts the given transactions, skipping any whose id already
	// exists, then persists once. Returns the number actually added.
	Merge(ctx context.Context, txs []core.Transaction) (int, error)

	Close() error
}
