package ledger

import (
	"context"
	"time"

	"budget/internal/cache"
	"budget/internal/core"
)

// CachedStore decorates a Store with a short-lived snapshot cache over List.
// Every mutation drops the snapshot, so a process never reads stale data
// after its own writes. Meant for the SQLite backend, where each query
// otherwise round-trips to the database.
type CachedStore struct {
	inner    Store
	snapshot *cache.Snapshot[[]core.Transaction]
}

func NewCachedStore(inner Store, ttl time.Duration) *CachedStore {
	return &CachedStore{
		inner:    inner,
		snapshot: cache.NewSnapshot[[]core.Transaction](ttl),
	}
}

func (s *CachedStore) Add(ctx context.Context, tx core.Transaction) error {
	if err := s.inner.Add(ctx, tx); err != nil {
		return err
	}
	s.snapshot.Clear()
	return nil
}

func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.inner.Delete(ctx, id); err != nil {
		return err
	}
	s.snapshot.Clear()
	return nil
}

func (s *CachedStore) List(ctx context.Context) ([]core.Transaction, error) {
	if txs, ok := s.snapshot.Get(); ok {
		return copyTransactions(txs), nil
	}

	txs, err := s.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	s.snapshot.Set(copyTransactions(txs))
	return txs, nil
}

func (s *CachedStore) Merge(ctx context.Context, txs []core.Transaction) (int, error) {
	added, err := s.inner.Merge(ctx, txs)
	if err != nil {
		return 0, err
	}
	if added > 0 {
		s.snapshot.Clear()
	}
	return added, nil
}

// CleanExpired satisfies cache.Cleaner for the cache manager.
func (s *CachedStore) CleanExpired() int {
	return s.snapshot.CleanExpired()
}

func (s *CachedStore) Close() error {
	return s.inner.Close()
}

func copyTransactions(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	return out
}
