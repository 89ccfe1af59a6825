package ledger

import (
	"context"
	"sync"

	"budget/internal/core"
)

// MemoryStore holds transactions in memory only. Used as the throwaway
// backend and by tests.
type MemoryStore struct {
	mu  sync.Mutex
	txs []core.Transaction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Add(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.txs[:0]
	for _, tx := range s.txs {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	s.txs = kept
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

func (s *MemoryStore) Merge(_ context.Context, txs []core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := make(map[string]struct{}, len(s.txs))
	for _, tx := range s.txs {
		existing[tx.ID] = struct{}{}
	}
	added := 0
	for _, tx := range txs {
		if _, ok := existing[tx.ID]; ok {
			continue
		}
		existing[tx.ID] = struct{}{}
		s.txs = append(s.txs, tx)
		added++
	}
	return added, nil
}

func (s *MemoryStore) Close() error { return nil }
