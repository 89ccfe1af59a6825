package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"budget/internal/core"
)

// ledgerFile is the persisted layout: a single object holding the full
// transaction list. The file is rewritten wholesale on every mutation, it is
// not an append log.
type ledgerFile struct {
	Transactions []core.Transaction `json:"transactions"`
}

// FileStore keeps the ledger in memory and mirrors it to a JSON flat file.
//
// Durability is best-effort on both ends: a missing or corrupt file yields an
// empty ledger at startup, and a failed write is logged without rolling back
// the in-memory state. Neither failure is surfaced to the caller.
type FileStore struct {
	mu   sync.Mutex
	path string
	txs  []core.Transaction
}

// NewFileStore opens the store at path, loading existing data if present.
// A corrupt data file must never prevent startup, so load failures degrade
// to an empty collection.
func NewFileStore(path string) *FileStore {
	s := &FileStore{path: path}
	s.load()
	return s
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("Failed to read ledger file, starting empty", "path", s.path, "error", err)
		}
		return
	}
	var file ledgerFile
	if err := json.Unmarshal(data, &file); err != nil {
		slog.Error("Failed to decode ledger file, starting empty", "path", s.path, "error", err)
		return
	}
	s.txs = file.Transactions
}

// persist writes the whole collection. Callers hold the mutex.
func (s *FileStore) persist() {
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			slog.Error("Failed to create ledger directory", "path", dir, "error", err)
			return
		}
	}
	data, err := json.MarshalIndent(ledgerFile{Transactions: s.txs}, "", "  ")
	if err != nil {
		slog.Error("Failed to encode ledger", "path", s.path, "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		slog.Error("Failed to write ledger file", "path", s.path, "error", err)
	}
}

func (s *FileStore) Add(_ context.Context, tx core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, tx)
	s.persist()
	return nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.txs[:0]
	for _, tx := range s.txs {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	s.txs = kept
	s.persist()
	return nil
}

func (s *FileStore) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out, nil
}

func (s *FileStore) Merge(_ context.Context, txs []core.Transaction) (int, error) {
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
	if added > 0 {
		s.persist()
	}
	return added, nil
}

func (s *FileStore) Close() error { return nil }
