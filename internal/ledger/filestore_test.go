package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"budget/internal/core"
)

func TestFileStoreAddDeleteList(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "budget.json")
	store := NewFileStore(path)

	a := tx("a", 100000, "Salary", "2025-05-01T09:00:00Z", core.Income)
	b := tx("b", 20050, "Food", "2025-05-02T12:00:00Z", core.Expense)
	if err := store.Add(ctx, a); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, b); err != nil {
		t.Fatalf("add: %v", err)
	}

	txs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 2 || txs[0].ID != "a" || txs[1].ID != "b" {
		t.Fatalf("unexpected list: %+v", txs)
	}

	// Delete removes exactly that record.
	if err := store.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	txs, _ = store.List(ctx)
	if len(txs) != 1 || txs[0].ID != "b" {
		t.Fatalf("after delete: %+v", txs)
	}

	// Unknown id is a silent no-op.
	if err := store.Delete(ctx, "nope"); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
	txs, _ = store.List(ctx)
	if len(txs) != 1 {
		t.Fatalf("no-op delete changed size: %+v", txs)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "budget.json")

	store := NewFileStore(path)
	want := []core.Transaction{
		tx("a", 100000, "Salary", "2025-05-01T09:00:00Z", core.Income),
		tx("b", 20050, "Food", "2025-05-02T12:00:00Z", core.Expense),
	}
	for _, record := range want {
		if err := store.Add(ctx, record); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	// A fresh store on the same file reproduces the same transactions.
	reopened := NewFileStore(path)
	got, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d transactions, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFileStoreCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	store := NewFileStore(path)
	txs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("corrupt file should yield empty ledger, got %d", len(txs))
	}
}

func TestFileStoreMissingFileStartsEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "missing.json"))
	txs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("missing file should yield empty ledger, got %d", len(txs))
	}
}

func TestFileStoreMerge(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "budget.json"))
	local := tx("a", 100, "Food", "2025-05-01T09:00:00Z", core.Expense)
	if err := store.Add(ctx, local); err != nil {
		t.Fatalf("add: %v", err)
	}

	added, err := store.Merge(ctx, []core.Transaction{
		local, // duplicate, skipped
		tx("b", 200, "Bills", "2025-05-02T09:00:00Z", core.Expense),
		tx("b", 300, "Bills", "2025-05-03T09:00:00Z", core.Expense), // dup within batch
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if added != 1 {
		t.Fatalf("expected 1 added, got %d", added)
	}
	txs, _ := store.List(ctx)
	if len(txs) != 2 {
		t.Fatalf("expected 2 after merge, got %d", len(txs))
	}
}

func TestMemoryStoreBehavesLikeStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Add(ctx, tx("a", 100, "Food", "2025-05-01T09:00:00Z", core.Expense)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
	txs, err := store.List(ctx)
	if err != nil || len(txs) != 1 {
		t.Fatalf("list: %v, %d", err, len(txs))
	}
	added, err := store.Merge(ctx, []core.Transaction{
		tx("a", 100, "Food", "2025-05-01T09:00:00Z", core.Expense),
		tx("b", 100, "Food", "2025-05-01T09:00:00Z", core.Expense),
	})
	if err != nil || added != 1 {
		t.Fatalf("merge: %v, added=%d", err, added)
	}
}
