// Package storage provides the SQLite-backed transaction store, an
// alternative to the JSON flat file for installations that want real
// durability. Schema changes go through embedded migrations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Add implements ledger.Store.
func (r *SQLiteRepository) Add(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, amount_cents, category, description, date, type)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.Amount.Cents, tx.Category, tx.Description, tx.Date, string(tx.Type))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", string(tx.Type),
		"amount_cents", tx.Amount.Cents)

	return nil
}

// Delete implements ledger.Store. Unknown ids delete zero rows, which is fine.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// List implements ledger.Store, returning rows in insertion order.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, amount_cents, category, description, date, type
		FROM transactions
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var tx core.Transaction
		var typ string
		if err := rows.Scan(&tx.ID, &tx.Amount.Cents, &tx.Category, &tx.Description, &tx.Date, &typ); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Type = core.TransactionType(typ)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// Merge implements ledger.Store: inserts rows whose id is not present yet,
// all in one database transaction.
func (r *SQLiteRepository) Merge(ctx context.Context, txs []core.Transaction) (int, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin merge: %w", err)
	}
	defer dbTx.Rollback()

	added := 0
	for _, tx := range txs {
		res, err := dbTx.ExecContext(ctx, `
			INSERT OR IGNORE INTO transactions (id, amount_cents, category, description, date, type)
			VALUES (?, ?, ?, ?, ?, ?)`,
			tx.ID, tx.Amount.Cents, tx.Category, tx.Description, tx.Date, string(tx.Type))
		if err != nil {
			return 0, fmt.Errorf("merge transaction %s: %w", tx.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit merge: %w", err)
	}
	return added, nil
}
