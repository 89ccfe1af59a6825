// Package ledger owns the transaction collection and the read-only
// derivations over it. Queries are pure functions over a store snapshot:
// they never mutate their input and an empty ledger always yields zero
// values, never an error.
package ledger

import (
	"sort"

	"budget/internal/core"
)

type (
	// CategoryTotals accumulates income and expense per category.
	CategoryTotals struct {
		Category string
		Income   core.Money
		Expense  core.Money
	}

	// MonthTotals accumulates income and expense per "YYYY-MM" bucket.
	MonthTotals struct {
		Month   string
		Income  core.Money
		Expense core.Money
	}

	// BalancePoint is one step of the running balance, keyed by the
	// date-only prefix of the transaction timestamp.
	BalancePoint struct {
		Date    string
		Balance core.Money
	}
)

// Balance returns total income minus total expense. Insertion order is
// irrelevant; summation happens in cents.
func Balance(txs []core.Transaction) core.Money {
	var balance core.Money
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			balance = balance.Add(tx.Amount)
		case core.Expense:
			balance = balance.Sub(tx.Amount)
		}
	}
	return balance
}

// CategorySummary accumulates per-category totals, ordered by first
// appearance in the ledger. Categories with no transactions of a type carry
// a zero in that slot.
func CategorySummary(txs []core.Transaction) []CategoryTotals {
	index := make(map[string]int)
	var out []CategoryTotals
	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryTotals{Category: tx.Category})
		}
		switch tx.Type {
		case core.Income:
			out[i].Income = out[i].Income.Add(tx.Amount)
		case core.Expense:
			out[i].Expense = out[i].Expense.Add(tx.Amount)
		}
	}
	return out
}

// Recent returns at most limit transactions ordered by descending date.
// ISO-8601 timestamps are fixed-width and zero-padded, so the lexicographic
// comparison matches chronological order.
func Recent(txs []core.Transaction, limit int) []core.Transaction {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	if limit < 0 {
		limit = 0
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// BalanceHistory walks the ledger in ascending date order accumulating the
// running balance, one point per transaction. Points on the same day are not
// deduplicated.
func BalanceHistory(txs []core.Transaction) []BalancePoint {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	var running core.Money
	points := make([]BalancePoint, 0, len(sorted))
	for _, tx := range sorted {
		switch tx.Type {
		case core.Income:
			running = running.Add(tx.Amount)
		case core.Expense:
			running = running.Sub(tx.Amount)
		}
		points = append(points, BalancePoint{Date: tx.Day(), Balance: running})
	}
	return points
}

// MonthlySummary groups transactions by their "YYYY-MM" bucket, ordered by
// first appearance.
func MonthlySummary(txs []core.Transaction) []MonthTotals {
	index := make(map[string]int)
	var out []MonthTotals
	for _, tx := range txs {
		month := tx.Month()
		i, ok := index[month]
		if !ok {
			i = len(out)
			index[month] = i
			out = append(out, MonthTotals{Month: month})
		}
		switch tx.Type {
		case core.Income:
			out[i].Income = out[i].Income.Add(tx.Amount)
		case core.Expense:
			out[i].Expense = out[i].Expense.Add(tx.Amount)
		}
	}
	return out
}
