// Package backend opens the transaction store selected by configuration.
package backend

import "budget/internal/ledger"

// BackendType selects the transaction store implementation.
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// Result contains the opened store and an optional cleanup function.
type Result struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}
