package amqp

import (
	"encoding/json"
	"time"
)

const (
	OpSync   = "sync"
	OpDelete = "delete"
)

// TransactionSyncMessage signals that a transaction changed locally and the
// companion service should be brought up to date. It carries only the id and
// operation; the worker reads the current ledger state itself.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Operation string    `json:"operation"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id, operation string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Operation: operation,
		Timestamp: time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
