package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Money struct {
		Cents int64
	}

	// Transaction is one recorded income or expense event. Amount is always a
	// positive magnitude; the sign is derived from Type at aggregation time.
	Transaction struct {
		ID          string
		Amount      Money
		Category    string
		Description string
		Date        string // RFC 3339 timestamp, lexicographically sortable
		Type        TransactionType
	}
)

var (
	ErrEmptyID          = errors.New("empty transaction id")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyCategory      = errors.New("empty category")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = errors.New("description too long (max 200 characters)")
)

func (t TransactionType) Validate() error {
	switch t {
	case Income, Expense:
		return nil
	default:
		return ErrInvalidType
	}
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if _, err := time.Parse(time.RFC3339, t.Date); err != nil {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the "YYYY-MM" bucket the transaction falls into, parsing the
// timestamp and falling back to the raw prefix for malformed dates.
func (t Transaction) Month() string {
	if ts, err := time.Parse(time.RFC3339, t.Date); err == nil {
		return ts.Format("2006-01")
	}
	if len(t.Date) >= 7 {
		return t.Date[:7]
	}
	return t.Date
}

// Day returns the date-only prefix of the timestamp (the part before 'T').
func (t Transaction) Day() string {
	if i := strings.IndexByte(t.Date, 'T'); i >= 0 {
		return t.Date[:i]
	}
	return t.Date
}

// transactionRecord is the wire and file shape of a transaction: a flat JSON
// object with a numeric amount in whole currency units.
type transactionRecord struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionRecord{
		ID:          t.ID,
		Amount:      t.Amount.Float64(),
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
		Type:        string(t.Type),
	})
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var rec transactionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*t = Transaction{
		ID:          rec.ID,
		Amount:      MoneyFromFloat(rec.Amount),
		Category:    rec.Category,
		Description: rec.Description,
		Date:        rec.Date,
		Type:        TransactionType(rec.Type),
	}
	return nil
}

// SuggestedCategories returns the advisory category labels for a transaction
// type. Free-text categories are still accepted everywhere.
func SuggestedCategories(t TransactionType) []string {
	switch t {
	case Income:
		return []string{"Salary", "Freelance", "Investment", "Other"}
	case Expense:
		return []string{"Food", "Transport", "Entertainment", "Bills", "Shopping", "Healthcare"}
	default:
		return nil
	}
}
