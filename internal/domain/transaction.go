package domain

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TransactionType is the cash-flow direction of a transaction.
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// TransactionStatus is the review state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusRejected TransactionStatus = "rejected"
)

// TransactionSource records where a transaction came from.
type TransactionSource string

const (
	SourceManual     TransactionSource = "manual"
	SourceAIChat     TransactionSource = "ai_chat"
	SourceFileUpload TransactionSource = "file_upload"
)

// CashAccount is the ledger account that mirrors every chat-derived transaction.
const CashAccount = "النقدية"

// DefaultCategory is used when no category rule matched.
const DefaultCategory = "عام"

var (
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrInvalidType    = errors.New("invalid transaction type")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidSource  = errors.New("invalid source")
)

// Transaction is a single cash-flow event.
type Transaction struct {
	ID          string            `json:"id"`
	Date        civil.Date        `json:"date"`
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"`
	Type        TransactionType   `json:"type"`
	Category    string            `json:"category"`
	Account     string            `json:"account"`
	Status      TransactionStatus `json:"status"`
	Source      TransactionSource `json:"source"`
	RawData     string            `json:"rawData,omitempty"`

	// EntryID links the transaction to the accounting entry written with it.
	// Empty for manually created transactions.
	EntryID string `json:"entryId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the field-level invariants of a transaction.
func (t *Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return fmt.Errorf("transaction %q: %w", t.Description, ErrNegativeAmount)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("transaction type %q: %w", t.Type, ErrInvalidType)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("transaction status %q: %w", t.Status, ErrInvalidStatus)
	}
	if !t.Source.Valid() {
		return fmt.Errorf("transaction source %q: %w", t.Source, ErrInvalidSource)
	}
	return nil
}

func (t TransactionType) Valid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeIncome
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case TransactionStatusPending, TransactionStatusApproved, TransactionStatusRejected:
		return true
	}
	return false
}

func (s TransactionSource) Valid() bool {
	switch s {
	case SourceManual, SourceAIChat, SourceFileUpload:
		return true
	}
	return false
}
