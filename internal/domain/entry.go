package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// EntryStatus is the review state of an accounting entry. Rejected entries
// are deleted, so there is no rejected state.
type EntryStatus string

const (
	EntryStatusPending  EntryStatus = "pending"
	EntryStatusApproved EntryStatus = "approved"
)

// EntrySource records whether an entry was proposed by the assistant or typed in.
type EntrySource string

const (
	EntrySourceAI     EntrySource = "ai"
	EntrySourceManual EntrySource = "manual"
)

// ExpenseAccountMarker appears in the name of every expense account.
const ExpenseAccountMarker = "مصروف"

var (
	ErrEmptyEntry       = errors.New("accounting entry has no lines")
	ErrInvalidEntryLine = errors.New("entry line must carry exactly one positive side")
	ErrUnbalancedEntry  = errors.New("total debit does not equal total credit")
)

// TransactionEntry is one debit or credit line of a double-entry record.
type TransactionEntry struct {
	Account string          `json:"account"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// AccountingEntry is a double-entry ledger record.
type AccountingEntry struct {
	ID          string             `json:"id"`
	Date        civil.Date         `json:"date"`
	Description string             `json:"description"`
	Lines       []TransactionEntry `json:"entries"`
	TotalDebit  decimal.Decimal    `json:"totalDebit"`
	TotalCredit decimal.Decimal    `json:"totalCredit"`
	Status      EntryStatus        `json:"status"`
	Source      EntrySource        `json:"source"`

	// TransactionID links the entry to its mirrored transaction.
	TransactionID string `json:"transactionId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// NewAccountingEntry builds a pending entry, computing totals from lines and
// rejecting entries that do not balance.
func NewAccountingEntry(date civil.Date, description string, lines []TransactionEntry, source EntrySource) (*AccountingEntry, error) {
	entry := &AccountingEntry{
		Date:        date,
		Description: description,
		Lines:       append([]TransactionEntry(nil), lines...),
		Status:      EntryStatusPending,
		Source:      source,
	}
	entry.TotalDebit, entry.TotalCredit = Totals(lines)

	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return entry, nil
}

// Totals sums the debit and credit sides of lines.
func Totals(lines []TransactionEntry) (debit, credit decimal.Decimal) {
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Validate checks that the entry is well formed and balanced, and that the
// stored totals agree with its lines.
func (e *AccountingEntry) Validate() error {
	if len(e.Lines) == 0 {
		return ErrEmptyEntry
	}
	for i, l := range e.Lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("line %d (%s): %w", i, l.Account, ErrNegativeAmount)
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return fmt.Errorf("line %d (%s): %w", i, l.Account, ErrInvalidEntryLine)
		}
	}

	debit, credit := Totals(e.Lines)
	if !debit.Equal(credit) {
		return fmt.Errorf("debit %s, credit %s: %w", debit, credit, ErrUnbalancedEntry)
	}
	if !e.TotalDebit.Equal(debit) || !e.TotalCredit.Equal(credit) {
		return fmt.Errorf("stored totals %s/%s differ from lines %s/%s: %w",
			e.TotalDebit, e.TotalCredit, debit, credit, ErrUnbalancedEntry)
	}

	switch e.Status {
	case EntryStatusPending, EntryStatusApproved:
	default:
		return fmt.Errorf("entry status %q: %w", e.Status, ErrInvalidStatus)
	}
	switch e.Source {
	case EntrySourceAI, EntrySourceManual:
	default:
		return fmt.Errorf("entry source %q: %w", e.Source, ErrInvalidSource)
	}
	return nil
}

// IsExpenseAccount reports whether account names an expense account.
func IsExpenseAccount(account string) bool {
	return strings.Contains(account, ExpenseAccountMarker)
}

// TypeFromLines classifies a set of entry lines: expense if any line names an
// expense account, income otherwise.
func TypeFromLines(lines []TransactionEntry) TransactionType {
	for _, l := range lines {
		if IsExpenseAccount(l.Account) {
			return TransactionTypeExpense
		}
	}
	return TransactionTypeIncome
}
