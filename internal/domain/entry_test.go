package domain

import (
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewAccountingEntry(t *testing.T) {
	date := civil.Date{Year: 2025, Month: 2, Day: 1}

	tests := []struct {
		name    string
		lines   []TransactionEntry
		wantErr error
	}{
		{
			name: "balanced expense",
			lines: []TransactionEntry{
				{Account: "مصروفات الكهرباء", Debit: dec("250")},
				{Account: CashAccount, Credit: dec("250")},
			},
		},
		{
			name: "balanced split",
			lines: []TransactionEntry{
				{Account: "مصروفات المطاعم", Debit: dec("30.25")},
				{Account: "مصروفات التسوق", Debit: dec("19.75")},
				{Account: CashAccount, Credit: dec("50")},
			},
		},
		{
			name:    "no lines",
			wantErr: ErrEmptyEntry,
		},
		{
			name: "unbalanced",
			lines: []TransactionEntry{
				{Account: "مصروفات الكهرباء", Debit: dec("250")},
				{Account: CashAccount, Credit: dec("200")},
			},
			wantErr: ErrUnbalancedEntry,
		},
		{
			name: "line with both sides",
			lines: []TransactionEntry{
				{Account: "مصروفات الكهرباء", Debit: dec("10"), Credit: dec("10")},
			},
			wantErr: ErrInvalidEntryLine,
		},
		{
			name: "line with neither side",
			lines: []TransactionEntry{
				{Account: "مصروفات الكهرباء"},
			},
			wantErr: ErrInvalidEntryLine,
		},
		{
			name: "negative debit",
			lines: []TransactionEntry{
				{Account: "مصروفات الكهرباء", Debit: dec("-5")},
				{Account: CashAccount, Credit: dec("-5")},
			},
			wantErr: ErrNegativeAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := NewAccountingEntry(date, "test", tt.lines, EntrySourceAI)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewAccountingEntry() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewAccountingEntry() unexpected error: %v", err)
			}
			if !entry.TotalDebit.Equal(entry.TotalCredit) {
				t.Errorf("totals differ: %s != %s", entry.TotalDebit, entry.TotalCredit)
			}
			if entry.Status != EntryStatusPending {
				t.Errorf("Status = %q, want pending", entry.Status)
			}
		})
	}
}

func TestAccountingEntry_ValidateStoredTotals(t *testing.T) {
	entry := &AccountingEntry{
		Lines: []TransactionEntry{
			{Account: "مصروفات الكهرباء", Debit: dec("250")},
			{Account: CashAccount, Credit: dec("250")},
		},
		TotalDebit:  dec("200"),
		TotalCredit: dec("250"),
		Status:      EntryStatusPending,
		Source:      EntrySourceManual,
	}
	if err := entry.Validate(); !errors.Is(err, ErrUnbalancedEntry) {
		t.Errorf("Validate() error = %v, want ErrUnbalancedEntry", err)
	}
}

func TestTypeFromLines(t *testing.T) {
	tests := []struct {
		name  string
		lines []TransactionEntry
		want  TransactionType
	}{
		{
			name:  "expense account present",
			lines: []TransactionEntry{{Account: CashAccount}, {Account: "مصروفات عامة"}},
			want:  TransactionTypeExpense,
		},
		{
			name:  "income accounts only",
			lines: []TransactionEntry{{Account: CashAccount}, {Account: "إيرادات المبيعات"}},
			want:  TransactionTypeIncome,
		},
		{
			name: "no lines",
			want: TransactionTypeIncome,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TypeFromLines(tt.lines); got != tt.want {
				t.Errorf("TypeFromLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTransaction_Validate(t *testing.T) {
	valid := Transaction{
		Amount: dec("10"),
		Type:   TransactionTypeExpense,
		Status: TransactionStatusPending,
		Source: SourceManual,
	}

	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{name: "valid", mutate: func(*Transaction) {}},
		{name: "negative amount", mutate: func(tx *Transaction) { tx.Amount = dec("-1") }, wantErr: ErrNegativeAmount},
		{name: "unknown type", mutate: func(tx *Transaction) { tx.Type = "transfer" }, wantErr: ErrInvalidType},
		{name: "unknown status", mutate: func(tx *Transaction) { tx.Status = "done" }, wantErr: ErrInvalidStatus},
		{name: "unknown source", mutate: func(tx *Transaction) { tx.Source = "email" }, wantErr: ErrInvalidSource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
