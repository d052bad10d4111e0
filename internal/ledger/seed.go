package ledger

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

const (
	bankAccount = "البنك"
	cashBox     = "الصندوق"
)

func demoTransactions(now time.Time) []domain.Transaction {
	return []domain.Transaction{
		{
			ID:          "t1",
			Date:        civil.Date{Year: 2025, Month: time.February, Day: 1},
			Description: "فاتورة كهرباء",
			Amount:      decimal.NewFromInt(250),
			Type:        domain.TransactionTypeExpense,
			Category:    "خدمات",
			Account:     bankAccount,
			Status:      domain.TransactionStatusApproved,
			Source:      domain.SourceAIChat,
			EntryID:     "ae1",
			CreatedAt:   now,
		},
		{
			ID:          "t2",
			Date:        civil.Date{Year: 2025, Month: time.February, Day: 2},
			Description: "إيراد مبيعات",
			Amount:      decimal.NewFromInt(1500),
			Type:        domain.TransactionTypeIncome,
			Category:    "مبيعات",
			Account:     cashBox,
			Status:      domain.TransactionStatusApproved,
			Source:      domain.SourceManual,
			EntryID:     "ae2",
			CreatedAt:   now,
		},
		{
			ID:          "t3",
			Date:        civil.Date{Year: 2025, Month: time.February, Day: 3},
			Description: "فاتورة انترنت",
			Amount:      decimal.NewFromInt(200),
			Type:        domain.TransactionTypeExpense,
			Category:    "اتصالات",
			Account:     bankAccount,
			Status:      domain.TransactionStatusPending,
			Source:      domain.SourceAIChat,
			EntryID:     "ae3",
			CreatedAt:   now,
		},
	}
}

func demoEntries(now time.Time) []domain.AccountingEntry {
	pair := func(id, txID string, day int, desc, debitAcct, creditAcct string, amount int64, status domain.EntryStatus) domain.AccountingEntry {
		a := decimal.NewFromInt(amount)
		return domain.AccountingEntry{
			ID:          id,
			Date:        civil.Date{Year: 2025, Month: time.February, Day: day},
			Description: desc,
			Lines: []domain.TransactionEntry{
				{Account: debitAcct, Debit: a, Credit: decimal.Zero},
				{Account: creditAcct, Debit: decimal.Zero, Credit: a},
			},
			TotalDebit:    a,
			TotalCredit:   a,
			Status:        status,
			Source:        domain.EntrySourceAI,
			TransactionID: txID,
			CreatedAt:     now,
		}
	}

	return []domain.AccountingEntry{
		pair("ae1", "t1", 1, "فاتورة كهرباء", "مصروفات الكهرباء", bankAccount, 250, domain.EntryStatusApproved),
		pair("ae2", "t2", 2, "إيراد مبيعات", cashBox, "إيرادات المبيعات", 1500, domain.EntryStatusApproved),
		pair("ae3", "t3", 3, "فاتورة انترنت", "مصروفات الاتصالات", bankAccount, 200, domain.EntryStatusPending),
	}
}
