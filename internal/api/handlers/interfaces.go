package handlers

import (
	"context"

	"github.com/dvloznov/ai-accountant/internal/approval"
	"github.com/dvloznov/ai-accountant/internal/auth"
	"github.com/dvloznov/ai-accountant/internal/chat"
	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/ledger"
)

// Ledger is the store surface the API reads and writes.
type Ledger interface {
	CreateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
	GetTransaction(ctx context.Context, id string) (domain.Transaction, error)
	ListTransactions(ctx context.Context, filter ledger.TransactionFilter) ([]domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus) (domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	CreateEntry(ctx context.Context, entry domain.AccountingEntry) (domain.AccountingEntry, error)
	GetEntry(ctx context.Context, id string) (domain.AccountingEntry, error)
	ListEntries(ctx context.Context, filter ledger.EntryFilter) ([]domain.AccountingEntry, error)

	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
	GenerateReport(ctx context.Context, filters domain.ReportFilters) (domain.ReportData, error)
}

// Approver moves entries through review.
type Approver interface {
	Approve(ctx context.Context, entryID string) (approval.Outcome, error)
	Reject(ctx context.Context, entryID string) (approval.Outcome, error)
}

// ChatService runs the accountant conversation.
type ChatService interface {
	SendMessage(ctx context.Context, userID, text string) (chat.Reply, error)
	UploadFile(ctx context.Context, userID, text string, f chat.Upload) (chat.Reply, error)
	Confirm(ctx context.Context, userID string, draft domain.ExtractedTransactionData, source domain.TransactionSource) (approval.Outcome, error)
	Dismiss(ctx context.Context, userID string) (domain.ChatMessage, error)
	History(ctx context.Context, userID string) ([]domain.ChatMessage, error)
	ClearHistory(ctx context.Context, userID string) error
}

// Authenticator registers users and manages their sessions.
type Authenticator interface {
	Register(ctx context.Context, email, password, name string) (auth.Session, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Logout(ctx context.Context, token string) error
}

var (
	_ Ledger        = (*ledger.Store)(nil)
	_ Approver      = (*approval.Workflow)(nil)
	_ ChatService   = (*chat.Service)(nil)
	_ Authenticator = (*auth.Service)(nil)
)
