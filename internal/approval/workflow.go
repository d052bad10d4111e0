// Package approval turns confirmed drafts into pending ledger pairs and moves
// those pairs through approval or rejection.
package approval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/jobs"
	"github.com/dvloznov/ai-accountant/internal/ledger"
)

// ErrNotReviewable is returned by Confirm for drafts without an amount or
// without journal lines.
var ErrNotReviewable = errors.New("draft has no amount or entries to confirm")

// ErrAmountMismatch is returned by Confirm when the draft amount differs from
// the total of its journal lines.
var ErrAmountMismatch = errors.New("draft amount does not match entry total")

// Ledger is the part of the ledger store the workflow drives.
type Ledger interface {
	CreatePair(ctx context.Context, entry domain.AccountingEntry, tx domain.Transaction) (domain.AccountingEntry, domain.Transaction, error)
	ApprovePair(ctx context.Context, entryID string) (ledger.PairResult, error)
	RejectPair(ctx context.Context, entryID string) (ledger.PairResult, error)
	DashboardStats(ctx context.Context) (domain.DashboardStats, error)
}

var _ Ledger = (*ledger.Store)(nil)

// Outcome describes what a workflow step changed.
type Outcome struct {
	Entry domain.AccountingEntry `json:"entry"`

	// Transaction is the transaction written or changed alongside the entry,
	// nil when none correlated.
	Transaction        *domain.Transaction `json:"transaction,omitempty"`
	TransactionUpdated bool                `json:"transactionUpdated"`

	Stats domain.DashboardStats `json:"stats"`

	// ExportJobID is set when an approved entry was queued for export.
	ExportJobID string `json:"exportJobId,omitempty"`
}

// Workflow coordinates the ledger and the optional export queue.
type Workflow struct {
	ledger    Ledger
	publisher jobs.Publisher
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithPublisher queues an export job for every approved entry.
func WithPublisher(p jobs.Publisher) Option {
	return func(w *Workflow) { w.publisher = p }
}

// WithClock overrides the clock used to date drafts without a date.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

func New(l Ledger, log zerolog.Logger, opts ...Option) *Workflow {
	w := &Workflow{
		ledger: l,
		now:    time.Now,
		log:    log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Confirm stores a reviewed draft as a pending entry and a pending
// transaction linked to it.
func (w *Workflow) Confirm(ctx context.Context, draft domain.ExtractedTransactionData, source domain.TransactionSource) (Outcome, error) {
	if !draft.Reviewable() {
		return Outcome{}, ErrNotReviewable
	}
	if source == "" {
		source = domain.SourceAIChat
	}

	date := draft.Date
	if !date.IsValid() {
		date = civil.DateOf(w.now())
	}
	category := draft.Category
	if category == "" {
		category = domain.DefaultCategory
	}

	entry, err := domain.NewAccountingEntry(date, draft.Description, draft.Entries, domain.EntrySourceAI)
	if err != nil {
		return Outcome{}, fmt.Errorf("Confirm: %w", err)
	}
	if !draft.Amount.Equal(entry.TotalDebit) {
		return Outcome{}, fmt.Errorf("Confirm: amount %s, entry total %s: %w", draft.Amount, entry.TotalDebit, ErrAmountMismatch)
	}
	tx := domain.Transaction{
		Date:        date,
		Description: draft.Description,
		Amount:      draft.Amount,
		Type:        domain.TypeFromLines(draft.Entries),
		Category:    category,
		Account:     domain.CashAccount,
		Status:      domain.TransactionStatusPending,
		Source:      source,
	}

	storedEntry, storedTx, err := w.ledger.CreatePair(ctx, *entry, tx)
	if err != nil {
		return Outcome{}, fmt.Errorf("Confirm: %w", err)
	}

	out := Outcome{
		Entry:              storedEntry,
		Transaction:        &storedTx,
		TransactionUpdated: true,
	}
	out.Stats, err = w.ledger.DashboardStats(ctx)
	if err != nil {
		return out, fmt.Errorf("Confirm: stats: %w", err)
	}

	w.log.Info().
		Str("entry_id", storedEntry.ID).
		Str("transaction_id", storedTx.ID).
		Str("amount", storedTx.Amount.String()).
		Msg("Draft confirmed")
	return out, nil
}

// Approve approves an entry and its correlated transaction, then queues the
// entry for export. A failed export publish does not fail the approval.
func (w *Workflow) Approve(ctx context.Context, entryID string) (Outcome, error) {
	res, err := w.ledger.ApprovePair(ctx, entryID)
	if err != nil {
		return Outcome{}, fmt.Errorf("Approve: %s: %w", entryID, err)
	}

	out := Outcome{
		Entry:              res.Entry,
		Transaction:        res.Transaction,
		TransactionUpdated: res.Transaction != nil,
	}
	if !out.TransactionUpdated {
		w.log.Warn().Str("entry_id", entryID).Msg("Approved entry has no correlated transaction")
	}

	out.ExportJobID = w.publishExport(ctx, res.Entry)

	out.Stats, err = w.ledger.DashboardStats(ctx)
	if err != nil {
		return out, fmt.Errorf("Approve: stats: %w", err)
	}

	w.log.Info().
		Str("entry_id", entryID).
		Bool("transaction_updated", out.TransactionUpdated).
		Msg("Entry approved")
	return out, nil
}

// Reject deletes an entry and at most one correlated pending transaction.
func (w *Workflow) Reject(ctx context.Context, entryID string) (Outcome, error) {
	res, err := w.ledger.RejectPair(ctx, entryID)
	if err != nil {
		return Outcome{}, fmt.Errorf("Reject: %s: %w", entryID, err)
	}

	out := Outcome{
		Entry:              res.Entry,
		Transaction:        res.Transaction,
		TransactionUpdated: res.Transaction != nil,
	}
	out.Stats, err = w.ledger.DashboardStats(ctx)
	if err != nil {
		return out, fmt.Errorf("Reject: stats: %w", err)
	}

	w.log.Info().
		Str("entry_id", entryID).
		Bool("transaction_removed", out.TransactionUpdated).
		Msg("Entry rejected")
	return out, nil
}

func (w *Workflow) publishExport(ctx context.Context, entry domain.AccountingEntry) string {
	if w.publisher == nil {
		return ""
	}

	job := &jobs.ExportEntryJob{EntryID: entry.ID, Entry: entry}
	if err := w.publisher.PublishExportEntry(ctx, job); err != nil {
		w.log.Warn().Err(err).Str("entry_id", entry.ID).Msg("Failed to queue entry export")
		return ""
	}
	return job.JobID
}
