package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

func TestStore_CreatePairLinks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	entry, tx, err := s.CreatePair(ctx, expenseEntry("فاتورة ماء", 60), expenseTx("فاتورة ماء", 60, domain.TransactionStatusPending))
	if err != nil {
		t.Fatalf("CreatePair() error: %v", err)
	}
	if entry.TransactionID != tx.ID || tx.EntryID != entry.ID {
		t.Errorf("pair not linked: entry.TransactionID=%q tx.ID=%q tx.EntryID=%q entry.ID=%q",
			entry.TransactionID, tx.ID, tx.EntryID, entry.ID)
	}
}

func TestStore_CreatePairRejectsUnbalanced(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	e := expenseEntry("x", 60)
	e.Lines[0].Debit = decimal.NewFromInt(61)
	if _, _, err := s.CreatePair(ctx, e, expenseTx("x", 60, domain.TransactionStatusPending)); err == nil {
		t.Fatal("CreatePair() expected error for unbalanced entry")
	}

	txs, _ := s.ListTransactions(ctx, TransactionFilter{})
	entries, _ := s.ListEntries(ctx, EntryFilter{})
	if len(txs) != 0 || len(entries) != 0 {
		t.Errorf("partial pair stored: %d transactions, %d entries", len(txs), len(entries))
	}
}

func TestStore_ApprovePair(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(t *testing.T, s *Store) string // returns entry ID
		wantTx bool
	}{
		{
			name: "linked pair",
			setup: func(t *testing.T, s *Store) string {
				e, _, err := s.CreatePair(context.Background(), expenseEntry("فاتورة", 10), expenseTx("فاتورة", 10, domain.TransactionStatusPending))
				if err != nil {
					t.Fatal(err)
				}
				return e.ID
			},
			wantTx: true,
		},
		{
			name: "legacy description match",
			setup: func(t *testing.T, s *Store) string {
				ctx := context.Background()
				if _, err := s.CreateTransaction(ctx, expenseTx("غداء عمل", 90, domain.TransactionStatusPending)); err != nil {
					t.Fatal(err)
				}
				e, err := s.CreateEntry(ctx, expenseEntry("غداء عمل", 90))
				if err != nil {
					t.Fatal(err)
				}
				return e.ID
			},
			wantTx: true,
		},
		{
			name: "no matching transaction",
			setup: func(t *testing.T, s *Store) string {
				e, err := s.CreateEntry(context.Background(), expenseEntry("يتيم", 15))
				if err != nil {
					t.Fatal(err)
				}
				return e.ID
			},
			wantTx: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := newTestStore(t)
			id := tt.setup(t, s)

			res, err := s.ApprovePair(ctx, id)
			if err != nil {
				t.Fatalf("ApprovePair() error: %v", err)
			}
			if res.Entry.Status != domain.EntryStatusApproved {
				t.Errorf("entry status = %q, want approved", res.Entry.Status)
			}
			if (res.Transaction != nil) != tt.wantTx {
				t.Fatalf("transaction updated = %v, want %v", res.Transaction != nil, tt.wantTx)
			}
			if res.Transaction != nil {
				stored, _ := s.GetTransaction(ctx, res.Transaction.ID)
				if stored.Status != domain.TransactionStatusApproved {
					t.Errorf("stored transaction status = %q, want approved", stored.Status)
				}
			}

			stored, _ := s.GetEntry(ctx, id)
			if stored.Status != domain.EntryStatusApproved {
				t.Errorf("stored entry status = %q, want approved", stored.Status)
			}
		})
	}
}

func TestStore_ApprovePairKeepsTotals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithDemoData())

	// ae2 carries 1500/1500 and is approved already; approving again is a no-op on totals.
	res, err := s.ApprovePair(ctx, "ae2")
	if err != nil {
		t.Fatalf("ApprovePair() error: %v", err)
	}
	want := decimal.NewFromInt(1500)
	if res.Entry.Status != domain.EntryStatusApproved || !res.Entry.TotalDebit.Equal(want) || !res.Entry.TotalCredit.Equal(want) {
		t.Errorf("entry = %+v", res.Entry)
	}
}

func TestStore_ApprovePairIgnoresLinkedElsewhere(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// A pending transaction already linked to another entry must not be
	// claimed by an unlinked entry with the same description.
	_, linked, err := s.CreatePair(ctx, expenseEntry("تكرار", 5), expenseTx("تكرار", 5, domain.TransactionStatusPending))
	if err != nil {
		t.Fatal(err)
	}
	orphan, err := s.CreateEntry(ctx, expenseEntry("تكرار", 5))
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.ApprovePair(ctx, orphan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Transaction != nil {
		t.Errorf("orphan entry approved transaction %s", res.Transaction.ID)
	}
	got, _ := s.GetTransaction(ctx, linked.ID)
	if got.Status != domain.TransactionStatusPending {
		t.Errorf("linked transaction status = %q, want pending", got.Status)
	}
}

func TestStore_ApprovePairLeavesSettledLinkedTransaction(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	entry, tx, err := s.CreatePair(ctx, expenseEntry("صيانة", 100), expenseTx("صيانة", 100, domain.TransactionStatusPending))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpdateTransactionStatus(ctx, tx.ID, domain.TransactionStatusRejected); err != nil {
		t.Fatal(err)
	}

	res, err := s.ApprovePair(ctx, entry.ID)
	if err != nil {
		t.Fatalf("ApprovePair() error: %v", err)
	}
	if res.Entry.Status != domain.EntryStatusApproved {
		t.Errorf("entry status = %q, want approved", res.Entry.Status)
	}
	if res.Transaction != nil {
		t.Errorf("rejected transaction %s was approved", res.Transaction.ID)
	}
	got, _ := s.GetTransaction(ctx, tx.ID)
	if got.Status != domain.TransactionStatusRejected {
		t.Errorf("linked transaction status = %q, want rejected", got.Status)
	}
	stats, err := s.DashboardStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !stats.TotalExpense.IsZero() {
		t.Errorf("TotalExpense = %s, want 0", stats.TotalExpense)
	}
}

func TestStore_RejectPair(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Two unlinked pending transactions share the description; only one goes.
	for i := 0; i < 2; i++ {
		if _, err := s.CreateTransaction(ctx, expenseTx("مكرر", 20, domain.TransactionStatusPending)); err != nil {
			t.Fatal(err)
		}
	}
	approved, _ := s.CreateTransaction(ctx, expenseTx("مكرر", 20, domain.TransactionStatusApproved))
	entry, err := s.CreateEntry(ctx, expenseEntry("مكرر", 20))
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.RejectPair(ctx, entry.ID)
	if err != nil {
		t.Fatalf("RejectPair() error: %v", err)
	}
	if res.Transaction == nil {
		t.Fatal("expected a correlated transaction to be removed")
	}

	if _, err := s.GetEntry(ctx, entry.ID); err == nil {
		t.Error("entry still present after reject")
	}
	txs, _ := s.ListTransactions(ctx, TransactionFilter{})
	if len(txs) != 2 {
		t.Errorf("len(transactions) = %d, want 2", len(txs))
	}
	if _, err := s.GetTransaction(ctx, approved.ID); err != nil {
		t.Errorf("approved transaction removed: %v", err)
	}
}

func TestStore_RejectPairKeepsApprovedLinkedTransaction(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithDemoData())

	// ae1 is linked to t1, which is approved: the entry goes, t1 stays.
	res, err := s.RejectPair(ctx, "ae1")
	if err != nil {
		t.Fatal(err)
	}
	if res.Transaction != nil {
		t.Errorf("approved transaction %s was removed", res.Transaction.ID)
	}
	if _, err := s.GetTransaction(ctx, "t1"); err != nil {
		t.Errorf("t1 missing: %v", err)
	}
}
