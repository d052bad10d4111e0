package ledger

import (
	"context"
	"fmt"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// PairResult is the outcome of a pair operation. Transaction is nil when no
// correlated transaction was found.
type PairResult struct {
	Entry       domain.AccountingEntry
	Transaction *domain.Transaction
}

// CreatePair stores an entry and its mirrored transaction in one step, linking
// them to each other by ID.
func (s *Store) CreatePair(ctx context.Context, entry domain.AccountingEntry, tx domain.Transaction) (domain.AccountingEntry, domain.Transaction, error) {
	if err := s.wait(ctx); err != nil {
		return domain.AccountingEntry{}, domain.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prepareEntry(&entry)
	s.prepareTransaction(&tx)
	entry.TransactionID = tx.ID
	tx.EntryID = entry.ID

	if err := entry.Validate(); err != nil {
		return domain.AccountingEntry{}, domain.Transaction{}, fmt.Errorf("CreatePair: entry: %w", err)
	}
	if err := tx.Validate(); err != nil {
		return domain.AccountingEntry{}, domain.Transaction{}, fmt.Errorf("CreatePair: transaction: %w", err)
	}

	prevEntries, prevTxs := s.entries, s.transactions
	s.entries = prepend(s.entries, entry)
	s.transactions = prepend(s.transactions, tx)
	if err := s.persistLocked(); err != nil {
		s.entries, s.transactions = prevEntries, prevTxs
		return domain.AccountingEntry{}, domain.Transaction{}, fmt.Errorf("CreatePair: %w", err)
	}
	return cloneEntry(entry), tx, nil
}

// ApprovePair approves an entry and its correlated transaction together. The
// entry is approved even when no transaction correlates.
func (s *Store) ApprovePair(ctx context.Context, entryID string) (PairResult, error) {
	if err := s.wait(ctx); err != nil {
		return PairResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ei := s.entryIndex(entryID)
	if ei < 0 {
		return PairResult{}, fmt.Errorf("ApprovePair: entry %s: %w", entryID, ErrNotFound)
	}
	ti := s.correlatedTransactionLocked(s.entries[ei])

	prevEntry := s.entries[ei].Status
	s.entries[ei].Status = domain.EntryStatusApproved

	var prevTx domain.TransactionStatus
	if ti >= 0 {
		prevTx = s.transactions[ti].Status
		s.transactions[ti].Status = domain.TransactionStatusApproved
	}

	if err := s.persistLocked(); err != nil {
		s.entries[ei].Status = prevEntry
		if ti >= 0 {
			s.transactions[ti].Status = prevTx
		}
		return PairResult{}, fmt.Errorf("ApprovePair: %w", err)
	}

	result := PairResult{Entry: cloneEntry(s.entries[ei])}
	if ti >= 0 {
		tx := s.transactions[ti]
		result.Transaction = &tx
	}
	return result, nil
}

// RejectPair deletes an entry and at most one correlated pending transaction.
func (s *Store) RejectPair(ctx context.Context, entryID string) (PairResult, error) {
	if err := s.wait(ctx); err != nil {
		return PairResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ei := s.entryIndex(entryID)
	if ei < 0 {
		return PairResult{}, fmt.Errorf("RejectPair: entry %s: %w", entryID, ErrNotFound)
	}
	entry := s.entries[ei]

	ti := s.correlatedTransactionLocked(entry)

	prevEntries, prevTxs := s.entries, s.transactions
	result := PairResult{Entry: cloneEntry(entry)}
	s.entries = removeAt(s.entries, ei)
	if ti >= 0 {
		tx := s.transactions[ti]
		result.Transaction = &tx
		s.transactions = removeAt(s.transactions, ti)
	}

	if err := s.persistLocked(); err != nil {
		s.entries, s.transactions = prevEntries, prevTxs
		return PairResult{}, fmt.Errorf("RejectPair: %w", err)
	}
	return result, nil
}

// correlatedTransactionLocked finds the pending transaction mirroring entry:
// the linked one when the entry carries a link, otherwise the first unlinked
// pending transaction with the same description. Returns -1 if none.
func (s *Store) correlatedTransactionLocked(entry domain.AccountingEntry) int {
	if entry.TransactionID != "" {
		i := s.transactionIndex(entry.TransactionID)
		if i < 0 || s.transactions[i].Status != domain.TransactionStatusPending {
			return -1
		}
		return i
	}
	for i, tx := range s.transactions {
		if tx.EntryID == "" && tx.Status == domain.TransactionStatusPending && tx.Description == entry.Description {
			return i
		}
	}
	return -1
}
