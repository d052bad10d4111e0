package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// ErrNotFound is returned when a transaction or entry ID does not exist.
var ErrNotFound = errors.New("not found")

const (
	transactionIDPrefix = "t_"
	entryIDPrefix       = "ae_"
)

// TransactionFilter narrows ListTransactions. Zero fields match everything.
type TransactionFilter struct {
	Status   domain.TransactionStatus
	Type     domain.TransactionType
	Category string
	Limit    int
}

// EntryFilter narrows ListEntries.
type EntryFilter struct {
	Status domain.EntryStatus
	Limit  int
}

// Store holds transactions and accounting entries, newest first. It is safe
// for concurrent use. Records returned to callers are copies.
type Store struct {
	mu           sync.RWMutex
	transactions []domain.Transaction
	entries      []domain.AccountingEntry

	latency  time.Duration
	snapshot *snapshot
	now      func() time.Time
	log      zerolog.Logger
}

// NewStore creates an empty store and applies opts. With a snapshot option the
// store is loaded from disk; demo data is only seeded into an empty store.
func NewStore(opts ...Option) (*Store, error) {
	cfg := options{
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{
		transactions: []domain.Transaction{},
		entries:      []domain.AccountingEntry{},
		latency:      cfg.latency,
		now:          cfg.now,
		log:          cfg.log,
	}

	if cfg.snapshotPath != "" {
		snap, err := openSnapshot(cfg.snapshotPath)
		if err != nil {
			return nil, fmt.Errorf("NewStore: %w", err)
		}
		s.snapshot = snap

		txs, entries, err := snap.load()
		if err != nil {
			snap.close()
			return nil, fmt.Errorf("NewStore: %w", err)
		}
		s.transactions, s.entries = txs, entries
		s.log.Info().
			Str("path", cfg.snapshotPath).
			Int("transactions", len(txs)).
			Int("entries", len(entries)).
			Msg("Ledger snapshot loaded")
	}

	if cfg.demoData && len(s.transactions) == 0 && len(s.entries) == 0 {
		s.transactions, s.entries = demoTransactions(s.now()), demoEntries(s.now())
		if err := s.persistLocked(); err != nil {
			s.Close()
			return nil, fmt.Errorf("NewStore: seed demo data: %w", err)
		}
	}

	return s, nil
}

// Close releases the snapshot file, if any. The store must not be used
// afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return nil
	}
	err := s.snapshot.close()
	s.snapshot = nil
	return err
}

// CreateTransaction validates tx, assigns an ID and creation time, and stores
// it at the front of the list.
func (s *Store) CreateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if err := s.wait(ctx); err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prepareTransaction(&tx)
	if err := tx.Validate(); err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: %w", err)
	}

	s.transactions = prepend(s.transactions, tx)
	if err := s.persistLocked(); err != nil {
		s.transactions = s.transactions[1:]
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: %w", err)
	}
	return tx, nil
}

// CreateEntry validates entry, assigns an ID and creation time, and stores it
// at the front of the list.
func (s *Store) CreateEntry(ctx context.Context, entry domain.AccountingEntry) (domain.AccountingEntry, error) {
	if err := s.wait(ctx); err != nil {
		return domain.AccountingEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prepareEntry(&entry)
	if err := entry.Validate(); err != nil {
		return domain.AccountingEntry{}, fmt.Errorf("CreateEntry: %w", err)
	}

	s.entries = prepend(s.entries, entry)
	if err := s.persistLocked(); err != nil {
		s.entries = s.entries[1:]
		return domain.AccountingEntry{}, fmt.Errorf("CreateEntry: %w", err)
	}
	return cloneEntry(entry), nil
}

func (s *Store) GetTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	if err := s.wait(ctx); err != nil {
		return domain.Transaction{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.transactionIndex(id)
	if i < 0 {
		return domain.Transaction{}, fmt.Errorf("GetTransaction: transaction %s: %w", id, ErrNotFound)
	}
	return s.transactions[i], nil
}

func (s *Store) GetEntry(ctx context.Context, id string) (domain.AccountingEntry, error) {
	if err := s.wait(ctx); err != nil {
		return domain.AccountingEntry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.entryIndex(id)
	if i < 0 {
		return domain.AccountingEntry{}, fmt.Errorf("GetEntry: entry %s: %w", id, ErrNotFound)
	}
	return cloneEntry(s.entries[i]), nil
}

// ListTransactions returns matching transactions, newest first.
func (s *Store) ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Transaction{}
	for _, tx := range s.transactions {
		if filter.Status != "" && tx.Status != filter.Status {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if filter.Category != "" && tx.Category != filter.Category {
			continue
		}
		result = append(result, tx)
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

// ListEntries returns matching entries, newest first.
func (s *Store) ListEntries(ctx context.Context, filter EntryFilter) ([]domain.AccountingEntry, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.AccountingEntry{}
	for _, e := range s.entries {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		result = append(result, cloneEntry(e))
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
	}
	return result, nil
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, id string, status domain.TransactionStatus) (domain.Transaction, error) {
	if !status.Valid() {
		return domain.Transaction{}, fmt.Errorf("UpdateTransactionStatus: status %q: %w", status, domain.ErrInvalidStatus)
	}
	if err := s.wait(ctx); err != nil {
		return domain.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.transactionIndex(id)
	if i < 0 {
		return domain.Transaction{}, fmt.Errorf("UpdateTransactionStatus: transaction %s: %w", id, ErrNotFound)
	}

	prev := s.transactions[i].Status
	s.transactions[i].Status = status
	if err := s.persistLocked(); err != nil {
		s.transactions[i].Status = prev
		return domain.Transaction{}, fmt.Errorf("UpdateTransactionStatus: %w", err)
	}
	return s.transactions[i], nil
}

func (s *Store) UpdateEntryStatus(ctx context.Context, id string, status domain.EntryStatus) (domain.AccountingEntry, error) {
	if status != domain.EntryStatusPending && status != domain.EntryStatusApproved {
		return domain.AccountingEntry{}, fmt.Errorf("UpdateEntryStatus: status %q: %w", status, domain.ErrInvalidStatus)
	}
	if err := s.wait(ctx); err != nil {
		return domain.AccountingEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.entryIndex(id)
	if i < 0 {
		return domain.AccountingEntry{}, fmt.Errorf("UpdateEntryStatus: entry %s: %w", id, ErrNotFound)
	}

	prev := s.entries[i].Status
	s.entries[i].Status = status
	if err := s.persistLocked(); err != nil {
		s.entries[i].Status = prev
		return domain.AccountingEntry{}, fmt.Errorf("UpdateEntryStatus: %w", err)
	}
	return cloneEntry(s.entries[i]), nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.transactionIndex(id)
	if i < 0 {
		return fmt.Errorf("DeleteTransaction: transaction %s: %w", id, ErrNotFound)
	}

	prev := s.transactions
	s.transactions = removeAt(s.transactions, i)
	if err := s.persistLocked(); err != nil {
		s.transactions = prev
		return fmt.Errorf("DeleteTransaction: %w", err)
	}
	return nil
}

func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.entryIndex(id)
	if i < 0 {
		return fmt.Errorf("DeleteEntry: entry %s: %w", id, ErrNotFound)
	}

	prev := s.entries
	s.entries = removeAt(s.entries, i)
	if err := s.persistLocked(); err != nil {
		s.entries = prev
		return fmt.Errorf("DeleteEntry: %w", err)
	}
	return nil
}

// wait simulates backend latency. It returns early with the context error if
// ctx is done first.
func (s *Store) wait(ctx context.Context) error {
	if s.latency <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(s.latency)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Store) prepareTransaction(tx *domain.Transaction) {
	now := s.now()
	tx.ID = newID(transactionIDPrefix)
	tx.CreatedAt = now
	if tx.Date.IsZero() {
		tx.Date = civil.DateOf(now)
	}
	if tx.Category == "" {
		tx.Category = domain.DefaultCategory
	}
	if tx.Status == "" {
		tx.Status = domain.TransactionStatusPending
	}
	if tx.Source == "" {
		tx.Source = domain.SourceManual
	}
}

func (s *Store) prepareEntry(e *domain.AccountingEntry) {
	now := s.now()
	e.ID = newID(entryIDPrefix)
	e.CreatedAt = now
	if e.Date.IsZero() {
		e.Date = civil.DateOf(now)
	}
	if e.Status == "" {
		e.Status = domain.EntryStatusPending
	}
	if e.Source == "" {
		e.Source = domain.EntrySourceManual
	}
	e.Lines = append([]domain.TransactionEntry(nil), e.Lines...)
	if e.TotalDebit.IsZero() && e.TotalCredit.IsZero() {
		e.TotalDebit, e.TotalCredit = domain.Totals(e.Lines)
	}
}

func (s *Store) transactionIndex(id string) int {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) entryIndex(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked() error {
	if s.snapshot == nil {
		return nil
	}
	return s.snapshot.save(s.transactions, s.entries)
}

// newID returns a time-ordered identifier with a record-type prefix.
func newID(prefix string) string {
	return prefix + uuid.Must(uuid.NewV7()).String()
}

func prepend[T any](list []T, v T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	return append(out, list...)
}

func removeAt[T any](list []T, i int) []T {
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...)
}

func cloneEntry(e domain.AccountingEntry) domain.AccountingEntry {
	e.Lines = append([]domain.TransactionEntry(nil), e.Lines...)
	return e
}
