package ledger

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/boltdb/bolt"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

var (
	ledgerBucket    = []byte("ledger")
	transactionsKey = []byte("transactions")
	entriesKey      = []byte("entries")
)

// snapshot keeps the whole ledger in one Bolt bucket. Both lists are written
// in a single Bolt transaction so an approval pair is never half persisted.
type snapshot struct {
	db *bolt.DB
}

func openSnapshot(path string) (*snapshot, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("openSnapshot: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(ledgerBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("openSnapshot: create bucket: %w", err)
	}

	return &snapshot{db: db}, nil
}

func (s *snapshot) load() ([]domain.Transaction, []domain.AccountingEntry, error) {
	txs := []domain.Transaction{}
	entries := []domain.AccountingEntry{}

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(ledgerBucket)
		if v := b.Get(transactionsKey); v != nil {
			if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&txs); err != nil {
				return fmt.Errorf("decode transactions: %w", err)
			}
		}
		if v := b.Get(entriesKey); v != nil {
			if err := gob.NewDecoder(bytes.NewReader(v)).Decode(&entries); err != nil {
				return fmt.Errorf("decode entries: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("snapshot.load: %w", err)
	}
	return txs, entries, nil
}

func (s *snapshot) save(txs []domain.Transaction, entries []domain.AccountingEntry) error {
	var txBuf, entryBuf bytes.Buffer
	if err := gob.NewEncoder(&txBuf).Encode(txs); err != nil {
		return fmt.Errorf("snapshot.save: encode transactions: %w", err)
	}
	if err := gob.NewEncoder(&entryBuf).Encode(entries); err != nil {
		return fmt.Errorf("snapshot.save: encode entries: %w", err)
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(ledgerBucket)
		if err := b.Put(transactionsKey, txBuf.Bytes()); err != nil {
			return err
		}
		return b.Put(entriesKey, entryBuf.Bytes())
	})
	if err != nil {
		return fmt.Errorf("snapshot.save: %w", err)
	}
	return nil
}

func (s *snapshot) close() error {
	return s.db.Close()
}
