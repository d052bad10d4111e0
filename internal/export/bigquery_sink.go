package export

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"google.golang.org/api/option"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// DefaultEntryLinesTable is the table approved entry lines are streamed into.
const DefaultEntryLinesTable = "entry_lines"

// EntryLineRow is one journal line of an approved entry.
type EntryLineRow struct {
	EntryID       string              `bigquery:"entry_id"`    // REQUIRED
	LineNo        int64               `bigquery:"line_no"`     // REQUIRED
	EntryDate     civil.Date          `bigquery:"entry_date"`  // REQUIRED
	Description   string              `bigquery:"description"` // REQUIRED
	Account       string              `bigquery:"account"`     // REQUIRED
	Debit         *big.Rat            `bigquery:"debit"`       // NUMERIC
	Credit        *big.Rat            `bigquery:"credit"`      // NUMERIC
	Source        string              `bigquery:"source"`
	TransactionID bigquery.NullString `bigquery:"transaction_id"` // NULLABLE
	ExportedTS    time.Time           `bigquery:"exported_ts"`
}

// BigQuerySink streams approved entry lines into BigQuery.
type BigQuerySink struct {
	client   *bigquery.Client
	inserter RowInserter
	now      func() time.Time
}

// NewBigQuerySink opens a client for projectID and targets dataset.table.
func NewBigQuerySink(ctx context.Context, projectID, datasetID, table string, opts ...option.ClientOption) (*BigQuerySink, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewBigQuerySink: bigquery client: %w", err)
	}
	if table == "" {
		table = DefaultEntryLinesTable
	}
	return &BigQuerySink{
		client:   client,
		inserter: client.DatasetInProject(projectID, datasetID).Table(table).Inserter(),
		now:      time.Now,
	}, nil
}

// NewBigQuerySinkWithInserter builds a sink over an existing inserter.
func NewBigQuerySinkWithInserter(ins RowInserter) *BigQuerySink {
	return &BigQuerySink{inserter: ins, now: time.Now}
}

func (b *BigQuerySink) Name() string { return "bigquery" }

func (b *BigQuerySink) Export(ctx context.Context, entry domain.AccountingEntry) error {
	rows := EntryLineRows(entry, b.now())
	if len(rows) == 0 {
		return nil
	}
	if err := b.inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("BigQuerySink.Export: inserting rows: %w", err)
	}
	return nil
}

// Close closes the BigQuery client connection.
func (b *BigQuerySink) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}

// EntryLineRows flattens an entry into one row per journal line.
func EntryLineRows(entry domain.AccountingEntry, exportedAt time.Time) []*EntryLineRow {
	rows := make([]*EntryLineRow, 0, len(entry.Lines))
	for i, l := range entry.Lines {
		row := &EntryLineRow{
			EntryID:     entry.ID,
			LineNo:      int64(i + 1),
			EntryDate:   entry.Date,
			Description: entry.Description,
			Account:     l.Account,
			Debit:       l.Debit.Rat(),
			Credit:      l.Credit.Rat(),
			Source:      string(entry.Source),
			ExportedTS:  exportedAt,
		}
		if entry.TransactionID != "" {
			row.TransactionID = bigquery.NullString{StringVal: entry.TransactionID, Valid: true}
		}
		rows = append(rows, row)
	}
	return rows
}
