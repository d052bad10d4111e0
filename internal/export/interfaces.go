// Package export delivers approved accounting entries to external systems.
package export

import (
	"context"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/webhook"
)

// Sink receives approved entries. Implementations must be safe for concurrent
// use by the queue workers.
type Sink interface {
	Name() string
	Export(ctx context.Context, entry domain.AccountingEntry) error
}

// Poster posts a JSON document to a webhook.
type Poster interface {
	PostJSON(ctx context.Context, v any) (webhook.Result, error)
}

// RowInserter streams rows into a BigQuery table.
type RowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// PageCreator creates pages in a Notion database.
type PageCreator interface {
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
}

var (
	_ Sink        = (*WebhookSink)(nil)
	_ Sink        = (*BigQuerySink)(nil)
	_ Sink        = (*NotionSink)(nil)
	_ Poster      = (*webhook.Gateway)(nil)
	_ PageCreator = (*NotionClient)(nil)
)
