package export

import (
	"context"
	"fmt"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// WebhookSink posts the entry document to a spreadsheet automation webhook.
type WebhookSink struct {
	poster Poster
}

func NewWebhookSink(p Poster) *WebhookSink {
	return &WebhookSink{poster: p}
}

func (w *WebhookSink) Name() string { return "sheets_webhook" }

func (w *WebhookSink) Export(ctx context.Context, entry domain.AccountingEntry) error {
	res, err := w.poster.PostJSON(ctx, entry)
	if err != nil {
		return fmt.Errorf("WebhookSink.Export: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("WebhookSink.Export: webhook answered %d", res.StatusCode)
	}
	return nil
}
