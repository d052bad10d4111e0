package export

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/dvloznov/ai-accountant/internal/config"
	"github.com/dvloznov/ai-accountant/internal/webhook"
)

// NewSinks builds every sink cfg enables. The returned function releases
// their clients and is safe to call when no sink was built.
func NewSinks(ctx context.Context, cfg config.ExportConfig, log zerolog.Logger) ([]Sink, func(), error) {
	var sinks []Sink
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Error().Err(err).Msg("Failed to close export sink")
			}
		}
	}

	if cfg.WebhookURL != "" {
		gw := webhook.NewGateway(webhook.Config{URL: cfg.WebhookURL}, log)
		sinks = append(sinks, NewWebhookSink(gw))
	}

	if cfg.BigQueryProject != "" {
		bq, err := NewBigQuerySink(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, cfg.BigQueryTable, ClientOptions(cfg)...)
		if err != nil {
			closeAll()
			return nil, func() {}, fmt.Errorf("NewSinks: %w", err)
		}
		sinks = append(sinks, bq)
		closers = append(closers, bq.Close)
	}

	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		sinks = append(sinks, NewNotionSink(NewNotionClient(cfg.NotionToken), cfg.NotionDatabaseID))
	}

	return sinks, closeAll, nil
}

// ClientOptions returns the Google client options for cfg's credentials file.
func ClientOptions(cfg config.ExportConfig) []option.ClientOption {
	if cfg.CredentialsFile == "" {
		return nil
	}
	return []option.ClientOption{option.WithCredentialsFile(cfg.CredentialsFile)}
}
