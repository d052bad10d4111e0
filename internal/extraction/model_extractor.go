package extraction

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// ModelExtractor asks a language model for the draft and falls back to the
// rule extractor whenever the model is unavailable or its reply is unusable.
type ModelExtractor struct {
	client   ModelClient
	fallback *RuleExtractor
	log      zerolog.Logger
	now      func() time.Time
}

// NewModelExtractor wraps client. A nil client makes the extractor behave
// exactly like fallback.
func NewModelExtractor(client ModelClient, fallback *RuleExtractor, log zerolog.Logger) *ModelExtractor {
	return &ModelExtractor{
		client:   client,
		fallback: fallback,
		log:      log,
		now:      fallback.now,
	}
}

// Extract implements Extractor.
func (m *ModelExtractor) Extract(ctx context.Context, in Input) domain.ExtractedTransactionData {
	if m.client == nil {
		return m.fallback.Extract(ctx, in)
	}

	log := m.log.With().Str("model", m.client.Name()).Logger()

	raw, err := m.client.Complete(ctx, AccountantPrompt, in)
	if err != nil {
		log.Warn().Err(err).Msg("Model extraction failed, using keyword rules")
		return m.fallback.Extract(ctx, in)
	}

	draft, err := parseModelReply(raw, in, m.now())
	if err != nil {
		log.Warn().Err(err).Str("reply", raw).Msg("Unusable model reply, using keyword rules")
		return m.fallback.Extract(ctx, in)
	}

	log.Debug().
		Str("amount", draft.Amount.String()).
		Str("category", draft.Category).
		Float64("confidence", draft.Confidence).
		Msg("Model extraction completed")
	return draft
}
