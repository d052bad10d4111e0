package extraction

import (
	"context"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// Document is a file attached to the text being extracted from.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Input is what a user submitted: free text and an optional document.
type Input struct {
	Text     string
	Document *Document
}

// Extractor turns user input into a transaction draft. Implementations never
// fail; model-backed extractors fall back to the rule table.
type Extractor interface {
	Extract(ctx context.Context, in Input) domain.ExtractedTransactionData
}

// ModelClient sends the accountant prompt and user input to a language model
// and returns its raw text reply.
type ModelClient interface {
	Complete(ctx context.Context, systemPrompt string, in Input) (string, error)
	Name() string
}

var (
	_ Extractor   = (*RuleExtractor)(nil)
	_ Extractor   = (*ModelExtractor)(nil)
	_ ModelClient = (*GeminiClient)(nil)
	_ ModelClient = (*ClaudeClient)(nil)
)
