package extraction

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no Gemini model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient completes prompts with Google Gemini. Attached images and PDFs
// are sent inline.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client. An empty apiKey lets the SDK read
// its credentials from the environment.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiClient: create genai client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Name() string {
	return g.model
}

// Complete sends the prompt, the user text and any document in one user turn.
func (g *GeminiClient) Complete(ctx context.Context, systemPrompt string, in Input) (string, error) {
	parts := []*genai.Part{
		{Text: systemPrompt},
		{Text: in.Text},
	}
	if doc := in.Document; doc != nil && len(doc.Data) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{
				MIMEType: doc.MIMEType,
				Data:     doc.Data,
			},
		})
	}

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("GeminiClient.Complete: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("GeminiClient.Complete: empty response from model")
	}
	return text, nil
}
