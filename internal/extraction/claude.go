package extraction

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultClaudeModel is used when no Claude model is configured.
const DefaultClaudeModel = "claude-sonnet-4-5-20250929"

const claudeMaxTokens = 1024

// ClaudeClient completes prompts with Anthropic Claude. Image attachments are
// sent as base64 image blocks; other documents contribute only the user text.
type ClaudeClient struct {
	client anthropic.Client
	model  string
}

func NewClaudeClient(apiKey, model string) (*ClaudeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewClaudeClient: API key is required")
	}
	if model == "" {
		model = DefaultClaudeModel
	}
	return &ClaudeClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (c *ClaudeClient) Name() string {
	return c.model
}

func (c *ClaudeClient) Complete(ctx context.Context, systemPrompt string, in Input) (string, error) {
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(in.Text)}
	if doc := in.Document; doc != nil && strings.HasPrefix(doc.MIMEType, "image/") {
		blocks = append(blocks, anthropic.NewImageBlockBase64(doc.MIMEType, base64.StdEncoding.EncodeToString(doc.Data)))
	}

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: claudeMaxTokens,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(blocks...),
		},
	})
	if err != nil {
		return "", fmt.Errorf("ClaudeClient.Complete: messages API: %w", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("ClaudeClient.Complete: empty response from model")
	}
	return text.String(), nil
}
