package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

// NotionClient creates pages through the Notion SDK.
type NotionClient struct {
	client *notionapi.Client
}

func NewNotionClient(token string) *NotionClient {
	return &NotionClient{
		client: notionapi.NewClient(notionapi.Token(token)),
	}
}

// CreatePage creates a new page in a Notion database with the given properties.
func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	}

	page, err := n.client.Page.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CreatePage: %w", err)
	}
	return page, nil
}

// NotionSink records each approved entry as a page in a journal database.
type NotionSink struct {
	pages      PageCreator
	databaseID string
}

func NewNotionSink(pages PageCreator, databaseID string) *NotionSink {
	return &NotionSink{pages: pages, databaseID: databaseID}
}

func (n *NotionSink) Name() string { return "notion" }

func (n *NotionSink) Export(ctx context.Context, entry domain.AccountingEntry) error {
	if _, err := n.pages.CreatePage(ctx, n.databaseID, EntryToNotionProperties(entry)); err != nil {
		return fmt.Errorf("NotionSink.Export: %w", err)
	}
	return nil
}

// EntryToNotionProperties maps an entry onto the journal database columns.
func EntryToNotionProperties(entry domain.AccountingEntry) notionapi.Properties {
	props := notionapi.Properties{
		"Description": notionapi.TitleProperty{
			Title: richText(entry.Description),
		},
		"Entry ID": notionapi.RichTextProperty{
			RichText: richText(entry.ID),
		},
		"Debit": notionapi.NumberProperty{
			Number: entry.TotalDebit.InexactFloat64(),
		},
		"Credit": notionapi.NumberProperty{
			Number: entry.TotalCredit.InexactFloat64(),
		},
		"Source": notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(entry.Source)},
		},
		"Lines": notionapi.RichTextProperty{
			RichText: richText(formatLines(entry.Lines)),
		},
	}

	if entry.Date.IsValid() {
		d := notionapi.Date(entry.Date.In(time.UTC))
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{Start: &d},
		}
	}
	if entry.TransactionID != "" {
		props["Transaction ID"] = notionapi.RichTextProperty{
			RichText: richText(entry.TransactionID),
		}
	}
	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: s},
		},
	}
}

func formatLines(lines []domain.TransactionEntry) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		switch {
		case l.Debit.IsPositive():
			parts = append(parts, fmt.Sprintf("%s: مدين %s", l.Account, l.Debit.StringFixed(2)))
		default:
			parts = append(parts, fmt.Sprintf("%s: دائن %s", l.Account, l.Credit.StringFixed(2)))
		}
	}
	return strings.Join(parts, "\n")
}
