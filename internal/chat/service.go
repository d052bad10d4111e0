// Package chat runs the accountant conversation: it extracts drafts from
// messages and uploads, relays them to the automation webhook, and keeps the
// message history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/approval"
	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/extraction"
	"github.com/dvloznov/ai-accountant/internal/webhook"
)

// MaxUploadBytes is the largest attachment accepted.
const MaxUploadBytes = 5 << 20

var (
	// ErrFileTooLarge is returned for uploads over MaxUploadBytes.
	ErrFileTooLarge = errors.New("file exceeds 5 MB")
	// ErrEmptyMessage is returned when there is neither text nor a file.
	ErrEmptyMessage = errors.New("message is empty")
)

// Upload is a file attached to a chat message.
type Upload struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Archiver keeps a copy of an upload and returns where it was stored.
type Archiver interface {
	Archive(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// Confirmer turns a reviewed draft into a pending ledger pair.
type Confirmer interface {
	Confirm(ctx context.Context, draft domain.ExtractedTransactionData, source domain.TransactionSource) (approval.Outcome, error)
}

var _ Confirmer = (*approval.Workflow)(nil)

// Reply is the result of one chat turn.
type Reply struct {
	UserMessage      domain.ChatMessage `json:"userMessage"`
	AssistantMessage domain.ChatMessage `json:"assistantMessage"`

	// Draft is the extracted data. NeedsReview is set when it carries an
	// amount the user should confirm.
	Draft       *domain.ExtractedTransactionData `json:"draft,omitempty"`
	NeedsReview bool                             `json:"needsReview"`

	// Webhook is the automation reply, nil when the relay failed or is
	// disabled.
	Webhook *webhook.Result `json:"webhook,omitempty"`
}

type Service struct {
	extractor extraction.Extractor
	sender    webhook.Sender
	confirmer Confirmer
	history   History
	archiver  Archiver
	now       func() time.Time
	log       zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSender relays every draft to the automation webhook.
func WithSender(s webhook.Sender) Option {
	return func(svc *Service) { svc.sender = s }
}

// WithArchiver stores uploaded files before extraction.
func WithArchiver(a Archiver) Option {
	return func(svc *Service) { svc.archiver = a }
}

// WithHistory replaces the in-memory history.
func WithHistory(h History) Option {
	return func(svc *Service) { svc.history = h }
}

func WithClock(now func() time.Time) Option {
	return func(svc *Service) { svc.now = now }
}

func NewService(extractor extraction.Extractor, confirmer Confirmer, log zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		extractor: extractor,
		confirmer: confirmer,
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.history == nil {
		s.history = NewMemoryHistory(DefaultHistoryLimit)
	}
	return s
}

// SendMessage handles a text message.
func (s *Service) SendMessage(ctx context.Context, userID, text string) (Reply, error) {
	if strings.TrimSpace(text) == "" {
		return Reply{}, ErrEmptyMessage
	}
	return s.turn(ctx, userID, text, nil)
}

// UploadFile handles a message with an attached file. Files over
// MaxUploadBytes are refused before any processing.
func (s *Service) UploadFile(ctx context.Context, userID, text string, f Upload) (Reply, error) {
	if len(f.Data) > MaxUploadBytes {
		return Reply{}, fmt.Errorf("UploadFile: %s (%d bytes): %w", f.Name, len(f.Data), ErrFileTooLarge)
	}
	if len(f.Data) == 0 {
		return Reply{}, ErrEmptyMessage
	}
	return s.turn(ctx, userID, text, &f)
}

// Confirm stores the reviewed draft as a pending entry and transaction.
func (s *Service) Confirm(ctx context.Context, userID string, draft domain.ExtractedTransactionData, source domain.TransactionSource) (approval.Outcome, error) {
	out, err := s.confirmer.Confirm(ctx, draft, source)
	if err != nil {
		s.appendAssistant(ctx, userID, confirmFailedText)
		return out, fmt.Errorf("Confirm: %w", err)
	}
	s.appendAssistant(ctx, userID, confirmedText)
	return out, nil
}

// Dismiss records that the user dropped the reviewed draft.
func (s *Service) Dismiss(ctx context.Context, userID string) (domain.ChatMessage, error) {
	msg := s.message(domain.RoleAssistant, dismissedText)
	if err := s.history.Append(ctx, userID, msg); err != nil {
		return msg, fmt.Errorf("Dismiss: %w", err)
	}
	return msg, nil
}

// History returns the conversation, starting with the welcome message when
// nothing was said yet.
func (s *Service) History(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	msgs, err := s.history.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}
	if len(msgs) == 0 {
		return []domain.ChatMessage{{
			ID:        "welcome",
			Role:      domain.RoleAssistant,
			Content:   welcomeText,
			Timestamp: s.now(),
		}}, nil
	}
	return msgs, nil
}

func (s *Service) ClearHistory(ctx context.Context, userID string) error {
	if err := s.history.Clear(ctx, userID); err != nil {
		return fmt.Errorf("ClearHistory: %w", err)
	}
	return nil
}

func (s *Service) turn(ctx context.Context, userID, text string, f *Upload) (Reply, error) {
	log := s.log.With().Str("user_id", userID).Bool("has_file", f != nil).Logger()

	userMsg := s.message(domain.RoleUser, text)
	in := extraction.Input{Text: text}
	var img *webhook.Image

	if f != nil {
		att := domain.Attachment{
			ID:   uuid.New().String(),
			Type: attachmentType(f.MIMEType),
			Name: f.Name,
			Size: int64(len(f.Data)),
		}
		if s.archiver != nil {
			uri, err := s.archiver.Archive(ctx, f.Name, f.MIMEType, f.Data)
			if err != nil {
				log.Warn().Err(err).Str("file", f.Name).Msg("Failed to archive upload")
			} else {
				att.URL = uri
			}
		}
		userMsg.Attachments = []domain.Attachment{att}
		if strings.TrimSpace(text) == "" {
			userMsg.Content = "مرفق: " + f.Name
		}

		in.Text = filePlaceholder(att.Type, f.Name, f.MIMEType)
		if t := strings.TrimSpace(text); t != "" {
			in.Text += "\n\n" + t
		}
		in.Document = &extraction.Document{Name: f.Name, MIMEType: f.MIMEType, Data: f.Data}
		if att.Type == domain.AttachmentImage {
			img = &webhook.Image{Name: f.Name, MIMEType: f.MIMEType, Data: f.Data}
		}
	}

	draft := s.extractor.Extract(ctx, in)
	reply := Reply{UserMessage: userMsg}

	if s.sender != nil {
		res, err := s.sender.Send(ctx, userMsg.Content, draft, img)
		if err != nil {
			log.Error().Err(err).Msg("Relaying draft to webhook failed")
			reply.AssistantMessage = s.message(domain.RoleAssistant, failureText(err))
			return reply, s.record(ctx, userID, &reply)
		}
		reply.Webhook = &res
	}

	reply.Draft = &draft
	reply.NeedsReview = draft.Reviewable()
	reply.AssistantMessage = s.message(domain.RoleAssistant, draftText(draft))
	reply.AssistantMessage.ExtractedData = &draft

	log.Info().
		Str("amount", draft.Amount.String()).
		Str("category", draft.Category).
		Bool("needs_review", reply.NeedsReview).
		Msg("Chat message processed")
	return reply, s.record(ctx, userID, &reply)
}

func (s *Service) record(ctx context.Context, userID string, r *Reply) error {
	if err := s.history.Append(ctx, userID, r.UserMessage, r.AssistantMessage); err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

func (s *Service) appendAssistant(ctx context.Context, userID, content string) {
	if err := s.history.Append(ctx, userID, s.message(domain.RoleAssistant, content)); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to record chat message")
	}
}

func (s *Service) message(role domain.ChatRole, content string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        string(role) + "-" + uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	}
}

func attachmentType(mimeType string) domain.AttachmentType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return domain.AttachmentImage
	case mimeType == "application/pdf":
		return domain.AttachmentPDF
	default:
		return domain.AttachmentFile
	}
}
