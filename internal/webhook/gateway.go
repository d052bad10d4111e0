package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

const (
	DefaultTextTimeout  = 15 * time.Second
	DefaultImageTimeout = 60 * time.Second

	// maxResponseBytes caps how much of a webhook reply is read.
	maxResponseBytes = 1 << 20

	deliveredMessage  = "تم إرسال البيانات بنجاح"
	defaultConfidence = 0.9
)

// Sender relays a confirmed-or-not draft to the automation webhook.
type Sender interface {
	Send(ctx context.Context, originalText string, draft domain.ExtractedTransactionData, img *Image) (Result, error)
}

var _ Sender = (*Gateway)(nil)

// Payload is the JSON document posted to the webhook.
type Payload struct {
	Description string      `json:"description"`
	Amount      float64     `json:"amount"`
	Date        string      `json:"date"`
	Category    string      `json:"category"`
	Type        string      `json:"type"`
	Entries     []EntryLine `json:"entries"`
	Confidence  float64     `json:"confidence"`
	ImageData   *ImageData  `json:"imageData,omitempty"`
}

type EntryLine struct {
	Account string  `json:"account"`
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
}

type ImageData struct {
	Base64   string `json:"base64"`
	MIMEType string `json:"mimeType"`
	FileName string `json:"fileName"`
}

// Result describes a completed round-trip. Data is the webhook's JSON reply
// for 2xx responses, otherwise a {status, message} acknowledgement.
type Result struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
}

type Config struct {
	URL          string
	TextTimeout  time.Duration
	ImageTimeout time.Duration
	HTTPClient   *http.Client
}

// Gateway posts drafts and other JSON documents to a webhook URL. It never
// touches local ledger state.
type Gateway struct {
	url          string
	textTimeout  time.Duration
	imageTimeout time.Duration
	client       *http.Client
	log          zerolog.Logger
	now          func() time.Time
}

func NewGateway(cfg Config, log zerolog.Logger) *Gateway {
	g := &Gateway{
		url:          cfg.URL,
		textTimeout:  cfg.TextTimeout,
		imageTimeout: cfg.ImageTimeout,
		client:       cfg.HTTPClient,
		log:          log,
		now:          time.Now,
	}
	if g.textTimeout <= 0 {
		g.textTimeout = DefaultTextTimeout
	}
	if g.imageTimeout <= 0 {
		g.imageTimeout = DefaultImageTimeout
	}
	if g.client == nil {
		g.client = &http.Client{}
	}
	return g
}

// BuildPayload fills omitted draft fields and derives the type from the entry
// accounts.
func BuildPayload(originalText string, draft domain.ExtractedTransactionData, today time.Time) Payload {
	p := Payload{
		Description: draft.Description,
		Amount:      draft.Amount.InexactFloat64(),
		Category:    draft.Category,
		Type:        string(domain.TypeFromLines(draft.Entries)),
		Entries:     make([]EntryLine, 0, len(draft.Entries)),
		Confidence:  draft.Confidence,
	}
	if p.Description == "" {
		p.Description = originalText
	}
	if draft.Date.IsZero() {
		p.Date = today.Format(time.DateOnly)
	} else {
		p.Date = draft.Date.String()
	}
	if p.Category == "" {
		p.Category = domain.DefaultCategory
	}
	if p.Confidence == 0 {
		p.Confidence = defaultConfidence
	}
	for _, e := range draft.Entries {
		p.Entries = append(p.Entries, EntryLine{
			Account: e.Account,
			Debit:   e.Debit.InexactFloat64(),
			Credit:  e.Credit.InexactFloat64(),
		})
	}
	return p
}

// Send relays the draft with an optional image. Any completed HTTP exchange is
// a success; transport failures return *Error.
func (g *Gateway) Send(ctx context.Context, originalText string, draft domain.ExtractedTransactionData, img *Image) (Result, error) {
	payload := BuildPayload(originalText, draft, g.now())
	timeout := g.textTimeout

	if img != nil {
		timeout = g.imageTimeout
		payload.ImageData = g.encodeImage(img)
	}

	return g.post(ctx, payload, timeout)
}

// PostJSON posts an arbitrary document with the text timeout.
func (g *Gateway) PostJSON(ctx context.Context, v any) (Result, error) {
	return g.post(ctx, v, g.textTimeout)
}

func (g *Gateway) encodeImage(img *Image) *ImageData {
	data, err := compressImage(img.Data)
	mimeType := "image/jpeg"
	if err != nil {
		g.log.Warn().Err(err).Str("file", img.Name).Msg("Image compression failed, sending original bytes")
		data = img.Data
		mimeType = img.MIMEType
	}
	return &ImageData{
		Base64:   base64.StdEncoding.EncodeToString(data),
		MIMEType: mimeType,
		FileName: img.Name,
	}
}

func (g *Gateway) post(ctx context.Context, v any, timeout time.Duration) (Result, error) {
	if g.url == "" {
		return Result{}, &Error{Kind: KindOther, Timeout: timeout, Err: fmt.Errorf("webhook URL is not configured")}
	}

	body, err := json.Marshal(v)
	if err != nil {
		return Result{}, &Error{Kind: KindOther, Timeout: timeout, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, &Error{Kind: KindOther, Timeout: timeout, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	log := g.log.With().Str("url", g.url).Int("payload_bytes", len(body)).Logger()
	log.Debug().Dur("timeout", timeout).Msg("Sending webhook request")

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		werr := classify(ctx, timeout, err)
		log.Error().Err(err).Str("kind", string(werr.Kind)).Msg("Webhook request failed")
		return Result{}, werr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		werr := classify(ctx, timeout, err)
		log.Error().Err(err).Str("kind", string(werr.Kind)).Msg("Reading webhook response failed")
		return Result{}, werr
	}

	log.Info().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Webhook request completed")

	result := Result{StatusCode: resp.StatusCode}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && json.Valid(respBody) {
		result.Data = json.RawMessage(respBody)
		return result, nil
	}

	ack, _ := json.Marshal(map[string]any{
		"status":  resp.StatusCode,
		"message": deliveredMessage,
	})
	result.Data = ack
	return result, nil
}
