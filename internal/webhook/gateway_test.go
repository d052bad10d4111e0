package webhook

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ai-accountant/internal/domain"
)

func testDraft() domain.ExtractedTransactionData {
	return domain.ExtractedTransactionData{
		Description: "دفعت 250 ريال فاتورة كهرباء",
		Amount:      decimal.NewFromInt(250),
		Date:        civil.Date{Year: 2025, Month: 2, Day: 4},
		Category:    "خدمات",
		Confidence:  0.92,
		Entries: []domain.TransactionEntry{
			{Account: "مصروفات الكهرباء", Debit: decimal.NewFromInt(250)},
			{Account: domain.CashAccount, Credit: decimal.NewFromInt(250)},
		},
	}
}

func newTestGateway(url string) *Gateway {
	return NewGateway(Config{URL: url}, zerolog.New(io.Discard))
}

func TestBuildPayload(t *testing.T) {
	today := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		draft domain.ExtractedTransactionData
		check func(t *testing.T, p Payload)
	}{
		{
			name:  "complete draft",
			draft: testDraft(),
			check: func(t *testing.T, p Payload) {
				if p.Type != "expense" || p.Amount != 250 || p.Date != "2025-02-04" {
					t.Errorf("payload = %+v", p)
				}
				if len(p.Entries) != 2 || p.Entries[0].Debit != 250 || p.Entries[1].Credit != 250 {
					t.Errorf("entries = %+v", p.Entries)
				}
			},
		},
		{
			name:  "empty draft takes defaults",
			draft: domain.ExtractedTransactionData{},
			check: func(t *testing.T, p Payload) {
				if p.Description != "original" {
					t.Errorf("Description = %q, want original", p.Description)
				}
				if p.Date != "2025-03-01" {
					t.Errorf("Date = %q, want 2025-03-01", p.Date)
				}
				if p.Category != "عام" || p.Confidence != 0.9 || p.Type != "income" {
					t.Errorf("payload = %+v", p)
				}
				if p.Entries == nil {
					t.Error("Entries must serialize as an empty list")
				}
			},
		},
		{
			name: "type follows entry accounts",
			draft: domain.ExtractedTransactionData{
				Type: domain.TransactionTypeExpense,
				Entries: []domain.TransactionEntry{
					{Account: domain.CashAccount, Debit: decimal.NewFromInt(10)},
					{Account: "إيرادات الخدمات", Credit: decimal.NewFromInt(10)},
				},
			},
			check: func(t *testing.T, p Payload) {
				if p.Type != "income" {
					t.Errorf("Type = %q, want income", p.Type)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, BuildPayload("original", tt.draft, today))
		})
	}
}

func TestGateway_Send(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantData string
	}{
		{
			name:     "json reply passes through",
			status:   http.StatusOK,
			body:     `{"row":12,"ok":true}`,
			wantData: `{"row":12,"ok":true}`,
		},
		{
			name:     "server error is still delivered",
			status:   http.StatusInternalServerError,
			body:     "boom",
			wantData: `{"message":"تم إرسال البيانات بنجاح","status":500}`,
		},
		{
			name:     "non json 2xx is acknowledged",
			status:   http.StatusOK,
			body:     "Workflow was started",
			wantData: `{"message":"تم إرسال البيانات بنجاح","status":200}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Payload
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q", ct)
				}
				if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
					t.Errorf("decode payload: %v", err)
				}
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			res, err := newTestGateway(srv.URL).Send(context.Background(), "text", testDraft(), nil)
			if err != nil {
				t.Fatalf("Send() error: %v", err)
			}
			if res.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", res.StatusCode, tt.status)
			}
			if string(res.Data) != tt.wantData {
				t.Errorf("Data = %s, want %s", res.Data, tt.wantData)
			}
			if got.Amount != 250 || got.ImageData != nil {
				t.Errorf("server received %+v", got)
			}
		})
	}
}

func TestGateway_SendImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3840, 1440))
	for x := 0; x < 3840; x += 7 {
		src.Set(x, x%1440, color.RGBA{R: 200, A: 255})
	}
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, src); err != nil {
		t.Fatal(err)
	}

	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	img := &Image{Name: "receipt.png", MIMEType: "image/png", Data: pngBuf.Bytes()}
	if _, err := newTestGateway(srv.URL).Send(context.Background(), "text", testDraft(), img); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	if got.ImageData == nil {
		t.Fatal("imageData missing")
	}
	if got.ImageData.MIMEType != "image/jpeg" || got.ImageData.FileName != "receipt.png" {
		t.Errorf("imageData = %+v", got.ImageData)
	}
	raw, err := base64.StdEncoding.DecodeString(got.ImageData.Base64)
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("decode jpeg: %v", err)
	}
	if cfg.Width != 1920 || cfg.Height != 720 {
		t.Errorf("scaled to %dx%d, want 1920x720", cfg.Width, cfg.Height)
	}
}

func TestGateway_SendUndecodableImage(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	img := &Image{Name: "scan.heic", MIMEType: "image/heic", Data: []byte("not an image")}
	if _, err := newTestGateway(srv.URL).Send(context.Background(), "text", testDraft(), img); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if got.ImageData == nil || got.ImageData.MIMEType != "image/heic" {
		t.Errorf("imageData = %+v, want original bytes", got.ImageData)
	}
}

func TestGateway_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	g := NewGateway(Config{URL: srv.URL, TextTimeout: 50 * time.Millisecond}, zerolog.New(io.Discard))
	_, err := g.Send(context.Background(), "text", testDraft(), nil)

	var werr *Error
	if !errors.As(err, &werr) {
		t.Fatalf("Send() error = %v, want *Error", err)
	}
	if werr.Kind != KindTimeout {
		t.Errorf("Kind = %q, want timeout", werr.Kind)
	}
	if !strings.Contains(werr.Message(), "انتهت مهلة الاتصال") {
		t.Errorf("Message() = %q", werr.Message())
	}
}

func TestGateway_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestGateway(url).Send(context.Background(), "text", testDraft(), nil)

	var werr *Error
	if !errors.As(err, &werr) {
		t.Fatalf("Send() error = %v, want *Error", err)
	}
	if werr.Kind != KindUnreachable {
		t.Errorf("Kind = %q, want unreachable", werr.Kind)
	}
	if !strings.Contains(werr.Message(), "مشكلة في الاتصال") {
		t.Errorf("Message() = %q", werr.Message())
	}
}

func TestGateway_NotConfigured(t *testing.T) {
	_, err := newTestGateway("").Send(context.Background(), "text", testDraft(), nil)
	var werr *Error
	if !errors.As(err, &werr) || werr.Kind != KindOther {
		t.Fatalf("Send() error = %v, want KindOther", err)
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{w: 800, h: 600, wantW: 800, wantH: 600},
		{w: 1920, h: 1440, wantW: 1920, wantH: 1440},
		{w: 3840, h: 2880, wantW: 1920, wantH: 1440},
		{w: 1000, h: 2880, wantW: 500, wantH: 1440},
	}
	for _, tt := range tests {
		gotW, gotH := fitWithin(tt.w, tt.h, maxImageWidth, maxImageHeight)
		if gotW != tt.wantW || gotH != tt.wantH {
			t.Errorf("fitWithin(%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, gotW, gotH, tt.wantW, tt.wantH)
		}
	}
}
