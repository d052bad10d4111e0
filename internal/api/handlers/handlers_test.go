package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/dvloznov/ai-accountant/internal/api/middleware"
	"github.com/dvloznov/ai-accountant/internal/approval"
	"github.com/dvloznov/ai-accountant/internal/auth"
	"github.com/dvloznov/ai-accountant/internal/chat"
	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/jobs"
	"github.com/dvloznov/ai-accountant/internal/jobs/inmemory"
	"github.com/dvloznov/ai-accountant/internal/ledger"
)

const demoPassword = "demo123"

type mockChat struct {
	SendMessageFunc func(ctx context.Context, userID, text string) (chat.Reply, error)
	UploadFileFunc  func(ctx context.Context, userID, text string, f chat.Upload) (chat.Reply, error)
	ConfirmFunc     func(ctx context.Context, userID string, draft domain.ExtractedTransactionData, source domain.TransactionSource) (approval.Outcome, error)
	cleared         []string
}

func (m *mockChat) SendMessage(ctx context.Context, userID, text string) (chat.Reply, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, userID, text)
	}
	return chat.Reply{}, nil
}

func (m *mockChat) UploadFile(ctx context.Context, userID, text string, f chat.Upload) (chat.Reply, error) {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, userID, text, f)
	}
	return chat.Reply{}, nil
}

func (m *mockChat) Confirm(ctx context.Context, userID string, draft domain.ExtractedTransactionData, source domain.TransactionSource) (approval.Outcome, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, userID, draft, source)
	}
	return approval.Outcome{}, nil
}

func (m *mockChat) Dismiss(ctx context.Context, userID string) (domain.ChatMessage, error) {
	return domain.ChatMessage{Role: domain.RoleAssistant, Content: "ok"}, nil
}

func (m *mockChat) History(ctx context.Context, userID string) ([]domain.ChatMessage, error) {
	return []domain.ChatMessage{{Role: domain.RoleAssistant, Content: userID}}, nil
}

func (m *mockChat) ClearHistory(ctx context.Context, userID string) error {
	m.cleared = append(m.cleared, userID)
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type testServer struct {
	handler  http.Handler
	store    *ledger.Store
	jobStore *inmemory.Store
	token    string
}

func newTestServer(t *testing.T, chatSvc ChatService) *testServer {
	t.Helper()
	log := zerolog.Nop()

	store, err := ledger.NewStore(ledger.WithDemoData())
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	authSvc, err := auth.NewService("test-secret", auth.WithBcryptCost(bcrypt.MinCost))
	if err != nil {
		t.Fatal(err)
	}
	if err := authSvc.SeedDemoUser(demoPassword); err != nil {
		t.Fatal(err)
	}
	session, err := authSvc.Login(context.Background(), auth.DemoUserEmail, demoPassword)
	if err != nil {
		t.Fatal(err)
	}

	jobStore := inmemory.NewStore()
	if chatSvc == nil {
		chatSvc = &mockChat{}
	}

	rt := Router{
		Auth:         NewAuthHandler(authSvc, log),
		Transactions: NewTransactionsHandler(store, log),
		Entries:      NewEntriesHandler(store, approval.New(store, log), log),
		Chat:         NewChatHandler(chatSvc, log),
		Reports:      NewReportsHandler(store, log),
		Jobs:         NewJobsHandler(jobStore, log),
	}
	return &testServer{
		handler:  middleware.Auth(authSvc, PublicPaths...)(rt.Mux()),
		store:    store,
		jobStore: jobStore,
		token:    session.Token,
	}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)

	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid JSON body %q: %v", req.Method, req.URL.Path, rr.Body.String(), err)
	}
	return rr, env
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)
	s.token = ""

	rr, env := s.do(t, http.MethodPost, "/api/auth/register", `{"email":"sara@example.com","password":"secret1","name":"سارة"}`)
	if rr.Code != http.StatusCreated || env.Message != msgRegisterOK {
		t.Fatalf("register = %d %+v", rr.Code, env)
	}

	rr, env = s.do(t, http.MethodPost, "/api/auth/register", `{"email":"SARA@example.com","password":"x","name":"y"}`)
	if rr.Code != http.StatusConflict || env.Error != msgEmailTaken {
		t.Errorf("duplicate register = %d %+v", rr.Code, env)
	}

	rr, env = s.do(t, http.MethodPost, "/api/auth/login", `{"email":"sara@example.com","password":"wrong"}`)
	if rr.Code != http.StatusUnauthorized || env.Error != msgBadCredentials {
		t.Errorf("bad login = %d %+v", rr.Code, env)
	}

	rr, env = s.do(t, http.MethodPost, "/api/auth/login", `{"email":"sara@example.com","password":"secret1"}`)
	if rr.Code != http.StatusOK || env.Message != msgLoginOK {
		t.Fatalf("login = %d %+v", rr.Code, env)
	}
	var session auth.Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatal(err)
	}
	if session.Token == "" || session.User.Email != "sara@example.com" {
		t.Fatalf("session = %+v", session)
	}

	s.token = session.Token
	if rr, _ := s.do(t, http.MethodGet, "/api/auth/me", ""); rr.Code != http.StatusOK {
		t.Errorf("me = %d", rr.Code)
	}
	if rr, env := s.do(t, http.MethodPost, "/api/auth/logout", ""); rr.Code != http.StatusOK || env.Message != msgLogoutOK {
		t.Errorf("logout = %d %+v", rr.Code, env)
	}
	if rr, _ := s.do(t, http.MethodGet, "/api/auth/me", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("me after logout = %d, want 401", rr.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)
	s.token = ""

	if rr, _ := s.do(t, http.MethodGet, "/api/transactions", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("GET /api/transactions without token = %d, want 401", rr.Code)
	}

	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("GET /health = %d, want 200", rr.Code)
	}
}

func TestTransactionsRoutes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantMsg    string
		wantErr    string
	}{
		{name: "list", method: http.MethodGet, path: "/api/transactions", wantStatus: http.StatusOK},
		{name: "pending", method: http.MethodGet, path: "/api/transactions/pending", wantStatus: http.StatusOK},
		{name: "get", method: http.MethodGet, path: "/api/transactions/t1", wantStatus: http.StatusOK},
		{name: "get missing", method: http.MethodGet, path: "/api/transactions/nope", wantStatus: http.StatusNotFound, wantErr: msgTransactionNotFound},
		{name: "bad limit", method: http.MethodGet, path: "/api/transactions?limit=x", wantStatus: http.StatusBadRequest, wantErr: msgInvalidLimit},
		{
			name:       "create",
			method:     http.MethodPost,
			path:       "/api/transactions",
			body:       `{"date":"2025-02-10","description":"قهوة","amount":"12.50","type":"expense","category":"مطاعم"}`,
			wantStatus: http.StatusCreated,
			wantMsg:    msgTransactionCreated,
		},
		{
			name:       "create negative",
			method:     http.MethodPost,
			path:       "/api/transactions",
			body:       `{"description":"x","amount":-1,"type":"expense"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "create bad date",
			method:     http.MethodPost,
			path:       "/api/transactions",
			body:       `{"date":"10/02/2025","description":"x","amount":1,"type":"expense"}`,
			wantStatus: http.StatusBadRequest,
			wantErr:    msgInvalidDate,
		},
		{name: "create bad json", method: http.MethodPost, path: "/api/transactions", body: `{`, wantStatus: http.StatusBadRequest, wantErr: msgInvalidBody},
		{name: "status", method: http.MethodPut, path: "/api/transactions/t3/status", body: `{"status":"approved"}`, wantStatus: http.StatusOK, wantMsg: msgStatusUpdated},
		{name: "status invalid", method: http.MethodPut, path: "/api/transactions/t3/status", body: `{"status":"done"}`, wantStatus: http.StatusBadRequest},
		{name: "status wrong method", method: http.MethodPost, path: "/api/transactions/t3/status", body: `{}`, wantStatus: http.StatusMethodNotAllowed},
		{name: "delete", method: http.MethodDelete, path: "/api/transactions/t2", wantStatus: http.StatusOK, wantMsg: msgTransactionDeleted},
		{name: "delete missing", method: http.MethodDelete, path: "/api/transactions/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPatch, path: "/api/transactions", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, nil)
			rr, env := s.do(t, tt.method, tt.path, tt.body)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}
			if env.Success != (tt.wantStatus < 300) {
				t.Errorf("success = %v for status %d", env.Success, rr.Code)
			}
			if tt.wantMsg != "" && env.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMsg)
			}
			if tt.wantErr != "" && env.Error != tt.wantErr {
				t.Errorf("error = %q, want %q", env.Error, tt.wantErr)
			}
		})
	}
}

func TestTransactionsCreateDefaults(t *testing.T) {
	s := newTestServer(t, nil)
	_, env := s.do(t, http.MethodPost, "/api/transactions", `{"description":"راتب","amount":3000,"type":"income"}`)

	var tx domain.Transaction
	if err := json.Unmarshal(env.Data, &tx); err != nil {
		t.Fatal(err)
	}
	if tx.Status != domain.TransactionStatusPending || tx.Source != domain.SourceManual || tx.Category != domain.DefaultCategory {
		t.Errorf("defaults not applied: %+v", tx)
	}
	if !tx.Amount.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Amount = %s, want 3000", tx.Amount)
	}
}

func TestEntriesRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	rr, env := s.do(t, http.MethodGet, "/api/entries/pending", "")
	var pending []domain.AccountingEntry
	if err := json.Unmarshal(env.Data, &pending); err != nil || rr.Code != http.StatusOK {
		t.Fatalf("pending = %d %v", rr.Code, err)
	}
	if len(pending) != 1 || pending[0].ID != "ae3" {
		t.Fatalf("pending entries = %+v", pending)
	}

	rr, env = s.do(t, http.MethodPost, "/api/entries/ae3/approve", "")
	if rr.Code != http.StatusOK || env.Message != msgEntryApproved {
		t.Fatalf("approve = %d %+v", rr.Code, env)
	}
	if tx, _ := s.store.GetTransaction(ctx, "t3"); tx.Status != domain.TransactionStatusApproved {
		t.Errorf("t3 status = %q, want approved", tx.Status)
	}

	rr, env = s.do(t, http.MethodPost, "/api/entries/missing/reject", "")
	if rr.Code != http.StatusNotFound || env.Error != msgEntryNotFound {
		t.Errorf("reject missing = %d %+v", rr.Code, env)
	}

	rr, _ = s.do(t, http.MethodGet, "/api/entries/ae1/approve", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET approve = %d, want 405", rr.Code)
	}

	rr, env = s.do(t, http.MethodPost, "/api/entries", `{"date":"2025-02-11","description":"إيجار","entries":[
		{"account":"مصروفات الإيجار","debit":"900","credit":"0"},
		{"account":"البنك","debit":"0","credit":"900"}]}`)
	if rr.Code != http.StatusCreated || env.Message != msgEntryCreated {
		t.Fatalf("create entry = %d %+v", rr.Code, env)
	}
	var created domain.AccountingEntry
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.Source != domain.EntrySourceManual || created.Status != domain.EntryStatusPending {
		t.Errorf("created entry = %+v", created)
	}

	rr, env = s.do(t, http.MethodPost, "/api/entries/"+created.ID+"/reject", "")
	if rr.Code != http.StatusOK || env.Message != msgEntryRejected {
		t.Errorf("reject = %d %+v", rr.Code, env)
	}
	if _, err := s.store.GetEntry(ctx, created.ID); err == nil {
		t.Error("rejected entry still stored")
	}

	rr, _ = s.do(t, http.MethodPost, "/api/entries", `{"description":"خطأ","entries":[
		{"account":"مصروفات","debit":"10","credit":"0"},
		{"account":"البنك","debit":"0","credit":"9"}]}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unbalanced entry = %d, want 400", rr.Code)
	}
}

func TestReportsRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	rr, env := s.do(t, http.MethodGet, "/api/dashboard", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard = %d", rr.Code)
	}
	var dash DashboardResponse
	if err := json.Unmarshal(env.Data, &dash); err != nil {
		t.Fatal(err)
	}
	if dash.Insight == "" || !dash.TotalIncome.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("dashboard = %+v", dash)
	}
	// (1500 - 250) / 1500
	if !dash.SavingsRate.Equal(decimal.RequireFromString("83.33")) {
		t.Errorf("SavingsRate = %s, want 83.33", dash.SavingsRate)
	}

	tests := []struct {
		path       string
		wantStatus int
		wantCount  int
	}{
		{"/api/reports", http.StatusOK, 2},
		{"/api/reports?type=expense", http.StatusOK, 1},
		{"/api/reports?start_date=2025-02-02&end_date=2025-02-02", http.StatusOK, 1},
		{"/api/reports?type=transfers", http.StatusBadRequest, 0},
		{"/api/reports?start_date=yesterday", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr, env := s.do(t, http.MethodGet, tt.path, "")
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var report domain.ReportData
			if err := json.Unmarshal(env.Data, &report); err != nil {
				t.Fatal(err)
			}
			if report.TransactionCount != tt.wantCount {
				t.Errorf("TransactionCount = %d, want %d", report.TransactionCount, tt.wantCount)
			}
		})
	}
}

func TestChatRoutes(t *testing.T) {
	var gotUser, gotText string
	mc := &mockChat{
		SendMessageFunc: func(ctx context.Context, userID, text string) (chat.Reply, error) {
			gotUser, gotText = userID, text
			if text == "" {
				return chat.Reply{}, chat.ErrEmptyMessage
			}
			return chat.Reply{NeedsReview: true}, nil
		},
		ConfirmFunc: func(ctx context.Context, userID string, draft domain.ExtractedTransactionData, source domain.TransactionSource) (approval.Outcome, error) {
			if !draft.Reviewable() {
				return approval.Outcome{}, approval.ErrNotReviewable
			}
			return approval.Outcome{Entry: domain.AccountingEntry{ID: "ae9"}}, nil
		},
	}
	s := newTestServer(t, mc)

	rr, env := s.do(t, http.MethodPost, "/api/chat/messages", `{"message":"دفعت 250 فاتورة كهرباء"}`)
	if rr.Code != http.StatusOK || gotUser != auth.DemoUserID || gotText != "دفعت 250 فاتورة كهرباء" {
		t.Errorf("send = %d user=%q text=%q", rr.Code, gotUser, gotText)
	}
	var reply chat.Reply
	if err := json.Unmarshal(env.Data, &reply); err != nil || !reply.NeedsReview {
		t.Errorf("reply = %+v, err %v", reply, err)
	}

	if rr, env := s.do(t, http.MethodPost, "/api/chat/messages", `{"message":""}`); rr.Code != http.StatusBadRequest || env.Error != msgEmptyMessage {
		t.Errorf("empty message = %d %+v", rr.Code, env)
	}

	rr, env = s.do(t, http.MethodPost, "/api/chat/confirm", `{"draft":{"description":"x","amount":"0","entries":[]}}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("confirm unreviewable = %d %+v", rr.Code, env)
	}
	rr, env = s.do(t, http.MethodPost, "/api/chat/confirm", `{"draft":{"description":"x","amount":"5","entries":[{"account":"a","debit":"5","credit":"0"}]},"source":"ai_chat"}`)
	if rr.Code != http.StatusCreated || env.Message != msgEntryCreated {
		t.Errorf("confirm = %d %+v", rr.Code, env)
	}

	if rr, _ := s.do(t, http.MethodPost, "/api/chat/dismiss", ""); rr.Code != http.StatusOK {
		t.Errorf("dismiss = %d", rr.Code)
	}
	if rr, _ := s.do(t, http.MethodGet, "/api/chat/history", ""); rr.Code != http.StatusOK {
		t.Errorf("history = %d", rr.Code)
	}
	rr, env = s.do(t, http.MethodDelete, "/api/chat/history", "")
	if rr.Code != http.StatusOK || env.Message != msgHistoryCleared {
		t.Errorf("clear = %d %+v", rr.Code, env)
	}
	if len(mc.cleared) != 1 || mc.cleared[0] != auth.DemoUserID {
		t.Errorf("cleared = %v", mc.cleared)
	}
	if rr, _ := s.do(t, http.MethodPut, "/api/chat/history", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("PUT history = %d, want 405", rr.Code)
	}
}

func uploadRequest(t *testing.T, token, filename, contentType string, data []byte, message string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if message != "" {
		if err := mw.WriteField("message", message); err != nil {
			t.Fatal(err)
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/chat/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestChatUpload(t *testing.T) {
	pngHeader := []byte("\x89PNG\r\n\x1a\n0000")

	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		message     string
		serviceErr  error
		wantStatus  int
		wantMIME    string
	}{
		{
			name:        "pdf with caption",
			filename:    "invoice.pdf",
			contentType: "application/pdf",
			data:        []byte("%PDF-1.4"),
			message:     "فاتورة المورد",
			wantStatus:  http.StatusOK,
			wantMIME:    "application/pdf",
		},
		{
			name:        "sniffed image",
			filename:    "receipt",
			contentType: "application/octet-stream",
			data:        pngHeader,
			wantStatus:  http.StatusOK,
			wantMIME:    "image/png",
		},
		{
			name:       "over the limit",
			filename:   "big.pdf",
			data:       bytes.Repeat([]byte("a"), chat.MaxUploadBytes+1),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "service rejects size",
			filename:   "a.pdf",
			data:       []byte("x"),
			serviceErr: chat.ErrFileTooLarge,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got chat.Upload
			var gotText string
			mc := &mockChat{
				UploadFileFunc: func(ctx context.Context, userID, text string, f chat.Upload) (chat.Reply, error) {
					got, gotText = f, text
					return chat.Reply{}, tt.serviceErr
				},
			}
			s := newTestServer(t, mc)

			rr, env := s.serve(t, uploadRequest(t, s.token, tt.filename, tt.contentType, tt.data, tt.message))
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%+v)", rr.Code, tt.wantStatus, env)
			}
			if tt.wantStatus == http.StatusRequestEntityTooLarge && env.Error != msgFileTooLarge {
				t.Errorf("error = %q", env.Error)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got.Name != tt.filename || got.MIMEType != tt.wantMIME || !bytes.Equal(got.Data, tt.data) {
				t.Errorf("upload = %q %q %d bytes", got.Name, got.MIMEType, len(got.Data))
			}
			if gotText != tt.message {
				t.Errorf("text = %q, want %q", gotText, tt.message)
			}
		})
	}
}

func TestJobsRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	ctx := context.Background()

	base := time.Date(2025, 2, 4, 9, 0, 0, 0, time.UTC)
	for i, entryID := range []string{"ae1", "ae2", "ae1"} {
		job := &jobs.ExportEntryJob{
			JobID:     "job-" + string(rune('a'+i)),
			EntryID:   entryID,
			Status:    jobs.JobStatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.jobStore.SaveJob(ctx, job); err != nil {
			t.Fatal(err)
		}
	}

	type jobSummary struct {
		JobID   string `json:"job_id"`
		EntryID string `json:"entry_id"`
	}

	rr, env := s.do(t, http.MethodGet, "/api/jobs?entry_id=ae1", "")
	var list []jobSummary
	if err := json.Unmarshal(env.Data, &list); err != nil || rr.Code != http.StatusOK {
		t.Fatalf("list = %d %v", rr.Code, err)
	}
	if len(list) != 2 || list[0].JobID != "job-c" {
		t.Errorf("jobs = %+v", list)
	}

	_, env = s.do(t, http.MethodGet, "/api/jobs?limit=1&offset=1", "")
	list = nil
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].JobID != "job-b" {
		t.Errorf("paged jobs = %+v", list)
	}

	if rr, _ := s.do(t, http.MethodGet, "/api/jobs/job-b", ""); rr.Code != http.StatusOK {
		t.Errorf("get job = %d", rr.Code)
	}
	if rr, env := s.do(t, http.MethodGet, "/api/jobs/nope", ""); rr.Code != http.StatusNotFound || env.Error != msgJobNotFound {
		t.Errorf("missing job = %d %+v", rr.Code, env)
	}
}
