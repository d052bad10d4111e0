package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ai-accountant/internal/api/middleware"
	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/ledger"
)

const (
	msgTransactionNotFound = "المعاملة غير موجودة"
	msgTransactionCreated  = "تم إنشاء المعاملة بنجاح"
	msgStatusUpdated       = "تم تحديث الحالة بنجاح"
	msgTransactionDeleted  = "تم حذف المعاملة بنجاح"
	msgInvalidDate         = "صيغة التاريخ غير صحيحة، استخدم YYYY-MM-DD"
	msgInvalidLimit        = "قيمة limit غير صالحة"
)

// TransactionsHandler handles transaction-related requests.
type TransactionsHandler struct {
	ledger Ledger
	log    zerolog.Logger
}

func NewTransactionsHandler(l Ledger, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{ledger: l, log: log}
}

// ListTransactions handles GET /api/transactions.
// Query parameters: status, type, category, limit.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := ledger.TransactionFilter{
		Status:   domain.TransactionStatus(query.Get("status")),
		Type:     domain.TransactionType(query.Get("type")),
		Category: query.Get("category"),
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			middleware.WriteError(w, http.StatusBadRequest, msgInvalidLimit)
			return
		}
		filter.Limit = limit
	}

	txs, err := h.ledger.ListTransactions(r.Context(), filter)
	if err != nil {
		writeLedgerError(w, h.log, err, msgTransactionNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, txs, "")
}

// ListPending handles GET /api/transactions/pending.
func (h *TransactionsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	txs, err := h.ledger.ListTransactions(r.Context(), ledger.TransactionFilter{Status: domain.TransactionStatusPending})
	if err != nil {
		writeLedgerError(w, h.log, err, msgTransactionNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, txs, "")
}

// GetTransaction handles GET /api/transactions/{id}.
func (h *TransactionsHandler) GetTransaction(w http.ResponseWriter, r *http.Request, id string) {
	tx, err := h.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeLedgerError(w, h.log, err, msgTransactionNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, tx, "")
}

type createTransactionRequest struct {
	Date        string                   `json:"date"`
	Description string                   `json:"description"`
	Amount      decimal.Decimal          `json:"amount"`
	Type        domain.TransactionType   `json:"type"`
	Category    string                   `json:"category"`
	Account     string                   `json:"account"`
	Status      domain.TransactionStatus `json:"status"`
	Source      domain.TransactionSource `json:"source"`
}

// CreateTransaction handles POST /api/transactions. Omitted status, source
// and category take the store defaults.
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	date, ok := parseDateOrToday(req.Date)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	tx := domain.Transaction{
		Date:        date,
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
		Account:     req.Account,
		Status:      req.Status,
		Source:      req.Source,
	}
	created, err := h.ledger.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeLedgerError(w, h.log, err, msgTransactionNotFound)
		return
	}

	h.log.Info().Str("transaction_id", created.ID).Msg("Transaction created")
	middleware.WriteSuccess(w, http.StatusCreated, created, msgTransactionCreated)
}

// UpdateStatus handles PUT /api/transactions/{id}/status.
func (h *TransactionsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status domain.TransactionStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	tx, err := h.ledger.UpdateTransactionStatus(r.Context(), id, req.Status)
	if err != nil {
		writeLedgerError(w, h.log, err, msgTransactionNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, tx, msgStatusUpdated)
}

// DeleteTransaction handles DELETE /api/transactions/{id}.
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeLedgerError(w, h.log, err, msgTransactionNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, nil, msgTransactionDeleted)
}

// parseDateOrToday parses YYYY-MM-DD; an empty string means today.
func parseDateOrToday(s string) (civil.Date, bool) {
	if s == "" {
		return civil.DateOf(timeNow()), true
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, false
	}
	return d, true
}
