package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/api/middleware"
	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/ledger"
)

const (
	msgEntryNotFound = "القيد غير موجود"
	msgEntryCreated  = "تم إنشاء القيد بنجاح"
	msgEntryApproved = "تم اعتماد القيد بنجاح"
	msgEntryRejected = "تم رفض وحذف القيد"
)

var timeNow = time.Now

// EntriesHandler handles accounting entry requests and their review.
type EntriesHandler struct {
	ledger   Ledger
	approver Approver
	log      zerolog.Logger
}

func NewEntriesHandler(l Ledger, approver Approver, log zerolog.Logger) *EntriesHandler {
	return &EntriesHandler{ledger: l, approver: approver, log: log}
}

// ListEntries handles GET /api/entries. Query parameters: status.
func (h *EntriesHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter := ledger.EntryFilter{Status: domain.EntryStatus(r.URL.Query().Get("status"))}
	entries, err := h.ledger.ListEntries(r.Context(), filter)
	if err != nil {
		writeLedgerError(w, h.log, err, msgEntryNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, entries, "")
}

// ListPending handles GET /api/entries/pending.
func (h *EntriesHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	entries, err := h.ledger.ListEntries(r.Context(), ledger.EntryFilter{Status: domain.EntryStatusPending})
	if err != nil {
		writeLedgerError(w, h.log, err, msgEntryNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, entries, "")
}

// GetEntry handles GET /api/entries/{id}.
func (h *EntriesHandler) GetEntry(w http.ResponseWriter, r *http.Request, id string) {
	entry, err := h.ledger.GetEntry(r.Context(), id)
	if err != nil {
		writeLedgerError(w, h.log, err, msgEntryNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, entry, "")
}

type createEntryRequest struct {
	Date        string                    `json:"date"`
	Description string                    `json:"description"`
	Lines       []domain.TransactionEntry `json:"entries"`
}

// CreateEntry handles POST /api/entries. Entries typed in by hand start
// pending like any other.
func (h *EntriesHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	date, ok := parseDateOrToday(req.Date)
	if !ok {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	entry, err := domain.NewAccountingEntry(date, req.Description, req.Lines, domain.EntrySourceManual)
	if err != nil {
		writeLedgerError(w, h.log, err, msgEntryNotFound)
		return
	}

	created, err := h.ledger.CreateEntry(r.Context(), *entry)
	if err != nil {
		writeLedgerError(w, h.log, err, msgEntryNotFound)
		return
	}

	h.log.Info().Str("entry_id", created.ID).Msg("Entry created")
	middleware.WriteSuccess(w, http.StatusCreated, created, msgEntryCreated)
}

// Approve handles POST /api/entries/{id}/approve.
func (h *EntriesHandler) Approve(w http.ResponseWriter, r *http.Request, id string) {
	outcome, err := h.approver.Approve(r.Context(), id)
	if err != nil {
		writeLedgerError(w, h.log, err, msgEntryNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, outcome, msgEntryApproved)
}

// Reject handles POST /api/entries/{id}/reject.
func (h *EntriesHandler) Reject(w http.ResponseWriter, r *http.Request, id string) {
	outcome, err := h.approver.Reject(r.Context(), id)
	if err != nil {
		writeLedgerError(w, h.log, err, msgEntryNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, outcome, msgEntryRejected)
}
