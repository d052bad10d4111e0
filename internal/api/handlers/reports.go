package handlers

import (
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/ai-accountant/internal/api/middleware"
	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/ledger"
)

const msgInvalidReportType = "نوع التقرير غير صالح"

// ReportsHandler serves the dashboard and period reports.
type ReportsHandler struct {
	ledger Ledger
	log    zerolog.Logger
}

func NewReportsHandler(l Ledger, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{ledger: l, log: log}
}

// DashboardResponse is the dashboard payload.
type DashboardResponse struct {
	domain.DashboardStats
	SavingsRate decimal.Decimal `json:"savingsRate"`
	Insight     string          `json:"insight"`
}

// Dashboard handles GET /api/dashboard.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.DashboardStats(r.Context())
	if err != nil {
		writeLedgerError(w, h.log, err, msgServerError)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, DashboardResponse{
		DashboardStats: stats,
		SavingsRate:    ledger.SavingsRate(stats).Round(2),
		Insight:        ledger.Insight(stats),
	}, "")
}

// Report handles GET /api/reports.
// Query parameters: start_date, end_date (YYYY-MM-DD, inclusive), type, category.
func (h *ReportsHandler) Report(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := domain.ReportFilters{
		Type:     domain.ReportType(query.Get("type")),
		Category: query.Get("category"),
	}
	if filters.Type == "" {
		filters.Type = domain.ReportTypeAll
	}
	if !filters.Type.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidReportType)
		return
	}

	var err error
	if filters.StartDate, err = optionalDate(query.Get("start_date")); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	if filters.EndDate, err = optionalDate(query.Get("end_date")); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}

	report, err := h.ledger.GenerateReport(r.Context(), filters)
	if err != nil {
		writeLedgerError(w, h.log, err, msgServerError)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, report, "")
}

// optionalDate parses YYYY-MM-DD, returning the zero date for "".
func optionalDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	return civil.ParseDate(s)
}
