package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/api/middleware"
	"github.com/dvloznov/ai-accountant/internal/approval"
	"github.com/dvloznov/ai-accountant/internal/domain"
	"github.com/dvloznov/ai-accountant/internal/ledger"
)

const (
	msgInvalidBody    = "طلب غير صالح"
	msgInvalidData    = "البيانات المرسلة غير صالحة"
	msgServerError    = "حدث خطأ في الخادم، يرجى المحاولة مرة أخرى"
	msgMethodNotAllow = "Method not allowed"
)

// WriteMethodNotAllowed answers requests with an unsupported method.
func WriteMethodNotAllowed(w http.ResponseWriter) {
	middleware.WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllow)
}

// writeLedgerError maps store and workflow errors onto HTTP statuses.
func writeLedgerError(w http.ResponseWriter, log zerolog.Logger, err error, notFound string) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, notFound)
	case isValidationError(err):
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidData+": "+err.Error())
	default:
		log.Error().Err(err).Msg("Ledger operation failed")
		middleware.WriteError(w, http.StatusInternalServerError, msgServerError)
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		domain.ErrNegativeAmount,
		domain.ErrInvalidType,
		domain.ErrInvalidStatus,
		domain.ErrInvalidSource,
		domain.ErrEmptyEntry,
		domain.ErrInvalidEntryLine,
		domain.ErrUnbalancedEntry,
		approval.ErrNotReviewable,
		approval.ErrAmountMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
