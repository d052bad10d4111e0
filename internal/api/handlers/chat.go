package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/api/middleware"
	"github.com/dvloznov/ai-accountant/internal/chat"
	"github.com/dvloznov/ai-accountant/internal/domain"
)

const (
	msgHistoryCleared = "تم مسح المحادثة"
	msgEmptyMessage   = "الرسالة فارغة"
	msgFileTooLarge   = "حجم الملف كبير جداً. الحد الأقصى 5 ميجابايت"
	msgMissingFile    = "لم يتم إرفاق ملف"

	// multipartOverhead leaves room for form fields around the file part.
	multipartOverhead = 1 << 20
)

// ChatHandler handles the accountant conversation.
type ChatHandler struct {
	chat ChatService
	log  zerolog.Logger
}

func NewChatHandler(c ChatService, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{chat: c, log: log}
}

// SendMessage handles POST /api/chat/messages.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	reply, err := h.chat.SendMessage(r.Context(), userID, req.Message)
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, reply, "")
}

// UploadFile handles POST /api/chat/upload. The form carries a "file" part
// and an optional "message" field.
func (h *ChatHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, chat.MaxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(chat.MaxUploadBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
			return
		}
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgMissingFile)
		return
	}
	defer file.Close()

	if header.Size > chat.MaxUploadBytes {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Str("file", header.Filename).Msg("Failed to read upload")
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	reply, err := h.chat.UploadFile(r.Context(), userID, r.FormValue("message"), chat.Upload{
		Name:     header.Filename,
		MIMEType: mimeType,
		Data:     data,
	})
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, reply, "")
}

type confirmRequest struct {
	Draft  domain.ExtractedTransactionData `json:"draft"`
	Source domain.TransactionSource        `json:"source"`
}

// Confirm handles POST /api/chat/confirm.
func (h *ChatHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	outcome, err := h.chat.Confirm(r.Context(), userID, req.Draft, req.Source)
	if err != nil {
		writeLedgerError(w, h.log, err, msgEntryNotFound)
		return
	}
	middleware.WriteSuccess(w, http.StatusCreated, outcome, msgEntryCreated)
}

// Dismiss handles POST /api/chat/dismiss.
func (h *ChatHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	msg, err := h.chat.Dismiss(r.Context(), userID)
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, msg, "")
}

// History handles GET /api/chat/history.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	msgs, err := h.chat.History(r.Context(), userID)
	if err != nil {
		h.writeChatError(w, err)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, msgs, "")
}

// ClearHistory handles DELETE /api/chat/history.
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.chat.ClearHistory(r.Context(), userID); err != nil {
		h.writeChatError(w, err)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, nil, msgHistoryCleared)
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chat.ErrFileTooLarge):
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
	case errors.Is(err, chat.ErrEmptyMessage):
		middleware.WriteError(w, http.StatusBadRequest, msgEmptyMessage)
	default:
		h.log.Error().Err(err).Msg("Chat request failed")
		middleware.WriteError(w, http.StatusInternalServerError, msgServerError)
	}
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return "", false
	}
	return user.ID, true
}
