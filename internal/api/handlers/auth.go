package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ai-accountant/internal/api/middleware"
	"github.com/dvloznov/ai-accountant/internal/auth"
)

const (
	msgLoginOK          = "تم تسجيل الدخول بنجاح"
	msgBadCredentials   = "البريد الإلكتروني أو كلمة المرور غير صحيحة"
	msgRegisterOK       = "تم إنشاء الحساب بنجاح"
	msgEmailTaken       = "البريد الإلكتروني مستخدم بالفعل"
	msgMissingFields    = "جميع الحقول مطلوبة"
	msgLogoutOK         = "تم تسجيل الخروج بنجاح"
	msgNotAuthenticated = "يجب تسجيل الدخول أولاً"
)

// AuthHandler handles registration and sessions.
type AuthHandler struct {
	auth Authenticator
	log  zerolog.Logger
}

func NewAuthHandler(a Authenticator, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{auth: a, log: log}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	session, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		middleware.WriteError(w, http.StatusBadRequest, msgMissingFields)
		return
	case errors.Is(err, auth.ErrEmailTaken):
		middleware.WriteError(w, http.StatusConflict, msgEmailTaken)
		return
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to register user")
		middleware.WriteError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	h.log.Info().Str("user_id", session.User.ID).Msg("User registered")
	middleware.WriteSuccess(w, http.StatusCreated, session, msgRegisterOK)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		middleware.WriteError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to log in")
		middleware.WriteError(w, http.StatusInternalServerError, msgServerError)
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, session, msgLoginOK)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}
	if err := h.auth.Logout(r.Context(), token); err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, nil, msgLogoutOK)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, msgNotAuthenticated)
		return
	}
	middleware.WriteSuccess(w, http.StatusOK, user, "")
}
