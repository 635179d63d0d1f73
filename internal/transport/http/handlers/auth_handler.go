package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	authsvc "github.com/Krunal123456/Bari/internal/services/auth"
	"github.com/Krunal123456/Bari/internal/transport/http/dto"
	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

type AuthHandler struct {
	service        *authsvc.Service
	googleRedirect string
}

// NewAuthHandler builds the auth endpoints. After a Google callback the browser
// is sent to googleRedirect with the tokens in the fragment; an empty value
// answers with JSON instead.
func NewAuthHandler(service *authsvc.Service, googleRedirect string) *AuthHandler {
	return &AuthHandler{service: service, googleRedirect: strings.TrimSpace(googleRedirect)}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}
	var req dto.RegisterRequest
	if !decodeValid(w, r, &req) {
		return
	}
	res, err := h.service.Register(r.Context(), authsvc.RegisterInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, tokensResponse(res))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}
	var req dto.LoginRequest
	if !decodeValid(w, r, &req) {
		return
	}
	res, err := h.service.Login(r.Context(), authsvc.LoginInput{Email: req.Email, Password: req.Password, TOTPCode: req.TOTPCode})
	if err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, tokensResponse(res))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}
	var req dto.RefreshRequest
	if !decodeValid(w, r, &req) {
		return
	}
	res, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, tokensResponse(res))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	if err := h.service.Logout(r.Context(), identity.SID); err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AuthHandler) GoogleStart(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}
	url, err := h.service.GoogleAuthURL(r.Context())
	if err != nil {
		handleAuthError(w, err)
		return
	}
	if r.URL.Query().Get("mode") == "json" {
		httperrors.Write(w, http.StatusOK, dto.GoogleStartResponse{URL: url})
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}
	q := r.URL.Query()
	res, err := h.service.GoogleCallback(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		handleAuthError(w, err)
		return
	}
	if h.googleRedirect == "" {
		httperrors.Write(w, http.StatusOK, tokensResponse(res))
		return
	}
	fragment := "access_token=" + res.AccessToken + "&refresh_token=" + res.RefreshToken
	http.Redirect(w, r, h.googleRedirect+"#"+fragment, http.StatusFound)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}
	var req dto.ForgotPasswordRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusAccepted, dto.OKResponse{OK: true})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeUnavailable(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}
	var req dto.ResetPasswordRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		handleAuthError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func tokensResponse(res authsvc.AuthResult) dto.AuthTokensResponse {
	return dto.AuthTokensResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresInSec: maxInt64(0, int64(time.Until(res.AccessExpires).Seconds())),
		Me:           meResponse(res.Me),
	}
}

func meResponse(me authsvc.Me) dto.AuthMeResponse {
	return dto.AuthMeResponse{
		ID:                 me.ID,
		Email:              me.Email,
		Name:               me.Name,
		Role:               me.Role,
		OnboardingComplete: me.OnboardingComplete,
	}
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, authsvc.ErrEmailTaken):
		writeConflict(w, "EMAIL_TAKEN", "email already registered")
	case errors.Is(err, authsvc.ErrTOTPRequired):
		writeUnauthorized(w, "TOTP_REQUIRED", "two-factor code required")
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		writeUnauthorized(w, "INVALID_CREDENTIALS", "invalid email or password")
	case errors.Is(err, authsvc.ErrResetTokenInvalid):
		writeBadRequest(w, "RESET_TOKEN_INVALID", "password reset link is invalid or expired")
	case errors.Is(err, authsvc.ErrUnavailable):
		writeUnavailable(w, "AUTH_PROVIDER_UNAVAILABLE", "auth provider is not configured")
	case errors.Is(err, authsvc.ErrUnauthorized),
		errors.Is(err, authsvc.ErrSessionNotFound),
		errors.Is(err, authsvc.ErrRefreshNotFound):
		writeUnauthorized(w, "UNAUTHORIZED", "authentication failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
