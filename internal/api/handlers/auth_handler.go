package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"payos/internal/pkg/errors"
	"payos/internal/platform/audit"
	"payos/internal/platform/auth"
	"payos/internal/platform/config"
)

type AuthHandler struct {
	admin    config.AdminConfig
	tokenSvc *auth.TokenService
	audit    *audit.Logger
}

func NewAuthHandler(admin config.AdminConfig, tokenSvc *auth.TokenService, auditLogger *audit.Logger) *AuthHandler {
	return &AuthHandler{admin: admin, tokenSvc: tokenSvc, audit: auditLogger}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := auth.Authenticate(h.admin, req.Username, req.Password); err != nil {
		log.Warn().Str("username", req.Username).Msg("admin login rejected")
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	token, expires, err := h.tokenSvc.GenerateAccessToken(req.Username)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	h.audit.Log(r.Context(), "auth.login", "admin", req.Username, nil)

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires.Unix(),
	})
}
