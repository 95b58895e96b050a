package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/bobmcallan/vire-research/internal/auth"
	"github.com/bobmcallan/vire-research/internal/common"
	"github.com/bobmcallan/vire-research/internal/config"
)

// AuthHandler issues and inspects the session cookie. The portal has one
// operator-provisioned admin login; reader accounts live elsewhere.
type AuthHandler struct {
	jwt    auth.JWT
	cfg    *config.AuthConfig
	logger *common.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(jwt auth.JWT, cfg *config.AuthConfig, logger *common.Logger) *AuthHandler {
	return &AuthHandler{
		jwt:    jwt,
		cfg:    cfg,
		logger: logger,
	}
}

// loginRequest is the POST /api/auth/login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginHandler handles POST /api/auth/login: verifies the configured admin
// credentials and sets the session cookie.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if h.cfg.AdminUser == "" || h.cfg.AdminPassword == "" {
		WriteError(w, http.StatusServiceUnavailable, "login is not configured")
		return
	}

	var req loginRequest
	if err := DecodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		h.logger.Warn().Str("user", req.Username).Msg("rejected login attempt")
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := h.jwt.Sign(req.Username, auth.RoleAdmin)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign session token")
		WriteError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"expiresAt": expiresAt.Format(time.RFC3339),
	})
}

// LogoutHandler handles POST /api/auth/logout: clears the session cookie.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MeHandler handles GET /api/auth/me: reports the current session.
func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	claims, ok := auth.FromRequest(r, h.jwt)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"user": claims.Subject,
		"role": claims.Role,
	})
}
