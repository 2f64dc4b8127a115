package handlers

import (
	"log/slog"
	"net/http"

	"saodo/internal/models"
	"saodo/internal/security"
	"saodo/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	csrf                 *security.CSRFGenerator
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	logger               *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, csrf *security.CSRFGenerator, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		csrf:                 csrf,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		logger:               logger.With(slog.String("component", "auth")),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Login handles password login and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	token, session, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Info("login_failed", slog.String("ip", security.GetClientIP(r)))
		respondServiceError(w, "Error logging in", err)
		return
	}

	h.startSession(w, r, token, session, user)
}

// startSession sets the cookie and returns the session view with its CSRF token
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, token string, session *models.Session, user *models.User) {
	csrfToken, err := h.csrf.GenerateToken(token)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error generating CSRF token", err)
		return
	}
	http.SetCookie(w, security.CreateSessionCookie(r, token, session.ExpiresAt))
	h.logger.Info("login_succeeded", slog.String("user", user.ID), slog.String("role", user.Role))
	respondJSON(w, http.StatusOK, SessionView{
		User:      newUserView(user),
		CSRFToken: csrfToken,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout clears the session cookie. Tokens are stateless and simply expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.CreateDeleteCookie(r, security.SessionCookieName))
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user and a fresh CSRF token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	token, _ := r.Context().Value(SessionContextKey).(string)
	csrfToken, err := h.csrf.GenerateToken(token)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Error generating CSRF token", err)
		return
	}
	respondJSON(w, http.StatusOK, SessionView{User: newUserView(user), CSRFToken: csrfToken})
}

// ChangePassword replaces the signed-in user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}
	user := GetUserFromContext(r.Context())
	if err := h.authService.ChangePassword(r.Context(), user, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(w, "Error changing password", err)
		return
	}
	h.logger.Info("password_changed", slog.String("user", user.ID))
	w.WriteHeader(http.StatusNoContent)
}
