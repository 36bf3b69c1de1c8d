package server

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/auth"
)

const oauthStateCookie = "planit_oauth_state"

// handleAuthGoogleLogin starts the Google consent flow
// GET /api/auth/google/login
func (s *Server) handleAuthGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		respondError(w, http.StatusServiceUnavailable, "authentication not configured")
		return
	}

	state, err := newState()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to start login")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/oauth/callback",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	respondJSON(w, http.StatusOK, map[string]string{"auth_url": s.authService.GetAuthURL(state)})
}

// handleOAuthCallback completes the consent flow and creates a session
// GET /oauth/callback?code=...&state=...
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		respondError(w, http.StatusServiceUnavailable, "authentication not configured")
		return
	}

	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		respondError(w, http.StatusBadRequest, "authorization denied: "+errParam)
		return
	}

	code := query.Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "missing authorization code")
		return
	}

	if cookie, err := r.Cookie(oauthStateCookie); err == nil && cookie.Value != query.Get("state") {
		respondError(w, http.StatusBadRequest, "state mismatch")
		return
	}

	deviceInfo := r.Header.Get("X-Device-Info")
	if deviceInfo == "" {
		deviceInfo = r.Header.Get("User-Agent")
	}

	user, sessionToken, err := s.authService.Connect(r.Context(), code, deviceInfo)
	if err != nil {
		s.logger.Warn("oauth callback failed", zap.Error(err))
		respondError(w, http.StatusBadRequest, "authentication failed: "+err.Error())
		return
	}

	// A reconnect replaces the token the cached provider was built from
	if s.providers != nil {
		s.providers.Evict(user.ID)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_token": sessionToken,
		"user":          user,
	})
}

// handleAuthLogout invalidates the current session
// POST /api/auth/logout
func (s *Server) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if s.authService == nil {
		respondError(w, http.StatusServiceUnavailable, "authentication not configured")
		return
	}

	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusBadRequest, "missing authorization token")
		return
	}

	if err := s.authService.Logout(token); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to logout")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

type meResponse struct {
	*auth.User
	GoogleConnected bool `json:"google_connected"`
}

// handleAuthMe returns the current authenticated user
// GET /api/auth/me
func (s *Server) handleAuthMe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	resp := meResponse{User: user}
	if s.authService != nil {
		connected, err := s.authService.IsConnected(user.ID)
		if err != nil {
			s.logger.Warn("failed to check google scopes", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		resp.GoogleConnected = connected
	}

	respondJSON(w, http.StatusOK, resp)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
