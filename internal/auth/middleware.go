package auth

import (
	"net/http"
	"strings"
)

// SessionValidator resolves a session token to its user
type SessionValidator interface {
	ValidateSession(token string) (*User, error)
}

// Middleware provides HTTP middleware for authentication
type Middleware struct {
	sessions SessionValidator
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(sessions SessionValidator) *Middleware {
	return &Middleware{
		sessions: sessions,
	}
}

// RequireAuth is middleware that requires a valid session token
// The user is extracted from the token and added to the request context
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeUnauthorized(w, "missing authorization token")
			return
		}

		user, err := m.sessions.ValidateSession(token)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := SetUserInContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "` + message + `"}`))
}

// extractBearerToken extracts the token from the Authorization header
// Expects format: "Bearer <token>"
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
