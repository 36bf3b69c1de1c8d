package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/minhajsf/Plan-it/internal/auth"
	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type evictRecorder struct {
	evicted []int64
}

func (e *evictRecorder) Evict(userID int64) {
	e.evicted = append(e.evicted, userID)
}

// newAuthServer wires a real auth service whose token endpoint rejects every code
func newAuthServer(t *testing.T) (*Server, *database.DB) {
	t.Helper()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	t.Cleanup(tokenSrv.Close)

	db := database.NewTestDB(t)
	config := &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenSrv.URL},
		RedirectURL:  "http://localhost:8089/oauth/callback",
		Scopes:       []string{"scope-a"},
	}

	s := New(ServerConfig{
		DB:          db,
		Assistant:   &fakeAssistant{},
		AuthService: auth.NewService(db, config, nil),
		Providers:   &evictRecorder{},
	})
	return s, db
}

func TestHandleAuthGoogleLogin(t *testing.T) {
	s, _ := newAuthServer(t)

	req := httptest.NewRequest("GET", "/api/auth/google/login", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	authURL, err := url.Parse(body["auth_url"])
	require.NoError(t, err)
	assert.Equal(t, "offline", authURL.Query().Get("access_type"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, oauthStateCookie, cookies[0].Name)
	assert.Equal(t, cookies[0].Value, authURL.Query().Get("state"))
}

func TestHandleOAuthCallback(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		cookie  string
		wantErr string
	}{
		{"denied", "?error=access_denied", "", "authorization denied: access_denied"},
		{"missing code", "", "", "missing authorization code"},
		{"state mismatch", "?code=abc&state=one", "two", "state mismatch"},
		{"exchange fails", "?code=abc&state=one", "one", "authentication failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newAuthServer(t)

			req := httptest.NewRequest("GET", "/oauth/callback"+tt.query, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: oauthStateCookie, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.wantErr)
			assert.Empty(t, s.providers.(*evictRecorder).evicted)
		})
	}
}

func TestHandleAuthLogout(t *testing.T) {
	s, _ := newAuthServer(t)

	req := httptest.NewRequest("POST", "/api/auth/logout", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest("POST", "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s, _ := newAuthServer(t)

	for _, path := range []string{"/api/auth/me", "/api/records"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestHandleAuthMe(t *testing.T) {
	s, db := newAuthServer(t)
	user := database.CreateTestUser(t, db)

	req := withAuthContext(httptest.NewRequest("GET", "/api/auth/me", nil), user)
	w := httptest.NewRecorder()
	s.handleAuthMe(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got auth.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)

	var flags map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flags))
	assert.Equal(t, false, flags["google_connected"])
}
