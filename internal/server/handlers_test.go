package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/minhajsf/Plan-it/internal/auth"
	"github.com/minhajsf/Plan-it/internal/database"
	"github.com/minhajsf/Plan-it/internal/orchestrator"
	"github.com/minhajsf/Plan-it/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAssistant records utterances and answers with a canned reply
type fakeAssistant struct {
	mu         sync.Mutex
	utterances []orchestrator.Utterance
	reply      orchestrator.Reply
}

func (f *fakeAssistant) Handle(ctx context.Context, u orchestrator.Utterance) orchestrator.Reply {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.utterances = append(f.utterances, u)
	return f.reply
}

// createTestServer creates a minimal server for testing with just the database
func createTestServer(t *testing.T) (*Server, *fakeAssistant) {
	t.Helper()
	assistant := &fakeAssistant{}
	return &Server{
		db:        database.NewTestDB(t),
		assistant: assistant,
		logger:    zap.NewNop(),
	}, assistant
}

// withAuthContext adds user context to a request for testing authenticated endpoints
func withAuthContext(r *http.Request, testUser *database.TestUser) *http.Request {
	user := &auth.User{
		ID:    testUser.ID,
		Email: testUser.Email,
	}
	return r.WithContext(auth.SetUserInContext(r.Context(), user))
}

func TestHandleHealthCheck(t *testing.T) {
	s, _ := createTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	s.handleHealthCheck(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "not configured", response["google"])
}

func TestHandlePrompt(t *testing.T) {
	t.Run("passes the utterance through", func(t *testing.T) {
		s, assistant := createTestServer(t)
		user := database.CreateTestUser(t, s.db)
		assistant.reply = orchestrator.Reply{
			Outcome: orchestrator.OutcomeOK,
			Message: "Event created!",
			Stage:   orchestrator.StagePersisting,
			Service: service.ServiceCalendar,
			Action:  service.ActionCreate,
		}

		body, _ := json.Marshal(map[string]string{"text": "Set up a meeting with Brooke tomorrow at 5PM"})
		req := withAuthContext(httptest.NewRequest("POST", "/api/prompt", bytes.NewReader(body)), user)
		w := httptest.NewRecorder()

		s.handlePrompt(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var reply orchestrator.Reply
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))
		assert.Equal(t, orchestrator.OutcomeOK, reply.Outcome)
		assert.Equal(t, "Event created!", reply.Message)
		assert.Equal(t, service.ServiceCalendar, reply.Service)

		require.Len(t, assistant.utterances, 1)
		assert.Equal(t, user.ID, assistant.utterances[0].UserID)
		assert.Equal(t, "Set up a meeting with Brooke tomorrow at 5PM", assistant.utterances[0].Text)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		s, assistant := createTestServer(t)
		user := database.CreateTestUser(t, s.db)

		req := withAuthContext(httptest.NewRequest("POST", "/api/prompt", bytes.NewBufferString(`{"text": "  "}`)), user)
		w := httptest.NewRecorder()

		s.handlePrompt(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, assistant.utterances)
	})

	t.Run("rejects invalid json", func(t *testing.T) {
		s, _ := createTestServer(t)
		user := database.CreateTestUser(t, s.db)

		req := withAuthContext(httptest.NewRequest("POST", "/api/prompt", bytes.NewBufferString(`text=hello`)), user)
		w := httptest.NewRecorder()

		s.handlePrompt(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("requires a user", func(t *testing.T) {
		s, _ := createTestServer(t)

		req := httptest.NewRequest("POST", "/api/prompt", bytes.NewBufferString(`{"text": "hello"}`))
		w := httptest.NewRecorder()

		s.handlePrompt(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestHandleListRecords(t *testing.T) {
	s, _ := createTestServer(t)
	user := database.CreateTestUser(t, s.db)
	other := database.CreateTestUser(t, s.db)

	for _, r := range []database.Record{
		{UserID: user.ID, Kind: service.ServiceCalendar, ProviderID: "evt-1", Title: "Dentist"},
		{UserID: user.ID, Kind: service.ServiceMail, ProviderID: "draft-1", Title: "Quarterly report"},
		{UserID: other.ID, Kind: service.ServiceCalendar, ProviderID: "evt-2", Title: "Not yours"},
	} {
		_, err := s.db.CreateRecord(&r)
		require.NoError(t, err)
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTitles []string
	}{
		{"all kinds", "", http.StatusOK, []string{"Quarterly report", "Dentist"}},
		{"calendar only", "?kind=calendar", http.StatusOK, []string{"Dentist"}},
		{"legacy name", "?kind=gmail", http.StatusOK, []string{"Quarterly report"}},
		{"invalid kind", "?kind=fax", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withAuthContext(httptest.NewRequest("GET", "/api/records"+tt.query, nil), user)
			w := httptest.NewRecorder()

			s.handleListRecords(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}

			var records []database.Record
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
			var titles []string
			for _, r := range records {
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tt.wantTitles, titles)
		})
	}
}

func TestHandleUpdateTimezone(t *testing.T) {
	s, _ := createTestServer(t)
	user := database.CreateTestUser(t, s.db)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"timezone": "Asia/Tokyo"}`, http.StatusOK},
		{"unknown zone", `{"timezone": "Mars/Olympus"}`, http.StatusBadRequest},
		{"empty", `{"timezone": ""}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withAuthContext(httptest.NewRequest("PUT", "/api/user/timezone", bytes.NewBufferString(tt.body)), user)
			w := httptest.NewRecorder()

			s.handleUpdateTimezone(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	tz, err := s.db.GetUserTimezone(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", tz)
}

func TestRoutesWithoutAuthConfigured(t *testing.T) {
	s := New(ServerConfig{DB: database.NewTestDB(t), Assistant: &fakeAssistant{}, Port: 0})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/health", http.StatusOK},
		{"POST", "/api/prompt", http.StatusServiceUnavailable},
		{"GET", "/api/records", http.StatusServiceUnavailable},
		{"GET", "/api/auth/google/login", http.StatusServiceUnavailable},
		{"OPTIONS", "/api/prompt", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

type staticSessions map[string]*auth.User

func (s staticSessions) ValidateSession(token string) (*auth.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, errors.New("unknown session")
}

func TestRoutesWithStaticSessions(t *testing.T) {
	db := database.NewTestDB(t)
	user := database.CreateTestUser(t, db)
	assistant := &fakeAssistant{reply: orchestrator.Reply{Outcome: orchestrator.OutcomeOK, Message: "Draft created!"}}

	s := New(ServerConfig{
		DB:        db,
		Assistant: assistant,
		Sessions:  staticSessions{"test-token": {ID: user.ID, Email: user.Email}},
	})

	req := httptest.NewRequest("POST", "/api/prompt", bytes.NewBufferString(`{"text": "email Sam"}`))
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, assistant.utterances, 1)
	assert.Equal(t, user.ID, assistant.utterances[0].UserID)

	req = httptest.NewRequest("GET", "/api/records", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
