package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/minhajsf/Plan-it/internal/auth"
	"github.com/minhajsf/Plan-it/internal/orchestrator"
	"github.com/minhajsf/Plan-it/internal/service"
)

// Health Check

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		respondError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	status := map[string]interface{}{
		"status": "healthy",
		"google": "not configured",
	}
	if s.authService != nil {
		status["google"] = "configured"
	}

	respondJSON(w, http.StatusOK, status)
}

// Assistant API

// handlePrompt runs one utterance through the orchestrator
// POST /api/prompt
// Body: { "text": "..." }
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	reply := s.assistant.Handle(r.Context(), orchestrator.Utterance{UserID: userID, Text: req.Text})

	s.logger.Info("prompt handled",
		zap.Int64("user_id", userID),
		zap.String("outcome", string(reply.Outcome)),
		zap.String("service", string(reply.Service)),
		zap.String("action", string(reply.Action)))

	respondJSON(w, http.StatusOK, reply)
}

// handleListRecords lists the user's local records
// GET /api/records?kind=calendar|meeting|mail
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var kind service.Service
	if raw := r.URL.Query().Get("kind"); raw != "" {
		kind = service.ParseService(raw)
		if kind == service.ServiceUnknown {
			respondError(w, http.StatusBadRequest, "invalid kind: "+raw)
			return
		}
	}

	records, err := s.db.ListRecords(userID, kind)
	if err != nil {
		s.logger.Error("failed to list records", zap.Int64("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list records")
		return
	}

	respondJSON(w, http.StatusOK, records)
}

// handleUpdateTimezone sets the IANA timezone used to resolve relative times
// PUT /api/user/timezone
// Body: { "timezone": "America/New_York" }
func (s *Server) handleUpdateTimezone(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req struct {
		Timezone string `json:"timezone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Timezone = strings.TrimSpace(req.Timezone)
	if req.Timezone == "" {
		respondError(w, http.StatusBadRequest, "timezone is required")
		return
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		respondError(w, http.StatusBadRequest, "unknown timezone: "+req.Timezone)
		return
	}

	if err := s.db.UpdateUserTimezone(userID, req.Timezone); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update timezone")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"timezone": req.Timezone})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
