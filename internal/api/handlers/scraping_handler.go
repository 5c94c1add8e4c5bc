package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/isdelr/leadgate-be/internal/auth"
	"github.com/isdelr/leadgate-be/internal/metrics"
	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/isdelr/leadgate-be/internal/services"
)

// ScrapingHandler handles session reports from extractor clients.
type ScrapingHandler struct {
	service services.ScrapingServiceProvider
	metrics metrics.Recorder
}

// NewScrapingHandler creates a new ScrapingHandler.
func NewScrapingHandler(service services.ScrapingServiceProvider, recorder metrics.Recorder) *ScrapingHandler {
	return &ScrapingHandler{service: service, metrics: recorder}
}

// Log records one extraction run for the authenticated user.
func (h *ScrapingHandler) Log(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, models.NewAuthError("Invalid or missing token"))
		return
	}

	var payload struct {
		DataCount *float64 `json:"dataCount"`
		Status    string   `json:"status"`
	}
	// A malformed body is reported after the approval gate, as a format error.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		payload.DataCount = nil
	}

	session, err := h.service.LogSession(r.Context(), user, payload.DataCount, payload.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.RecordScrapingSession(string(session.Status), session.DataCount)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Scraping session logged",
		"session": session,
	})
}

// ListSessions returns the authenticated user's own sessions.
func (h *ScrapingHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, models.NewAuthError("Invalid or missing token"))
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}
