package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/leadgate-be/internal/auth"
	"github.com/isdelr/leadgate-be/internal/metrics"
	"github.com/isdelr/leadgate-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AdminHandler handles administrator login and account moderation.
type AdminHandler struct {
	users   services.UserServiceProvider
	tokens  *auth.TokenManager
	metrics metrics.Recorder
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(users services.UserServiceProvider, tokens *auth.TokenManager, recorder metrics.Recorder) *AdminHandler {
	return &AdminHandler{users: users, tokens: tokens, metrics: recorder}
}

// Login authenticates an administrator.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	admin, err := h.users.AuthenticateAdmin(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.metrics.RecordLogin("admin", loginOutcome(err))
		writeError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(admin)
	if err != nil {
		log.Error().Err(err).Str("user_id", admin.ID).Msg("Failed to generate JWT")
		writeError(w, r, err)
		return
	}

	h.metrics.RecordLogin("admin", "success")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"admin": admin,
	})
}

// ListUsers returns every account, newest first.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Approve grants a pending account access.
func (h *AdminHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.users.Approve(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.audit(r, "approve", id)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User approved successfully",
		"user":    user,
	})
}

// Revoke returns an approved account to pending.
func (h *AdminHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user, err := h.users.Revoke(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.audit(r, "revoke", id)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User access revoked successfully",
		"user":    user,
	})
}

// Delete removes a non-admin account.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.users.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	h.audit(r, "delete", id)
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}

func (h *AdminHandler) audit(r *http.Request, action, targetID string) {
	h.metrics.RecordAdminAction(action)
	admin, _ := auth.PrincipalFromContext(r.Context())
	log.Info().Str("admin_id", admin.ID).Str("user_id", targetID).Str("action", action).Msg("Admin action applied")
}
