package handlers

import (
	"net/http"

	"github.com/isdelr/leadgate-be/internal/auth"
	"github.com/isdelr/leadgate-be/internal/metrics"
	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/isdelr/leadgate-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login and password recovery.
type AuthHandler struct {
	users   services.UserServiceProvider
	resets  services.PasswordResetServiceProvider
	tokens  *auth.TokenManager
	metrics metrics.Recorder
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, resets services.PasswordResetServiceProvider, tokens *auth.TokenManager, recorder metrics.Recorder) *AuthHandler {
	return &AuthHandler{users: users, resets: resets, tokens: tokens, metrics: recorder}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// CredentialsPayload defines the structure for login requests.
type CredentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), services.RegisterInput{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Password:  payload.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.RecordRegistration()
	log.Info().Str("user_id", user.ID).Msg("User registered")
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful. Awaiting admin approval.",
		"user":    user,
	})
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.metrics.RecordLogin("user", loginOutcome(err))
		if models.IsKind(err, models.KindAuth) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		}
		writeError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		writeError(w, r, err)
		return
	}

	h.metrics.RecordLogin("user", "success")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Verify returns the account behind the bearer token.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, models.NewAuthError("Invalid or missing token"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// ForgotPassword starts the reset flow for an email address.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.resets.RequestReset(r.Context(), payload.Email); err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.RecordPasswordReset("requested")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset link sent to your email"})
}

// ResetPassword redeems a reset token.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.resets.CompleteReset(r.Context(), payload.Token, payload.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}

	h.metrics.RecordPasswordReset("completed")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
}

func loginOutcome(err error) string {
	switch {
	case models.IsKind(err, models.KindAuth):
		return "invalid"
	case models.IsKind(err, models.KindAuthorization):
		return "pending"
	case models.IsKind(err, models.KindValidation):
		return "malformed"
	default:
		return "error"
	}
}
