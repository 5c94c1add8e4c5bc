package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/leadgate-be/internal/auth"
	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/rs/zerolog/log"
)

// PasswordResetServiceProvider defines the interface for the reset flow.
type PasswordResetServiceProvider interface {
	RequestReset(ctx context.Context, email string) error
	CompleteReset(ctx context.Context, token, newPassword string) error
}

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, user models.User, link string) error
}

// LogMailer writes reset links to the application log instead of sending mail.
type LogMailer struct{}

// SendPasswordReset logs the link.
func (LogMailer) SendPasswordReset(_ context.Context, user models.User, link string) error {
	log.Info().Str("user_id", user.ID).Str("email", user.Email).Str("reset_link", link).Msg("Password reset requested")
	return nil
}

// PasswordResetService issues and redeems single-use reset tokens.
type PasswordResetService struct {
	db      *sql.DB
	users   *UserService
	mailer  Mailer
	events  EventServiceProvider
	ttl     time.Duration
	linkURL string
	now     func() time.Time
}

// NewPasswordResetService creates a PasswordResetService. Links are built as
// linkURL?token=<token>.
func NewPasswordResetService(db *sql.DB, users *UserService, mailer Mailer, events EventServiceProvider, ttl time.Duration, linkURL string) *PasswordResetService {
	return &PasswordResetService{
		db:      db,
		users:   users,
		mailer:  mailer,
		events:  events,
		ttl:     ttl,
		linkURL: linkURL,
		now:     time.Now,
	}
}

func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// RequestReset creates a reset token for the account and hands the link to the mailer.
// Unknown addresses are reported as not found.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return models.NewValidationError("Email is required")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}

	now := s.now().UTC()
	reset := models.PasswordResetToken{
		ID:        uuid.New().String(),
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO password_reset_tokens (id, token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?, ?)",
		reset.ID, reset.Token, reset.UserID, reset.ExpiresAt, reset.CreatedAt); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user, s.resetLink(token)); err != nil {
		return fmt.Errorf("failed to deliver reset link: %w", err)
	}
	return nil
}

func (s *PasswordResetService) resetLink(token string) string {
	u, err := url.Parse(s.linkURL)
	if err != nil {
		return s.linkURL + "?token=" + token
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *PasswordResetService) findToken(ctx context.Context, token string) (models.PasswordResetToken, error) {
	var t models.PasswordResetToken
	err := s.db.QueryRowContext(ctx,
		"SELECT id, token, user_id, expires_at, created_at FROM password_reset_tokens WHERE token = ?", token).
		Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiresAt, &t.CreatedAt)
	return t, err
}

// CompleteReset sets a new password for the token's owner and consumes the token.
// Existing session tokens of the owner stop resolving.
func (s *PasswordResetService) CompleteReset(ctx context.Context, token, newPassword string) error {
	invalid := models.NewValidationError("Invalid or expired token")

	if token == "" || newPassword == "" {
		return models.NewValidationError("Token and new password are required")
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	reset, err := s.findToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalid
		}
		return err
	}
	if reset.Expired(s.now()) {
		return invalid
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Only the transaction that removes the row may change the password.
	res, err := tx.ExecContext(ctx, "DELETE FROM password_reset_tokens WHERE id = ?", reset.ID)
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n != 1 {
		return invalid
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE users SET password_hash = ?, token_version = token_version + 1, updated_at = ? WHERE id = ?",
		hash, s.now().UTC(), reset.UserID); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	recordEvent(ctx, s.events, EventPasswordReset, "info", "Password reset completed", &reset.UserID)
	return nil
}
