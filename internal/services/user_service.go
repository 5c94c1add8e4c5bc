package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/leadgate-be/internal/auth"
	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	AuthenticateAdmin(ctx context.Context, email, password string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.UserSummary, error)
	Approve(ctx context.Context, id string) (models.User, error)
	Revoke(ctx context.Context, id string) (models.User, error)
	Delete(ctx context.Context, id string) error
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// UserService provides business logic for user management.
type UserService struct {
	db     *sql.DB
	events EventServiceProvider
	now    func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, events EventServiceProvider) *UserService {
	return &UserService{db: db, events: events, now: time.Now}
}

const userColumns = "id, first_name, last_name, email, password_hash, is_approved, is_admin, token_version, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }, extra ...any) (models.User, error) {
	var u models.User
	dest := []any{&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.IsApproved, &u.IsAdmin, &u.TokenVersion, &u.CreatedAt, &u.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	return u, err
}

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a pending account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = NormalizeEmail(in.Email)

	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Password == "" {
		return models.User{}, models.NewValidationError("All fields are required")
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return models.User{}, err
	}

	if _, err := s.GetUserByEmail(ctx, in.Email); err == nil {
		return models.User{}, models.NewConflictError("User already exists with this email")
	} else if !models.IsKind(err, models.KindNotFound) {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	now := s.now().UTC()
	user := models.User{
		ID:           uuid.New().String(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.insertUser(ctx, user); err != nil {
		return models.User{}, err
	}

	recordEvent(ctx, s.events, EventUserRegistered, "info",
		fmt.Sprintf("New registration from %s awaiting approval", user.Email), &user.ID)
	return user, nil
}

func (s *UserService) insertUser(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.IsApproved, user.IsAdmin, user.TokenVersion, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		// A concurrent registration can win the race past the lookup above.
		var sqliteErr *sqlite.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return models.NewConflictError("User already exists with this email")
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Authenticate verifies credentials and the approval gate for a regular login.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return models.User{}, models.NewValidationError("Email and password are required")
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return models.User{}, models.NewAuthError("Invalid credentials")
		}
		return models.User{}, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return models.User{}, models.NewAuthError("Invalid credentials")
	}
	if !user.CanLogin() {
		return models.User{}, models.NewAuthorizationError("Account pending admin approval")
	}
	return user, nil
}

// AuthenticateAdmin verifies credentials of an administrator. Non-admins get
// the same error as a wrong password.
func (s *UserService) AuthenticateAdmin(ctx context.Context, email, password string) (models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return models.User{}, models.NewValidationError("Email and password are required")
	}

	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if models.IsKind(err, models.KindNotFound) {
			return models.User{}, models.NewAuthError("Invalid admin credentials")
		}
		return models.User{}, err
	}

	if !user.IsAdmin || !auth.CheckPassword(password, user.PasswordHash) {
		return models.User{}, models.NewAuthError("Invalid admin credentials")
	}
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.NewNotFoundError("User not found")
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByEmail retrieves a single user by email, ignoring case.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", NormalizeEmail(email))
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.NewNotFoundError("User not found")
		}
		return models.User{}, err
	}
	return user, nil
}

// ListUsers returns every account, newest first, with its scraping session count.
func (s *UserService) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+userColumns+`,
			(SELECT COUNT(*) FROM scraping_sessions ss WHERE ss.user_id = users.id)
		FROM users
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var count int
		user, err := scanUser(rows, &count)
		if err != nil {
			return nil, err
		}
		users = append(users, models.UserSummary{User: user, ScrapingSessionCount: count})
	}
	return users, rows.Err()
}

// Approve moves a pending account to active.
func (s *UserService) Approve(ctx context.Context, id string) (models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user.IsApproved {
		return models.User{}, models.NewValidationError("User is already approved")
	}

	user.IsApproved = true
	user.UpdatedAt = s.now().UTC()
	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET is_approved = 1, updated_at = ? WHERE id = ?", user.UpdatedAt, id); err != nil {
		return models.User{}, fmt.Errorf("failed to approve user: %w", err)
	}

	recordEvent(ctx, s.events, EventUserApproved, "info", fmt.Sprintf("User %s approved", user.Email), &user.ID)
	return user, nil
}

// Revoke moves an active account back to pending and invalidates its tokens.
func (s *UserService) Revoke(ctx context.Context, id string) (models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if user.IsAdmin {
		return models.User{}, models.NewValidationError("Cannot revoke an admin user")
	}
	if !user.IsApproved {
		return models.User{}, models.NewValidationError("User is already not approved")
	}

	user.IsApproved = false
	user.TokenVersion++
	user.UpdatedAt = s.now().UTC()
	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET is_approved = 0, token_version = token_version + 1, updated_at = ? WHERE id = ?",
		user.UpdatedAt, id); err != nil {
		return models.User{}, fmt.Errorf("failed to revoke user: %w", err)
	}

	recordEvent(ctx, s.events, EventUserRevoked, "warn", fmt.Sprintf("Access revoked for %s", user.Email), &user.ID)
	return user, nil
}

// Delete removes a non-admin account together with its sessions and reset tokens.
func (s *UserService) Delete(ctx context.Context, id string) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return models.NewValidationError("Cannot delete an admin user")
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	recordEvent(ctx, s.events, EventUserDeleted, "warn", fmt.Sprintf("User %s deleted", user.Email), &user.ID)
	return nil
}

// EnsureAdmin creates an administrator account when no user holds email yet.
// An existing account with that address is left untouched.
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	if _, err := s.GetUserByEmail(ctx, email); err == nil {
		log.Info().Str("email", email).Msg("Admin account already present")
		return nil
	} else if !models.IsKind(err, models.KindNotFound) {
		return err
	}

	if err := auth.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid admin password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	admin := models.User{
		ID:           uuid.New().String(),
		FirstName:    "Admin",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		IsApproved:   true,
		IsAdmin:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.insertUser(ctx, admin); err != nil {
		return err
	}

	log.Info().Str("email", email).Msg("Seeded admin account")
	return nil
}
