package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/leadgate-be/internal/models"
)

// ScrapingServiceProvider defines the interface for the scraping session log.
type ScrapingServiceProvider interface {
	LogSession(ctx context.Context, user models.User, dataCount *float64, status string) (models.ScrapingSession, error)
	ListSessions(ctx context.Context, userID string) ([]models.ScrapingSession, error)
}

// ScrapingService records extraction runs reported by clients.
type ScrapingService struct {
	db     *sql.DB
	events EventServiceProvider
	now    func() time.Time
}

// NewScrapingService creates a new ScrapingService.
func NewScrapingService(db *sql.DB, events EventServiceProvider) *ScrapingService {
	return &ScrapingService{db: db, events: events, now: time.Now}
}

// LogSession appends a session for user. The approval gate is checked before
// the payload: a pending user gets 403 whatever they send. dataCount is nil
// when the request carried no number.
func (s *ScrapingService) LogSession(ctx context.Context, user models.User, dataCount *float64, status string) (models.ScrapingSession, error) {
	if !user.CanScrape() {
		return models.ScrapingSession{}, models.NewAuthorizationError("User not approved for scraping")
	}

	st := models.SessionStatus(status)
	if dataCount == nil || !st.Valid() {
		return models.ScrapingSession{}, models.NewValidationError("Invalid data format")
	}
	count := *dataCount
	if count < 0 || count != math.Trunc(count) || count > math.MaxInt32 {
		return models.ScrapingSession{}, models.NewValidationError("Invalid data format")
	}

	session := models.ScrapingSession{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		DataCount: int(count),
		Status:    st,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO scraping_sessions (id, user_id, data_count, status, created_at) VALUES (?, ?, ?, ?, ?)",
		session.ID, session.UserID, session.DataCount, string(session.Status), session.CreatedAt); err != nil {
		return models.ScrapingSession{}, fmt.Errorf("failed to record scraping session: %w", err)
	}

	level := "info"
	if st == models.SessionFailed {
		level = "warn"
	}
	recordEvent(ctx, s.events, EventScrapingSession, level,
		fmt.Sprintf("%s reported a %s run with %d leads", user.Email, st, session.DataCount), &user.ID)
	return session, nil
}

// ListSessions returns a user's sessions, newest first.
func (s *ScrapingService) ListSessions(ctx context.Context, userID string) ([]models.ScrapingSession, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, data_count, status, created_at FROM scraping_sessions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.ScrapingSession{}
	for rows.Next() {
		var session models.ScrapingSession
		var status string
		if err := rows.Scan(&session.ID, &session.UserID, &session.DataCount, &status, &session.CreatedAt); err != nil {
			return nil, err
		}
		session.Status = models.SessionStatus(status)
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}
