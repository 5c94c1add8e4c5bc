package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/rs/zerolog/log"
)

// Event types recorded by the services.
const (
	EventUserRegistered  = "user.register"
	EventPasswordReset   = "user.password_reset"
	EventUserApproved    = "admin.approve"
	EventUserRevoked     = "admin.revoke"
	EventUserDeleted     = "admin.delete"
	EventScrapingSession = "scraping.session"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, userID *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// EventPublisher pushes freshly recorded events to live subscribers.
type EventPublisher interface {
	PublishEvent(event models.Event)
}

// EventService provides business logic for the audit log.
type EventService struct {
	db        *sql.DB
	publisher EventPublisher
	now       func() time.Time
}

// NewEventService creates a new EventService. publisher may be nil.
func NewEventService(db *sql.DB, publisher EventPublisher) *EventService {
	return &EventService{db: db, publisher: publisher, now: time.Now}
}

// CreateEvent logs a new event to the database and publishes it.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, userID *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, user_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID, event.CreatedAt)
	if err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.PublishEvent(event)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, level, message, user_id, created_at FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// recordEvent writes an audit event without failing the calling operation.
func recordEvent(ctx context.Context, events EventServiceProvider, eventType, level, message string, userID *string) {
	if events == nil {
		return
	}
	if err := events.CreateEvent(ctx, eventType, level, message, userID); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}
