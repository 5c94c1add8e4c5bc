package models

import "time"

// SessionStatus is the outcome of an extraction run.
type SessionStatus string

const (
	SessionCompleted SessionStatus = "completed"
	SessionFailed    SessionStatus = "failed"
)

// Valid reports whether s is a known status.
func (s SessionStatus) Valid() bool {
	return s == SessionCompleted || s == SessionFailed
}

// ScrapingSession records one extraction run reported by a client.
type ScrapingSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"userId"`
	DataCount int           `json:"dataCount"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}
