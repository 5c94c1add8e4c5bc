package models

import "time"

// User represents an account in the system.
type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose this to the client
	IsApproved   bool      `json:"isApproved"`
	IsAdmin      bool      `json:"isAdmin"`
	TokenVersion int       `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CanLogin reports whether the account may obtain a session token.
// Admins bypass the approval gate.
func (u User) CanLogin() bool {
	return u.IsAdmin || u.IsApproved
}

// CanScrape reports whether the account may record scraping sessions.
func (u User) CanScrape() bool {
	return u.IsAdmin || u.IsApproved
}

// UserSummary is the admin listing view of a user.
type UserSummary struct {
	User
	ScrapingSessionCount int `json:"scrapingSessionCount"`
}
