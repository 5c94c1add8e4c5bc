package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/leadgate-be/internal/database"
	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// fakeClock hands out strictly increasing timestamps so ordering is deterministic.
type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

type captureMailer struct {
	links []string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, _ models.User, link string) error {
	m.links = append(m.links, link)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.Event
}

func (p *recordingPublisher) PublishEvent(event models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

type testEnv struct {
	db       *sql.DB
	clock    *fakeClock
	events   *EventService
	users    *UserService
	resets   *PasswordResetService
	scraping *ScrapingService
	mailer   *captureMailer
	pub      *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	clock := newFakeClock()
	pub := &recordingPublisher{}

	events := NewEventService(db, pub)
	events.now = clock.Now
	users := NewUserService(db, events)
	users.now = clock.Now
	mailer := &captureMailer{}
	resets := NewPasswordResetService(db, users, mailer, events, time.Hour, "http://localhost:3000/reset-password")
	resets.now = clock.Now
	scraping := NewScrapingService(db, events)
	scraping.now = clock.Now

	return &testEnv{db: db, clock: clock, events: events, users: users, resets: resets, scraping: scraping, mailer: mailer, pub: pub}
}

func (e *testEnv) register(t *testing.T, email string) models.User {
	t.Helper()
	user, err := e.users.Register(context.Background(), RegisterInput{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		Password:  "secret123",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) seedAdmin(t *testing.T) models.User {
	t.Helper()
	require.NoError(t, e.users.EnsureAdmin(context.Background(), "admin@dealmachine.com", "admin123"))
	admin, err := e.users.GetUserByEmail(context.Background(), "admin@dealmachine.com")
	require.NoError(t, err)
	return admin
}

func ptr(f float64) *float64 { return &f }
