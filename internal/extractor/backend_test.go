package extractor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/isdelr/leadgate-be/internal/api"
	"github.com/isdelr/leadgate-be/internal/auth"
	"github.com/isdelr/leadgate-be/internal/database"
	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/isdelr/leadgate-be/internal/services"
	"github.com/isdelr/leadgate-be/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBackend starts the real API over a temporary database.
func newBackend(t *testing.T) (*httptest.Server, *services.UserService) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "backend.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	events := services.NewEventService(db, hub)
	users := services.NewUserService(db, events)
	tokens := auth.NewTokenManager("secret", "leadgate", time.Hour)
	router := api.NewRouter(api.Dependencies{
		Users:    users,
		Resets:   services.NewPasswordResetService(db, users, services.LogMailer{}, events, time.Hour, "http://x"),
		Scraping: services.NewScrapingService(db, events),
		Events:   events,
		Tokens:   tokens,
		Resolver: auth.NewResolver(tokens, users),
		Hub:      hub,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, users
}

func TestBackendClient_EndToEnd(t *testing.T) {
	srv, users := newBackend(t)
	ctx := context.Background()

	user, err := users.Register(ctx, services.RegisterInput{FirstName: "E", LastName: "X", Email: "ext@example.com", Password: "secret123"})
	require.NoError(t, err)

	client := NewBackendClient(srv.Client(), srv.URL+"/api/")

	_, err = client.Login(ctx, "ext@example.com", "secret123")
	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusForbidden, be.Status)
	assert.Equal(t, "Account pending admin approval", be.Message)

	_, err = users.Approve(ctx, user.ID)
	require.NoError(t, err)

	login, err := client.Login(ctx, "ext@example.com", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, user.ID, login.User.ID)

	verified, err := client.Verify(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "ext@example.com", verified.Email)

	provider := &fakeSource{pages: [][]Property{filler("p", 3)}}
	result, err := NewPipeline(provider, client.Reporter(login.Token), 100, 0, t.TempDir()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count)

	sessions, err := client.Sessions(ctx, login.Token)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 3, sessions[0].DataCount)
	assert.Equal(t, models.SessionCompleted, sessions[0].Status)

	_, err = client.Verify(ctx, "bogus")
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusUnauthorized, be.Status)
}
