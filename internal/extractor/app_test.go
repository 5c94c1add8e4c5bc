package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/isdelr/leadgate-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		args []string
		want Command
	}{
		{nil, CommandHelp},
		{[]string{"login", "-email", "x"}, CommandLogin},
		{[]string{"logout"}, CommandLogout},
		{[]string{"status"}, CommandStatus},
		{[]string{"scrape"}, CommandScrape},
		{[]string{"serve"}, CommandHelp},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCommand(tt.args), "%v", tt.args)
	}
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = orig })
}

func TestApp_Flow(t *testing.T) {
	backend, users := newBackend(t)
	ctx := context.Background()

	user, err := users.Register(ctx, services.RegisterInput{FirstName: "Cli", LastName: "User", Email: "cli@example.com", Password: "secret123"})
	require.NoError(t, err)
	_, err = users.Approve(ctx, user.ID)
	require.NoError(t, err)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		if req["begin"].(float64) > 0 {
			w.Write([]byte(`{"results":{"properties":[]}}`))
			return
		}
		w.Write([]byte(`{"results":{"properties":[{"property_address":"9 Pine","phone_numbers":[
			{"type":"W","carrier":"US Cellular Wireless","contact":{"phone_1":"111","phone_2":"222"}}]}]}}`))
	}))
	defer provider.Close()

	outDir := t.TempDir()
	cfg := Config{
		BackendURL:    backend.URL + "/api",
		ProviderURL:   provider.URL,
		ProviderToken: "site",
		PageSize:      1,
		PageDelay:     0,
		OutputDir:     outDir,
		StatePath:     filepath.Join(t.TempDir(), "session.json"),
		Timeout:       5 * time.Second,
	}

	var out bytes.Buffer
	app := NewApp(cfg, strings.NewReader("cli@example.com\n"), &out)

	_, err = app.verifiedSession(ctx)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	stubPassword(t, "secret123")
	require.NoError(t, app.Login(ctx, ""))
	assert.Contains(t, out.String(), "Signed in as Cli User <cli@example.com>")

	require.NoError(t, app.Scrape(ctx))
	assert.FileExists(t, filepath.Join(outDir, "dealmachine_wireless_2.csv"))

	out.Reset()
	require.NoError(t, app.Status(ctx))
	assert.Contains(t, out.String(), "(approved)")
	assert.Contains(t, out.String(), "2 leads")

	require.NoError(t, app.Logout())
	_, err = os.Stat(cfg.StatePath)
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, app.Scrape(ctx), ErrNotLoggedIn)
}

func TestApp_ScrapeRequiresProviderToken(t *testing.T) {
	app := NewApp(Config{StatePath: filepath.Join(t.TempDir(), "s.json")}, strings.NewReader(""), &bytes.Buffer{})
	assert.EqualError(t, app.Scrape(context.Background()), "PROVIDER_TOKEN is not set")
}

func TestApp_RejectedTokenIsDiscarded(t *testing.T) {
	backend, _ := newBackend(t)
	statePath := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, NewTokenStore(statePath).Save(Session{Token: "stale"}))

	app := NewApp(Config{BackendURL: backend.URL + "/api", StatePath: statePath, Timeout: 5 * time.Second}, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, app.Status(context.Background()), ErrNotLoggedIn)

	_, err := os.Stat(statePath)
	assert.True(t, os.IsNotExist(err))
}

func TestNewApp_OnlyBackendCallsHaveTimeout(t *testing.T) {
	app := NewApp(Config{BackendURL: "http://localhost", Timeout: 5 * time.Second}, strings.NewReader(""), &bytes.Buffer{})

	assert.Equal(t, 5*time.Second, app.backend.httpClient.Timeout)
	assert.Zero(t, app.provider.Timeout)
}
