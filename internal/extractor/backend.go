package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/isdelr/leadgate-be/internal/models"
)

// BackendError is a non-2xx answer from the backend.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// BackendClient talks to the lead gate API.
type BackendClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewBackendClient creates a client for the API rooted at baseURL (e.g. http://host:5000/api).
func NewBackendClient(httpClient *http.Client, baseURL string) *BackendClient {
	return &BackendClient{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// LoginResult is the answer to a successful login.
type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login exchanges credentials for a session token.
func (c *BackendClient) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	err := c.call(ctx, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password}, &out)
	return out, err
}

// Verify returns the account a token belongs to.
func (c *BackendClient) Verify(ctx context.Context, token string) (models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	err := c.call(ctx, http.MethodPost, "/auth/verify", token, nil, &out)
	return out.User, err
}

// LogSession reports one extraction run.
func (c *BackendClient) LogSession(ctx context.Context, token string, dataCount int, status models.SessionStatus) error {
	return c.call(ctx, http.MethodPost, "/scraping/log", token, map[string]interface{}{
		"dataCount": dataCount,
		"status":    status,
	}, nil)
}

// Sessions lists the caller's reported runs, newest first.
func (c *BackendClient) Sessions(ctx context.Context, token string) ([]models.ScrapingSession, error) {
	var out []models.ScrapingSession
	err := c.call(ctx, http.MethodGet, "/scraping/sessions", token, nil, &out)
	return out, err
}

// Reporter binds the client to a token for use by a Pipeline.
func (c *BackendClient) Reporter(token string) Reporter {
	return tokenReporter{client: c, token: token}
}

type tokenReporter struct {
	client *BackendClient
	token  string
}

func (r tokenReporter) ReportSession(ctx context.Context, dataCount int, status models.SessionStatus) error {
	return r.client.LogSession(ctx, r.token, dataCount, status)
}

func (c *BackendClient) call(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return &BackendError{Status: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}
