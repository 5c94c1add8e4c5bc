package extractor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/term"
)

// Command is an extractor subcommand.
type Command string

const (
	CommandLogin  Command = "login"
	CommandLogout Command = "logout"
	CommandStatus Command = "status"
	CommandScrape Command = "scrape"
	CommandHelp   Command = "help"
)

// ParseCommand maps the first argument to a subcommand. Anything unknown is help.
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandHelp
	}
	switch Command(args[0]) {
	case CommandLogin, CommandLogout, CommandStatus, CommandScrape:
		return Command(args[0])
	default:
		return CommandHelp
	}
}

// Usage describes the subcommands.
const Usage = `usage: extractor <command> [flags]

commands:
  login   -email <address>    sign in and remember the session
  logout                      forget the saved session
  status                      show the signed-in account and recent runs
  scrape  [-schedule "<cron>"] export wireless leads to CSV
`

// readPassword is replaced in tests.
var readPassword = term.ReadPassword

// App carries out extractor commands.
type App struct {
	cfg     Config
	store   *TokenStore
	backend *BackendClient

	// provider carries page fetches, which rely on the transport defaults.
	provider *http.Client

	in  *bufio.Reader
	out io.Writer
}

// NewApp creates an App reading prompts from in and writing to out.
func NewApp(cfg Config, in io.Reader, out io.Writer) *App {
	return &App{
		cfg:      cfg,
		store:    NewTokenStore(cfg.StatePath),
		backend:  NewBackendClient(&http.Client{Timeout: cfg.Timeout}, cfg.BackendURL),
		provider: &http.Client{},
		in:       bufio.NewReader(in),
		out:      out,
	}
}

// Login authenticates against the backend and saves the session.
func (a *App) Login(ctx context.Context, email string) error {
	if email == "" {
		fmt.Fprint(a.out, "Email: ")
		line, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		email = strings.TrimSpace(line)
	}

	fmt.Fprint(a.out, "Password: ")
	password, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	result, err := a.backend.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	if err := a.store.Save(Session{Token: result.Token, User: result.User}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintf(a.out, "Signed in as %s %s <%s>\n", result.User.FirstName, result.User.LastName, result.User.Email)
	return nil
}

// Logout discards the saved session.
func (a *App) Logout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

// Status verifies the saved session and lists recent runs. A token the backend
// rejects is discarded.
func (a *App) Status(ctx context.Context) error {
	session, err := a.verifiedSession(ctx)
	if err != nil {
		return err
	}

	user := session.User
	state := "pending approval"
	if user.CanScrape() {
		state = "approved"
	}
	fmt.Fprintf(a.out, "Signed in as %s <%s> (%s)\n", user.FirstName, user.Email, state)

	sessions, err := a.backend.Sessions(ctx, session.Token)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(a.out, "No extraction runs recorded")
		return nil
	}
	for i, s := range sessions {
		if i == 5 {
			break
		}
		fmt.Fprintf(a.out, "  %s  %-9s  %d leads\n", s.CreatedAt.Local().Format("2006-01-02 15:04"), s.Status, s.DataCount)
	}
	return nil
}

// Scrape performs one extraction run with the saved session.
func (a *App) Scrape(ctx context.Context) error {
	if a.cfg.ProviderToken == "" {
		return errors.New("PROVIDER_TOKEN is not set")
	}

	session, err := a.verifiedSession(ctx)
	if err != nil {
		return err
	}
	if !session.User.CanScrape() {
		return errors.New("account is pending admin approval")
	}

	source := NewLeadsClient(a.provider, a.cfg.ProviderURL, a.cfg.ProviderToken)
	pipeline := NewPipeline(source, a.backend.Reporter(session.Token), a.cfg.PageSize, a.cfg.PageDelay, a.cfg.OutputDir)

	result, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d wireless leads to %s\n", result.Count, result.Path)
	return nil
}

func (a *App) verifiedSession(ctx context.Context) (Session, error) {
	session, err := a.store.Load()
	if err != nil {
		return Session{}, err
	}

	user, err := a.backend.Verify(ctx, session.Token)
	if err != nil {
		var be *BackendError
		if errors.As(err, &be) && be.Status == http.StatusUnauthorized {
			a.store.Clear()
			return Session{}, ErrNotLoggedIn
		}
		return Session{}, err
	}

	session.User = user
	if err := a.store.Save(session); err != nil {
		return Session{}, err
	}
	return session, nil
}
