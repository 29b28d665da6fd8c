package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"

	"github.com/sadopc/timeplease/internal/logging"
)

const (
	// CredentialsFile is the OAuth client downloaded from the Google Cloud console.
	CredentialsFile = "credentials.json"
	TokenFile       = "token.json"

	// LocalhostAuthPort receives the OAuth redirect during Login.
	LocalhostAuthPort = "6789"

	authTimeout = 5 * time.Minute
)

var ErrNotAuthorized = errors.New("calendar access not authorized, run `timeplease calendar auth`")

var scopes = []string{gcal.CalendarEventsScope, gcal.CalendarReadonlyScope}

// Auth locates the credentials and token under Dir.
type Auth struct {
	Dir string
	Out io.Writer
}

func (a Auth) credentialsPath() string { return filepath.Join(a.Dir, CredentialsFile) }

func (a Auth) tokenPath() string { return filepath.Join(a.Dir, TokenFile) }

// Config reads the client credentials and pins a localhost redirect to LocalhostAuthPort.
func (a Auth) Config() (*oauth2.Config, error) {
	b, err := os.ReadFile(a.credentialsPath())
	if err != nil {
		return nil, fmt.Errorf("read client credentials %s: %w", a.credentialsPath(), err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client credentials: %w", err)
	}
	config.RedirectURL = normalizeRedirect(config.RedirectURL)
	return config, nil
}

func normalizeRedirect(redirect string) string {
	fallback := fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	if redirect == "" || redirect == "urn:ietf:wg:oauth:2.0:oob" {
		return fallback
	}
	u, err := url.Parse(redirect)
	if err != nil {
		logging.Logger.Warn("could not parse oauth redirect url", "redirect", redirect, "error", err)
		return redirect
	}
	if u.Hostname() == "localhost" || u.Hostname() == "127.0.0.1" {
		u.Host = net.JoinHostPort(u.Hostname(), LocalhostAuthPort)
		return u.String()
	}
	logging.Logger.Warn("oauth redirect is not a localhost callback", "redirect", redirect)
	return redirect
}

// Login runs the browser authorization flow and stores the token.
func (a Auth) Login(ctx context.Context) error {
	config, err := a.Config()
	if err != nil {
		return err
	}
	tok, err := a.tokenFromWeb(ctx, config)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}
	return saveToken(a.tokenPath(), tok)
}

// Client returns an HTTP client that refreshes the stored token as needed.
func (a Auth) Client(ctx context.Context) (*http.Client, error) {
	config, err := a.Config()
	if err != nil {
		return nil, err
	}
	tok, err := tokenFromFile(a.tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotAuthorized
	}
	if err != nil {
		return nil, err
	}

	src := config.TokenSource(ctx, tok)
	fresh, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	if fresh.AccessToken != tok.AccessToken || fresh.RefreshToken != tok.RefreshToken {
		if err := saveToken(a.tokenPath(), fresh); err != nil {
			logging.Logger.Warn("failed to save refreshed token", "error", err)
		}
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(fresh, src)), nil
}

func (a Auth) tokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", net.JoinHostPort("localhost", LocalhostAuthPort))
	if err != nil {
		return nil, fmt.Errorf("listen on port %s: %w", LocalhostAuthPort, err)
	}

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- errors.New("authorization code not found in redirect")
				return
			}
			fmt.Fprintln(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server: %w", err)
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := config.AuthCodeURL("timeplease", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	out := a.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "Open the following URL in your browser to authorize timeplease:\n%s\n", authURL)

	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := config.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchange authorization code: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization timed out: %w", ctx.Err())
	}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	logging.Logger.Info("saved calendar token", "path", path)
	return nil
}
