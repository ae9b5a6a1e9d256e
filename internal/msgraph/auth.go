package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/trivial-time-balance/internal/config"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// TokenPath returns where the Graph token is kept inside the data directory.
func TokenPath(home string) string {
	return filepath.Join(home, "auth", "msgraph_tokens.json")
}

// oauth2Config returns the oauth2.Config for Microsoft Graph using the
// provided tenant and client IDs.
func oauth2Config(tenantID, clientID string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: clientID,
		Scopes:   requiredScopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: msEndpoint(tenantID, "devicecode"),
			TokenURL:      msEndpoint(tenantID, "token"),
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// loadToken loads a previously saved token. A missing file is not an error.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// saveToken persists a token atomically with owner-only permissions.
func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Authenticator obtains Graph tokens via the OAuth2 device code flow and
// keeps them under the data directory.
type Authenticator struct {
	cfg       *oauth2.Config
	tokenPath string
	prompt    io.Writer
	logger    *slog.Logger
}

// NewAuthenticator returns an Authenticator for the tenant and client in o.
// Device code instructions are written to prompt.
func NewAuthenticator(home string, o config.OutlookConfig, prompt io.Writer, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		cfg:       oauth2Config(o.TenantID, o.ClientID),
		tokenPath: TokenPath(home),
		prompt:    prompt,
		logger:    logger,
	}
}

// Token loads the saved token, refreshes it if needed, or runs a new device
// code flow when no usable token is available.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := loadToken(a.tokenPath)
	if err != nil {
		a.logger.Warn("ignoring saved token", slog.Any("error", err))
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := a.cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := saveToken(a.tokenPath, refreshed); err != nil {
				a.logger.Warn("could not save refreshed token", slog.Any("error", err))
			}
			return refreshed, nil
		}
		a.logger.Info("token refresh failed, re-authenticating", slog.Any("error", err))
	}

	resp, err := a.cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(a.prompt)
	fmt.Fprintln(a.prompt, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(a.prompt, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(a.prompt, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(a.prompt)

	newTok, err := a.cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := saveToken(a.tokenPath, newTok); err != nil {
		a.logger.Warn("could not save token", slog.Any("error", err))
	}
	return newTok, nil
}

// Client authenticates and returns a Graph client whose refreshed tokens are
// written back to disk.
func (a *Authenticator) Client(ctx context.Context) (*Client, error) {
	tok, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	ts := &savingTokenSource{ts: a.cfg.TokenSource(ctx, tok), path: a.tokenPath}
	return NewClient(oauth2.NewClient(ctx, ts), GraphBaseURL), nil
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = saveToken(s.path, tok)
	return tok, nil
}
