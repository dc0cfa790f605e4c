package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"

	"video-analyzer/shared/config"
)

// captions.download needs the force-ssl scope; readonly is not enough.
var oauthScopes = []string{youtube.YoutubeForceSslScope}

func newOAuthConfig(cfg *config.YouTubeConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       oauthScopes,
		Endpoint:     google.Endpoint,
	}
}

func newOAuthHTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, ts)
}

// tokenSaver wraps the OAuth config so that refreshed tokens are written back
// to tokenFile and survive restarts.
type tokenSaver struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenFile string
	mu        sync.Mutex
}

// Token implements oauth2.TokenSource.
func (ts *tokenSaver) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	newToken, err := ts.config.TokenSource(context.Background(), ts.token).Token()
	if err != nil {
		return nil, err
	}

	if newToken.AccessToken != ts.token.AccessToken {
		slog.Info("OAuth token refreshed, saving", slog.String("token_file", ts.tokenFile))
		ts.token = newToken
		if err := saveToken(ts.tokenFile, newToken); err != nil {
			slog.Warn("failed to save refreshed token", slog.Any("error", err))
		}
	}

	return newToken, nil
}

// RefreshToken forces a refresh check so the stored token stays fresh between
// requests. It is a no-op when caption download is disabled.
func (c *Client) RefreshToken() error {
	if c.tokens == nil {
		return nil
	}

	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	slog.Debug("OAuth token valid", slog.Time("expiry", token.Expiry))
	return nil
}

// TokenRefreshJob adapts Client.RefreshToken to the scheduler.Job interface.
type TokenRefreshJob struct {
	Client *Client
}

func (j TokenRefreshJob) Name() string {
	return "youtube-token-refresh"
}

func (j TokenRefreshJob) Run(ctx context.Context) error {
	return j.Client.RefreshToken()
}

// Authorize runs the OAuth device authorization flow, printing instructions to
// out, and stores the resulting token in cfg.TokenFile.
func Authorize(ctx context.Context, cfg *config.YouTubeConfig, out io.Writer) error {
	if !cfg.OAuthEnabled() {
		return errors.New("OAuth client is not configured (set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)")
	}

	oauthConfig := newOAuthConfig(cfg)

	resp, err := oauthConfig.DeviceAuth(ctx, oauth2.AccessTypeOffline)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			slog.Error("device authorization rejected",
				slog.String("status", retrieveErr.Response.Status),
				slog.String("body", strings.TrimSpace(string(retrieveErr.Body))),
			)
		}
		return fmt.Errorf("unable to start device authorization: %w. Ensure the OAuth client type is 'TVs and Limited Input devices'", err)
	}

	rule := strings.Repeat("=", 80)
	fmt.Fprintf(out, "\n%s\nYOUTUBE DEVICE AUTHORIZATION\n%s\n", rule, rule)
	fmt.Fprintf(out, "1. Visit %s in your browser.\n", resp.VerificationURI)
	fmt.Fprintf(out, "2. Enter this code when prompted: %s\n\n", resp.UserCode)
	if complete := strings.TrimSpace(resp.VerificationURIComplete); complete != "" {
		fmt.Fprintf(out, "   Or open directly: %s\n\n", complete)
	}
	fmt.Fprintln(out, "Waiting for authorization... (Ctrl+C to cancel)")

	token, err := oauthConfig.DeviceAccessToken(ctx, resp, oauth2.AccessTypeOffline)
	if err != nil {
		return fmt.Errorf("device authorization did not complete: %w", err)
	}

	if err := saveToken(cfg.TokenFile, token); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nAuthorization successful. Token saved to %s\n", cfg.TokenFile)
	return nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("unable to create token directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache oauth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode oauth token: %w", err)
	}
	return nil
}
