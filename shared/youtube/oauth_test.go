package youtube

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"video-analyzer/shared/config"
)

func TestTokenFromFile(t *testing.T) {
	tempDir := t.TempDir()
	tokenFile := filepath.Join(tempDir, "token.json")

	t.Run("valid token file", func(t *testing.T) {
		require.NoError(t, saveToken(tokenFile, &oauth2.Token{
			AccessToken:  "test-access-token",
			RefreshToken: "test-refresh-token",
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(time.Hour),
		}))

		token, err := tokenFromFile(tokenFile)
		require.NoError(t, err)
		assert.Equal(t, "test-access-token", token.AccessToken)
		assert.Equal(t, "test-refresh-token", token.RefreshToken)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := tokenFromFile(filepath.Join(tempDir, "nonexistent.json"))
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		require.NoError(t, os.WriteFile(tokenFile, []byte("invalid json"), 0600))
		_, err := tokenFromFile(tokenFile)
		assert.Error(t, err)
	})
}

func TestSaveToken(t *testing.T) {
	tempDir := t.TempDir()

	t.Run("nested directory and permissions", func(t *testing.T) {
		tokenFile := filepath.Join(tempDir, "nested", "dir", "token.json")
		require.NoError(t, saveToken(tokenFile, &oauth2.Token{AccessToken: "nested-access"}))

		info, err := os.Stat(tokenFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("overwrite", func(t *testing.T) {
		tokenFile := filepath.Join(tempDir, "overwrite.json")
		require.NoError(t, saveToken(tokenFile, &oauth2.Token{AccessToken: "first-token"}))
		require.NoError(t, saveToken(tokenFile, &oauth2.Token{AccessToken: "second-token"}))

		saved, err := tokenFromFile(tokenFile)
		require.NoError(t, err)
		assert.Equal(t, "second-token", saved.AccessToken)
	})
}

// newTokenEndpoint returns a fake OAuth token endpoint that issues access
// tokens numbered by request.
func newTokenEndpoint(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	var mu sync.Mutex
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"refreshed-%d","token_type":"Bearer","expires_in":3600,"refresh_token":"refresh"}`, n)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestTokenSaverRefreshesAndPersists(t *testing.T) {
	server, calls := newTokenEndpoint(t)
	tokenFile := filepath.Join(t.TempDir(), "token.json")

	ts := &tokenSaver{
		config: &oauth2.Config{
			ClientID: "test",
			Endpoint: oauth2.Endpoint{TokenURL: server.URL},
		},
		token: &oauth2.Token{
			AccessToken:  "expired",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(-time.Hour),
		},
		tokenFile: tokenFile,
	}

	token, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "refreshed-1", token.AccessToken)
	assert.Equal(t, 1, *calls)

	saved, err := tokenFromFile(tokenFile)
	require.NoError(t, err)
	assert.Equal(t, "refreshed-1", saved.AccessToken)

	// The refreshed token is still valid, so no further refresh happens.
	token, err = ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "refreshed-1", token.AccessToken)
	assert.Equal(t, 1, *calls)
}

func TestTokenSaverValidTokenNotSaved(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.json")
	ts := &tokenSaver{
		config: &oauth2.Config{ClientID: "test"},
		token: &oauth2.Token{
			AccessToken:  "still-valid",
			RefreshToken: "refresh",
			Expiry:       time.Now().Add(time.Hour),
		},
		tokenFile: tokenFile,
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := ts.Token()
			assert.NoError(t, err)
			assert.Equal(t, "still-valid", token.AccessToken)
		}()
	}
	wg.Wait()

	_, err := os.Stat(tokenFile)
	assert.True(t, os.IsNotExist(err), "unchanged token must not be written")
}

func TestRefreshToken(t *testing.T) {
	t.Run("no-op without OAuth", func(t *testing.T) {
		c := &Client{config: &config.YouTubeConfig{}}
		assert.NoError(t, c.RefreshToken())
		assert.False(t, c.CaptionDownloadEnabled())
	})

	t.Run("job refreshes stored token", func(t *testing.T) {
		server, calls := newTokenEndpoint(t)
		c := &Client{
			config: &config.YouTubeConfig{},
			tokens: &tokenSaver{
				config: &oauth2.Config{Endpoint: oauth2.Endpoint{TokenURL: server.URL}},
				token: &oauth2.Token{
					AccessToken:  "expired",
					RefreshToken: "refresh",
					Expiry:       time.Now().Add(-time.Hour),
				},
				tokenFile: filepath.Join(t.TempDir(), "token.json"),
			},
		}

		job := TokenRefreshJob{Client: c}
		assert.Equal(t, "youtube-token-refresh", job.Name())
		require.NoError(t, job.Run(context.Background()))
		assert.Equal(t, 1, *calls)
	})
}

func TestNewClientWithoutToken(t *testing.T) {
	client, err := NewClient(context.Background(), &config.YouTubeConfig{
		APIKey:       "key",
		ClientID:     "id",
		ClientSecret: "secret",
		TokenFile:    filepath.Join(t.TempDir(), "missing.json"),
		Timeout:      time.Second,
	})
	require.NoError(t, err)
	assert.False(t, client.CaptionDownloadEnabled())
}

func TestAuthorizeRequiresClientCredentials(t *testing.T) {
	var out bytes.Buffer
	err := Authorize(context.Background(), &config.YouTubeConfig{}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_CLIENT_ID")
	assert.Empty(t, out.String())
}
