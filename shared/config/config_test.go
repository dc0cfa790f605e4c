package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-analyzer/internal/apperrors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "YOUTUBE_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "PORT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, "{}\n"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4", cfg.AI.Model)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 0.0001)
	assert.Equal(t, 2000, cfg.AI.MaxTokens)
	assert.Equal(t, 90*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 15*time.Second, cfg.YouTube.Timeout)
	assert.Equal(t, "youtube_token.json", cfg.YouTube.TokenFile)
	assert.False(t, cfg.YouTube.OAuthEnabled())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", writeConfig(t, `
server:
  port: 9000
youtube:
  timeout: 5s
ai:
  provider: Gemini
  max_tokens: 1500
logging:
  format: json
`))
	t.Setenv("YOUTUBE_API_KEY", "yt-key")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("PORT", "9100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port, "PORT overrides the file")
	assert.Equal(t, 5*time.Second, cfg.YouTube.Timeout)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.AI.Model)
	assert.Equal(t, 1500, cfg.AI.MaxTokens)
	assert.Equal(t, "yt-key", cfg.YouTube.APIKey)
	assert.Equal(t, "gem-key", cfg.CompletionAPIKey())
	assert.NoError(t, cfg.RequireSecrets())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid yaml", "ai: [unterminated"},
		{"unknown provider", "ai:\n  provider: claude\n"},
		{"bad log format", "logging:\n  format: xml\n"},
		{"temperature out of range", "ai:\n  temperature: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("CONFIG_FILE", writeConfig(t, tt.content))
			_, err := Load()
			assert.Error(t, err)
		})
	}

	t.Run("explicit file missing", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestRequireSecrets(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantMsg string
	}{
		{
			name:    "missing openai key",
			cfg:     Config{AI: AIConfig{Provider: ProviderOpenAI}, YouTube: YouTubeConfig{APIKey: "yt"}},
			wantMsg: "OpenAI API key is not configured",
		},
		{
			name:    "missing gemini key",
			cfg:     Config{AI: AIConfig{Provider: ProviderGemini, OpenAIAPIKey: "sk"}, YouTube: YouTubeConfig{APIKey: "yt"}},
			wantMsg: "Gemini API key is not configured",
		},
		{
			name:    "missing youtube key",
			cfg:     Config{AI: AIConfig{Provider: ProviderOpenAI, OpenAIAPIKey: "sk"}},
			wantMsg: "YouTube API key is not configured",
		},
		{
			name: "all present",
			cfg:  Config{AI: AIConfig{Provider: ProviderOpenAI, OpenAIAPIKey: "sk"}, YouTube: YouTubeConfig{APIKey: "yt"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.RequireSecrets()
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfigMissing, apperrors.CodeOf(err))
			assert.Equal(t, tt.wantMsg, apperrors.MessageOf(err))
		})
	}
}
