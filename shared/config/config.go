package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"video-analyzer/internal/apperrors"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	YouTube YouTubeConfig `yaml:"youtube"`
	AI      AIConfig      `yaml:"ai"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type YouTubeConfig struct {
	APIKey   string        `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`

	// OAuth settings are optional; they enable caption downloads.
	ClientID             string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret         string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile            string `yaml:"token_file"`
	TokenRefreshSchedule string `yaml:"token_refresh_schedule"`
}

type AIConfig struct {
	Provider     string        `yaml:"provider"`
	OpenAIAPIKey string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	GeminiAPIKey string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	BaseURL      string        `yaml:"base_url"`
	Model        string        `yaml:"model"`
	Temperature  float32       `yaml:"temperature"`
	MaxTokens    int           `yaml:"max_tokens"`
	Timeout      time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// OAuthEnabled reports whether caption downloads through OAuth are configured.
func (y *YouTubeConfig) OAuthEnabled() bool {
	return y.ClientID != "" && y.ClientSecret != ""
}

// Load reads the optional YAML file named by CONFIG_FILE (default config.yaml),
// fills secrets from the environment and applies defaults. Missing secrets are
// not an error here; see RequireSecrets.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	explicit := configFile != ""
	if !explicit {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// no file, environment and defaults only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.YouTube.ClientID == "" {
		c.YouTube.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if c.YouTube.ClientSecret == "" {
		c.YouTube.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if c.AI.OpenAIAPIKey == "" {
		c.AI.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// must outlast both upstream calls
		c.Server.WriteTimeout = 150 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.YouTube.Timeout == 0 {
		c.YouTube.Timeout = 15 * time.Second
	}
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.YouTube.TokenRefreshSchedule == "" {
		c.YouTube.TokenRefreshSchedule = "0 */45 * * * *" // every 45 minutes
	}
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderOpenAI
	}
	c.AI.Provider = strings.ToLower(c.AI.Provider)
	if c.AI.Model == "" {
		if c.AI.Provider == ProviderGemini {
			c.AI.Model = "gemini-2.5-flash"
		} else {
			c.AI.Model = "gpt-4"
		}
	}
	if c.AI.Temperature == 0 {
		c.AI.Temperature = 0.7
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = 2000
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 90 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.AI.Provider != ProviderOpenAI && c.AI.Provider != ProviderGemini {
		return fmt.Errorf("unsupported AI provider %q (expected %s or %s)", c.AI.Provider, ProviderOpenAI, ProviderGemini)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("AI temperature %.2f out of range [0, 2]", c.AI.Temperature)
	}
	if c.AI.MaxTokens < 1 {
		return fmt.Errorf("AI max tokens must be positive")
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("unsupported log format %q (expected text or json)", c.Logging.Format)
	}
	return nil
}

// CompletionAPIKey returns the secret for the configured completion provider.
func (c *Config) CompletionAPIKey() string {
	if c.AI.Provider == ProviderGemini {
		return c.AI.GeminiAPIKey
	}
	return c.AI.OpenAIAPIKey
}

// RequireSecrets reports a CONFIGURATION_MISSING error when either the
// completion-service key or the YouTube Data API key is absent.
func (c *Config) RequireSecrets() error {
	if c.CompletionAPIKey() == "" {
		name := "OpenAI"
		if c.AI.Provider == ProviderGemini {
			name = "Gemini"
		}
		return apperrors.New(apperrors.CodeConfigMissing, name+" API key is not configured")
	}
	if c.YouTube.APIKey == "" {
		return apperrors.New(apperrors.CodeConfigMissing, "YouTube API key is not configured")
	}
	return nil
}
