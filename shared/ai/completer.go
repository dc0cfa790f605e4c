package ai

import (
	"context"
	"fmt"

	"video-analyzer/shared/config"
)

// CompletionRequest is one system + user exchange sent to the model.
type CompletionRequest struct {
	System string
	User   string
}

// Completer sends a single completion request and returns the raw text of
// the first choice. Non-success responses are returned as UPSTREAM_ERROR.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// NewCompleter returns the completer for cfg.Provider. The API key is read
// from cfg on every call, so a missing key only fails the request using it.
func NewCompleter(cfg *config.AIConfig) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return newOpenAICompleter(cfg), nil
	case config.ProviderGemini:
		return newGeminiCompleter(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}
