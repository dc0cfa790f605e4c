package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"video-analyzer/internal/apperrors"
	"video-analyzer/shared/config"
)

type geminiCompleter struct {
	config *config.AIConfig
}

func newGeminiCompleter(cfg *config.AIConfig) *geminiCompleter {
	return &geminiCompleter{config: cfg}
}

func (c *geminiCompleter) client(ctx context.Context) (*genai.Client, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  c.config.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: c.config.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

func (c *geminiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	client, err := c.client(ctx)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeConfigMissing, "Gemini API key is not configured")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(req.User, genai.RoleUser),
	}

	result, err := client.Models.GenerateContent(ctx, c.config.Model, contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{genai.NewPartFromText(req.System)}},
		Temperature:       genai.Ptr(c.config.Temperature),
		MaxOutputTokens:   int32(c.config.MaxTokens),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		appErr := geminiError(err)
		slog.Error("Gemini API error",
			slog.Int("status", appErr.Status),
			slog.String("body", appErr.Body),
		)
		return "", appErr
	}

	text := result.Text()
	if text == "" {
		// Usually content filtering or a token limit.
		return "", apperrors.New(apperrors.CodeMalformedAnalysis, malformedMessage)
	}
	return text, nil
}

func geminiError(err error) *apperrors.AppError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Upstream("Gemini", apiErr.Code, apiErr.Message, err)
	}
	return apperrors.Upstream("Gemini", 0, "", err)
}
