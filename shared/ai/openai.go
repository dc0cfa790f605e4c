package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"video-analyzer/internal/apperrors"
	"video-analyzer/shared/config"
)

type openaiCompleter struct {
	config *config.AIConfig
}

func newOpenAICompleter(cfg *config.AIConfig) *openaiCompleter {
	return &openaiCompleter{config: cfg}
}

func (c *openaiCompleter) client() *openai.Client {
	clientConfig := openai.DefaultConfig(c.config.OpenAIAPIKey)
	if c.config.BaseURL != "" {
		clientConfig.BaseURL = c.config.BaseURL
	}
	clientConfig.HTTPClient = structuredContentDoer{next: clientConfig.HTTPClient}
	return openai.NewClientWithConfig(clientConfig)
}

func (c *openaiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.client().CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		appErr := openaiError(err)
		slog.Error("OpenAI API error",
			slog.Int("status", appErr.Status),
			slog.String("body", appErr.Body),
		)
		return "", appErr
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.CodeMalformedAnalysis, malformedMessage)
	}
	return resp.Choices[0].Message.Content, nil
}

func openaiError(err error) *apperrors.AppError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apperrors.Upstream("OpenAI", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return apperrors.Upstream("OpenAI", reqErr.HTTPStatusCode, body, err)
	}
	return apperrors.Upstream("OpenAI", 0, "", err)
}

// structuredContentDoer lets a reply whose message content is a JSON object,
// rather than a string, through the SDK's typed decode. Such content is
// re-encoded as the string holding the object's text.
type structuredContentDoer struct {
	next openai.HTTPDoer
}

func (d structuredContentDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.next.Do(req)
	if err != nil || resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return resp, err
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	body = stringifyObjectContent(body)
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	resp.Header.Del("Content-Length")
	return resp, nil
}

// stringifyObjectContent rewrites every choices[i].message.content that is a
// JSON object into a JSON string. Any other body is returned unchanged.
func stringifyObjectContent(body []byte) []byte {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return body
	}
	var choices []map[string]json.RawMessage
	if err := json.Unmarshal(envelope["choices"], &choices); err != nil {
		return body
	}

	changed := false
	for _, choice := range choices {
		var message map[string]json.RawMessage
		if err := json.Unmarshal(choice["message"], &message); err != nil {
			continue
		}
		content := bytes.TrimSpace(message["content"])
		if len(content) == 0 || content[0] != '{' {
			continue
		}
		quoted, err := json.Marshal(string(content))
		if err != nil {
			continue
		}
		message["content"] = quoted
		if choice["message"], err = json.Marshal(message); err != nil {
			return body
		}
		changed = true
	}
	if !changed {
		return body
	}

	var err error
	if envelope["choices"], err = json.Marshal(choices); err != nil {
		return body
	}
	rewritten, err := json.Marshal(envelope)
	if err != nil {
		return body
	}
	return rewritten
}
