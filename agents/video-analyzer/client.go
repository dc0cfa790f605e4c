package videoanalyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"video-analyzer/internal/models"
)

// APIError is a failure envelope returned by the analyze endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("analysis failed (%d): %s: %s", e.StatusCode, e.Message, e.Details)
	}
	return fmt.Sprintf("analysis failed (%d): %s", e.StatusCode, e.Message)
}

// Client calls a running video-analyzer server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Analyze posts videoURL to /api/analyze and decodes the envelope.
func (c *Client) Analyze(ctx context.Context, videoURL string) (*models.AnalysisResult, error) {
	body, err := json.Marshal(AnalyzeRequest{URL: videoURL})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call analyzer: %w", err)
	}
	defer resp.Body.Close()

	var envelope Response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}

	if !envelope.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: envelope.Error, Details: envelope.Details}
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("successful response without data")
	}
	return envelope.Data, nil
}
