package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"video-analyzer/internal/apperrors"
	"video-analyzer/internal/models"
	"video-analyzer/shared/config"
)

const (
	// TranscriptUnavailable is returned when the video has no caption tracks
	// or the caption listing failed.
	TranscriptUnavailable = "Transcript not available"

	placeholderTranscript = "This video discusses %s. Full transcript will be available in production with proper authentication."
	fallbackThumbnailURL  = "https://img.youtube.com/vi/%s/hqdefault.jpg"
)

// Client looks up video metadata with an API key and, when an OAuth token is
// available, downloads caption tracks.
type Client struct {
	service      *youtube.Service
	oauthService *youtube.Service
	tokens       *tokenSaver
	config       *config.YouTubeConfig
}

func NewClient(ctx context.Context, cfg *config.YouTubeConfig) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(&http.Client{})}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	// The key travels as a query parameter on each call, see keyParam.
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	c := &Client{
		service: service,
		config:  cfg,
	}

	if cfg.OAuthEnabled() {
		if err := c.enableCaptionDownload(ctx); err != nil {
			slog.Warn("caption download disabled", slog.Any("error", err))
		}
	}

	return c, nil
}

// enableCaptionDownload builds the OAuth-authenticated service from a stored
// token. It never starts an interactive flow; see Authorize.
func (c *Client) enableCaptionDownload(ctx context.Context) error {
	oauthConfig := newOAuthConfig(c.config)

	token, err := tokenFromFile(c.config.TokenFile)
	if err != nil {
		return fmt.Errorf("no usable OAuth token in %s (run the authorize command): %w", c.config.TokenFile, err)
	}
	if token.RefreshToken == "" && !token.Valid() {
		return fmt.Errorf("OAuth token in %s is expired and has no refresh token", c.config.TokenFile)
	}

	c.tokens = &tokenSaver{
		config:    oauthConfig,
		token:     token,
		tokenFile: c.config.TokenFile,
	}

	opts := []option.ClientOption{option.WithHTTPClient(newOAuthHTTPClient(ctx, c.tokens))}
	if c.config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.config.Endpoint))
	}
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create OAuth YouTube service: %w", err)
	}
	c.oauthService = service
	slog.Info("caption download enabled", slog.String("token_file", c.config.TokenFile))
	return nil
}

// CaptionDownloadEnabled reports whether transcripts are fetched for real.
func (c *Client) CaptionDownloadEnabled() bool {
	return c.oauthService != nil
}

func (c *Client) keyParam() googleapi.CallOption {
	return googleapi.QueryParameter("key", c.config.APIKey)
}

// GetVideoInfo extracts the identifier from url and fetches its metadata.
func (c *Client) GetVideoInfo(ctx context.Context, url string) (*models.VideoInfo, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return nil, err
	}
	return c.FetchVideoInfo(ctx, videoID)
}

// FetchVideoInfo fetches the snippet for videoID, then resolves its transcript.
// The metadata call is fatal on failure; the caption call is not.
func (c *Client) FetchVideoInfo(ctx context.Context, videoID string) (*models.VideoInfo, error) {
	slog.Debug("fetching video details", slog.String("video_id", videoID))

	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.service.Videos.List([]string{"snippet"}).
		Id(videoID).
		Context(callCtx).
		Do(c.keyParam())
	if err != nil {
		appErr := upstreamError(err)
		slog.Error("YouTube API error",
			slog.String("video_id", videoID),
			slog.Int("status", appErr.Status),
			slog.Any("error", err),
		)
		return nil, appErr
	}

	if len(resp.Items) == 0 {
		slog.Warn("video not found", slog.String("video_id", videoID))
		return nil, apperrors.New(apperrors.CodeNotFound, "Video not found")
	}

	item := resp.Items[0]
	info := &models.VideoInfo{
		ID:           videoID,
		ThumbnailURL: selectThumbnail(videoID, item.Snippet),
	}
	if item.Snippet != nil {
		info.Title = item.Snippet.Title
		info.Description = item.Snippet.Description
	}

	info.Transcript = c.fetchTranscript(ctx, videoID)

	return info, nil
}

// fetchTranscript lists caption tracks and returns a transcript string. It
// always succeeds: failures degrade to TranscriptUnavailable or the placeholder.
func (c *Client) fetchTranscript(ctx context.Context, videoID string) string {
	callCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	resp, err := c.service.Captions.List([]string{"snippet"}, videoID).
		Context(callCtx).
		Do(c.keyParam())
	if err != nil {
		slog.Warn("captions API error", slog.String("video_id", videoID), slog.Any("error", err))
		return TranscriptUnavailable
	}
	if len(resp.Items) == 0 {
		return TranscriptUnavailable
	}

	if c.oauthService != nil {
		text, err := c.downloadCaption(callCtx, resp.Items[0].Id)
		if err == nil && text != "" {
			return text
		}
		slog.Warn("caption download failed, using placeholder",
			slog.String("video_id", videoID),
			slog.Any("error", err),
		)
	}

	return fmt.Sprintf(placeholderTranscript, videoID)
}

func (c *Client) downloadCaption(ctx context.Context, captionID string) (string, error) {
	resp, err := c.oauthService.Captions.Download(captionID).
		Tfmt("vtt").
		Context(ctx).
		Download()
	if err != nil {
		return "", fmt.Errorf("failed to download caption %s: %w", captionID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read caption %s: %w", captionID, err)
	}

	return TranscriptFromVTT(string(body))
}

func selectThumbnail(videoID string, snippet *youtube.VideoSnippet) string {
	if snippet != nil && snippet.Thumbnails != nil {
		if t := snippet.Thumbnails.Maxres; t != nil && t.Url != "" {
			return t.Url
		}
		if t := snippet.Thumbnails.High; t != nil && t.Url != "" {
			return t.Url
		}
	}
	return fmt.Sprintf(fallbackThumbnailURL, videoID)
}

func upstreamError(err error) *apperrors.AppError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apperrors.Upstream("YouTube", apiErr.Code, apiErr.Body, err)
	}
	return apperrors.Upstream("YouTube", 0, "", err)
}
