package videoanalyzer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"video-analyzer/internal/apperrors"
	"video-analyzer/internal/models"
	"video-analyzer/shared/ai"
	"video-analyzer/shared/config"
	"video-analyzer/shared/monitoring"
)

const maxRequestBytes = 1 << 20

// Analyzer is the analysis workflow the handler drives.
type Analyzer interface {
	Run(ctx context.Context, url string) ai.Outcome
}

// App holds the dependencies of the HTTP handlers.
type App struct {
	Config   *config.Config
	Analyzer Analyzer
	Monitor  *monitoring.Monitor
}

type AnalyzeRequest struct {
	URL string `json:"url"`
}

// Response is the envelope of every /api/analyze reply.
type Response struct {
	Success bool                   `json:"success"`
	Data    *models.AnalysisResult `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Details string                 `json:"details,omitempty"`
}

// AnalyzeHandler validates the requested URL, checks that the service is
// configured and runs the analysis.
func (app *App) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	log := slog.With(slog.String("request_id", RequestIDFrom(r.Context())))

	var req AnalyzeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		log.Warn("undecodable request body", slog.Any("error", err))
		app.renderError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	rawURL := strings.TrimSpace(req.URL)
	if msg := validateURL(rawURL); msg != "" {
		log.Warn("rejected request", slog.String("url", rawURL), slog.String("reason", msg))
		app.renderError(w, http.StatusBadRequest, msg, "")
		return
	}

	if err := app.Config.RequireSecrets(); err != nil {
		log.Error("configuration missing", slog.String("error", apperrors.MessageOf(err)))
		app.Monitor.RecordFailure("configuration", err, 0)
		app.renderError(w, http.StatusInternalServerError, apperrors.MessageOf(err), "")
		return
	}

	log.Info("processing URL", slog.String("url", rawURL))
	start := time.Now()

	outcome := app.Analyzer.Run(r.Context(), rawURL)
	if !outcome.OK() {
		app.Monitor.RecordFailure(string(outcome.Stage), outcome.Err, time.Since(start))
		status, msg, details := errorResponse(outcome.Err)
		log.Error("analysis failed",
			slog.String("stage", string(outcome.Stage)),
			slog.Int("status", status),
			slog.Any("error", outcome.Err),
		)
		app.renderError(w, status, msg, details)
		return
	}

	app.Monitor.RecordSuccess(outcome.Result.VideoInfo.ID, time.Since(start))
	app.renderJSON(w, http.StatusOK, Response{Success: true, Data: outcome.Result})
}

// validateURL returns the rejection message for an unacceptable URL, or "".
func validateURL(raw string) string {
	if raw == "" {
		return "YouTube URL is required"
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "Invalid URL format"
	}
	if !strings.Contains(raw, "youtube.com") && !strings.Contains(raw, "youtu.be") {
		return "Please provide a valid YouTube URL"
	}
	return ""
}

// errorResponse maps an analysis failure to a status, message and details.
// Input problems are rejected before the analysis starts, so every failure
// from here on, an unparseable video identifier included, is a 500.
func errorResponse(err error) (int, string, string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return http.StatusInternalServerError, appErr.Message, appErr.Body
	}
	return http.StatusInternalServerError, "Failed to analyze video", err.Error()
}

func (app *App) renderError(w http.ResponseWriter, status int, msg, details string) {
	app.renderJSON(w, status, Response{Success: false, Error: msg, Details: details})
}

func (app *App) renderJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response", slog.Any("error", err))
	}
}
