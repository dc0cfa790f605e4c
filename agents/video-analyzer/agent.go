package videoanalyzer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"video-analyzer/shared/ai"
	"video-analyzer/shared/config"
	"video-analyzer/shared/monitoring"
	"video-analyzer/shared/scheduler"
	"video-analyzer/shared/youtube"
)

// Agent wires the YouTube client, the completion provider and the HTTP
// server together from one Config.
type Agent struct {
	config        *config.Config
	youtubeClient *youtube.Client
	analyzer      *ai.Analyzer
	monitor       *monitoring.Monitor
}

func NewAgent(cfg *config.Config) *Agent {
	return &Agent{
		config:  cfg,
		monitor: monitoring.NewMonitor(),
	}
}

func (a *Agent) Name() string {
	return "Video Analyzer"
}

// Initialize builds the clients. Secrets are not required here; requests
// fail with a configuration error until they are set.
func (a *Agent) Initialize(ctx context.Context) error {
	slog.Info("initializing", slog.String("agent", a.Name()), slog.String("provider", a.config.AI.Provider))

	if a.youtubeClient == nil {
		client, err := youtube.NewClient(ctx, &a.config.YouTube)
		if err != nil {
			return fmt.Errorf("failed to create YouTube client: %w", err)
		}
		a.youtubeClient = client
	}

	if a.analyzer == nil {
		completer, err := ai.NewCompleter(&a.config.AI)
		if err != nil {
			return fmt.Errorf("failed to create completer: %w", err)
		}
		a.analyzer = ai.NewAnalyzer(a.youtubeClient, completer, &a.config.AI)
	}

	return nil
}

func (a *Agent) Analyzer() *ai.Analyzer {
	return a.analyzer
}

func (a *Agent) Handler() http.Handler {
	return NewRouter(&App{
		Config:   a.config,
		Analyzer: a.analyzer,
		Monitor:  a.monitor,
	})
}

// Serve runs the HTTP server, and the token refresher when caption download
// is enabled, until ctx is cancelled.
func (a *Agent) Serve(ctx context.Context) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}

	if a.youtubeClient.CaptionDownloadEnabled() {
		s := scheduler.New(a.config.YouTube.TokenRefreshSchedule, youtube.TokenRefreshJob{Client: a.youtubeClient})
		go func() {
			if err := s.Start(ctx); err != nil && ctx.Err() == nil {
				slog.Error("token refresher stopped", slog.Any("error", err))
			}
		}()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.config.Server.Port),
		Handler:      a.Handler(),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// SetupLogging installs the default slog logger described by cfg.
func SetupLogging(cfg config.LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// AnalyzeTimeout bounds a whole analysis run from the command line.
func AnalyzeTimeout(cfg *config.Config) time.Duration {
	return 2*cfg.YouTube.Timeout + cfg.AI.Timeout
}
