package ai

import (
	"context"
	"log/slog"
	"time"

	"video-analyzer/internal/models"
	"video-analyzer/shared/config"
)

// VideoInfoFetcher resolves a YouTube URL to its metadata.
type VideoInfoFetcher interface {
	GetVideoInfo(ctx context.Context, url string) (*models.VideoInfo, error)
}

// Stage names the step of the analysis workflow an Outcome ended in.
type Stage string

const (
	StageVideoInfo  Stage = "video_info"
	StageCompletion Stage = "completion"
)

// Outcome is the result of one analysis run. Exactly one of Result and Err is set.
type Outcome struct {
	Stage  Stage
	Result *models.AnalysisResult
	Err    error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// Analyzer runs the two-step workflow: fetch video metadata, then ask the
// completion service for a structured analysis. It never retries.
type Analyzer struct {
	videos    VideoInfoFetcher
	completer Completer
	timeout   time.Duration
}

func NewAnalyzer(videos VideoInfoFetcher, completer Completer, cfg *config.AIConfig) *Analyzer {
	return &Analyzer{
		videos:    videos,
		completer: completer,
		timeout:   cfg.Timeout,
	}
}

// Run analyzes the video at url. Errors from either stage are returned
// unchanged inside the Outcome.
func (a *Analyzer) Run(ctx context.Context, url string) Outcome {
	start := time.Now()

	info, err := a.videos.GetVideoInfo(ctx, url)
	if err != nil {
		slog.Error("video info lookup failed", slog.String("url", url), slog.Any("error", err))
		return Outcome{Stage: StageVideoInfo, Err: err}
	}
	slog.Info("fetched video info",
		slog.String("video_id", info.ID),
		slog.String("title", info.Title),
	)

	result, err := a.complete(ctx, info)
	if err != nil {
		slog.Error("analysis failed", slog.String("video_id", info.ID), slog.Any("error", err))
		return Outcome{Stage: StageCompletion, Err: err}
	}
	result.VideoInfo = info

	slog.Info("analysis complete",
		slog.String("video_id", info.ID),
		slog.Int("quiz_questions", len(result.QuizQuestions)),
		slog.Int("lessons", len(result.CourseOutline.Lessons)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return Outcome{Stage: StageCompletion, Result: result}
}

// Analyze is Run for callers that only need the result.
func (a *Analyzer) Analyze(ctx context.Context, url string) (*models.AnalysisResult, error) {
	outcome := a.Run(ctx, url)
	return outcome.Result, outcome.Err
}

func (a *Analyzer) complete(ctx context.Context, info *models.VideoInfo) (*models.AnalysisResult, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	content, err := a.completer.Complete(ctx, CompletionRequest{
		System: systemMessage,
		User:   BuildPrompt(info),
	})
	if err != nil {
		return nil, err
	}

	return ParseAnalysis(content)
}
