package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	videoanalyzer "video-analyzer/agents/video-analyzer"
	"video-analyzer/internal/models"
	"video-analyzer/shared/config"
	"video-analyzer/shared/export"
	"video-analyzer/shared/quiz"
	"video-analyzer/shared/youtube"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "video-analyzer",
		Short:         "Analyze YouTube videos with an LLM",
		Long:          `Fetch YouTube video metadata, ask a completion model for a structured analysis, take the generated quiz and export the course outline.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newServeCmd(), newAnalyzeCmd(), newAuthorizeCmd())
	return root
}

// loadConfig loads configuration and installs the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	videoanalyzer.SetupLogging(cfg.Logging)
	return cfg, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP analysis server",
		Long:  `Serve POST /api/analyze, GET /health and GET /status until interrupted.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return videoanalyzer.NewAgent(cfg).Serve(cmd.Context())
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [URL]",
		Short: "Analyze one video and print the report",
		Long: `Analyze a YouTube video in-process, or through a running server with --server.
The report is printed as text (or JSON with --json); --pdf writes the course
outline and --quiz starts the interactive quiz.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, _ := cmd.Flags().GetString("server")
			asJSON, _ := cmd.Flags().GetBool("json")
			pdfPath, _ := cmd.Flags().GetString("pdf")
			takeQuiz, _ := cmd.Flags().GetBool("quiz")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), videoanalyzer.AnalyzeTimeout(cfg))
			defer cancel()

			result, err := analyze(ctx, cfg, serverURL, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return fmt.Errorf("failed to format result: %w", err)
				}
			} else if err := export.RenderText(out, result); err != nil {
				return err
			}

			if pdfPath != "" {
				if err := writePDF(pdfPath, result.CourseOutline); err != nil {
					return err
				}
				cmd.PrintErrf("Course outline written to %s\n", pdfPath)
			}

			if takeQuiz {
				return runQuiz(cmd.InOrStdin(), out, result.QuizQuestions)
			}
			return nil
		},
	}

	cmd.Flags().String("server", "", "Base URL of a running server (default: analyze in-process)")
	cmd.Flags().Bool("json", false, "Print the analysis as JSON")
	cmd.Flags().String("pdf", "", "Write the course outline PDF to this file")
	cmd.Flags().Bool("quiz", false, "Take the generated quiz interactively")

	return cmd
}

func analyze(ctx context.Context, cfg *config.Config, serverURL, videoURL string) (*models.AnalysisResult, error) {
	if serverURL != "" {
		return videoanalyzer.NewClient(serverURL, nil).Analyze(ctx, videoURL)
	}

	if err := cfg.RequireSecrets(); err != nil {
		return nil, err
	}
	agent := videoanalyzer.NewAgent(cfg)
	if err := agent.Initialize(ctx); err != nil {
		return nil, err
	}
	return agent.Analyzer().Analyze(ctx, videoURL)
}

func writePDF(path string, outline models.CourseOutline) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := export.WriteCourseOutlinePDF(f, outline); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runQuiz(in io.Reader, out io.Writer, questions []models.QuizQuestion) error {
	engine, err := quiz.NewEngine(questions)
	if err != nil {
		return fmt.Errorf("cannot start quiz: %w", err)
	}
	st, err := quiz.RunInteractive(in, out, engine)
	if err != nil {
		return err
	}
	slog.Debug("quiz finished", slog.String("phase", st.Phase.String()), slog.Int("score", st.Score))
	return nil
}

func newAuthorizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "authorize",
		Short: "Authorize caption downloads with a Google account",
		Long: `Run the OAuth device flow for the configured Google client and store the
token, enabling real transcripts instead of the placeholder text.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return youtube.Authorize(cmd.Context(), &cfg.YouTube, cmd.OutOrStdout())
		},
	}
}
