package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-analyzer/internal/models"
)

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Summary:            "A short talk about Go.",
		KeyTakeaways:       []string{"Channels are typed"},
		EducationalContent: "Concurrency primitives.",
		CriticalAnalysis:   "Clear but brief.",
		CourseOutline: models.CourseOutline{
			Title: "Go Basics",
			Lessons: []models.Lesson{
				{Title: "Goroutines", Description: "Starting work.", Duration: "10 minutes", KeyPoints: []string{"go keyword"}},
			},
		},
		QuizQuestions: []models.QuizQuestion{
			{Question: "Which keyword starts a goroutine?", Options: []string{"go", "run", "spawn", "async"}, CorrectAnswer: 0},
		},
		VideoInfo: &models.VideoInfo{ID: "dQw4w9WgXcQ", Title: "Go talk"},
	}
}

func writeConfig(t *testing.T) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: error\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
}

func analyzeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		if !strings.Contains(req.URL, "youtu") {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Please provide a valid YouTube URL"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": sampleResult()})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAnalyzeCommandThroughServer(t *testing.T) {
	writeConfig(t)
	srv := analyzeServer(t)

	t.Run("json output", func(t *testing.T) {
		var out bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"analyze", "--server", srv.URL, "--json", "https://youtu.be/dQw4w9WgXcQ"})

		require.NoError(t, root.Execute())

		var got models.AnalysisResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "Go Basics", got.CourseOutline.Title)
		assert.Equal(t, "dQw4w9WgXcQ", got.VideoInfo.ID)
	})

	t.Run("text output with pdf and quiz", func(t *testing.T) {
		pdfPath := filepath.Join(t.TempDir(), "outline.pdf")
		var out, errOut bytes.Buffer
		root := newRootCmd()
		root.SetOut(&out)
		root.SetErr(&errOut)
		root.SetIn(strings.NewReader("1\ns\nn\n"))
		root.SetArgs([]string{"analyze", "--server", srv.URL, "--pdf", pdfPath, "--quiz", "https://youtu.be/dQw4w9WgXcQ"})

		require.NoError(t, root.Execute())

		assert.Contains(t, out.String(), "A short talk about Go.")
		assert.Contains(t, out.String(), "Your score: 1 out of 1")
		assert.Contains(t, errOut.String(), "Course outline written to")

		data, err := os.ReadFile(pdfPath)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	})

	t.Run("server rejection", func(t *testing.T) {
		root := newRootCmd()
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"analyze", "--server", srv.URL, "https://vimeo.com/123"})

		err := root.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Please provide a valid YouTube URL")
	})
}

func TestAnalyzeCommandRequiresSecretsInProcess(t *testing.T) {
	writeConfig(t)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("YOUTUBE_API_KEY", "")

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"analyze", "https://youtu.be/dQw4w9WgXcQ"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is not configured")
}

func TestRunQuizWithoutQuestions(t *testing.T) {
	err := runQuiz(strings.NewReader(""), &bytes.Buffer{}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot start quiz")
}

func TestAnalyzeRequiresURL(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"analyze"})

	assert.Error(t, root.Execute())
}
