package export

import (
	"fmt"
	"io"
	"strings"

	"video-analyzer/internal/models"
)

// RenderText writes a plain-text report of result to w. The quiz is only
// summarised; it is played through the quiz package.
func RenderText(w io.Writer, result *models.AnalysisResult) error {
	tw := &textWriter{w: w}

	if info := result.VideoInfo; info != nil {
		tw.heading(info.Title)
		tw.line(info.URL())
		tw.line("Thumbnail: " + info.ThumbnailURL)
		tw.blank()
	}

	tw.section("Summary", result.Summary)

	tw.heading("Key Takeaways")
	for _, takeaway := range result.KeyTakeaways {
		tw.line("  • " + takeaway)
	}
	tw.blank()

	tw.section("Educational Content", result.EducationalContent)
	tw.section("Critical Analysis", result.CriticalAnalysis)

	tw.heading("Knowledge Check Quiz")
	tw.line(fmt.Sprintf("%d questions (run with --quiz to take it)", len(result.QuizQuestions)))
	tw.blank()

	tw.heading("Course Outline: " + result.CourseOutline.Title)
	for i, lesson := range result.CourseOutline.Lessons {
		tw.line(fmt.Sprintf("Lesson %d: %s (%s)", i+1, lesson.Title, lesson.Duration))
		tw.line("  " + lesson.Description)
		for _, point := range lesson.KeyPoints {
			tw.line("    - " + point)
		}
	}

	return tw.err
}

// textWriter keeps the first write error so callers check once.
type textWriter struct {
	w   io.Writer
	err error
}

func (t *textWriter) line(s string) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintln(t.w, s)
}

func (t *textWriter) blank() {
	t.line("")
}

func (t *textWriter) heading(title string) {
	t.line(title)
	t.line(strings.Repeat("=", len([]rune(title))))
}

func (t *textWriter) section(title, body string) {
	t.heading(title)
	t.line(body)
	t.blank()
}
