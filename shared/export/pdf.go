package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"video-analyzer/internal/models"
)

// Page geometry in millimetres for an A4 portrait page.
const (
	pageWidth  = 210.0
	margin     = 20.0
	lineHeight = 10.0
	topY       = 20.0
	maxY       = 250.0
	textWidth  = pageWidth - 2*margin

	fontFamily = "Helvetica"
)

// Font is a style ("", "B", "I") and a size in points.
type Font struct {
	Style string
	Size  float64
}

var (
	titleFont    = Font{Style: "B", Size: 20}
	lessonFont   = Font{Style: "B", Size: 16}
	durationFont = Font{Style: "I", Size: 12}
	bodyFont     = Font{Style: "", Size: 12}
	headingFont  = Font{Style: "B", Size: 12}
)

// TextLine is one line of text placed at (X, Y) on a page.
type TextLine struct {
	Text string
	X, Y float64
	Font Font
}

// Page holds the lines drawn on one page, in drawing order.
type Page struct {
	Lines []TextLine
}

// WrapFunc splits text into lines no wider than width when set in font.
type WrapFunc func(text string, font Font, width float64) []string

type layout struct {
	pages []Page
	y     float64
	wrap  WrapFunc
}

func (l *layout) newPage() {
	l.pages = append(l.pages, Page{})
	l.y = topY
}

// breakIfFull starts a new page once the cursor has passed the bottom threshold.
func (l *layout) breakIfFull() {
	if l.y > maxY {
		l.newPage()
	}
}

func (l *layout) text(s string, font Font) {
	page := &l.pages[len(l.pages)-1]
	page.Lines = append(page.Lines, TextLine{Text: s, X: margin, Y: l.y, Font: font})
}

// LayoutCourseOutline places the outline on A4 pages: the title, then for
// each lesson a heading, its duration, the wrapped description and the
// bulleted key points. A new page starts whenever the cursor passes 250mm,
// checked before each lesson, each description line and each key point.
func LayoutCourseOutline(outline models.CourseOutline, wrap WrapFunc) []Page {
	l := &layout{wrap: wrap}
	l.newPage()

	l.text(outline.Title, titleFont)
	l.y += lineHeight * 2

	for i, lesson := range outline.Lessons {
		l.breakIfFull()

		l.text(fmt.Sprintf("Lesson %d: %s", i+1, lesson.Title), lessonFont)
		l.y += lineHeight

		l.text("Duration: "+lesson.Duration, durationFont)
		l.y += lineHeight

		for _, line := range l.wrap(lesson.Description, bodyFont, textWidth) {
			l.breakIfFull()
			l.text(line, bodyFont)
			l.y += lineHeight
		}
		l.y += lineHeight / 2

		l.breakIfFull()
		l.text("Key Points:", headingFont)
		l.y += lineHeight

		for _, point := range lesson.KeyPoints {
			l.breakIfFull()
			// Continuation lines of a long point may run past the threshold.
			for _, line := range l.wrap("• "+point, bodyFont, textWidth) {
				l.text(line, bodyFont)
				l.y += lineHeight
			}
		}

		l.y += lineHeight
	}

	return l.pages
}

// WriteCourseOutlinePDF renders the outline as a PDF document to w.
func WriteCourseOutlinePDF(w io.Writer, outline models.CourseOutline) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)

	// Core fonts are cp1252; text is translated when measured and drawn.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	wrap := func(text string, font Font, width float64) []string {
		pdf.SetFont(fontFamily, font.Style, font.Size)
		return WordWrap(text, width, func(s string) float64 {
			return pdf.GetStringWidth(tr(s))
		})
	}

	pages := LayoutCourseOutline(outline, wrap)
	for _, page := range pages {
		pdf.AddPage()
		for _, line := range page.Lines {
			pdf.SetFont(fontFamily, line.Font.Style, line.Font.Size)
			pdf.Text(line.X, line.Y, tr(line.Text))
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to render course outline: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write course outline PDF: %w", err)
	}
	return nil
}

// WordWrap breaks text at spaces so that each line measures at most width.
// A single word wider than width is kept whole on its own line.
func WordWrap(text string, width float64, measure func(string) float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := strings.Fields(paragraph)
		if len(words) == 0 {
			continue
		}

		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if measure(candidate) > width {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}
