package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"video-analyzer/internal/apperrors"
	"video-analyzer/internal/models"
)

const malformedMessage = "Failed to parse analysis response"

var (
	analysisFields = []string{"summary", "keyTakeaways", "educationalContent", "criticalAnalysis", "quizQuestions", "courseOutline"}
	questionFields = []string{"question", "options", "correctAnswer"}
	outlineFields  = []string{"title", "lessons"}
	lessonFields   = []string{"title", "description", "duration", "keyPoints"}
)

// ParseAnalysis decodes the model's reply into an AnalysisResult. The reply
// must be a JSON object carrying every field of the response schema, nested
// quiz questions and lessons included; nothing is defaulted. A surrounding
// markdown code fence is tolerated.
func ParseAnalysis(content string) (*models.AnalysisResult, error) {
	raw := []byte(stripCodeFence(content))

	if err := checkFields(raw); err != nil {
		return nil, malformed(err)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, malformed(err)
	}
	// Only the caller attaches video metadata.
	result.VideoInfo = nil

	for i, q := range result.QuizQuestions {
		if !q.Valid() {
			return nil, malformed(fmt.Errorf("quiz question %d: want %d options and an answer index in range, got %d options and index %d",
				i+1, models.QuizOptionCount, len(q.Options), q.CorrectAnswer))
		}
	}

	return &result, nil
}

// checkFields verifies that every schema field is present and non-null at
// each level of the reply.
func checkFields(raw []byte) error {
	fields, err := requireObject(raw, "response", analysisFields)
	if err != nil {
		return err
	}

	questions, err := requireArray(fields["quizQuestions"], "quizQuestions")
	if err != nil {
		return err
	}
	for i, q := range questions {
		if _, err := requireObject(q, fmt.Sprintf("quizQuestions[%d]", i), questionFields); err != nil {
			return err
		}
	}

	outline, err := requireObject(fields["courseOutline"], "courseOutline", outlineFields)
	if err != nil {
		return err
	}
	lessons, err := requireArray(outline["lessons"], "courseOutline.lessons")
	if err != nil {
		return err
	}
	for i, lesson := range lessons {
		if _, err := requireObject(lesson, fmt.Sprintf("courseOutline.lessons[%d]", i), lessonFields); err != nil {
			return err
		}
	}
	return nil
}

func requireObject(raw json.RawMessage, path string, names []string) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return nil, fmt.Errorf("%s is not a JSON object", path)
	}
	for _, name := range names {
		if isNull(fields[name]) {
			return nil, fmt.Errorf("%s: missing field %q", path, name)
		}
	}
	return fields, nil
}

func requireArray(raw json.RawMessage, path string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, fmt.Errorf("%s is not a JSON array", path)
	}
	return items, nil
}

// isNull is true for an absent value and for a literal null.
func isNull(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

func malformed(cause error) *apperrors.AppError {
	return apperrors.Wrap(cause, apperrors.CodeMalformedAnalysis, malformedMessage)
}

// stripCodeFence removes a ```json ... ``` wrapper that chat models often add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
