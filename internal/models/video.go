package models

// VideoInfo is the metadata gathered for one analysis request.
type VideoInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Transcript   string `json:"transcript"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// URL returns the canonical watch URL for the video.
func (v *VideoInfo) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

type AnalysisResult struct {
	Summary            string         `json:"summary"`
	KeyTakeaways       []string       `json:"keyTakeaways"`
	EducationalContent string         `json:"educationalContent"`
	CriticalAnalysis   string         `json:"criticalAnalysis"`
	CourseOutline      CourseOutline  `json:"courseOutline"`
	QuizQuestions      []QuizQuestion `json:"quizQuestions"`
	VideoInfo          *VideoInfo     `json:"videoInfo"`
}

type CourseOutline struct {
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

type Lesson struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"` // free text, e.g. "15 minutes"
	KeyPoints   []string `json:"keyPoints"`
}

// QuizOptionCount is the number of choices every quiz question carries.
const QuizOptionCount = 4

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"` // index into Options
}

// Valid reports whether the question has exactly four options and an in-range answer index.
func (q QuizQuestion) Valid() bool {
	return len(q.Options) == QuizOptionCount && q.CorrectAnswer >= 0 && q.CorrectAnswer < len(q.Options)
}
