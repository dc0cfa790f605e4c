package quiz

import (
	"errors"
	"fmt"

	"video-analyzer/internal/models"
)

// Phase is the state of the quiz state machine.
type Phase int

const (
	Answering Phase = iota
	Showing
	Completed
)

func (p Phase) String() string {
	switch p {
	case Answering:
		return "answering"
	case Showing:
		return "showing"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// NoSelection marks that no option has been chosen for the current question.
const NoSelection = -1

var (
	ErrNoQuestions       = errors.New("quiz has no questions")
	ErrInvalidTransition = errors.New("transition not allowed in current state")
	ErrNoSelection       = errors.New("no option selected")
	ErrOptionOutOfRange  = errors.New("option out of range")
)

// State is a snapshot of the engine. Index and Selected are meaningful in
// Answering and Showing; Score counts correct submissions so far.
type State struct {
	Phase    Phase
	Index    int
	Selected int
	Score    int
	Total    int
}

// Engine walks a fixed list of questions: Answering(i) -> Showing(i, selected)
// -> Answering(i+1) ... -> Completed(score). It is not safe for concurrent use.
type Engine struct {
	questions []models.QuizQuestion
	state     State
}

func NewEngine(questions []models.QuizQuestion) (*Engine, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	for i, q := range questions {
		if !q.Valid() {
			return nil, fmt.Errorf("question %d: %w", i+1, ErrOptionOutOfRange)
		}
	}

	e := &Engine{questions: questions}
	e.reset()
	return e, nil
}

func (e *Engine) State() State {
	return e.state
}

// Current returns the question at the current index. It is meaningless once
// the quiz is Completed.
func (e *Engine) Current() models.QuizQuestion {
	return e.questions[e.state.Index]
}

// Select records option i for the current question. The selection may be
// changed any number of times before Submit.
func (e *Engine) Select(i int) error {
	if e.state.Phase != Answering {
		return fmt.Errorf("select in %s: %w", e.state.Phase, ErrInvalidTransition)
	}
	if i < 0 || i >= len(e.Current().Options) {
		return fmt.Errorf("select %d: %w", i, ErrOptionOutOfRange)
	}
	e.state.Selected = i
	return nil
}

// Submit scores the selection and reveals the answer. Without a selection it
// is rejected and the state is left untouched.
func (e *Engine) Submit() error {
	if e.state.Phase != Answering {
		return fmt.Errorf("submit in %s: %w", e.state.Phase, ErrInvalidTransition)
	}
	if e.state.Selected == NoSelection {
		return ErrNoSelection
	}

	if e.state.Selected == e.Current().CorrectAnswer {
		e.state.Score++
	}
	e.state.Phase = Showing
	return nil
}

// Next advances to the following question, or completes the quiz after the last one.
func (e *Engine) Next() error {
	if e.state.Phase != Showing {
		return fmt.Errorf("next in %s: %w", e.state.Phase, ErrInvalidTransition)
	}

	e.state.Selected = NoSelection
	if e.state.Index+1 < len(e.questions) {
		e.state.Index++
		e.state.Phase = Answering
		return nil
	}
	e.state.Phase = Completed
	return nil
}

// Retry restarts the quiz from any state.
func (e *Engine) Retry() {
	e.reset()
}

// LastCorrect reports whether the submitted answer was right. Only meaningful in Showing.
func (e *Engine) LastCorrect() bool {
	return e.state.Phase == Showing && e.state.Selected == e.Current().CorrectAnswer
}

func (e *Engine) reset() {
	e.state = State{
		Phase:    Answering,
		Selected: NoSelection,
		Total:    len(e.questions),
	}
}
