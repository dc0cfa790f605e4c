package quiz

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const interactiveHelp = "Commands: 1-4 select, s submit, n next, r retry, q quit"

// RunInteractive drives e from line-oriented input, rendering every state
// change to out. It returns the final state when the user quits or input ends.
func RunInteractive(in io.Reader, out io.Writer, e *Engine) (State, error) {
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, interactiveHelp)
	Render(out, e)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return e.State(), scanner.Err()
		}

		cmd := strings.ToLower(strings.TrimSpace(scanner.Text()))
		var err error
		switch cmd {
		case "":
			continue
		case "q", "quit":
			return e.State(), nil
		case "s", "submit":
			err = e.Submit()
		case "n", "next":
			err = e.Next()
		case "r", "retry":
			e.Retry()
		case "h", "help", "?":
			fmt.Fprintln(out, interactiveHelp)
			continue
		default:
			n, convErr := strconv.Atoi(cmd)
			if convErr != nil {
				fmt.Fprintf(out, "Unknown command %q. %s\n", cmd, interactiveHelp)
				continue
			}
			err = e.Select(n - 1)
		}

		if err != nil {
			fmt.Fprintln(out, describeError(err))
			continue
		}
		Render(out, e)
	}
}

// Render writes the current question, or the final score, to out.
func Render(out io.Writer, e *Engine) {
	st := e.State()
	if st.Phase == Completed {
		fmt.Fprintf(out, "\nQuiz Completed!\nYour score: %d out of %d\n", st.Score, st.Total)
		fmt.Fprintln(out, "Type r to try again or q to quit.")
		return
	}

	q := e.Current()
	fmt.Fprintf(out, "\nQuestion %d of %d\n%s\n", st.Index+1, st.Total, q.Question)
	for i, option := range q.Options {
		marker := " "
		switch {
		case st.Phase == Showing && i == q.CorrectAnswer:
			marker = "✓"
		case st.Phase == Showing && i == st.Selected:
			marker = "✗"
		case i == st.Selected:
			marker = "*"
		}
		fmt.Fprintf(out, " %s %d. %s\n", marker, i+1, option)
	}

	if st.Phase == Showing {
		if e.LastCorrect() {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Incorrect. The correct answer is %d.\n", q.CorrectAnswer+1)
		}
		if st.Index+1 < st.Total {
			fmt.Fprintln(out, "Type n for the next question.")
		} else {
			fmt.Fprintln(out, "Type n to see your results.")
		}
	}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, ErrNoSelection):
		return "Select an option before submitting."
	case errors.Is(err, ErrOptionOutOfRange):
		return "That option does not exist."
	case errors.Is(err, ErrInvalidTransition):
		return "That command is not available right now."
	default:
		return err.Error()
	}
}
