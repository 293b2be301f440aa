package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// clearScreen resets the terminal.
const clearScreen = "\x1bc"

// prompter reads lines of input with editing and recall.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// newLiner returns a line editor completing the names known to s and
// recalling the lines of its input history.
func newLiner(s *session) *liner.State {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	ln.SetTabCompletionStyle(liner.TabPrints)
	ln.SetCompleter(func(line string) []string {
		c := complete(s.calc.Registry(), line, len(line))

		out := make([]string, len(c.matches))
		for i, m := range c.matches {
			out[i], _ = c.replace(line, m.Str)
		}

		return out
	})

	_, _ = ln.ReadHistory(strings.NewReader(s.history.Lines()))

	return ln
}

// runLine reads and evaluates lines from p until the user exits. Ctrl-C
// discards the current line and Ctrl-D exits.
func runLine(ctx context.Context, s *session, p prompter, w io.Writer) error {
	defer p.Close()

	for {
		if err := context.Cause(ctx); err != nil {
			return err
		}

		line, err := p.Prompt(linePrompt)

		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			continue

		case errors.Is(err, io.EOF):
			fmt.Fprintln(w)

			return nil

		case err != nil:
			return err
		}

		line = s.continueLine(line)
		if strings.TrimSpace(line) != "" {
			p.AppendHistory(line)
		}

		r := s.submit(ctx, line)

		switch {
		case r.quit:
			return nil

		case r.clear:
			fmt.Fprint(w, clearScreen)

		case r.edit:
			fmt.Fprintln(w, errorText(fmt.Errorf("%w: %sedit", ErrUnsupportedMode, commandPrefix)))

		case r.err != nil:
			fmt.Fprintln(w, errorText(r.err))

		case r.text != "":
			fmt.Fprintln(w, r.text)
		}
	}
}
