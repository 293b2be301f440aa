package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/peterh/liner"
)

// scriptedPrompter replays lines, then reports end of input.
type scriptedPrompter struct {
	lines   []string
	errs    map[int]error
	history []string
	closed  bool
	n       int
}

func (p *scriptedPrompter) Prompt(string) (string, error) {
	defer func() { p.n++ }()

	if err, ok := p.errs[p.n]; ok {
		return "", err
	}

	if p.n >= len(p.lines) {
		return "", io.EOF
	}

	return p.lines[p.n], nil
}

func (p *scriptedPrompter) AppendHistory(line string) { p.history = append(p.history, line) }

func (p *scriptedPrompter) Close() error {
	p.closed = true

	return nil
}

func TestRunLine(t *testing.T) {
	tests := []struct {
		name    string
		lines   []string
		errs    map[int]error
		want    string
		history []string
	}{
		{
			name:    "evaluate and continue",
			lines:   []string{"6", "* 7", "", "1 +"},
			want:    "= 6\n= 42\nerror: ",
			history: []string{"6", "$0 * 7", "1 +"},
		},
		{
			name:    "quit",
			lines:   []string{"1", ":q", "2"},
			want:    "= 1\n",
			history: []string{"1", ":q"},
		},
		{
			name:    "aborted line",
			lines:   []string{"", "3"},
			errs:    map[int]error{0: liner.ErrPromptAborted},
			want:    "= 3\n\n",
			history: []string{"3"},
		},
		{
			name:    "clear",
			lines:   []string{":clear"},
			want:    clearScreen + "\n",
			history: []string{":clear"},
		},
		{
			name:    "edit",
			lines:   []string{":edit"},
			want:    "error: command not available in this mode: :edit\n\n",
			history: []string{":edit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			p := &scriptedPrompter{lines: tt.lines, errs: tt.errs}

			if err := runLine(t.Context(), newTestSession(), p, &out); err != nil {
				t.Fatalf("runLine: %v", err)
			}

			if got := out.String(); !strings.HasPrefix(got, tt.want) {
				t.Errorf("output = %q, want prefix %q", got, tt.want)
			}

			if !slices.Equal(p.history, tt.history) {
				t.Errorf("history = %q, want %q", p.history, tt.history)
			}

			if !p.closed {
				t.Error("prompter not closed")
			}
		})
	}
}

func TestRunLine_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancelCause(t.Context())
	cancel(io.ErrClosedPipe)

	p := &scriptedPrompter{lines: []string{"1"}}

	if err := runLine(ctx, newTestSession(), p, io.Discard); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("runLine error = %v, want %v", err, io.ErrClosedPipe)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{in: "", want: ModeAuto, ok: true},
		{in: "AUTO", want: ModeAuto, ok: true},
		{in: "tui", want: ModeTUI, ok: true},
		{in: " line ", want: ModeLine, ok: true},
		{in: "gui", want: ModeAuto},
	}

	for _, tt := range tests {
		got, ok := ParseMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseMode(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}

		if ok && got.String() != tt.want.String() {
			t.Errorf("%v.String() = %q", got, got.String())
		}
	}

	if ModeTUI.resolve() != ModeTUI || ModeLine.resolve() != ModeLine {
		t.Error("explicit mode not kept by resolve")
	}
}
