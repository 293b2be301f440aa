package repl

import (
	"errors"
	"strings"
	"testing"

	"github.com/ardnew/calc/lang"
)

func newTestSession() *session {
	return &session{calc: lang.New(), history: NewHistory("")}
}

func TestSession_Submit(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  reply
	}{
		{name: "blank", lines: []string{"   "}, want: reply{}},
		{name: "expression", lines: []string{"1 + 2"}, want: reply{text: "= 3"}},
		{name: "history reference", lines: []string{"6", "$0 * 7"}, want: reply{text: "= 42"}},
		{name: "quit", lines: []string{":quit"}, want: reply{quit: true}},
		{name: "exit alias", lines: []string{":EXIT"}, want: reply{quit: true}},
		{name: "clear", lines: []string{":clear"}, want: reply{clear: true}},
		{name: "edit", lines: []string{":e 1 +  2"}, want: reply{edit: true, text: "1 + 2"}},
		{name: "no results", lines: []string{":hist"}, want: reply{text: "no results"}},
		{
			name:  "results",
			lines: []string{"1", "2", ":history"},
			want:  reply{text: "  $0 = 2\n  $1 = 1"},
		},
		{name: "empty memory", lines: []string{":mem"}, want: reply{text: "all memory slots are 0"}},
		{
			name:  "memory",
			lines: []string{"$m3:4 + $m3", ":memory"},
			want:  reply{text: "  $m3 = 4"},
		},
		{
			name:  "clear memory",
			lines: []string{"$m1:5", ":clear-mem", ":mem"},
			want:  reply{text: "all memory slots are 0"},
		},
		{
			name:  "clear history",
			lines: []string{"5", ":clear-history", ":hist"},
			want:  reply{text: "no results"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession()

			var got reply
			for _, line := range tt.lines {
				got = s.submit(t.Context(), line)
			}

			if got != tt.want {
				t.Errorf("submit = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSession_SubmitErrors(t *testing.T) {
	s := newTestSession()

	r := s.submit(t.Context(), ":bogus")
	if !errors.Is(r.err, ErrUnknownCommand) {
		t.Fatalf("unknown command error = %v", r.err)
	}

	if got := r.err.Error(); got != "unknown command: :bogus (try :help)" {
		t.Errorf("error = %q", got)
	}

	r = s.submit(t.Context(), "1 +")

	var perr *lang.ParseError
	if !errors.As(r.err, &perr) {
		t.Fatalf("parse error = %v", r.err)
	}

	if text := errorText(r.err); !strings.HasPrefix(text, "error: ") || !strings.Contains(text, "^") {
		t.Errorf("errorText = %q", text)
	}

	if got := s.history.Len(); got != 2 {
		t.Errorf("history recorded %d lines, want 2", got)
	}
}

func TestSession_Help(t *testing.T) {
	s := newTestSession()

	for _, line := range []string{":", ":help", ":?"} {
		r := s.submit(t.Context(), line)

		for _, name := range commandNames() {
			if !strings.Contains(r.text, commandPrefix+name) {
				t.Errorf("%q: help is missing %s%s", line, commandPrefix, name)
			}
		}
	}
}

func TestSession_Funcs(t *testing.T) {
	s := newTestSession()

	r := s.submit(t.Context(), ":funcs sqr")
	if !strings.Contains(r.text, "SQRT(x)") {
		t.Errorf("funcs sqr = %q", r.text)
	}

	if r = s.submit(t.Context(), ":f zzzz"); r.text != "no matching functions" {
		t.Errorf("funcs zzzz = %q", r.text)
	}

	r = s.submit(t.Context(), ":f")
	if n := strings.Count(r.text, "\n") + 1; n != s.calc.Registry().Len() {
		t.Errorf("funcs listed %d, want %d", n, s.calc.Registry().Len())
	}
}

func TestSession_Preview(t *testing.T) {
	s := newTestSession()
	s.submit(t.Context(), "$m2:1")

	tests := []struct {
		line   string
		want   string
		wantOK bool
	}{
		{line: "1 + 2", want: "= 3", wantOK: true},
		{line: "$m2:7 * 2", want: "= 14  $m2 ← 14", wantOK: true},
		{line: "[$m2:7] * 2", want: "= 14  $m2 ← 7", wantOK: true},
		{line: "$m2:1", want: "= 1", wantOK: true},
		{line: "1 +"},
		{line: ":help"},
		{line: ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := s.preview(t.Context(), tt.line)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("preview(%q) = %q, %v; want %q, %v", tt.line, got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if got := s.calc.State().History; len(got) != 1 {
		t.Errorf("preview committed history: %v", got)
	}
}

func TestSession_ContinueLine(t *testing.T) {
	s := newTestSession()

	if got := s.continueLine("+ 1"); got != "+ 1" {
		t.Errorf("continueLine without history = %q", got)
	}

	s.submit(t.Context(), "10")

	tests := []struct {
		in   string
		want string
	}{
		{in: "+ 1", want: "$0 + 1"},
		{in: "*3", want: "$0 * 3"},
		{in: "!", want: "$0!"},
		{in: "mod 3", want: "$0 mod 3"},
		{in: "-3", want: "-3"},
		{in: "sqrt(4)", want: "sqrt(4)"},
		{in: ":help", want: ":help"},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := s.continueLine(tt.in); got != tt.want {
				t.Errorf("continueLine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSession_LastExpr(t *testing.T) {
	s := newTestSession()

	if got := s.lastExpr(); got != "" {
		t.Errorf("lastExpr() = %q, want empty", got)
	}

	s.submit(t.Context(), "1 + 1")
	s.submit(t.Context(), ":mem")

	if got := s.lastExpr(); got != "1 + 1" {
		t.Errorf("lastExpr() = %q", got)
	}
}

func TestFindCommand(t *testing.T) {
	for name, want := range map[string]string{
		"h":          "help",
		"HELP":       "help",
		"clear-hist": "clear-history",
		"q":          "quit",
		"clear":      "clear",
	} {
		c, ok := findCommand(name)
		if !ok || c.name != want {
			t.Errorf("findCommand(%q) = %q, %v; want %q", name, c.name, ok, want)
		}
	}

	if _, ok := findCommand("nope"); ok {
		t.Error("findCommand(nope) found a command")
	}
}
