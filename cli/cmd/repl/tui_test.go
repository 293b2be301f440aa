package repl

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeText(m model, s string) model {
	for _, r := range s {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
		if r == ' ' {
			msg.Type = tea.KeySpace
		}

		m, _ = m.handleKey(msg)
	}

	return m
}

func press(m model, k tea.KeyType) model {
	m, _ = m.handleKey(tea.KeyMsg{Type: k})

	return m
}

func TestModel_Execute(t *testing.T) {
	s := newTestSession()
	m := newModel(t.Context(), s)

	m = press(typeText(m, "6 * 7"), tea.KeyEnter)

	if got := m.input.Value(); got != "" {
		t.Errorf("input after enter = %q", got)
	}

	if hist := s.calc.State().History; len(hist) != 1 || hist[0] != 42 {
		t.Errorf("history = %v", hist)
	}

	if s.history.Len() != 1 {
		t.Errorf("input history has %d entries", s.history.Len())
	}
}

func TestModel_Continue(t *testing.T) {
	tests := []struct {
		name  string
		typed string
		want  string
	}{
		{name: "operator", typed: "+", want: "$0 + "},
		{name: "suffix", typed: "!", want: "$0!"},
		{name: "function", typed: "mod ", want: "$0 mod "},
		{name: "negation", typed: "-2", want: "-2"},
		{name: "unary function", typed: "sqrt ", want: "sqrt "},
		{name: "later operator", typed: "1+", want: "1+"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(t.Context(), newTestSession())
			m = press(typeText(m, "5"), tea.KeyEnter)

			if got := typeText(m, tt.typed).input.Value(); got != tt.want {
				t.Errorf("typed %q, input = %q, want %q", tt.typed, got, tt.want)
			}
		})
	}
}

func TestModel_TabCompletion(t *testing.T) {
	m := newModel(t.Context(), newTestSession())

	m = press(typeText(m, "1 + sqr"), tea.KeyTab)
	if got := m.input.Value(); got != "1 + SQRT" {
		t.Errorf("single candidate completion = %q", got)
	}

	m = newModel(t.Context(), newTestSession())
	m = typeText(m, "co")

	n := len(m.comp.matches)
	if n < 2 {
		t.Fatalf("want several candidates, got %v", m.comp.matches)
	}

	m = press(m, tea.KeyTab)
	first := m.input.Value()

	if !m.tabActive || first != m.comp.matches[0].Str {
		t.Errorf("first tab: input %q, active %v", first, m.tabActive)
	}

	m = press(m, tea.KeyTab)
	if got := m.input.Value(); got != m.comp.matches[1].Str {
		t.Errorf("second tab: input %q, want %q", got, m.comp.matches[1].Str)
	}

	m = press(m, tea.KeyEsc)
	if got := m.input.Value(); got != "co" || m.tabActive {
		t.Errorf("escape: input %q, active %v", got, m.tabActive)
	}
}

func TestModel_HistoryRecall(t *testing.T) {
	m := newModel(t.Context(), newTestSession())

	m = press(typeText(m, "1"), tea.KeyEnter)
	m = press(typeText(m, ":mem"), tea.KeyEnter)

	m = press(m, tea.KeyUp)
	if got := m.input.Value(); got != ":mem" {
		t.Errorf("up = %q", got)
	}

	m = press(press(m, tea.KeyUp), tea.KeyUp)
	if got := m.input.Value(); got != "1" {
		t.Errorf("up past oldest = %q", got)
	}

	m = press(press(m, tea.KeyDown), tea.KeyDown)
	if got := m.input.Value(); got != "" {
		t.Errorf("down to newest = %q", got)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t.Context(), newTestSession())

	m = press(typeText(m, "1 +"), tea.KeyCtrlC)
	if m.quitting || m.input.Value() != "" {
		t.Fatalf("ctrl-c with input: quitting %v, input %q", m.quitting, m.input.Value())
	}

	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyCtrlD})
	if !m.quitting || cmd == nil {
		t.Error("ctrl-d on empty input did not quit")
	}

	if m.View() != "" {
		t.Errorf("view after quit = %q", m.View())
	}
}

func TestModel_Hint(t *testing.T) {
	m := newModel(t.Context(), newTestSession())

	if got := plain(m.hint()); !strings.Contains(got, ":help") {
		t.Errorf("empty hint = %q", got)
	}

	m = typeText(m, "max(8, ")
	if got := plain(m.hint()); !strings.HasPrefix(got, "MAX(x...)") {
		t.Errorf("signature hint = %q", got)
	}

	m = typeText(m, "2)")
	if got := plain(m.hint()); got != "= 8" {
		t.Errorf("preview hint = %q", got)
	}
}
