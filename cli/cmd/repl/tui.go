package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

// editDoneMsg is sent when the editor returns an accepted expression.
type editDoneMsg struct{ text string }

// editCancelledMsg is sent when the user cleared the editor content or
// declined to fix a parse error.
type editCancelledMsg struct{}

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

const defaultWidth = 80

// model is the Bubble Tea model for the terminal UI.
type model struct {
	ctxFunc      func() context.Context
	session      *session
	input        textinput.Model
	comp         completion // fuzzy matches for the word at the cursor
	preview      string     // would-be result of the current input
	preTabText   string     // input text before tab-cycling began
	historyIdx   int
	suggIdx      int // selected candidate index
	preTabCursor int // cursor position before tab-cycling began
	width        int // terminal width for ellipsization
	tabActive    bool
	quitting     bool
}

func runTUI(ctx context.Context, s *session) error {
	p := tea.NewProgram(newModel(ctx, s), tea.WithContext(ctx))
	_, err := p.Run()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return context.Cause(ctx)
	}

	return err
}

func newModel(ctx context.Context, s *session) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		session:    s,
		input:      ti,
		historyIdx: s.history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(evalPrompt)-2, 1)

		return m, nil

	case editDoneMsg:
		return m.execute(msg.text)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render(errorText(msg.err)))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hint() + "\n"
}

// hint returns the line shown below the input.
func (m model) hint() string {
	input := m.input.Value()

	if m.historyIdx < m.session.history.Len() {
		return hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.session.history.Len()))
	}

	if strings.TrimSpace(input) == "" {
		return hintStyle.Render("Type an expression, or " + commandPrefix + "help for commands")
	}

	if len(m.comp.matches) > 0 && (m.tabActive || !m.inCall()) {
		return renderCandidateBar(m.comp.matches, m.suggIdx, m.tabActive, m.width)
	}

	var parts []string

	if call := detectFunctionCall(input, m.input.Position()); call.inCall {
		if name, params, ok := lookupSignature(m.session.calc.Registry(), call.name); ok {
			parts = append(parts, renderSignatureHint(name, params, call.argIndex))
		}
	}

	if m.preview != "" {
		parts = append(parts, previewStyle.Render(m.preview))
	}

	return strings.Join(parts, "  ")
}

// inCall reports whether the cursor is inside the argument list of a known
// function, where the signature hint takes the place of completions of
// the word being typed.
func (m model) inCall() bool {
	call := detectFunctionCall(m.input.Value(), m.input.Position())
	if !call.inCall {
		return false
	}

	_, _, ok := lookupSignature(m.session.calc.Registry(), call.name)

	return ok && m.comp.wordStart == m.comp.wordEnd
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.session.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.setInput("")

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.comp.matches) > 0 {
			// Lock in the current candidate without executing.
			m.tabActive = false
			m.refresh()

			return m, nil
		}

		line := m.input.Value()
		m.setInput("")

		return m.execute(line)

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(m.historyIdx - 1), nil

	case tea.KeyDown:
		return m.recall(m.historyIdx + 1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			m.refresh()
		}

		return m, nil

	case tea.KeySpace, tea.KeyRunes:
		return m.handleRunes(msg)
	}

	// For any other key (backspace, delete, arrows, etc.), update input and
	// recompute matches.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.session.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

// handleRunes inserts typed text. The first operator typed on an empty
// line, or a space after a lone function name, continues from the latest
// result.
func (m model) handleRunes(msg tea.KeyMsg) (model, tea.Cmd) {
	before := m.input.Value()
	m.tabActive = false
	m.historyIdx = m.session.history.Len()

	if msg.Type == tea.KeySpace && m.input.Position() == len(before) {
		if c := m.session.calc.Continue(before); c != before {
			m.setInput(c)

			return m, nil
		}
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	if before == "" {
		typed := m.input.Value()
		if c := m.session.calc.Continue(typed); c != typed {
			m.setInput(c)

			return m, cmd
		}
	}

	m.refresh()

	return m, cmd
}

// cycle moves the candidate selection by step and completes the word with
// the selected candidate. A sole candidate is completed immediately.
func (m model) cycle(step int) model {
	n := len(m.comp.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.complete(m.comp.matches[0].Str)
		m.tabActive = false
		m.refresh()

		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()
		m.suggIdx = -1

		if step < 0 {
			m.suggIdx = 0
		}
	}

	m.suggIdx = (m.suggIdx + step + n) % n
	m.complete(m.comp.matches[m.suggIdx].Str)

	return m
}

// complete replaces the word being completed with s.
func (m *model) complete(s string) {
	text, cursor := m.comp.replace(m.input.Value(), s)
	m.input.SetValue(text)
	m.input.SetCursor(cursor)
	m.comp.wordEnd = cursor
}

// recall shows history entry i, or an empty line past the newest entry.
func (m model) recall(i int) model {
	n := m.session.history.Len()
	if i < 0 || i > n {
		return m
	}

	m.tabActive = false
	m.historyIdx = i

	line := ""
	if entry, err := m.session.history.GetEntry(i); err == nil {
		line = entry.Line
	}

	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	m.refresh()

	return m
}

// setInput replaces the input, placing the cursor at its end.
func (m *model) setInput(s string) {
	m.tabActive = false
	m.historyIdx = m.session.history.Len()
	m.input.SetValue(s)
	m.input.SetCursor(len(s))
	m.refresh()
}

// refresh recomputes completions and the preview for the current input.
func (m *model) refresh() {
	m.comp = complete(m.session.calc.Registry(), m.input.Value(), m.input.Position())
	if !m.tabActive {
		m.suggIdx = -1
	}

	m.preview, _ = m.session.preview(m.ctxFunc(), m.input.Value())
}

// execute submits line and prints the echo and the reply.
func (m model) execute(line string) (model, tea.Cmd) {
	line = strings.TrimSpace(line)
	if line == "" {
		return m, nil
	}

	echo := tea.Println(promptStyle.Render(evalPrompt) + inputStyle.Render(line))

	r := m.session.submit(m.ctxFunc(), line)
	m.historyIdx = m.session.history.Len()
	m.refresh()

	switch {
	case r.quit:
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case r.clear:
		return m, tea.ClearScreen

	case r.edit:
		content := r.text
		if content == "" {
			content = m.session.lastExpr()
		}

		return m, tea.Sequence(echo, m.edit(content))

	case r.err != nil:
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render(errorText(r.err))))

	case r.text != "":
		return m, tea.Sequence(echo, tea.Println(resultStyle.Render(r.text)))
	}

	return m, echo
}

// edit opens content in the user's editor and submits the result.
func (m model) edit(content string) tea.Cmd {
	cmd := &editCommand{
		ctxFunc: m.ctxFunc,
		logger:  m.session.logger,
		content: content,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editCancelledMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case !cmd.done:
			return editCancelledMsg{}
		default:
			return editDoneMsg{text: cmd.content}
		}
	})
}
