package repl

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/ardnew/calc/lang"
	"github.com/ardnew/calc/log"
)

// Mode selects the interface of an interactive session.
type Mode int

const (
	ModeAuto Mode = iota // TUI when stdin and stdout are terminals, else line
	ModeTUI
	ModeLine
)

// ParseMode returns the Mode named s, ignoring case.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, true
	case "tui":
		return ModeTUI, true
	case "line":
		return ModeLine, true
	default:
		return ModeAuto, false
	}
}

func (m Mode) String() string {
	switch m {
	case ModeTUI:
		return "tui"
	case ModeLine:
		return "line"
	default:
		return "auto"
	}
}

// resolve returns m, replacing [ModeAuto] with the mode the terminal
// supports.
func (m Mode) resolve() Mode {
	if m != ModeAuto {
		return m
	}

	if term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return ModeTUI
	}

	return ModeLine
}

// Config describes an interactive session.
type Config struct {
	Calculator *lang.Calculator // Required
	History    *History         // Input-line history; nil keeps none
	Logger     log.Logger
	Mode       Mode
}

// Run starts an interactive session and returns when the user exits or ctx
// is canceled.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if cfg.History == nil {
		cfg.History = NewHistory("")
	}

	mode := cfg.Mode.resolve()

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.String("mode", mode.String()),
		slog.Int("history", cfg.History.Len()),
	)

	s := &session{
		calc:    cfg.Calculator,
		history: cfg.History,
		logger:  cfg.Logger,
	}

	if mode == ModeTUI {
		return runTUI(ctx, s)
	}

	return runLine(ctx, s, newLiner(s), os.Stdout)
}

const (
	evalPrompt = "➜ "
	linePrompt = "calc> "
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	previewStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle      = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4")).
			Bold(true)
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)

	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)
