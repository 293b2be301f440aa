package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/calc/lang"
	"github.com/ardnew/calc/log"
)

// commandPrefix begins a console command.
const commandPrefix = ":"

// command is a console command. Its handler receives any arguments that
// followed the command name.
type command struct {
	name    string
	aliases []string
	help    string
	run     func(s *session, ctx context.Context, args []string) reply
}

// commands returns the console commands, in help order.
func commands() []command {
	return []command{
		{"help", []string{"h", "?"}, "Print this help", (*session).help},
		{"funcs", []string{"f"}, "List functions, optionally fuzzy-matching a pattern", (*session).funcs},
		{"history", []string{"hist"}, "List results, most recent first", (*session).results},
		{"memory", []string{"mem"}, "List memory slots that are not zero", (*session).memory},
		{"clear", nil, "Clear the screen", func(*session, context.Context, []string) reply {
			return reply{clear: true}
		}},
		{"clear-history", []string{"clear-hist"}, "Remove all results", (*session).clearHistory},
		{"clear-memory", []string{"clear-mem"}, "Reset all memory slots to 0", (*session).clearMemory},
		{"edit", []string{"e"}, "Edit an expression (default: the last one) in $EDITOR (TUI only)",
			func(_ *session, _ context.Context, args []string) reply {
				return reply{edit: true, text: strings.Join(args, " ")}
			}},
		{"quit", []string{"q", "exit"}, "Exit", func(*session, context.Context, []string) reply {
			return reply{quit: true}
		}},
	}
}

// lastExpr returns the most recent expression in the input history.
func (s *session) lastExpr() string {
	entries := s.history.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Kind == KindExpr {
			return entries[i].Line
		}
	}

	return ""
}

// commandNames returns the primary name of every console command.
func commandNames() []string {
	cmds := commands()
	names := make([]string, len(cmds))

	for i, c := range cmds {
		names[i] = c.name
	}

	return names
}

// findCommand returns the command named or aliased name, ignoring case.
func findCommand(name string) (command, bool) {
	for _, c := range commands() {
		if strings.EqualFold(c.name, name) {
			return c, true
		}

		for _, a := range c.aliases {
			if strings.EqualFold(a, name) {
				return c, true
			}
		}
	}

	return command{}, false
}

// reply is the outcome of one submitted line. Text is printed as is, or is
// the initial editor content when edit is set; a non-nil err is printed in
// place of a result.
type reply struct {
	err   error
	text  string
	quit  bool
	clear bool
	edit  bool
}

// session evaluates submitted lines against one calculator.
type session struct {
	calc    *lang.Calculator
	history *History
	logger  log.Logger
}

// submit records line in the input history and runs it as a command or
// evaluates it as an expression.
func (s *session) submit(ctx context.Context, line string) reply {
	line = strings.TrimSpace(line)
	if line == "" {
		return reply{}
	}

	kind := KindExpr
	if strings.HasPrefix(line, commandPrefix) {
		kind = KindCommand
	}

	if err := s.history.Write(line, kind); err != nil {
		s.logger.WarnContext(ctx, "could not write history", slog.Any("error", err))
	}

	if kind == KindCommand {
		return s.command(ctx, line)
	}

	return s.evaluate(ctx, line)
}

func (s *session) command(ctx context.Context, line string) reply {
	fields := strings.Fields(strings.TrimPrefix(line, commandPrefix))
	if len(fields) == 0 {
		return s.help(ctx, nil)
	}

	s.logger.TraceContext(ctx, "repl command",
		slog.String("command", fields[0]),
		slog.Int("args", len(fields)-1),
	)

	c, ok := findCommand(fields[0])
	if !ok {
		return reply{err: fmt.Errorf("%w: %s%s (try %shelp)",
			ErrUnknownCommand, commandPrefix, fields[0], commandPrefix)}
	}

	return c.run(s, ctx, fields[1:])
}

func (s *session) evaluate(ctx context.Context, line string) reply {
	v, _, err := s.calc.Evaluate(ctx, line)
	if err != nil {
		s.logger.DebugContext(ctx, "repl eval failed", slog.Any("error", err))

		return reply{err: err}
	}

	s.logger.TraceContext(ctx, "repl eval",
		slog.String("input", line),
		slog.Float64("result", v),
	)

	return reply{text: "= " + lang.FormatValue(v)}
}

// preview evaluates line without committing it. The text lists the
// would-be value and each memory slot the line would change.
func (s *session) preview(ctx context.Context, line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, commandPrefix) {
		return "", false
	}

	v, state, err := s.calc.EvaluateWithOptions(ctx, line,
		lang.EvaluateOptions{Preview: true})
	if err != nil {
		return "", false
	}

	parts := []string{"= " + lang.FormatValue(v)}
	live := s.calc.State().Memory

	for i, m := range state.Memory {
		if i < len(live) && live[i] != m && !(math.IsNaN(live[i]) && math.IsNaN(m)) {
			parts = append(parts, lang.MemoryAccess{Index: i}.String()+" ← "+lang.FormatValue(m))
		}
	}

	return strings.Join(parts, "  "), true
}

// continueLine applies [lang.Calculator.Continue] to the leading token of
// line: its first field, or else its first character.
func (s *session) continueLine(line string) string {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || strings.HasPrefix(trimmed, commandPrefix) {
		return line
	}

	first, rest, _ := strings.Cut(trimmed, " ")
	if c := s.calc.Continue(first); c != first {
		return strings.TrimRight(c, " ") + " " + strings.TrimLeft(rest, " ")
	}

	if c := s.calc.Continue(trimmed[:1]); c != trimmed[:1] {
		return c + trimmed[1:]
	}

	return line
}

func (s *session) help(context.Context, []string) reply {
	var sb strings.Builder

	sb.WriteString("Type an expression to evaluate it. Results are numbered $0 (latest), $1, ...\n")
	sb.WriteString("and memory slots are read with $mN and written with $mN:expr.\n\n")
	sb.WriteString("Commands:\n")

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)

	for _, c := range commands() {
		name := commandPrefix + c.name
		if len(c.aliases) > 0 {
			name += " (" + commandPrefix + strings.Join(c.aliases, ", "+commandPrefix) + ")"
		}

		fmt.Fprintf(tw, "  %s\t%s\n", name, c.help)
	}

	_ = tw.Flush()

	return reply{text: strings.TrimRight(sb.String(), "\n")}
}

func (s *session) funcs(_ context.Context, args []string) reply {
	var funcs []lang.Function

	for f := range s.calc.Registry().All() {
		funcs = append(funcs, f)
	}

	if pattern := strings.Join(args, ""); pattern != "" {
		matches := fuzzy.FindFrom(pattern, functionSource(funcs))
		matched := make([]lang.Function, len(matches))

		for i, m := range matches {
			matched[i] = funcs[m.Index]
		}

		funcs = matched
	}

	if len(funcs) == 0 {
		return reply{text: "no matching functions"}
	}

	var sb strings.Builder

	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	for _, f := range funcs {
		fmt.Fprintf(tw, "  %s\t%s\n", f.Signature(), f.Doc)
	}

	_ = tw.Flush()

	return reply{text: strings.TrimRight(sb.String(), "\n")}
}

// functionSource adapts a slice of [lang.Function] to [fuzzy.Source].
type functionSource []lang.Function

func (fs functionSource) String(i int) string { return fs[i].Name }
func (fs functionSource) Len() int            { return len(fs) }

func (s *session) results(context.Context, []string) reply {
	hist := s.calc.State().History
	if len(hist) == 0 {
		return reply{text: "no results"}
	}

	lines := make([]string, len(hist))
	for i, v := range hist {
		lines[i] = "  " + lang.HistoryAccess{Index: i}.String() + " = " + lang.FormatValue(v)
	}

	return reply{text: strings.Join(lines, "\n")}
}

func (s *session) memory(context.Context, []string) reply {
	var lines []string

	for i, v := range s.calc.State().Memory {
		if v != 0 {
			lines = append(lines, "  "+lang.MemoryAccess{Index: i}.String()+" = "+lang.FormatValue(v))
		}
	}

	if len(lines) == 0 {
		return reply{text: "all memory slots are 0"}
	}

	return reply{text: strings.Join(lines, "\n")}
}

func (s *session) clearHistory(context.Context, []string) reply {
	s.calc.ClearHistory()

	return reply{text: "cleared history"}
}

func (s *session) clearMemory(context.Context, []string) reply {
	s.calc.ClearMemory()

	return reply{text: "cleared memory"}
}

// errorText renders err for display, followed by a caret snippet when it
// is a parse error.
func errorText(err error) string {
	text := "error: " + err.Error()

	var perr *lang.ParseError
	if errors.As(err, &perr) {
		text += "\n" + strings.TrimRight(perr.Snippet(), "\n")
	}

	return text
}
