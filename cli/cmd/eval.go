package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/calc/lang"
	"github.com/ardnew/calc/log"
	"github.com/ardnew/calc/pkg"
)

// Eval evaluates each argument in order against one calculator.
type Eval struct {
	Preview bool     `help:"Evaluate without committing results to history or memory."                     short:"p"`
	State   string   `help:"Print the final memory and history."    default:"none" enum:"none,text,json,yaml"`
	Report  string   `help:"Print the value of an expr-lang program over each result instead of the result." placeholder:"EXPR" short:"r"`
	Exprs   []string `arg:"" help:"Expressions to evaluate. Without any, an interactive session starts." name:"expr" optional:""`
}

// report is the environment of an [Eval.Report] program.
type report struct {
	Input   string    `expr:"input"`
	History []float64 `expr:"history"`
	Memory  []float64 `expr:"memory"`
	Result  float64   `expr:"result"`
	Index   int       `expr:"index"`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if len(e.Exprs) == 0 {
		return (&Repl{Mode: modeAuto}).Run(ctx)
	}

	format, printState, err := stateFormat(e.State)
	if err != nil {
		return err
	}

	program, err := compileReport(e.Report)
	if err != nil {
		return err
	}

	calc := newCalculator()
	out := stdout(ctx)

	var state lang.State

	for i, input := range e.Exprs {
		var v float64

		v, state, err = calc.EvaluateWithOptions(ctx, input,
			lang.EvaluateOptions{Preview: e.Preview})
		if err != nil {
			writeSnippet(stderr(ctx), err)

			return ErrEvaluate.Wrap(err).With(slog.Int("index", i))
		}

		log.DebugContext(ctx, "evaluated",
			slog.String("input", input),
			slog.Float64("result", v),
			slog.Bool("preview", e.Preview),
		)

		line := lang.FormatValue(v)

		if program != nil {
			line, err = runReport(program, report{
				Input:   input,
				History: state.History,
				Memory:  state.Memory,
				Result:  v,
				Index:   i,
			})
			if err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(out, line); err != nil {
			return pkg.ErrWriteOutput.Wrap(err)
		}
	}

	if printState {
		if err := state.Format(ctx, out, format, 2); err != nil {
			return pkg.ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}

// compileReport compiles src against the [report] environment. An empty
// src yields a nil program.
func compileReport(src string) (*vm.Program, error) {
	if src == "" {
		return nil, nil
	}

	program, err := expr.Compile(src, expr.Env(report{}))
	if err != nil {
		return nil, pkg.ErrReport.Wrap(err)
	}

	return program, nil
}

// runReport runs program over env and formats its value. Floating-point
// values use the same form as plain results.
func runReport(program *vm.Program, env report) (string, error) {
	out, err := expr.Run(program, env)
	if err != nil {
		return "", pkg.ErrReport.Wrap(err)
	}

	switch v := out.(type) {
	case float64:
		return lang.FormatValue(v), nil
	case []float64:
		items := make([]string, len(v))
		for i, f := range v {
			items[i] = lang.FormatValue(f)
		}

		return strings.Join(items, " "), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// writeSnippet writes the caret snippet of a parse error to w.
func writeSnippet(w io.Writer, err error) {
	var perr *lang.ParseError
	if errors.As(err, &perr) {
		_, _ = io.WriteString(w, perr.Snippet())
	}
}
