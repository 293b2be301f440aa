package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/klauspost/readahead"

	"github.com/ardnew/calc/lang"
	"github.com/ardnew/calc/log"
	"github.com/ardnew/calc/pkg"
)

// commentPrefix begins a line that [Script] ignores.
const commentPrefix = "#"

// Script evaluates the lines of one or more files against one calculator.
type Script struct {
	KeepGoing bool     `help:"Continue after a line fails."                  short:"k"`
	State     string   `help:"Print the final memory and history." default:"none" enum:"none,text,json,yaml"`
	Files     []string `arg:"" help:"Script files, or '-' for stdin (default)." name:"file" optional:""`
}

// Run executes the run command.
func (s *Script) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	format, printState, err := stateFormat(s.State)
	if err != nil {
		return err
	}

	srcs, err := openSources(s.Files)
	if err != nil {
		return err
	}
	defer closeSources(srcs)

	calc := newCalculator()
	failed := 0

	for _, src := range srcs {
		n, err := s.run(ctx, calc, src)
		failed += n

		if err != nil {
			return err
		}
	}

	if printState {
		if err := calc.State().Format(ctx, stdout(ctx), format, 2); err != nil {
			return pkg.ErrWriteOutput.Wrap(err)
		}
	}

	if failed > 0 {
		return pkg.ErrScript.Wrapf("%d line(s) failed", failed)
	}

	return nil
}

// run evaluates each line of src, returning the number of failed lines.
// Without --keep-going the first failure is returned as an error.
func (s *Script) run(
	ctx context.Context,
	calc *lang.Calculator,
	src source,
) (failed int, err error) {
	ra := readahead.NewReader(src)
	defer ra.Close()

	out, diag := stdout(ctx), stderr(ctx)
	scan := bufio.NewScanner(ra)

	for line := 1; scan.Scan(); line++ {
		if err := context.Cause(ctx); err != nil {
			return failed, err
		}

		input := strings.TrimSpace(scan.Text())
		if input == "" || strings.HasPrefix(input, commentPrefix) {
			continue
		}

		pos := src.name + ":" + strconv.Itoa(line)

		v, _, err := calc.Evaluate(ctx, input)
		if err != nil {
			if !s.KeepGoing {
				writeSnippet(diag, err)

				return failed + 1, ErrEvaluate.Wrap(err).With(
					slog.String("file", src.name),
					slog.Int("line", line),
				)
			}

			failed++

			fmt.Fprintf(diag, "%s: %v\n", pos, err)
			writeSnippet(diag, err)

			continue
		}

		log.TraceContext(ctx, "script line",
			slog.String("position", pos),
			slog.Float64("result", v),
		)

		if _, err := fmt.Fprintln(out, lang.FormatValue(v)); err != nil {
			return failed, pkg.ErrWriteOutput.Wrap(err)
		}
	}

	if err := scan.Err(); err != nil {
		return failed, pkg.ErrReadInput.Wrap(err)
	}

	return failed, nil
}
