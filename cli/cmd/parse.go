package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/calc/lang"
	"github.com/ardnew/calc/log"
	"github.com/ardnew/calc/pkg"
)

// Parse prints the canonical rendering or the tree of an expression.
type Parse struct {
	Format string   `default:"text" enum:"text,json,yaml" help:"Output format." short:"f"`
	Indent int      `default:"2"                          help:"Indent width for JSON and YAML output." short:"i"`
	Expr   []string `arg:"" help:"Expression to parse; multiple arguments are joined with spaces." name:"expr"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	format, ok := lang.ParseFormat(p.Format)
	if !ok {
		return pkg.ErrInvalidFormat.Wrapf("%q", p.Format)
	}

	input := strings.Join(p.Expr, " ")

	expr, err := lang.Parse(ctx, input,
		lang.WithLogger(log.With(slog.String("component", "lang"))))
	if err != nil {
		writeSnippet(stderr(ctx), err)

		return &lang.CalcError{
			Input: strings.TrimSpace(input),
			Err:   err,
			Stage: lang.StageParse,
		}
	}

	if err := expr.Format(ctx, stdout(ctx), format, p.Indent); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}
