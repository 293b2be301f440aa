package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/calc/cli/cmd/repl"
	"github.com/ardnew/calc/log"
	"github.com/ardnew/calc/pkg"
)

const modeAuto = "auto"

// Repl starts an interactive session.
type Repl struct {
	Mode string `default:"auto" enum:"auto,tui,line" help:"Terminal UI, plain line editing, or auto-detect." short:"m"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	mode, ok := repl.ParseMode(r.Mode)
	if !ok {
		return pkg.ErrInvalidFlag.Wrapf("--mode %q", r.Mode)
	}

	logger := log.With(slog.String("component", "repl"))

	history := repl.NewHistory(variable(ctx, HistoryIdentifier, pkg.HistoryFile()))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	return repl.Run(ctx, repl.Config{
		Mode:       mode,
		Calculator: newCalculator(),
		History:    history,
		Logger:     logger,
	})
}
