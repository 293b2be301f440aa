package lang

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/calc/log"
)

// State is a snapshot of an [Interpreter]'s memory and history.
// History is ordered most recent first.
type State struct {
	Memory  []float64 `json:"memory"  yaml:"memory"`
	History []float64 `json:"history" yaml:"history"`
}

// Calculator parses and evaluates input text against one [Interpreter].
type Calculator struct {
	logger log.Logger
	interp *Interpreter
	opts   []Option
	cache  bool
}

// New creates a Calculator with a new [Interpreter].
func New(opts ...Option) *Calculator {
	o := makeOptions(opts...)

	return &Calculator{
		logger: o.logger,
		interp: NewInterpreter(opts...),
		opts:   opts,
		cache:  !o.noCache,
	}
}

// Interpreter returns the interpreter that holds c's state.
func (c *Calculator) Interpreter() *Interpreter { return c.interp }

// Registry returns the function table.
func (c *Calculator) Registry() *Registry { return c.interp.Registry() }

// Parse parses input with c's options.
func (c *Calculator) Parse(ctx context.Context, input string) (Expr, error) {
	if c.cache {
		return ParseCached(ctx, input, c.opts...)
	}

	return Parse(ctx, input, c.opts...)
}

// Evaluate parses and evaluates input, committing the result to history.
func (c *Calculator) Evaluate(ctx context.Context, input string) (float64, State, error) {
	return c.EvaluateWithOptions(ctx, input, EvaluateOptions{})
}

// EvaluateWithOptions parses and evaluates input in the mode selected by
// opts. The returned State reflects memory as it would be after the
// evaluation, which in preview mode differs from the interpreter's live
// memory. Failures are returned as [*CalcError].
func (c *Calculator) EvaluateWithOptions(
	ctx context.Context,
	input string,
	opts EvaluateOptions,
) (float64, State, error) {
	input = strings.TrimSpace(input)

	parse := c.Parse
	if opts.Preview {
		// Previews run on partial input, which is rarely worth keeping.
		parse = func(ctx context.Context, input string) (Expr, error) {
			return Parse(ctx, input, c.opts...)
		}
	}

	expr, err := parse(ctx, input)
	if err != nil {
		return 0, State{}, &CalcError{Input: input, Stage: StageParse, Err: err}
	}

	v, mem, err := c.interp.EvaluateWithOptions(ctx, expr, opts)
	if err != nil {
		c.logger.DebugContext(ctx, "evaluation failed",
			slog.String("input", input),
			slog.Bool("preview", opts.Preview),
			slog.Any("error", err),
		)

		return 0, State{}, &CalcError{Input: input, Stage: StageEvaluate, Err: err}
	}

	state := c.State()
	if opts.Preview {
		state.Memory = mem
	}

	return v, state, nil
}

// State returns a snapshot of the live memory and history.
func (c *Calculator) State() State {
	return State{
		Memory:  c.interp.Memory(),
		History: c.interp.History(),
	}
}

// HasHistory reports whether any result has been committed.
func (c *Calculator) HasHistory() bool { return c.interp.HasHistory() }

// ClearMemory resets every memory slot to 0.
func (c *Calculator) ClearMemory() { c.interp.ClearMemory() }

// ClearHistory removes every history entry.
func (c *Calculator) ClearHistory() { c.interp.ClearHistory() }

// Continue returns input prefixed with a reference to the most recent result
// when input, typed at the start of an empty line, can only mean an operation
// applied to that result: an infix operator, a suffix operator, or the name
// of a binary or variadic function used infix. Otherwise input is returned
// unchanged.
//
// A leading "-" is left alone since it also begins a negative operand.
func (c *Calculator) Continue(input string) string {
	if !c.HasHistory() {
		return input
	}

	last := HistoryAccess{Index: 0}.String()
	frag := strings.TrimSpace(input)

	if _, err := ParseUnopPrefix(frag); err == nil {
		return input
	}

	if _, err := ParseBinopInfix(frag); err == nil {
		return last + " " + frag + " "
	}

	if _, err := ParseUnopSuffix(frag); err == nil {
		return last + frag
	}

	if id, err := ParseIdentifier(frag); err == nil && !isConstant(id.Name) {
		if f, ok := c.Registry().Lookup(id.Name); ok &&
			(f.Arity() == 2 || f.Arity() == Variadic) {
			return last + " " + frag + " "
		}
	}

	return input
}
