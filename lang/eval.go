package lang

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/ardnew/calc/log"
)

// MemorySize is the number of addressable memory slots.
const MemorySize = 256

// EvaluateOptions selects the evaluation mode.
type EvaluateOptions struct {
	// Preview evaluates without committing: history is not appended and any
	// memory store is rolled back before returning.
	Preview bool
}

// Interpreter evaluates expressions against a result history and a memory
// bank. All methods are safe for concurrent use; each evaluation holds the
// interpreter's lock for its whole duration, so a preview's snapshot and
// rollback are never interleaved with another evaluation.
type Interpreter struct {
	logger  log.Logger
	funcs   *Registry
	history []float64
	memory  [MemorySize]float64
	mu      sync.Mutex
}

// NewInterpreter creates an Interpreter with empty history, zeroed memory,
// and the builtin function table.
func NewInterpreter(opts ...Option) *Interpreter {
	o := makeOptions(opts...)

	return &Interpreter{
		logger: o.logger,
		funcs:  NewRegistry(Builtins(o.rand)...),
	}
}

// Registry returns the function table used by in.
func (in *Interpreter) Registry() *Registry { return in.funcs }

// Evaluate evaluates expr and appends the result to history unless it
// equals the most recent entry.
func (in *Interpreter) Evaluate(ctx context.Context, expr Expr) (float64, error) {
	v, _, err := in.EvaluateWithOptions(ctx, expr, EvaluateOptions{})

	return v, err
}

// EvaluateWithOptions evaluates expr in the mode selected by opts.
//
// In preview mode the returned slice is the memory bank as it would be had
// the evaluation been committed; the live memory is left as it was. Outside
// preview mode the returned slice is nil.
func (in *Interpreter) EvaluateWithOptions(
	ctx context.Context,
	expr Expr,
	opts EvaluateOptions,
) (float64, []float64, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if !opts.Preview {
		v, err := in.commit(ctx, expr)

		return v, nil, err
	}

	saved := in.memory

	v, err := in.eval(expr.Root)
	after := slices.Clone(in.memory[:])
	in.memory = saved

	in.logger.TraceContext(ctx, "preview",
		slog.String("expr", expr.String()),
		slog.Float64("result", v),
		slog.Bool("ok", err == nil),
	)

	if err != nil {
		return 0, nil, err
	}

	return v, after, nil
}

// commit evaluates expr and records its result. A failed evaluation leaves
// both history and memory as they were.
func (in *Interpreter) commit(ctx context.Context, expr Expr) (float64, error) {
	saved := in.memory

	v, err := in.eval(expr.Root)
	if err != nil {
		in.memory = saved

		in.logger.DebugContext(ctx, "evaluate",
			slog.String("expr", expr.String()),
			slog.Any("error", err),
		)

		return 0, err
	}

	if n := len(in.history); n == 0 || in.history[n-1] != v {
		in.history = append(in.history, v)
	}

	in.logger.TraceContext(ctx, "evaluate",
		slog.String("expr", expr.String()),
		slog.Float64("result", v),
		slog.Int("history", len(in.history)),
	)

	return v, nil
}

// Memory returns a copy of the memory bank.
func (in *Interpreter) Memory() []float64 {
	in.mu.Lock()
	defer in.mu.Unlock()

	return slices.Clone(in.memory[:])
}

// History returns a copy of the result history, most recent first.
func (in *Interpreter) History() []float64 {
	in.mu.Lock()
	defer in.mu.Unlock()

	h := slices.Clone(in.history)
	slices.Reverse(h)

	return h
}

// HasHistory reports whether any result has been committed.
func (in *Interpreter) HasHistory() bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	return len(in.history) > 0
}

// ClearMemory resets every memory slot to 0.
func (in *Interpreter) ClearMemory() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.memory = [MemorySize]float64{}
}

// ClearHistory removes every history entry.
func (in *Interpreter) ClearHistory() {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.history = nil
}

// eval walks the tree rooted at n. Empty input evaluates to 0.
func (in *Interpreter) eval(n Node) (float64, error) {
	switch n := n.(type) {
	case nil:
		return 0, nil

	case Number:
		return n.Value, nil

	case Func:
		return in.call(n)

	case Identifier:
		return 0, ErrUnsupported.Wrapf("identifier '%s'", n.Name)

	case Parenthesized:
		return in.eval(n.Inner)

	case UnaryPrefix:
		return in.prefix(n)

	case UnarySuffix:
		return in.suffix(n)

	case BinaryChain:
		return in.binary(n)

	case FunctionChain:
		return in.functions(n)

	case HistoryAccess:
		if n.Index < 0 || n.Index >= len(in.history) {
			return 0, ErrHistoryIndex.Wrapf("$%d", n.Index).
				With(slog.Int("index", n.Index), slog.Int("size", len(in.history)))
		}

		return in.history[len(in.history)-1-n.Index], nil

	case MemoryAccess:
		if n.Index < 0 || n.Index >= MemorySize {
			return 0, ErrMemoryIndex.Wrapf("$m%d", n.Index).
				With(slog.Int("index", n.Index))
		}

		return in.memory[n.Index], nil

	case MemoryStore:
		if n.Index < 0 || n.Index >= MemorySize {
			return 0, ErrMemoryIndex.Wrapf("$m%d", n.Index).
				With(slog.Int("index", n.Index))
		}

		v, err := in.eval(n.Value)
		if err != nil {
			return 0, err
		}

		in.memory[n.Index] = v

		return v, nil

	default:
		return 0, ErrUnsupported.Wrapf("node %T", n)
	}
}

func (in *Interpreter) lookup(name string) (Function, error) {
	f, ok := in.funcs.Lookup(name)
	if !ok {
		return Function{}, ErrUnknownFunction.Wrapf("'%s'", name).
			With(slog.String("function", name))
	}

	return f, nil
}

// call checks the argument count before evaluating any argument.
func (in *Interpreter) call(n Func) (float64, error) {
	f, err := in.lookup(n.Name)
	if err != nil {
		return 0, err
	}

	if err := f.check(len(n.Args)); err != nil {
		return 0, err
	}

	args := make([]float64, len(n.Args))

	for i, arg := range n.Args {
		if args[i], err = in.eval(arg); err != nil {
			return 0, err
		}
	}

	return f.Call(args...)
}

func (in *Interpreter) prefix(n UnaryPrefix) (float64, error) {
	v, err := in.eval(n.Operand)
	if err != nil {
		return 0, err
	}

	for range n.Ops {
		v = -v
	}

	return v, nil
}

func (in *Interpreter) suffix(n UnarySuffix) (float64, error) {
	v, err := in.eval(n.Operand)
	if err != nil {
		return 0, err
	}

	for range n.Ops {
		if v, err = Factorial(v); err != nil {
			return 0, err
		}
	}

	return v, nil
}

func (in *Interpreter) binary(n BinaryChain) (float64, error) {
	acc, err := in.eval(n.First)
	if err != nil {
		return 0, err
	}

	for _, link := range n.Rest {
		rhs, err := in.eval(link.Operand)
		if err != nil {
			return 0, err
		}

		acc = link.Op.Apply(acc, rhs)
	}

	return acc, nil
}

func (in *Interpreter) functions(n FunctionChain) (float64, error) {
	acc, err := in.eval(n.First)
	if err != nil {
		return 0, err
	}

	for _, link := range n.Rest {
		f, err := in.lookup(link.Name)
		if err != nil {
			return 0, err
		}

		rhs, err := in.eval(link.Operand)
		if err != nil {
			return 0, err
		}

		if acc, err = f.Call(acc, rhs); err != nil {
			return 0, err
		}
	}

	return acc, nil
}

// Apply returns the result of a op b.
func (op BinopInfix) Apply(a, b float64) float64 {
	switch op {
	case OpExponent:
		return math.Pow(a, b)
	case OpMultiply:
		return a * b
	case OpDivide:
		return a / b
	case OpRemainder:
		return math.Mod(a, b)
	case OpAdd:
		return a + b
	case OpSubtract:
		return a - b
	default:
		return math.NaN()
	}
}
