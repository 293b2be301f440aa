package lang

import (
	"cmp"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Arity is the number of arguments a [Function] accepts.
type Arity int

// Variadic is the arity of functions accepting any number of arguments.
const Variadic Arity = -1

// String returns the argument count, or "variadic".
func (a Arity) String() string {
	if a == Variadic {
		return "variadic"
	}

	return strconv.Itoa(int(a))
}

// Native implementations, one per arity shape.
type (
	Func0 func() (float64, error)
	Func1 func(a float64) (float64, error)
	Func2 func(a, b float64) (float64, error)
	Func3 func(a, b, c float64) (float64, error)
	Func4 func(a, b, c, d float64) (float64, error)
	Func5 func(a, b, c, d, e float64) (float64, error)
	Func6 func(a, b, c, d, e, f float64) (float64, error)
	Func7 func(a, b, c, d, e, f, g float64) (float64, error)
	Func8 func(a, b, c, d, e, f, g, h float64) (float64, error)
	Func9 func(a, b, c, d, e, f, g, h, i float64) (float64, error)
	FuncN func(args ...float64) (float64, error)
)

// Native is the closed set of implementation shapes: [Func0] through [Func9]
// and [FuncN].
type Native interface {
	Func0 | Func1 | Func2 | Func3 | Func4 | Func5 | Func6 | Func7 | Func8 |
		Func9 | FuncN
}

// Function is a named builtin with a fixed or variable arity.
type Function struct {
	impl   any
	Name   string
	Params string // Parameter names shown in signatures, comma separated
	Doc    string
}

// NewFunction creates a Function named name with the given implementation.
func NewFunction[F Native](name, params, doc string, impl F) Function {
	return Function{
		impl:   impl,
		Name:   strings.ToUpper(name),
		Params: params,
		Doc:    doc,
	}
}

// Arity returns the number of arguments accepted by f.
func (f Function) Arity() Arity {
	switch f.impl.(type) {
	case Func0:
		return 0
	case Func1:
		return 1
	case Func2:
		return 2
	case Func3:
		return 3
	case Func4:
		return 4
	case Func5:
		return 5
	case Func6:
		return 6
	case Func7:
		return 7
	case Func8:
		return 8
	case Func9:
		return 9
	default:
		return Variadic
	}
}

// Signature returns the call form of f, such as "LOGB(x, base)".
func (f Function) Signature() string {
	return f.Name + "(" + f.Params + ")"
}

// Call validates the number of arguments and invokes f.
func (f Function) Call(args ...float64) (float64, error) {
	if err := f.check(len(args)); err != nil {
		return 0, err
	}

	a := args

	switch fn := f.impl.(type) {
	case Func0:
		return fn()
	case Func1:
		return fn(a[0])
	case Func2:
		return fn(a[0], a[1])
	case Func3:
		return fn(a[0], a[1], a[2])
	case Func4:
		return fn(a[0], a[1], a[2], a[3])
	case Func5:
		return fn(a[0], a[1], a[2], a[3], a[4])
	case Func6:
		return fn(a[0], a[1], a[2], a[3], a[4], a[5])
	case Func7:
		return fn(a[0], a[1], a[2], a[3], a[4], a[5], a[6])
	case Func8:
		return fn(a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7])
	case Func9:
		return fn(a[0], a[1], a[2], a[3], a[4], a[5], a[6], a[7], a[8])
	case FuncN:
		return fn(a...)
	default:
		return 0, ErrUnsupported.Wrapf("function '%s' has no implementation", f.Name)
	}
}

// check reports an [ErrArity] error unless f accepts n arguments.
func (f Function) check(n int) error {
	if a := f.Arity(); a != Variadic && int(a) != n {
		return ErrArity.Wrapf("function '%s' expected %d arguments; got %d",
			f.Name, a, n).With(
			slog.String("function", f.Name),
			slog.Int("expected", int(a)),
			slog.Int("actual", n),
		)
	}

	return nil
}

// Registry maps case-insensitive names to functions. It is not modified
// after construction.
type Registry struct {
	funcs map[string]Function
}

// NewRegistry creates a Registry holding the given functions.
// A later function replaces an earlier one of the same name.
func NewRegistry(funcs ...Function) *Registry {
	r := &Registry{funcs: make(map[string]Function, len(funcs))}

	for _, f := range funcs {
		r.funcs[f.Name] = f
	}

	return r
}

// Lookup returns the function registered under name, ignoring case.
func (r *Registry) Lookup(name string) (Function, bool) {
	f, ok := r.funcs[strings.ToUpper(name)]

	return f, ok
}

// Len returns the number of registered functions.
func (r *Registry) Len() int { return len(r.funcs) }

// Names returns the sorted names of all registered functions.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.funcs))
}

// All returns an iterator over registered functions sorted by name.
func (r *Registry) All() iter.Seq[Function] {
	return func(yield func(Function) bool) {
		for _, f := range slices.SortedFunc(maps.Values(r.funcs),
			func(a, b Function) int { return cmp.Compare(a.Name, b.Name) },
		) {
			if !yield(f) {
				return
			}
		}
	}
}
