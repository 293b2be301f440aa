package lang

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry(Builtins(nil)...)

	tests := []struct {
		name   string
		arity  Arity
		ok     bool
		params string
	}{
		{name: "sin", arity: 1, ok: true, params: "x"},
		{name: "SIN", arity: 1, ok: true, params: "x"},
		{name: "LogB", arity: 2, ok: true, params: "x, base"},
		{name: "cond", arity: 4, ok: true, params: "a, b, t, f"},
		{name: "add", arity: Variadic, ok: true, params: "x..."},
		{name: "pi", arity: 0, ok: true},
		{name: "frand", arity: 0, ok: true},
		{name: "nope", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := r.Lookup(tt.name)
			if ok != tt.ok {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}

			if !ok {
				return
			}

			if f.Arity() != tt.arity {
				t.Errorf("Arity() = %s, want %s", f.Arity(), tt.arity)
			}

			if f.Params != tt.params {
				t.Errorf("Params = %q, want %q", f.Params, tt.params)
			}
		})
	}
}

func TestRegistry_Names(t *testing.T) {
	r := NewRegistry(Builtins(nil)...)

	names := r.Names()
	if len(names) != r.Len() {
		t.Fatalf("len(Names()) = %d, Len() = %d", len(names), r.Len())
	}

	if !slices.IsSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}

	for _, want := range []string{"ADD", "COND", "E", "LOGB", "PI", "RRANDI", "TANH"} {
		if _, found := slices.BinarySearch(names, want); !found {
			t.Errorf("Names() missing %s", want)
		}
	}

	var all []string
	for f := range r.All() {
		all = append(all, f.Name)
	}

	if !slices.Equal(all, names) {
		t.Errorf("All() = %v, want %v", all, names)
	}
}

func TestRegistry_Replace(t *testing.T) {
	one := NewFunction("f", "", "first", Func0(func() (float64, error) { return 1, nil }))
	two := NewFunction("F", "", "second", Func0(func() (float64, error) { return 2, nil }))

	r := NewRegistry(one, two)
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	f, _ := r.Lookup("f")
	if v, _ := f.Call(); v != 2 {
		t.Errorf("Call() = %v, want 2", v)
	}
}

func TestFunction_Signature(t *testing.T) {
	tests := []struct {
		f    Function
		want string
	}{
		{NewFunction("logb", "x, base", "", Func2(func(a, b float64) (float64, error) { return 0, nil })), "LOGB(x, base)"},
		{NewFunction("pi", "", "", Func0(func() (float64, error) { return 0, nil })), "PI()"},
		{NewFunction("max", "x...", "", FuncN(func(...float64) (float64, error) { return 0, nil })), "MAX(x...)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.f.Signature(); got != tt.want {
				t.Errorf("Signature() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFunction_Call(t *testing.T) {
	sum := func(args ...float64) float64 {
		var s float64
		for _, a := range args {
			s += a
		}

		return s
	}

	funcs := []Function{
		NewFunction("f3", "", "", Func3(func(a, b, c float64) (float64, error) { return sum(a, b, c), nil })),
		NewFunction("f5", "", "", Func5(func(a, b, c, d, e float64) (float64, error) { return sum(a, b, c, d, e), nil })),
		NewFunction("f9", "", "", Func9(func(a, b, c, d, e, f, g, h, i float64) (float64, error) {
			return sum(a, b, c, d, e, f, g, h, i), nil
		})),
	}

	for _, f := range funcs {
		t.Run(f.Name, func(t *testing.T) {
			n := int(f.Arity())
			args := make([]float64, n)

			for i := range args {
				args[i] = float64(i + 1)
			}

			v, err := f.Call(args...)
			if err != nil {
				t.Fatalf("Call error: %v", err)
			}

			if want := float64(n * (n + 1) / 2); v != want {
				t.Errorf("Call = %v, want %v", v, want)
			}

			if _, err := f.Call(args[1:]...); !errors.Is(err, ErrArity) {
				t.Errorf("Call with %d args error = %v, want %v", n-1, err, ErrArity)
			}
		})
	}
}

func TestArity_String(t *testing.T) {
	if got := Arity(3).String(); got != "3" {
		t.Errorf("Arity(3) = %q", got)
	}

	if got := Variadic.String(); got != "variadic" {
		t.Errorf("Variadic = %q", got)
	}
}

func TestFactorial(t *testing.T) {
	tests := []struct {
		n    float64
		want float64
		err  error
	}{
		{n: 0, want: 1},
		{n: 1, want: 1},
		{n: 10, want: 3628800},
		{n: 20, want: 2432902008176640000},
		{n: 21, err: ErrOverflow},
		{n: -1, err: ErrFactorial},
		{n: 2.5, err: ErrFactorial},
		{n: math.NaN(), err: ErrFactorial},
		{n: math.Inf(1), err: ErrFactorial},
	}

	for _, tt := range tests {
		t.Run(FormatValue(tt.n), func(t *testing.T) {
			got, err := Factorial(tt.n)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Errorf("Factorial(%v) error = %v, want %v", tt.n, err, tt.err)
				}

				return
			}

			if err != nil || got != tt.want {
				t.Errorf("Factorial(%v) = %v, %v; want %v", tt.n, got, err, tt.want)
			}
		})
	}
}

func TestMod(t *testing.T) {
	tests := []struct {
		x, y float64
		want float64
	}{
		{-3, 5, 2},
		{3, -5, -2},
		{6, -3, 0},
		{-6, 3, 0},
		{7, 3, 1},
		{7, -1, 0},
		{-7, 1, 0},
	}

	for _, tt := range tests {
		if got := Mod(tt.x, tt.y); got != tt.want || math.Signbit(got) != math.Signbit(tt.want) {
			t.Errorf("Mod(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	for _, y := range []float64{0, math.Copysign(0, -1)} {
		if got := Mod(5, y); !math.IsNaN(got) {
			t.Errorf("Mod(5, %v) = %v, want NaN", y, got)
		}
	}

	for _, y := range []float64{5e-16, -5e-16, 1e-300} {
		if got := Mod(1, y); math.IsNaN(got) {
			t.Errorf("Mod(1, %v) = NaN, want a finite remainder", y)
		}
	}
}

func TestSignum(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{3, 1},
		{0, 1},
		{math.Copysign(0, -1), -1},
		{-2, -1},
		{math.Inf(-1), -1},
	}

	for _, tt := range tests {
		if got := Signum(tt.x); got != tt.want {
			t.Errorf("Signum(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}

	if got := Signum(math.NaN()); !math.IsNaN(got) {
		t.Errorf("Signum(NaN) = %v, want NaN", got)
	}
}

func TestMaxMin_IgnoreNaN(t *testing.T) {
	c := New()

	for input, want := range map[string]float64{
		"max(1, 0 / 0, 3)": 3,
		"min(1, 0 / 0, 3)": 1,
		"max(0 / 0, -2)":   -2,
	} {
		if got := mustEvaluate(t, c, input); got != want {
			t.Errorf("Evaluate(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestRandom_Ranges(t *testing.T) {
	c := New(WithRand(rand.New(rand.NewPCG(1, 2))))
	preview := EvaluateOptions{Preview: true}

	tests := []struct {
		input   string
		lo, hi  float64
		hiOpen  bool
		integer bool
	}{
		{input: "frand()", lo: 0, hi: 1, hiOpen: true},
		{input: "rfrand(-2, 2)", lo: -2, hi: 2, hiOpen: true},
		{input: "rfrandi(5, 6)", lo: 5, hi: 6},
		{input: "rfrandi(3, 3)", lo: 3, hi: 3},
		{input: "rrand(1, 4)", lo: 1, hi: 4, hiOpen: true, integer: true},
		{input: "rrand(0.5, 3.5)", lo: 1, hi: 3, hiOpen: true, integer: true},
		{input: "rrandi(1, 3)", lo: 1, hi: 3, integer: true},
		{input: "rrandi(-2, -2)", lo: -2, hi: -2, integer: true},
		{input: "rand()", lo: math.MinInt32, hi: math.MaxInt32, integer: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			for range 200 {
				v, _, err := c.EvaluateWithOptions(t.Context(), tt.input, preview)
				if err != nil {
					t.Fatalf("Evaluate(%q) error: %v", tt.input, err)
				}

				if v < tt.lo || v > tt.hi || (tt.hiOpen && v == tt.hi) {
					t.Fatalf("Evaluate(%q) = %v, out of range", tt.input, v)
				}

				if tt.integer && v != math.Trunc(v) {
					t.Fatalf("Evaluate(%q) = %v, want integer", tt.input, v)
				}
			}
		})
	}
}

func TestRandom_EmptyRange(t *testing.T) {
	for _, input := range []string{
		"rfrand(2, 2)",
		"rfrand(3, 1)",
		"rfrandi(3, 1)",
		"rrand(1.2, 1.8)",
		"rrand(2, 2)",
		"rrandi(1.2, 1.8)",
		"rrandi(0, 1e300)",
	} {
		_, _, err := New().Evaluate(t.Context(), input)
		if !errors.Is(err, ErrRandomRange) {
			t.Errorf("Evaluate(%q) error = %v, want %v", input, err, ErrRandomRange)
		}
	}
}

func TestRandom_Seeded(t *testing.T) {
	a := New(WithRand(rand.New(rand.NewPCG(7, 7))))
	b := New(WithRand(rand.New(rand.NewPCG(7, 7))))

	for range 10 {
		va := mustEvaluate(t, a, "rrandi(0, 1000000)")
		vb := mustEvaluate(t, b, "rrandi(0, 1000000)")

		if va != vb {
			t.Fatalf("same seed produced %v and %v", va, vb)
		}
	}
}
