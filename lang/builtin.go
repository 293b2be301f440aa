package lang

import (
	"math"
	"math/bits"
	"math/rand/v2"
)

// Builtins returns the builtin function table. The random family draws from
// r, or from the global source when r is nil.
func Builtins(r *rand.Rand) []Function {
	rng := randSource{r}

	return []Function{
		NewFunction("ADD", "x...", "sum of all arguments", reduce(add)),
		NewFunction("SUB", "x...", "first argument minus the rest", reduce(sub)),
		NewFunction("MULT", "x...", "product of all arguments", reduce(mul)),
		NewFunction("DIV", "x...", "first argument divided by the rest", reduce(div)),
		NewFunction("REM", "x...", "remainder of successive divisions", reduce(math.Mod)),
		NewFunction("MAX", "x...", "largest argument", reduce(fmax)),
		NewFunction("MIN", "x...", "smallest argument", reduce(fmin)),

		NewFunction("NEG", "x", "negation", pure1(func(x float64) float64 { return -x })),
		NewFunction("FAC", "n", "factorial of a non-negative integer", Func1(Factorial)),
		NewFunction("MOD", "x, y", "x modulo y, with the sign of y", pure2(Mod)),
		NewFunction("POW", "x, y", "x raised to the power y", pure2(math.Pow)),
		NewFunction("COND", "a, b, t, f", "t if a equals b, else f", Func4(cond)),

		NewFunction("ABS", "x", "absolute value", pure1(math.Abs)),
		NewFunction("SIGN", "x", "sign of x as 1 or -1", pure1(Signum)),
		NewFunction("CEIL", "x", "least integer not less than x", pure1(math.Ceil)),
		NewFunction("FLOOR", "x", "greatest integer not greater than x", pure1(math.Floor)),
		NewFunction("ROUND", "x", "nearest integer, halves away from zero", pure1(math.Round)),
		NewFunction("FRACT", "x", "fractional part of x", pure1(fract)),
		NewFunction("SQRT", "x", "square root", pure1(math.Sqrt)),
		NewFunction("EXP", "x", "e raised to the power x", pure1(math.Exp)),
		NewFunction("EXP2", "x", "2 raised to the power x", pure1(math.Exp2)),

		NewFunction("SIN", "x", "sine", pure1(math.Sin)),
		NewFunction("COS", "x", "cosine", pure1(math.Cos)),
		NewFunction("TAN", "x", "tangent", pure1(math.Tan)),
		NewFunction("ASIN", "x", "inverse sine", pure1(math.Asin)),
		NewFunction("ACOS", "x", "inverse cosine", pure1(math.Acos)),
		NewFunction("ATAN", "x", "inverse tangent", pure1(math.Atan)),
		NewFunction("CSC", "x", "cosecant", pure1(func(x float64) float64 { return 1 / math.Sin(x) })),
		NewFunction("SEC", "x", "secant", pure1(func(x float64) float64 { return 1 / math.Cos(x) })),
		NewFunction("COT", "x", "cotangent", pure1(func(x float64) float64 { return 1 / math.Tan(x) })),
		NewFunction("ACSC", "x", "inverse cosecant", pure1(func(x float64) float64 { return math.Asin(1 / x) })),
		NewFunction("ASEC", "x", "inverse secant", pure1(func(x float64) float64 { return math.Acos(1 / x) })),
		NewFunction("ACOT", "x", "inverse cotangent", pure1(func(x float64) float64 { return math.Atan(1 / x) })),
		NewFunction("SINH", "x", "hyperbolic sine", pure1(math.Sinh)),
		NewFunction("COSH", "x", "hyperbolic cosine", pure1(math.Cosh)),
		NewFunction("TANH", "x", "hyperbolic tangent", pure1(math.Tanh)),
		NewFunction("ASINH", "x", "inverse hyperbolic sine", pure1(math.Asinh)),
		NewFunction("ACOSH", "x", "inverse hyperbolic cosine", pure1(math.Acosh)),
		NewFunction("ATANH", "x", "inverse hyperbolic tangent", pure1(math.Atanh)),

		NewFunction("LOG", "x", "base-10 logarithm", pure1(math.Log10)),
		NewFunction("LOG2", "x", "base-2 logarithm", pure1(math.Log2)),
		NewFunction("LN", "x", "natural logarithm", pure1(math.Log)),
		NewFunction("LOGB", "x, base", "logarithm of x in the given base",
			pure2(func(x, base float64) float64 { return math.Log(x) / math.Log(base) })),

		NewFunction("FRAND", "", "random float in [0, 1)", Func0(rng.frand)),
		NewFunction("RFRAND", "lo, hi", "random float in [lo, hi)", Func2(rng.rfrand)),
		NewFunction("RFRANDI", "lo, hi", "random float in [lo, hi]", Func2(rng.rfrandi)),
		NewFunction("RAND", "", "random integer", Func0(rng.rand)),
		NewFunction("RRAND", "lo, hi", "random integer in [ceil lo, floor hi)", Func2(rng.rrand)),
		NewFunction("RRANDI", "lo, hi", "random integer in [ceil lo, floor hi]", Func2(rng.rrandi)),

		NewFunction(ConstE.String(), "", "Euler's number", constant0(math.E)),
		NewFunction(ConstPi.String(), "", "ratio of circumference to diameter", constant0(math.Pi)),
	}
}

func pure1(fn func(float64) float64) Func1 {
	return func(a float64) (float64, error) { return fn(a), nil }
}

func pure2(fn func(float64, float64) float64) Func2 {
	return func(a, b float64) (float64, error) { return fn(a, b), nil }
}

func constant0(v float64) Func0 {
	return func() (float64, error) { return v, nil }
}

// reduce folds fn over its arguments from the left. No arguments yields 0.
func reduce(fn func(float64, float64) float64) FuncN {
	return func(args ...float64) (float64, error) {
		if len(args) == 0 {
			return 0, nil
		}

		acc := args[0]
		for _, x := range args[1:] {
			acc = fn(acc, x)
		}

		return acc, nil
	}
}

func add(a, b float64) float64 { return a + b }
func sub(a, b float64) float64 { return a - b }
func mul(a, b float64) float64 { return a * b }
func div(a, b float64) float64 { return a / b }

// fmax returns the larger of a and b, ignoring a NaN operand.
func fmax(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}

	return math.Max(a, b)
}

// fmin returns the smaller of a and b, ignoring a NaN operand.
func fmin(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}

	return math.Min(a, b)
}

func fract(x float64) float64 { return x - math.Trunc(x) }

func cond(a, b, t, f float64) (float64, error) {
	if a == b {
		return t, nil
	}

	return f, nil
}

// Signum returns 1 for positive values and +0, -1 for negative values and
// -0, and NaN for NaN.
func Signum(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}

	return math.Copysign(1, x)
}

// Factorial returns n! for integral n >= 0. Products that do not fit in an
// int64 are reported as [ErrOverflow].
func Factorial(n float64) (float64, error) {
	switch {
	case n < 0:
		return 0, ErrFactorial.Wrapf("negative value %g", n)
	case math.IsNaN(n) || math.IsInf(n, 0):
		return 0, ErrFactorial.Wrapf("non-finite value %g", n)
	case n != math.Round(n):
		return 0, ErrFactorial.Wrapf("floating point value %g", n)
	}

	var acc uint64 = 1

	for i := uint64(2); float64(i) <= n; i++ {
		hi, lo := bits.Mul64(acc, i)
		if hi != 0 || lo > math.MaxInt64 {
			return 0, ErrOverflow.Wrapf("%g!", n)
		}

		acc = lo
	}

	return float64(acc), nil
}

// Mod returns x modulo y with the sign of y. A divisor of zero yields NaN,
// and a result congruent to zero is exactly 0.
func Mod(x, y float64) float64 {
	if y == 0 {
		return math.NaN()
	}

	if x == math.Trunc(x) && y == -1 {
		return 0
	}

	r := math.Mod(x, y)

	switch {
	case r == 0:
		return 0
	case math.Signbit(r) == math.Signbit(y):
		return r
	default:
		return r + y
	}
}

// randSource draws from r, or from the global source when r is nil.
type randSource struct {
	r *rand.Rand
}

func (s randSource) float64() float64 {
	if s.r == nil {
		return rand.Float64()
	}

	return s.r.Float64()
}

func (s randSource) uint64n(n uint64) uint64 {
	if s.r == nil {
		return rand.Uint64N(n)
	}

	return s.r.Uint64N(n)
}

func (s randSource) uint32() uint32 {
	if s.r == nil {
		return rand.Uint32()
	}

	return s.r.Uint32()
}

func (s randSource) frand() (float64, error) { return s.float64(), nil }

func (s randSource) rand() (float64, error) {
	return float64(int32(s.uint32())), nil
}

func (s randSource) rfrand(lo, hi float64) (float64, error) {
	if !(lo < hi) {
		return 0, ErrRandomRange.Wrapf("[%g, %g)", lo, hi)
	}

	v := lo + (hi-lo)*s.float64()
	if v >= hi {
		v = math.Nextafter(hi, lo)
	}

	return v, nil
}

func (s randSource) rfrandi(lo, hi float64) (float64, error) {
	if !(lo <= hi) {
		return 0, ErrRandomRange.Wrapf("[%g, %g]", lo, hi)
	}

	const steps = 1 << 53

	u := float64(s.uint64n(steps+1)) / steps

	return min(hi, lo+(hi-lo)*u), nil
}

func (s randSource) rrand(lo, hi float64) (float64, error) {
	a, b := math.Ceil(lo), math.Floor(hi)
	if !(a < b) {
		return 0, ErrRandomRange.Wrapf("[%g, %g)", a, b)
	}

	return s.intn(a, b-a)
}

func (s randSource) rrandi(lo, hi float64) (float64, error) {
	a, b := math.Ceil(lo), math.Floor(hi)
	if !(a <= b) {
		return 0, ErrRandomRange.Wrapf("[%g, %g]", a, b)
	}

	return s.intn(a, b-a+1)
}

// intn returns base plus a uniform integer in [0, n).
func (s randSource) intn(base, n float64) (float64, error) {
	if !(n >= 1 && n <= 1<<62) {
		return 0, ErrRandomRange.Wrapf("span %g is too large", n)
	}

	return base + float64(s.uint64n(uint64(n))), nil
}
