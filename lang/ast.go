package lang

import (
	"strconv"
	"strings"
)

// Expr is the result of parsing one line of input.
// A nil Root represents empty input.
type Expr struct {
	Root Node
}

// IsNone reports whether e was parsed from empty input.
func (e Expr) IsNone() bool { return e.Root == nil }

// String returns the canonical rendering of e.
func (e Expr) String() string {
	if e.Root == nil {
		return ""
	}

	return e.Root.String()
}

// Node is an expression tree node. The set of implementations is closed:
// [Number], [Func], [Identifier], [UnaryPrefix], [UnarySuffix],
// [Parenthesized], [BinaryChain], [FunctionChain], [HistoryAccess],
// [MemoryAccess], and [MemoryStore].
//
// String renders the node in canonical form: single spaces around infix
// operators and square brackets around any operand that is not atomic.
type Node interface {
	String() string
	node()
}

// Number is a numeric literal.
type Number struct {
	Value float64
}

// FuncKind distinguishes the three forms of a function reference.
type FuncKind int

const (
	FuncCall     FuncKind = iota // name(args...)
	FuncEmpty                    // name()
	FuncConstant                 // name
)

// Func is a function call or a reference to a reserved constant.
type Func struct {
	Name string
	Args []Node
	Kind FuncKind
}

// Identifier is a bare name. The parser never produces it and the
// interpreter rejects it.
type Identifier struct {
	Name string
}

// UnaryPrefix applies prefix operators to its operand, innermost first.
type UnaryPrefix struct {
	Operand Node
	Ops     []UnopPrefix
}

// UnarySuffix applies suffix operators to its operand, left to right.
type UnarySuffix struct {
	Operand Node
	Ops     []UnopSuffix
}

// Parenthesized is a sub-expression enclosed in parentheses.
type Parenthesized struct {
	Inner Node
}

// BinaryLink is one operator and its right-hand operand in a [BinaryChain].
type BinaryLink struct {
	Operand Node
	Op      BinopInfix
}

// BinaryChain is a left fold of operators of a single priority tier.
// Rest is never empty.
type BinaryChain struct {
	First Node
	Rest  []BinaryLink
}

// FunctionLink is one named function and its right-hand operand in a
// [FunctionChain].
type FunctionLink struct {
	Operand Node
	Name    string
}

// FunctionChain is a left fold of named infix functions, such as
// "a mod b add c". Rest is never empty.
type FunctionChain struct {
	First Node
	Rest  []FunctionLink
}

// HistoryAccess reads a previous result. Index 0 is the most recent.
type HistoryAccess struct {
	Index int
}

// MemoryAccess reads a memory slot.
type MemoryAccess struct {
	Index int
}

// MemoryStore writes the value of an expression to a memory slot.
type MemoryStore struct {
	Value Node
	Index int
}

func (Number) node()        {}
func (Func) node()          {}
func (Identifier) node()    {}
func (UnaryPrefix) node()   {}
func (UnarySuffix) node()   {}
func (Parenthesized) node() {}
func (BinaryChain) node()   {}
func (FunctionChain) node() {}
func (HistoryAccess) node() {}
func (MemoryAccess) node()  {}
func (MemoryStore) node()   {}

// isAtomic reports whether n renders without enclosing brackets when it is
// the operand of an operator.
func isAtomic(n Node) bool {
	switch n.(type) {
	case Number, Func, Identifier, Parenthesized:
		return true
	default:
		return false
	}
}

func subexpr(n Node) string {
	if isAtomic(n) {
		return n.String()
	}

	return "[" + n.String() + "]"
}

func (n Number) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

func (n Func) String() string {
	switch n.Kind {
	case FuncConstant:
		return n.Name
	case FuncEmpty:
		return n.Name + "()"
	}

	args := make([]string, len(n.Args))
	for i, arg := range n.Args {
		args[i] = arg.String()
	}

	return n.Name + "(" + strings.Join(args, ", ") + ")"
}

func (n Identifier) String() string { return n.Name }

func (n UnaryPrefix) String() string {
	var sb strings.Builder

	for _, op := range n.Ops {
		sb.WriteString(op.String())
	}

	sb.WriteString(subexpr(n.Operand))

	return sb.String()
}

func (n UnarySuffix) String() string {
	var sb strings.Builder

	sb.WriteString(subexpr(n.Operand))

	for _, op := range n.Ops {
		sb.WriteString(op.String())
	}

	return sb.String()
}

func (n Parenthesized) String() string { return subexpr(n.Inner) }

func (n BinaryChain) String() string {
	var sb strings.Builder

	sb.WriteString(subexpr(n.First))

	for _, link := range n.Rest {
		sb.WriteString(" " + link.Op.String() + " ")
		sb.WriteString(subexpr(link.Operand))
	}

	return sb.String()
}

func (n FunctionChain) String() string {
	var sb strings.Builder

	sb.WriteString(subexpr(n.First))

	for _, link := range n.Rest {
		sb.WriteString(" " + link.Name + " ")
		sb.WriteString(subexpr(link.Operand))
	}

	return sb.String()
}

func (n HistoryAccess) String() string {
	return Sigil.String() + strconv.Itoa(n.Index)
}

func (n MemoryAccess) String() string {
	return Sigil.String() + MemorySigil.String() + strconv.Itoa(n.Index)
}

func (n MemoryStore) String() string {
	return MemoryAccess{Index: n.Index}.String() + Store.String() +
		subexpr(n.Value)
}

// BinopInfix is an infix arithmetic operator.
type BinopInfix int

const (
	OpExponent BinopInfix = iota
	OpMultiply
	OpDivide
	OpRemainder
	OpAdd
	OpSubtract
)

// BinopInfixes returns every infix operator in declaration order.
func BinopInfixes() []BinopInfix {
	return []BinopInfix{
		OpExponent, OpMultiply, OpDivide, OpRemainder, OpAdd, OpSubtract,
	}
}

// Terminal returns the terminal symbol of op.
func (op BinopInfix) Terminal() Terminal {
	switch op {
	case OpExponent:
		return Exp
	case OpMultiply:
		return Mul
	case OpDivide:
		return Div
	case OpRemainder:
		return Rem
	case OpAdd:
		return Add
	case OpSubtract:
		return Sub
	default:
		return Epsilon
	}
}

// String returns the symbol of op.
func (op BinopInfix) String() string { return op.Terminal().String() }

// Priority returns the binding tier of op. Lower tiers bind tighter.
func (op BinopInfix) Priority() int {
	switch op {
	case OpExponent:
		return 0
	case OpMultiply, OpDivide, OpRemainder:
		return 1
	default:
		return 2
	}
}

// UnopPrefix is a prefix operator.
type UnopPrefix int

const (
	OpNegate UnopPrefix = iota
)

// Terminal returns the terminal symbol of op.
func (op UnopPrefix) Terminal() Terminal {
	if op == OpNegate {
		return Sub
	}

	return Epsilon
}

func (op UnopPrefix) String() string { return op.Terminal().String() }

// UnopSuffix is a suffix operator.
type UnopSuffix int

const (
	OpFactorial UnopSuffix = iota
)

// Terminal returns the terminal symbol of op.
func (op UnopSuffix) Terminal() Terminal {
	if op == OpFactorial {
		return Fac
	}

	return Epsilon
}

func (op UnopSuffix) String() string { return op.Terminal().String() }
