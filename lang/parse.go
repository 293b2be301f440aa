package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/calc/log"
)

// Parse parses one expression from s.
//
// Leading and trailing whitespace is ignored, and empty input yields an
// [Expr] whose [Expr.IsNone] is true. A failure is always a [*ParseError]
// naming the lookahead index where the parse was abandoned.
func Parse(ctx context.Context, s string, opts ...Option) (Expr, error) {
	o := makeOptions(opts...)
	p := newParser(s, o)

	expr, err := p.parse()

	o.logger.TraceContext(ctx, "parse",
		slog.String("source", p.source),
		slog.Int("tokens", len(p.tokens)),
		slog.Int("lookahead", p.lah),
		slog.Bool("ok", err == nil),
	)

	return expr, err
}

// parser is a backtracking recursive-descent parser over grapheme clusters.
//
// Each production either succeeds and advances lah, returns errNoMatch after
// restoring lah to where it started, or returns a *ParseError that aborts the
// parse.
type parser struct {
	logger   log.Logger
	source   string
	tokens   []string
	lah      int
	depth    int
	maxDepth int
}

func newParser(s string, o options) *parser {
	source := strings.TrimSpace(s)

	return &parser{
		logger:   o.logger,
		source:   source,
		tokens:   graphemes(source),
		maxDepth: o.maxDepth,
	}
}

func isSoft(err error) bool { return errors.Is(err, errNoMatch) }

func (p *parser) parse() (Expr, error) {
	if len(p.tokens) == 0 {
		return Expr{}, nil
	}

	root, err := p.expr()

	switch {
	case err == nil && p.lah == len(p.tokens):
		return Expr{Root: root}, nil

	case err == nil || isSoft(err):
		return Expr{}, p.fail("unexpected token '%s'", p.peek())

	default:
		return Expr{}, err
	}
}

// peek returns the token at the lookahead index, or "" past the end.
func (p *parser) peek() string {
	if p.lah < len(p.tokens) {
		return p.tokens[p.lah]
	}

	return ""
}

// accept advances past the token at the lookahead index if it matches t.
func (p *parser) accept(t Terminal) bool {
	if p.lah < len(p.tokens) && t.Match(p.tokens[p.lah]) {
		p.lah++

		return true
	}

	return false
}

func (p *parser) skipSpace() {
	for p.accept(Whitespace) {
	}
}

// span returns the source text from token index from up to the lookahead.
func (p *parser) span(from int) string {
	return strings.Join(p.tokens[from:p.lah], "")
}

func (p *parser) fail(format string, args ...any) error {
	return &ParseError{
		Source: p.source,
		Msg:    fmt.Sprintf(format, args...),
		Pos:    p.lah,
	}
}

// enter guards the recursive productions against exhausting the stack.
func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		return p.fail("maximum nesting depth %d exceeded", p.maxDepth)
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

// expr := ws? functionChain ws?
func (p *parser) expr() (Node, error) {
	defer p.leave()

	if err := p.enter(); err != nil {
		return nil, err
	}

	start := p.lah

	p.skipSpace()

	n, err := p.functionChain()
	if err != nil {
		if isSoft(err) {
			p.lah = start
		}

		return nil, err
	}

	p.skipSpace()

	return n, nil
}

// functionChain := binaryChain(2) (ws? identifier ws? binaryChain(2))*
func (p *parser) functionChain() (Node, error) {
	first, err := p.binaryChain(2)
	if err != nil {
		return nil, err
	}

	var rest []FunctionLink

	for {
		mark := p.lah

		p.skipSpace()

		name, ok := p.identifier()
		if !ok {
			p.lah = mark

			break
		}

		p.skipSpace()

		operand, err := p.binaryChain(2)
		if err != nil {
			if isSoft(err) {
				return nil, p.fail("expected expression after function '%s'", name)
			}

			return nil, err
		}

		rest = append(rest, FunctionLink{Name: name, Operand: operand})
	}

	if len(rest) == 0 {
		return first, nil
	}

	return FunctionChain{First: first, Rest: rest}, nil
}

// binaryChain parses a left-associative chain of operators of the given
// priority tier (1 or 2) over operands of the next tighter tier.
func (p *parser) binaryChain(tier int) (Node, error) {
	operand := p.exponent
	if tier > 1 {
		operand = func() (Node, error) { return p.binaryChain(tier - 1) }
	}

	first, err := operand()
	if err != nil {
		return nil, err
	}

	var rest []BinaryLink

	for {
		mark := p.lah

		p.skipSpace()

		op, ok := p.binop(tier)
		if !ok {
			p.lah = mark

			break
		}

		p.skipSpace()

		rhs, err := operand()
		if err != nil {
			if isSoft(err) {
				return nil, p.fail("expected expression after operator '%s'", op)
			}

			return nil, err
		}

		rest = append(rest, BinaryLink{Op: op, Operand: rhs})
	}

	if len(rest) == 0 {
		return first, nil
	}

	return BinaryChain{First: first, Rest: rest}, nil
}

// exponent := base (ws? '^' ws? exponent)?
func (p *parser) exponent() (Node, error) {
	defer p.leave()

	if err := p.enter(); err != nil {
		return nil, err
	}

	first, err := p.base()
	if err != nil {
		return nil, err
	}

	mark := p.lah

	p.skipSpace()

	if !p.accept(Exp) {
		p.lah = mark

		return first, nil
	}

	p.skipSpace()

	rhs, err := p.exponent()
	if err != nil {
		if isSoft(err) {
			return nil, p.fail("expected expression after operator '%s'", OpExponent)
		}

		return nil, err
	}

	return BinaryChain{
		First: first,
		Rest:  []BinaryLink{{Op: OpExponent, Operand: rhs}},
	}, nil
}

func (p *parser) binop(tier int) (BinopInfix, bool) {
	for _, op := range BinopInfixes() {
		if op.Priority() == tier && p.accept(op.Terminal()) {
			return op, true
		}
	}

	return 0, false
}

// base := '-'* (number | access | function | group) '!'*
func (p *parser) base() (Node, error) {
	start := p.lah

	var prefix []UnopPrefix
	for p.accept(OpNegate.Terminal()) {
		prefix = append(prefix, OpNegate)
	}

	n, err := p.primary()
	if err != nil {
		if isSoft(err) {
			p.lah = start
		}

		return nil, err
	}

	var suffix []UnopSuffix
	for p.accept(OpFactorial.Terminal()) {
		suffix = append(suffix, OpFactorial)
	}

	if len(suffix) > 0 {
		n = UnarySuffix{Operand: n, Ops: suffix}
	}

	if len(prefix) > 0 {
		n = UnaryPrefix{Operand: n, Ops: prefix}
	}

	return n, nil
}

func (p *parser) primary() (Node, error) {
	for _, alt := range []func() (Node, error){
		p.number,
		p.access,
		p.function,
		p.group,
	} {
		n, err := alt()
		if err == nil || !isSoft(err) {
			return n, err
		}
	}

	return nil, errNoMatch
}

// number := digit+ ('.' digit+)?
func (p *parser) number() (Node, error) {
	start := p.lah

	for p.accept(Digit) {
	}

	if p.lah == start {
		return nil, errNoMatch
	}

	if p.accept(Radix) {
		frac := p.lah

		for p.accept(Digit) {
		}

		if p.lah == frac {
			return nil, p.fail("expected digit after '%s'", p.span(start))
		}
	}

	v, err := strconv.ParseFloat(p.span(start), 64)
	if err != nil {
		return nil, p.fail("number '%s' is out of range", p.span(start))
	}

	return Number{Value: v}, nil
}

// identifier := letter (letter | '_' | digit)*
func (p *parser) identifier() (string, bool) {
	start := p.lah

	if !p.accept(Letter) {
		return "", false
	}

	for p.accept(Letter) || p.accept(Underscore) || p.accept(Digit) {
	}

	return p.span(start), true
}

func isConstant(name string) bool {
	for _, c := range Constants() {
		if c.Match(name) {
			return true
		}
	}

	return false
}

// function := identifier (ws? '(' ws? (expr (',' expr)*)? ws? ')')?
//
// The parenthesized argument list may only be omitted for a reserved
// constant.
func (p *parser) function() (Node, error) {
	start := p.lah

	name, ok := p.identifier()
	if !ok {
		return nil, errNoMatch
	}

	end := p.lah

	p.skipSpace()

	if !p.accept(ParenOpen) {
		if isConstant(name) {
			p.lah = end

			return Func{Name: name, Kind: FuncConstant}, nil
		}

		p.lah = start

		return nil, errNoMatch
	}

	p.skipSpace()

	var args []Node

	for {
		arg, err := p.expr()
		if err != nil {
			if !isSoft(err) {
				return nil, err
			}

			if len(args) > 0 {
				return nil, p.fail("expected function argument after '%s(%s,'",
					name, joinNodes(args))
			}

			break
		}

		args = append(args, arg)

		if !p.accept(Delimiter) {
			break
		}
	}

	p.skipSpace()

	if !p.accept(ParenClose) {
		return nil, p.fail("expected closing parenthesis '%s' after '%s(%s'",
			ParenClose, name, joinNodes(args))
	}

	if len(args) == 0 {
		return Func{Name: name, Kind: FuncEmpty}, nil
	}

	return Func{Name: name, Args: args, Kind: FuncCall}, nil
}

func joinNodes(nodes []Node) string {
	s := make([]string, len(nodes))
	for i, n := range nodes {
		s[i] = n.String()
	}

	return strings.Join(s, ", ")
}

// access := '$' 'm'? digit+ (':' expr)?
//
// The store suffix is only valid for the memory form.
func (p *parser) access() (Node, error) {
	start := p.lah

	if !p.accept(Sigil) {
		return nil, errNoMatch
	}

	memory := p.accept(MemorySigil)
	digits := p.lah

	for p.accept(Digit) {
	}

	if p.lah == digits {
		if memory {
			return nil, p.fail("expected digit after memory access token '%s%s'",
				Sigil, MemorySigil)
		}

		return nil, p.fail("expected digit after history access token '%s'", Sigil)
	}

	index, err := strconv.Atoi(p.span(digits))
	if err != nil {
		return nil, p.fail("index '%s' is out of range", p.span(digits))
	}

	if !memory {
		return HistoryAccess{Index: index}, nil
	}

	if !p.accept(Store) {
		return MemoryAccess{Index: index}, nil
	}

	value, err := p.expr()
	if err != nil {
		if isSoft(err) {
			return nil, p.fail("expected expression after memory assignment '%s'",
				p.span(start))
		}

		return nil, err
	}

	return MemoryStore{Index: index, Value: value}, nil
}

// group := '(' expr ')' | '[' expr ']'
//
// Square brackets are the grouping emitted by canonical rendering. They group
// like parentheses but do not produce a [Parenthesized] node.
func (p *parser) group() (Node, error) {
	var (
		open, closer Terminal
		kind         string
		paren        bool
	)

	switch {
	case p.accept(ParenOpen):
		open, closer, kind, paren = ParenOpen, ParenClose, "parenthesis", true
	case p.accept(BracketOpen):
		open, closer, kind = BracketOpen, BracketClose, "bracket"
	default:
		return nil, errNoMatch
	}

	inner, err := p.expr()
	if err != nil {
		if isSoft(err) {
			return nil, p.fail("expected expression after opening %s '%s'", kind, open)
		}

		return nil, err
	}

	if !p.accept(closer) {
		return nil, p.fail("expected closing %s '%s' after expression '%s%s'",
			kind, closer, open, inner)
	}

	if paren {
		return Parenthesized{Inner: inner}, nil
	}

	return inner, nil
}
