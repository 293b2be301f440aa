package lang

// Each of the functions below parses exactly one production from the whole
// of its input. Callers use them to classify short fragments, for example to
// decide whether a keystroke continues the previous result.

// ParseBinopInfix parses a single infix operator.
func ParseBinopInfix(s string) (BinopInfix, error) {
	return parseOnly(s, "infix operator", func(p *parser) (BinopInfix, error) {
		for _, op := range BinopInfixes() {
			if p.accept(op.Terminal()) {
				return op, nil
			}
		}

		return 0, errNoMatch
	})
}

// ParseUnopPrefix parses a single prefix operator.
func ParseUnopPrefix(s string) (UnopPrefix, error) {
	return parseOnly(s, "prefix operator", func(p *parser) (UnopPrefix, error) {
		if p.accept(OpNegate.Terminal()) {
			return OpNegate, nil
		}

		return 0, errNoMatch
	})
}

// ParseUnopSuffix parses a single suffix operator.
func ParseUnopSuffix(s string) (UnopSuffix, error) {
	return parseOnly(s, "suffix operator", func(p *parser) (UnopSuffix, error) {
		if p.accept(OpFactorial.Terminal()) {
			return OpFactorial, nil
		}

		return 0, errNoMatch
	})
}

// ParseIdentifier parses a single identifier.
func ParseIdentifier(s string) (Identifier, error) {
	return parseOnly(s, "identifier", func(p *parser) (Identifier, error) {
		name, ok := p.identifier()
		if !ok {
			return Identifier{}, errNoMatch
		}

		return Identifier{Name: name}, nil
	})
}

// ParseFunc parses a single function call or constant.
func ParseFunc(s string) (Func, error) {
	return parseOnly(s, "function", func(p *parser) (Func, error) {
		n, err := p.function()
		if err != nil {
			return Func{}, err
		}

		return n.(Func), nil
	})
}

// ParseNumber parses a single numeric literal.
func ParseNumber(s string) (Number, error) {
	return parseOnly(s, "number", func(p *parser) (Number, error) {
		n, err := p.number()
		if err != nil {
			return Number{}, err
		}

		return n.(Number), nil
	})
}

// ParseHistory parses a single history access such as "$1".
func ParseHistory(s string) (HistoryAccess, error) {
	return parseOnly(s, "history access", func(p *parser) (HistoryAccess, error) {
		n, err := p.access()
		if err != nil {
			return HistoryAccess{}, err
		}

		if h, ok := n.(HistoryAccess); ok {
			return h, nil
		}

		return HistoryAccess{}, errNoMatch
	})
}

// ParseMemory parses a single memory access or store, such as "$m1" or
// "$m1:2+3". The result is a [MemoryAccess] or a [MemoryStore].
func ParseMemory(s string) (Node, error) {
	return parseOnly(s, "memory access", func(p *parser) (Node, error) {
		n, err := p.access()
		if err != nil {
			return nil, err
		}

		switch n.(type) {
		case MemoryAccess, MemoryStore:
			return n, nil
		default:
			return nil, errNoMatch
		}
	})
}

// parseOnly runs match over the trimmed input s and requires it to consume
// every token.
func parseOnly[T any](s, what string, match func(*parser) (T, error)) (T, error) {
	var zero T

	p := newParser(s, makeOptions())
	if len(p.tokens) == 0 {
		return zero, &ParseError{Source: p.source, Msg: ErrEmptyInput.Error()}
	}

	v, err := match(p)

	switch {
	case err == nil && p.lah == len(p.tokens):
		return v, nil

	case err == nil:
		return zero, p.fail("unexpected token '%s' after %s", p.peek(), what)

	case isSoft(err):
		p.lah = 0

		return zero, p.fail("expected %s", what)

	default:
		return zero, err
	}
}
