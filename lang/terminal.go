package lang

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// Terminal is a member of the grammar's alphabet. It matches exactly one
// grapheme cluster, except for the reserved constant names which match a
// whole identifier.
type Terminal struct {
	name  string
	match func(string) bool
}

// Terminals of the expression grammar.
var (
	Epsilon      = Terminal{"epsilon", func(s string) bool { return s == "" }}
	Add          = literal("+")
	Sub          = literal("-")
	Mul          = literal("*")
	Div          = literal("/")
	Rem          = literal("%")
	Exp          = literal("^")
	Fac          = literal("!")
	ParenOpen    = literal("(")
	ParenClose   = literal(")")
	BracketOpen  = literal("[")
	BracketClose = literal("]")
	Delimiter    = literal(",")
	Store        = literal(":")
	Underscore   = literal("_")
	Radix        = literal(".")
	Sigil        = literal("$")
	MemorySigil  = literal("m")
	ConstPi      = constant("PI")
	ConstE       = constant("E")
	Digit        = Terminal{"digit", isDigit}
	Letter       = Terminal{"letter", isLetter}
	Whitespace   = Terminal{"whitespace", isWhitespace}
)

// Constants lists the reserved constant names that may be referenced without
// a parenthesized argument list.
func Constants() []Terminal { return []Terminal{ConstPi, ConstE} }

func literal(s string) Terminal {
	return Terminal{s, func(g string) bool { return g == s }}
}

func constant(s string) Terminal {
	return Terminal{s, func(g string) bool { return strings.EqualFold(g, s) }}
}

// Match reports whether g is a member of t.
func (t Terminal) Match(g string) bool {
	if t.match == nil {
		return false
	}

	return t.match(g)
}

// String returns the literal matched by t or the name of its class.
func (t Terminal) String() string { return t.name }

func isDigit(g string) bool {
	return len(g) == 1 && g[0] >= '0' && g[0] <= '9'
}

func isLetter(g string) bool {
	return len(g) == 1 && (g[0] >= 'a' && g[0] <= 'z' || g[0] >= 'A' && g[0] <= 'Z')
}

func isWhitespace(g string) bool {
	return g != "" && strings.TrimFunc(g, unicode.IsSpace) == ""
}

// graphemes splits s into its user-perceived characters.
func graphemes(s string) []string {
	tokens := make([]string, 0, len(s))

	g := uniseg.NewGraphemes(s)
	for g.Next() {
		tokens = append(tokens, g.Str())
	}

	return tokens
}
