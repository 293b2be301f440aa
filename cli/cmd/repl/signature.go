package repl

import (
	"strings"

	"github.com/ardnew/calc/lang"
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // function name as typed
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall reports whether the cursor is inside the argument list
// of a named call, and which argument it is in.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	// Find the innermost unclosed '(' before the cursor. All delimiters are
	// ASCII, so scanning bytes is safe.
	depth, open := 0, -1

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			} else {
				depth--
			}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	_, start, _ := wordBounds(input[:open], open, false)

	name := input[start:open]
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return functionCall{}
	}

	// Count commas at depth 0 between the '(' and the cursor. Brackets
	// group like parentheses.
	argIndex := 0
	depth = 0

	for i := open + 1; i < cursor; i++ {
		switch input[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{name: name, argIndex: argIndex, inCall: true}
}

// lookupSignature returns the registered name and the parameter names of
// the function name in r.
func lookupSignature(r *lang.Registry, name string) (string, []string, bool) {
	f, ok := r.Lookup(name)
	if !ok {
		return "", nil, false
	}

	var params []string
	if f.Params != "" {
		params = strings.Split(f.Params, ", ")
	}

	return f.Name, params, true
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted. A variadic parameter, written with a "..."
// suffix, stays highlighted for every later argument.
func renderSignatureHint(name string, params []string, currentArgIdx int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		variadic := strings.HasSuffix(param, "...")

		if currentArgIdx == i || variadic && currentArgIdx >= i {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
