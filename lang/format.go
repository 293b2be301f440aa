package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format selects the output encoding of [Expr.Format] and [State.Format].
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
)

// Formats returns an iterator over the names of all output formats.
func Formats() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, f := range []Format{FormatText, FormatJSON, FormatYAML} {
			if !yield(f.String()) {
				return
			}
		}
	}
}

// ParseFormat returns the Format named s, ignoring case.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText, true
	case "json":
		return FormatJSON, true
	case "yaml", "yml":
		return FormatYAML, true
	default:
		return FormatText, false
	}
}

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "format(" + strconv.Itoa(int(f)) + ")"
	}
}

// FormatValue renders v in the shortest form that parses back to v.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Format writes e to w. Text is the canonical rendering; JSON and YAML
// describe the tree produced by [Expr.ToMap].
func (e Expr) Format(ctx context.Context, w io.Writer, f Format, indent int) error {
	if f == FormatText {
		_, err := fmt.Fprintln(w, e.String())

		return err
	}

	return encode(ctx, w, f, indent, e.ToMap())
}

// Format writes s to w. The text form lists history most recent first and
// only the memory slots that are not zero.
func (s State) Format(ctx context.Context, w io.Writer, f Format, indent int) error {
	if f != FormatText {
		return encode(ctx, w, f, indent, s)
	}

	hist := make([]string, len(s.History))
	for i, v := range s.History {
		hist[i] = HistoryAccess{Index: i}.String() + "=" + FormatValue(v)
	}

	var mem []string

	for i, v := range s.Memory {
		if v != 0 {
			mem = append(mem, MemoryAccess{Index: i}.String()+"="+FormatValue(v))
		}
	}

	_, err := fmt.Fprintf(w, "history: %s\nmemory: %s\n",
		strings.Join(hist, " "), strings.Join(mem, " "))

	return err
}

// MarshalJSON encodes s with non-finite values as strings, which JSON
// numbers cannot represent.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Memory  []any `json:"memory"`
		History []any `json:"history"`
	}{jsonValues(s.Memory), jsonValues(s.History)})
}

func jsonValues(vs []float64) []any {
	out := make([]any, len(vs))

	for i, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = FormatValue(v)
		} else {
			out[i] = v
		}
	}

	return out
}

func encode(ctx context.Context, w io.Writer, f Format, indent int, v any) error {
	var (
		data []byte
		err  error
	)

	switch f {
	case FormatJSON:
		if indent > 0 {
			data, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
		} else {
			data, err = json.Marshal(v)
		}

		if err == nil {
			data = append(data, '\n')
		}

	case FormatYAML:
		var opts []yaml.EncodeOption
		if indent > 0 {
			opts = append(opts, yaml.Indent(indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err = yaml.MarshalContext(ctx, v, opts...)

	default:
		return fmt.Errorf("unsupported format %s", f)
	}

	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

// ToMap describes e as nested maps and slices suitable for encoding.
// Empty input yields nil.
func (e Expr) ToMap() map[string]any {
	if e.Root == nil {
		return nil
	}

	return nodeMap(e.Root)
}

func nodeMap(n Node) map[string]any {
	switch n := n.(type) {
	case Number:
		return map[string]any{"number": n.Value}

	case Func:
		switch n.Kind {
		case FuncConstant:
			return map[string]any{"constant": n.Name}
		case FuncEmpty:
			return map[string]any{"func": n.Name, "args": []any{}}
		}

		args := make([]any, len(n.Args))
		for i, arg := range n.Args {
			args[i] = nodeMap(arg)
		}

		return map[string]any{"func": n.Name, "args": args}

	case Identifier:
		return map[string]any{"identifier": n.Name}

	case UnaryPrefix:
		ops := make([]string, len(n.Ops))
		for i, op := range n.Ops {
			ops[i] = op.String()
		}

		return map[string]any{"prefix": ops, "operand": nodeMap(n.Operand)}

	case UnarySuffix:
		ops := make([]string, len(n.Ops))
		for i, op := range n.Ops {
			ops[i] = op.String()
		}

		return map[string]any{"suffix": ops, "operand": nodeMap(n.Operand)}

	case Parenthesized:
		return map[string]any{"group": nodeMap(n.Inner)}

	case BinaryChain:
		rest := make([]any, len(n.Rest))
		for i, link := range n.Rest {
			rest[i] = map[string]any{
				"op":      link.Op.String(),
				"operand": nodeMap(link.Operand),
			}
		}

		return map[string]any{"first": nodeMap(n.First), "rest": rest}

	case FunctionChain:
		rest := make([]any, len(n.Rest))
		for i, link := range n.Rest {
			rest[i] = map[string]any{
				"func":    link.Name,
				"operand": nodeMap(link.Operand),
			}
		}

		return map[string]any{"first": nodeMap(n.First), "rest": rest}

	case HistoryAccess:
		return map[string]any{"history": n.Index}

	case MemoryAccess:
		return map[string]any{"memory": n.Index}

	case MemoryStore:
		return map[string]any{"store": n.Index, "value": nodeMap(n.Value)}

	default:
		return map[string]any{"unknown": fmt.Sprintf("%T", n)}
	}
}
