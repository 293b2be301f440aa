package lang

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"text", FormatText, true},
		{"JSON", FormatJSON, true},
		{"yaml", FormatYAML, true},
		{"yml", FormatYAML, true},
		{" Yaml ", FormatYAML, true},
		{"toml", FormatText, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFormat(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseFormat(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}

	var names []string
	for name := range Formats() {
		names = append(names, name)
	}

	if got := strings.Join(names, ","); got != "text,json,yaml" {
		t.Errorf("Formats() = %s", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{120, "120"},
		{0.1, "0.1"},
		{-2.5, "-2.5"},
		{1e21, "1e+21"},
		{math.NaN(), "NaN"},
		{math.Inf(-1), "-Inf"},
	}

	for _, tt := range tests {
		if got := FormatValue(tt.v); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestExpr_Format(t *testing.T) {
	expr, err := Parse(t.Context(), "1 + 2")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	tests := []struct {
		format Format
		indent int
		want   string
	}{
		{FormatText, 0, "1 + 2\n"},
		{FormatJSON, 0, `{"first":{"number":1},"rest":[{"op":"+","operand":{"number":2}}]}` + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := expr.Format(t.Context(), &buf, tt.format, tt.indent); err != nil {
				t.Fatalf("Format error: %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Format = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpr_FormatYAML(t *testing.T) {
	expr, err := Parse(t.Context(), "$m1:max(2, pi)!")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	var buf bytes.Buffer
	if err := expr.Format(t.Context(), &buf, FormatYAML, 2); err != nil {
		t.Fatalf("Format error: %v", err)
	}

	for _, want := range []string{"store: 1", "suffix:", "func: max", "constant: pi"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("YAML missing %q:\n%s", want, buf.String())
		}
	}
}

func TestExpr_ToMap(t *testing.T) {
	if m := (Expr{}).ToMap(); m != nil {
		t.Errorf("ToMap of empty expression = %v, want nil", m)
	}

	expr, err := Parse(t.Context(), "-(1) mod frand()")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	m := expr.ToMap()

	rest, ok := m["rest"].([]any)
	if !ok || len(rest) != 1 {
		t.Fatalf("rest = %v", m["rest"])
	}

	link, _ := rest[0].(map[string]any)
	if link["func"] != "mod" {
		t.Errorf("link func = %v, want mod", link["func"])
	}

	first, _ := m["first"].(map[string]any)
	if _, ok := first["prefix"]; !ok {
		t.Errorf("first = %v, want prefix node", first)
	}
}

func TestState_Format(t *testing.T) {
	state := State{
		Memory:  []float64{0, 0, 0, 2.5},
		History: []float64{6, 5},
	}

	var buf bytes.Buffer
	if err := state.Format(t.Context(), &buf, FormatText, 0); err != nil {
		t.Fatalf("Format error: %v", err)
	}

	if want := "history: $0=6 $1=5\nmemory: $m3=2.5\n"; buf.String() != want {
		t.Errorf("text = %q, want %q", buf.String(), want)
	}

	buf.Reset()

	if err := state.Format(t.Context(), &buf, FormatYAML, 2); err != nil {
		t.Fatalf("Format error: %v", err)
	}

	for _, want := range []string{"memory:", "history:", "2.5"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("YAML missing %q:\n%s", want, buf.String())
		}
	}
}

func TestState_MarshalJSON(t *testing.T) {
	state := State{
		Memory:  []float64{math.NaN(), 1},
		History: []float64{math.Inf(1)},
	}

	var buf bytes.Buffer
	if err := state.Format(t.Context(), &buf, FormatJSON, 0); err != nil {
		t.Fatalf("Format error: %v", err)
	}

	want := `{"memory":["NaN",1],"history":["+Inf"]}` + "\n"
	if buf.String() != want {
		t.Errorf("JSON = %q, want %q", buf.String(), want)
	}
}
