package cmd

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/calc/pkg"
)

func TestEvalRun(t *testing.T) {
	tests := []struct {
		name    string
		eval    Eval
		want    string
		wantErr error
	}{
		{
			name: "sequence",
			eval: Eval{Exprs: []string{"1 + 2", "$0 * 2", "10 % 4"}},
			want: "3\n6\n2\n",
		},
		{
			name: "memory",
			eval: Eval{Exprs: []string{"$m1:5", "$m1 * $m1"}},
			want: "5\n25\n",
		},
		{
			name: "preview",
			eval: Eval{Preview: true, Exprs: []string{"$m1:5", "$m1 + 1"}},
			want: "5\n1\n",
		},
		{
			name: "report",
			eval: Eval{Report: `input + " = " + string(result)`, Exprs: []string{"2 ^ 3"}},
			want: "2 ^ 3 = 8\n",
		},
		{
			name: "report history",
			eval: Eval{Report: "history", Exprs: []string{"1", "2"}},
			want: "1\n2 1\n",
		},
		{
			name: "report float",
			eval: Eval{Report: "result / 4", Exprs: []string{"1"}},
			want: "0.25\n",
		},
		{
			name:    "report compile error",
			eval:    Eval{Report: "result +", Exprs: []string{"1"}},
			wantErr: pkg.ErrReport,
		},
		{
			name:    "evaluation error",
			eval:    Eval{Exprs: []string{"1", "1 +"}},
			want:    "1\n",
			wantErr: ErrEvaluate,
		},
		{
			name:    "bad state format",
			eval:    Eval{State: "xml", Exprs: []string{"1"}},
			wantErr: pkg.ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli struct{}

			ctx, out, _ := kongContext(t, &cli, kong.Vars{})

			err := tt.eval.Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
			}

			if got := out.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEvalRun_ParseErrorSnippet(t *testing.T) {
	var cli struct{}

	ctx, _, diag := kongContext(t, &cli, kong.Vars{})

	if err := (&Eval{Exprs: []string{"2 * (3"}}).Run(ctx); err == nil {
		t.Fatal("Run() succeeded")
	}

	if got := diag.String(); !strings.Contains(got, "2 * (3") || !strings.Contains(got, "^") {
		t.Errorf("stderr = %q", got)
	}
}

func TestEvalRun_State(t *testing.T) {
	var cli struct{}

	ctx, out, _ := kongContext(t, &cli, kong.Vars{})

	e := &Eval{State: "json", Exprs: []string{"$m0:7", "3"}}
	if err := e.Run(ctx); err != nil {
		t.Fatal(err)
	}

	results, state, _ := strings.Cut(out.String(), "3\n")
	if results != "7\n" {
		t.Errorf("results = %q", results)
	}

	var got struct {
		Memory  []float64 `json:"memory"`
		History []float64 `json:"history"`
	}

	if err := json.Unmarshal([]byte(state), &got); err != nil {
		t.Fatalf("state is not JSON: %v\n%s", err, state)
	}

	if len(got.History) != 2 || got.History[0] != 3 || got.History[1] != 7 {
		t.Errorf("history = %v", got.History)
	}

	if len(got.Memory) == 0 || got.Memory[0] != 7 {
		t.Errorf("memory = %v", got.Memory)
	}
}
