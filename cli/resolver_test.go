package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func TestLoadYAML(t *testing.T) {
	const doc = `
log:
  level: debug
  pretty: false
log_format: json
depth: 12
ratio: 0.5
tags: [a, 1]
empty:
`

	r, err := loadYAML(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{flag: "log-level", want: "debug"},
		{flag: "log-pretty", want: false},
		{flag: "log_format", want: "json"},
		{flag: "depth", want: "12"},
		{flag: "ratio", want: "0.5"},
		{flag: "tags", want: "a,1"},
		{flag: "empty", want: nil},
		{flag: "missing", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			got, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: tt.flag}})
			if err != nil {
				t.Fatal(err)
			}

			if got != tt.want {
				t.Errorf("Resolve(%s) = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestLoadYAML_Empty(t *testing.T) {
	r, err := loadYAML(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}

	if got, _ := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: "x"}}); got != nil {
		t.Errorf("Resolve on empty config = %v", got)
	}
}

func TestLoadYAML_Invalid(t *testing.T) {
	if _, err := loadYAML(strings.NewReader("a: [1,\n")); err == nil {
		t.Error("invalid document accepted")
	}
}

func TestLoadYAML_Kong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	const doc = "name: from-config\ncount: 7\ntags:\n  - x\n  - y\nnested:\n  flag: true\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	var cli struct {
		Name       string
		Count      int
		Tags       []string
		NestedFlag bool
	}

	parser, err := kong.New(&cli, kong.Configuration(loadYAML, path))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse([]string{"--name=from-args"}); err != nil {
		t.Fatal(err)
	}

	if cli.Name != "from-args" || cli.Count != 7 || !cli.NestedFlag ||
		strings.Join(cli.Tags, ",") != "x,y" {
		t.Errorf("resolved %+v", cli)
	}
}

func TestScalar(t *testing.T) {
	tests := []struct {
		in   any
		want any
	}{
		{in: nil, want: nil},
		{in: true, want: true},
		{in: "s", want: "s"},
		{in: 3, want: "3"},
		{in: int64(-4), want: "-4"},
		{in: uint64(5), want: "5"},
		{in: 1.25, want: "1.25"},
		{in: []any{"a", 2, 3.5}, want: "a,2,3.5"},
	}

	for _, tt := range tests {
		if got := scalar(tt.in); got != tt.want {
			t.Errorf("scalar(%#v) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
