package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/calc/pkg"
)

// initCLI stands in for the application flags written by init.
type initCLI struct {
	LogLevel  string   `default:"warn"  name:"log-level"`
	LogPretty bool     `default:"true"  name:"log-pretty"`
	Depth     int      `default:"1024"`
	Tags      []string `name:"tags"`
	Secret    string   `default:"x"     hidden:""`
	PprofMode string   `default:"cpu"   name:"pprof-mode"`
}

func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		file    string
		decode  func([]byte, any) error
		args    []string
		want    map[string]string
		wantOut string
	}{
		{
			name:   "yaml",
			format: "yaml",
			file:   "config.yaml",
			decode: yaml.Unmarshal,
			want:   map[string]string{"log-level": "warn", "log-pretty": "true", "depth": "1024"},
		},
		{
			name:   "json",
			format: "json",
			file:   "config.json",
			decode: json.Unmarshal,
			args:   []string{"--log-level=debug", "--tags=a,b"},
			want: map[string]string{
				"log-level": "debug", "log-pretty": "true", "depth": "1024", "tags": "[a b]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "calc")

			var cli initCLI

			ctx, _, _ := kongContext(t, &cli,
				kong.Vars{ConfigIdentifier: filepath.Join(dir, "config.yaml")}, tt.args...)

			if err := (&Init{Format: tt.format}).Run(ctx); err != nil {
				t.Fatal(err)
			}

			data, err := os.ReadFile(filepath.Join(dir, tt.file))
			if err != nil {
				t.Fatal(err)
			}

			var values map[string]any
			if err := tt.decode(data, &values); err != nil {
				t.Fatalf("decode: %v\n%s", err, data)
			}

			got := make(map[string]string, len(values))
			for k, v := range values {
				got[k] = fmt.Sprint(v)
			}

			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("values = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitRun_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("old: true\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var cli initCLI

	ctx, _, _ := kongContext(t, &cli, kong.Vars{})

	err := (&Init{Path: path}).Run(ctx)
	if !errors.Is(err, ErrWriteConfig) || !errors.Is(err, pkg.ErrFileExists) {
		t.Fatalf("error = %v, want %v wrapping %v", err, ErrWriteConfig, pkg.ErrFileExists)
	}

	if err := (&Init{Path: path, Force: true}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		t.Fatal(err)
	}

	if _, ok := values["old"]; ok || values["log-level"] != "warn" {
		t.Errorf("file not overwritten: %v", values)
	}
}
