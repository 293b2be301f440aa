package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/calc/log"
	"github.com/ardnew/calc/pkg"
	"github.com/ardnew/calc/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a configuration file with current flag values.
type Init struct {
	Force  bool   `help:"Overwrite existing configuration file."                   short:"f"`
	Format string `default:"yaml" enum:"yaml,json" help:"Configuration file format."`
	Path   string `arg:"" help:"Output file (default: config.<format> in the configuration directory)." optional:"" type:"path"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	confPath := i.path(ctx)

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(pkg.ErrFileExists.Wrapf("use --force to overwrite"))
	}

	data, err := i.marshal(flagValues(ctx))
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(confPath), pkg.DirMode); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(pkg.ErrWriteOutput.Wrap(err))
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
		slog.String("format", i.Format),
	)

	return nil
}

// path returns the output file: the explicit argument, or the configured
// default with its extension replaced to match the format.
func (i *Init) path(ctx context.Context) string {
	if i.Path != "" {
		return i.Path
	}

	conf := variable(ctx, ConfigIdentifier, "config.yaml")

	return strings.TrimSuffix(conf, filepath.Ext(conf)) + "." + i.format()
}

func (i *Init) format() string {
	if i.Format == "" {
		return "yaml"
	}

	return i.Format
}

func (i *Init) marshal(values map[string]any) ([]byte, error) {
	if i.format() == "json" {
		data, err := json.MarshalIndent(values, "", strings.Repeat(" ", defaultConfigIndent))
		if err != nil {
			return nil, err
		}

		return append(data, '\n'), nil
	}

	return yaml.MarshalWithOptions(values, yaml.Indent(defaultConfigIndent))
}

// flagValues returns the current value of each application-level flag that
// belongs in a configuration file, keyed by flag name.
func flagValues(ctx context.Context) map[string]any {
	values := map[string]any{}

	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return values
	}

	ignore := []string{"help", "version", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := configValue(ktx, flag); ok {
			values[flag.Name] = v
		}
	}

	return values
}

// configValue returns the value of flag in a form both configuration
// loaders read back. Unset strings and empty lists are omitted.
func configValue(ktx *kong.Context, flag *kong.Flag) (any, bool) {
	switch v := ktx.FlagValue(flag).(type) {
	case nil:
		return nil, false

	case bool, int, int64, uint, uint64, float64:
		return v, true

	case string:
		return v, v != ""

	case []string:
		return v, len(v) > 0

	default:
		s := strings.TrimSpace(fmt.Sprint(v))

		return s, s != ""
	}
}
