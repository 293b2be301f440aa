package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// loadYAML is a [kong.ConfigurationLoader] for YAML configuration files.
//
// Keys name flags without the leading dashes. Hyphens and underscores are
// interchangeable, and nested mappings join their keys with a hyphen, so the
// following documents are equivalent:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
//
// Command-line flags override configuration values.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return config{}, nil
		}

		return nil, err
	}

	cfg := config{}
	cfg.flatten("", doc)

	return cfg, nil
}

// config implements [kong.Resolver] over a flat map of flag names.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[normalizeKey(flag.Name)]; ok {
		return value, nil
	}

	return nil, nil
}

// flatten copies the entries of m into c, joining nested keys with a hyphen.
func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		key = normalizeKey(key)
		if prefix != "" {
			key = prefix + "-" + key
		}

		switch v := value.(type) {
		case map[string]any:
			c.flatten(key, v)
		default:
			c[key] = scalar(v)
		}
	}
}

// normalizeKey returns name with underscores replaced by hyphens.
func normalizeKey(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "_", "-")
}

// scalar converts a decoded YAML value to the form Kong parses: numbers as
// strings and sequences as comma-separated lists.
func scalar(v any) any {
	switch v := v.(type) {
	case nil, bool, string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprint(scalar(item))
		}

		return strings.Join(items, ",")
	default:
		return fmt.Sprint(v)
	}
}
