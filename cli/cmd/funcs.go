package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/calc/lang"
	"github.com/ardnew/calc/pkg"
)

// Funcs lists the builtin functions.
type Funcs struct {
	Pattern string `arg:"" help:"Only list functions fuzzy-matching the pattern." optional:""`
}

// Run executes the funcs command.
func (f *Funcs) Run(ctx context.Context) error {
	funcs := MatchFunctions(newCalculator().Registry(), f.Pattern)

	if err := WriteFunctions(stdout(ctx), funcs); err != nil {
		return pkg.ErrWriteOutput.Wrap(err)
	}

	return nil
}

// functions adapts a slice of [lang.Function] to [fuzzy.Source].
type functions []lang.Function

func (fs functions) String(i int) string { return fs[i].Name }
func (fs functions) Len() int            { return len(fs) }

// MatchFunctions returns the functions of r whose names fuzzy-match pattern,
// best match first. An empty pattern returns every function sorted by name.
func MatchFunctions(r *lang.Registry, pattern string) []lang.Function {
	all := functions(slices.Collect(r.All()))

	if pattern == "" {
		return all
	}

	matches := fuzzy.FindFrom(pattern, all)

	out := make([]lang.Function, len(matches))
	for i, m := range matches {
		out[i] = all[m.Index]
	}

	return out
}

// WriteFunctions writes one aligned line per function: its signature, arity,
// and description.
func WriteFunctions(w io.Writer, funcs []lang.Function) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, f := range funcs {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Signature(), f.Arity(), f.Doc); err != nil {
			return err
		}
	}

	return tw.Flush()
}
