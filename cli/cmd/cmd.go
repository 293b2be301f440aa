package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/calc/lang"
	"github.com/ardnew/calc/log"
	"github.com/ardnew/calc/pkg"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the writer for command output.
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stderr returns the writer for diagnostics that accompany an error.
func stderr(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stderr != nil {
		return ktx.Stderr
	}

	return os.Stderr
}

// variable returns the kong variable named id, or fallback when it is
// undefined.
func variable(ctx context.Context, id, fallback string) string {
	if ktx := kongContextFrom(ctx); ktx != nil {
		if v, ok := ktx.Model.Vars()[id]; ok {
			return v
		}
	}

	return fallback
}

// newCalculator returns a Calculator logging through the default logger.
func newCalculator(opts ...lang.Option) *lang.Calculator {
	logger := log.With(slog.String("component", "lang"))

	return lang.New(append([]lang.Option{lang.WithLogger(logger)}, opts...)...)
}

// stateFormat parses the value of a --state flag. The zero result and false
// mean no state output.
func stateFormat(name string) (lang.Format, bool, error) {
	if name == "" || name == "none" {
		return 0, false, nil
	}

	f, ok := lang.ParseFormat(name)
	if !ok {
		return 0, false, pkg.ErrInvalidFormat.Wrapf("%q", name)
	}

	return f, true, nil
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinName is the name reported for input read from stdin.
const stdinName = "<stdin>"

// source is one opened input of [openSources].
type source struct {
	io.ReadCloser

	name string
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens the named inputs in order. An empty list or "-" reads
// stdin. Each file, including stdin, is opened once: later names resolving
// to an already opened device/inode pair are skipped. On error every opened
// source is closed.
func openSources(names []string) (srcs []source, err error) {
	if len(names) == 0 {
		names = []string{stdinSource}
	}

	defer func() {
		if err != nil {
			closeSources(srcs)
			srcs = nil
		}
	}()

	seen := make(map[fileKey]struct{})

	for _, name := range names {
		if name == stdinSource {
			if !markStdin(seen) {
				continue
			}

			srcs = append(srcs, source{ReadCloser: io.NopCloser(os.Stdin), name: stdinName})

			continue
		}

		src, ok, err := openUniqueFile(name, seen)
		if err != nil {
			return srcs, pkg.ErrReadInput.Wrap(err)
		}

		if ok {
			srcs = append(srcs, src)
		}
	}

	return srcs, nil
}

// markStdin records stdin in seen, reporting whether it was not yet read.
func markStdin(seen map[fileKey]struct{}) bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return true
	}

	key, ok := makeFileKey(info)
	if !ok {
		return true
	}

	if _, dup := seen[key]; dup {
		return false
	}

	seen[key] = struct{}{}

	return true
}

func closeSources(srcs []source) {
	for _, src := range srcs {
		_ = src.Close()
	}
}

// openUniqueFile opens the file at path unless its device/inode pair is
// already in seen. Symlinks are resolved first.
func openUniqueFile(
	path string,
	seen map[fileKey]struct{},
) (source, bool, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return source{}, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return source{}, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, dup := seen[key]; dup {
			return source{}, false, nil
		}

		seen[key] = struct{}{}
	}

	file, err := os.Open(resolved)
	if err != nil {
		return source{}, false, err
	}

	return source{ReadCloser: file, name: path}, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
