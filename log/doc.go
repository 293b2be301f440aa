// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are values configured with functional options when created. The
// zero Logger is valid and discards every message, so components may hold
// one unconditionally.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("RFC3339"))
//	logger.Info("evaluated", slog.String("input", "1 + 2"))
//
// The package-level functions write to a default logger on stderr, which
// [Config] reconfigures in place.
//
// # Levels
//
// In addition to the [log/slog] levels, [LevelTrace] sits below
// [LevelDebug] for per-expression parse and evaluation events.
//
// # Output
//
// Records are written as [FormatText] key=value pairs or [FormatJSON]
// objects. With [WithPretty] enabled, both are styled for a terminal;
// styling degrades to plain text when the output is not a terminal.
package log
