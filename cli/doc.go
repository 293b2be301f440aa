// Package cli contains the command line interface for calc.
//
// # Usage
//
// Arguments that do not name a command are evaluated as expressions:
//
//	calc '1 + 2' '$0 * 3'
//	calc run script.calc
//	calc parse --format=json 'max(1, 2)!'
//	calc funcs trig
//	calc repl --mode=line
//
// Without arguments an interactive session starts.
//
// # Configuration
//
// Flag defaults are read from config.yaml and config.json in each directory
// of the search path: the directories listed in CALC_CONFIG_PATH followed by
// the user configuration directory. Keys name flags without the leading
// dashes; in YAML, nested mappings join their keys with a hyphen. The init
// command writes the current flag values to a new configuration file.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, Kitchen, a Go
//     layout, or none)
//   - --[no-]log-caller: Include caller information in log output
//   - --[no-]log-pretty: Colorize log output
//
// # Profiling Options
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default: pprof in the
//     user cache directory)
package cli
