// Package cmd implements the calc subcommands.
//
// Every command evaluates against its own [lang.Calculator], so memory and
// history persist across the expressions of one invocation only.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the configuration file written by [Init].
	ConfigIdentifier = "config"

	// HistoryIdentifier is the kong variable identifier containing the path
	// of the interactive input-line history file.
	HistoryIdentifier = "history"
)
