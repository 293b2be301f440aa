package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/calc/cli/cmd"
	"github.com/ardnew/calc/pkg"
)

// CLI is the top-level command-line interface for calc.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Eval   cmd.Eval   `cmd:"" default:"withargs" help:"Evaluate expressions (default)."`
	Script cmd.Script `cmd:"" name:"run"         help:"Evaluate expressions read from files, one per line."`
	Parse  cmd.Parse  `cmd:""                    help:"Print the parse tree of an expression."`
	Funcs  cmd.Funcs  `cmd:""                    help:"List builtin functions."`
	Repl   cmd.Repl   `cmd:""                    help:"Start an interactive session."`
	Init   cmd.Init   `cmd:""                    help:"Initialize configuration file."`
}

// Run executes the calc CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags take effect before parsing so that parse errors are
	// reported in the requested format.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		options(func() context.Context { return ctx }, &cli, exit)...)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	defer cli.Log.start(ctx)()
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// options returns the Kong options shared by [Run] and the tests. Commands
// receive the context returned by provide when they run.
func options(
	provide func() context.Context,
	cli *CLI,
	exit func(int),
) []kong.Option {
	vars := kong.Vars{
		"version":             pkg.Version,
		cmd.ConfigIdentifier:  configPath(".yaml"),
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.HistoryIdentifier: pkg.HistoryFile(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	return []kong.Option{
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(provide),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFiles(".json")...),
		kong.Configuration(loadYAML, configFiles(".yaml")...),
		vars,
	}
}
